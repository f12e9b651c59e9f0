package bme280

import (
	"fmt"
)

// Values the device reports for a channel configured with Skip. The 20-bit
// channels read 0x80000 after a skipped conversion; an all-ones word is
// treated the same way.
const (
	SkippedPressure    uint32 = 0x80000
	SkippedTemperature uint32 = 0x80000
	SkippedHumidity    uint16 = 0x8000

	allOnes20 uint32 = 0xFFFFF
)

// RawMeasurement is one burst of the data block: 20-bit pressure and
// temperature ADC words and the 16-bit humidity word.
type RawMeasurement struct {
	Pressure    uint32
	Temperature uint32
	Humidity    uint16
}

// ParseRaw unpacks the DataLen bytes read from RegPressMSB.
func ParseRaw(data []byte) (RawMeasurement, error) {
	if len(data) < DataLen {
		return RawMeasurement{}, fmt.Errorf("bme280: short data block (%d bytes, want %d)", len(data), DataLen)
	}
	return RawMeasurement{
		Pressure:    uint32(data[0])<<12 | uint32(data[1])<<4 | uint32(data[2])>>4,
		Temperature: uint32(data[3])<<12 | uint32(data[4])<<4 | uint32(data[5])>>4,
		Humidity:    uint16(data[6])<<8 | uint16(data[7]),
	}, nil
}

func (r RawMeasurement) HasPressure() bool {
	return r.Pressure != SkippedPressure && r.Pressure != allOnes20
}

func (r RawMeasurement) HasTemperature() bool {
	return r.Temperature != SkippedTemperature && r.Temperature != allOnes20
}

func (r RawMeasurement) HasHumidity() bool {
	return r.Humidity != SkippedHumidity
}

// Measurements are compensated readings in °C, Pa and %RH. A nil field
// means the channel was skipped.
type Measurements struct {
	Temperature *float64 `yaml:"temperature,omitempty"`
	Pressure    *float64 `yaml:"pressure,omitempty"`
	Humidity    *float64 `yaml:"humidity,omitempty"`
}

// MeasurementsFixedRaw holds the integer compensation output as the vendor
// formulas return it: temperature in 0.01 °C, pressure in Q24.8 Pa and
// humidity in Q22.10 %RH.
type MeasurementsFixedRaw struct {
	Temperature *int32  `yaml:"temperature,omitempty"`
	Pressure    *uint32 `yaml:"pressure,omitempty"`
	Humidity    *uint32 `yaml:"humidity,omitempty"`
}

// Compensator applies the compensation formulas for one device. It keeps the
// fine temperature of the last conversion so that pressure and humidity can
// still be compensated when the temperature channel is skipped.
//
// Temperature is always evaluated first: both other formulas consume the
// fine temperature it produces.
type Compensator struct {
	cal   Calibration
	tFine int32
}

func NewCompensator(cal Calibration) *Compensator {
	return &Compensator{cal: cal}
}

func (c *Compensator) Calibration() Calibration {
	return c.cal
}

// FineTemperature returns t_fine from the last compensated temperature.
func (c *Compensator) FineTemperature() int32 {
	return c.tFine
}

// Compensate runs the double precision formulas.
func (c *Compensator) Compensate(raw RawMeasurement) Measurements {
	var m Measurements
	if raw.HasTemperature() {
		t, tFine := temperatureFloat(&c.cal, raw.Temperature)
		c.tFine = tFine
		m.Temperature = &t
	}
	if raw.HasPressure() {
		p := pressureFloat(&c.cal, raw.Pressure, c.tFine)
		m.Pressure = &p
	}
	if raw.HasHumidity() {
		h := humidityFloat(&c.cal, raw.Humidity, c.tFine)
		m.Humidity = &h
	}
	return m
}

// CompensateFixedRaw runs the 32/64-bit integer formulas.
func (c *Compensator) CompensateFixedRaw(raw RawMeasurement) MeasurementsFixedRaw {
	var m MeasurementsFixedRaw
	if raw.HasTemperature() {
		t, tFine := temperatureInt(&c.cal, int32(raw.Temperature))
		c.tFine = tFine
		m.Temperature = &t
	}
	if raw.HasPressure() {
		p := pressureInt64(&c.cal, int32(raw.Pressure), c.tFine)
		m.Pressure = &p
	}
	if raw.HasHumidity() {
		h := humidityInt(&c.cal, int32(raw.Humidity), c.tFine)
		m.Humidity = &h
	}
	return m
}

// CompensateFixed scales the integer output to hundredths of the unit.
func (c *Compensator) CompensateFixed(raw RawMeasurement) MeasurementsFixed {
	return c.CompensateFixedRaw(raw).Fixed()
}

func temperatureFloat(c *Calibration, adc uint32) (float64, int32) {
	raw := float64(adc)
	t1 := float64(c.T1)
	v1 := (raw/16384.0 - t1/1024.0) * float64(c.T2)
	v2 := raw/131072.0 - t1/8192.0
	v2 = v2 * v2 * float64(c.T3)
	return (v1 + v2) / 5120.0, int32(v1 + v2)
}

func pressureFloat(c *Calibration, adc uint32, tFine int32) float64 {
	v1 := float64(tFine)/2.0 - 64000.0
	v2 := v1 * v1 * float64(c.P6) / 32768.0
	v2 = v2 + v1*float64(c.P5)*2.0
	v2 = v2/4.0 + float64(c.P4)*65536.0
	v3 := float64(c.P3) * v1 * v1 / 524288.0
	v1 = (v3 + float64(c.P2)*v1) / 524288.0
	v1 = (1.0 + v1/32768.0) * float64(c.P1)
	if v1 == 0 {
		return 0
	}
	p := 1048576.0 - float64(adc)
	p = (p - v2/4096.0) * 6250.0 / v1
	v1 = float64(c.P9) * p * p / 2147483648.0
	v2 = p * float64(c.P8) / 32768.0
	return p + (v1+v2+float64(c.P7))/16.0
}

func humidityFloat(c *Calibration, adc uint16, tFine int32) float64 {
	v1 := float64(tFine) - 76800.0
	v2 := float64(c.H4)*64.0 + float64(c.H5)/16384.0*v1
	v3 := float64(adc) - v2
	v4 := float64(c.H2) / 65536.0
	v5 := 1.0 + float64(c.H3)/67108864.0*v1
	v6 := 1.0 + float64(c.H6)/67108864.0*v1*v5
	v6 = v3 * v4 * v5 * v6
	h := v6 * (1.0 - float64(c.H1)*v6/524288.0)
	switch {
	case h > 100:
		return 100
	case h < 0:
		return 0
	}
	return h
}

// temperatureInt returns 0.01 °C and t_fine. Arithmetic is int32 so that
// intermediate wrap-around matches the datasheet reference.
func temperatureInt(c *Calibration, adc int32) (int32, int32) {
	v1 := (((adc >> 3) - int32(c.T1)<<1) * int32(c.T2)) >> 11
	d := (adc >> 4) - int32(c.T1)
	v2 := (((d * d) >> 12) * int32(c.T3)) >> 14
	tFine := v1 + v2
	return (tFine*5 + 128) >> 8, tFine
}

// pressureInt64 returns Pa in Q24.8: 24674867 is 24674867/256 = 96386.2 Pa.
func pressureInt64(c *Calibration, adc int32, tFine int32) uint32 {
	v1 := int64(tFine) - 128000
	v2 := v1 * v1 * int64(c.P6)
	v2 += (v1 * int64(c.P5)) << 17
	v2 += int64(c.P4) << 35
	v1 = ((v1 * v1 * int64(c.P3)) >> 8) + ((v1 * int64(c.P2)) << 12)
	v1 = (((int64(1) << 47) + v1) * int64(c.P1)) >> 33
	if v1 == 0 {
		return 0
	}
	p := 1048576 - int64(adc)
	p = (((p << 31) - v2) * 3125) / v1
	v1 = (int64(c.P9) * (p >> 13) * (p >> 13)) >> 25
	v2 = (int64(c.P8) * p) >> 19
	p = ((p + v1 + v2) >> 8) + int64(c.P7)<<4
	return uint32(p)
}

// humidityInt returns %RH in Q22.10: 47445 is 47445/1024 = 46.333 %RH.
func humidityInt(c *Calibration, adc int32, tFine int32) uint32 {
	v := tFine - 76800
	a := ((adc << 14) - int32(c.H4)<<20 - int32(c.H5)*v + 16384) >> 15
	b := (v * int32(c.H6)) >> 10
	b = (b * (((v * int32(c.H3)) >> 11) + 32768)) >> 10
	b = ((b+2097152)*int32(c.H2) + 8192) >> 14
	v = a * b
	v -= ((((v >> 15) * (v >> 15)) >> 7) * int32(c.H1)) >> 4
	if v < 0 {
		v = 0
	}
	if v > 419430400 {
		v = 419430400
	}
	return uint32(v >> 12)
}
