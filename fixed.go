package bme280

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// Fixed is a decimal fixed-point value in hundredths of its unit: 2508 is
// 25.08 °C, 10065325 is 100653.25 Pa.
type Fixed int32

func (f Fixed) Float() float64 {
	return float64(f) / 100
}

func (f Fixed) String() string {
	sign := ""
	v := int64(f)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (f Fixed) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// MeasurementsFixed are compensated readings in hundredths of °C, Pa and %RH.
type MeasurementsFixed struct {
	Temperature *Fixed `yaml:"temperature,omitempty"`
	Pressure    *Fixed `yaml:"pressure,omitempty"`
	Humidity    *Fixed `yaml:"humidity,omitempty"`
}

// Fixed rounds the vendor Q formats to hundredths.
func (m MeasurementsFixedRaw) Fixed() MeasurementsFixed {
	var out MeasurementsFixed
	if m.Temperature != nil {
		t := Fixed(*m.Temperature)
		out.Temperature = &t
	}
	if m.Pressure != nil {
		p := Fixed((uint64(*m.Pressure)*100 + 128) / 256)
		out.Pressure = &p
	}
	if m.Humidity != nil {
		h := Fixed((uint64(*m.Humidity)*100 + 512) / 1024)
		out.Humidity = &h
	}
	return out
}

// Env converts to periph.io units. Skipped channels are left at zero.
func (m MeasurementsFixed) Env() physic.Env {
	var e physic.Env
	if m.Temperature != nil {
		e.Temperature = physic.Temperature(*m.Temperature)*10*physic.MilliCelsius + physic.ZeroCelsius
	}
	if m.Pressure != nil {
		e.Pressure = physic.Pressure(*m.Pressure) * 10 * physic.MilliPascal
	}
	if m.Humidity != nil {
		e.Humidity = physic.RelativeHumidity(*m.Humidity) * 100 * physic.MicroRH
	}
	return e
}
