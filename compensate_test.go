package bme280

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCalibration = Calibration{
	T1: 27504, T2: 26435, T3: -1000,
	P1: 36477, P2: -10685, P3: 3024, P4: 2855, P5: 140, P6: -7, P7: 15500, P8: -14600, P9: 6000,
	H1: 75, H2: 362, H3: 0, H4: 313, H5: 50, H6: 30,
}

var testCalibTP = []byte{
	0x70, 0x6B, 0x43, 0x67, 0x18, 0xFC,
	0x7D, 0x8E, 0x43, 0xD6, 0xD0, 0x0B, 0x27, 0x0B, 0x8C, 0x00,
	0xF9, 0xFF, 0x8C, 0x3C, 0xF8, 0xC6, 0x70, 0x17,
	0x00, 0x4B,
}

var testCalibH = []byte{0x6A, 0x01, 0x00, 0x13, 0x29, 0x03, 0x1E}

func TestParseCalibration(t *testing.T) {
	cal, err := ParseCalibration(testCalibTP, testCalibH)
	require.NoError(t, err)
	assert.Equal(t, testCalibration, cal)
}

func TestParseCalibration_NegativeH4H5(t *testing.T) {
	h := []byte{0x6A, 0x01, 0x00, 0xF0, 0xA5, 0xFE, 0x1E}
	cal, err := ParseCalibration(testCalibTP, h)
	require.NoError(t, err)
	// 0xF0 -> -16*16 | 0x5
	assert.Equal(t, int16(-251), cal.H4)
	// 0xFE -> -2*16 | 0xA
	assert.Equal(t, int16(-22), cal.H5)
}

func TestParseCalibration_Short(t *testing.T) {
	_, err := ParseCalibration(testCalibTP[:10], testCalibH)
	assert.Error(t, err)
	_, err = ParseCalibration(testCalibTP, testCalibH[:6])
	assert.Error(t, err)
}

func TestParseRaw(t *testing.T) {
	raw, err := ParseRaw([]byte{0x65, 0x5A, 0xC0, 0x7E, 0xED, 0x00, 0x75, 0x30})
	require.NoError(t, err)
	assert.Equal(t, RawMeasurement{Pressure: 415148, Temperature: 519888, Humidity: 30000}, raw)

	_, err = ParseRaw([]byte{0x80, 0x00})
	assert.Error(t, err)
}

func TestRawMeasurement_Skipped(t *testing.T) {
	tests := []struct {
		raw                RawMeasurement
		press, temp, humid bool
	}{
		{RawMeasurement{415148, 519888, 30000}, true, true, true},
		{RawMeasurement{0x80000, 519888, 30000}, false, true, true},
		{RawMeasurement{0xFFFFF, 0x80000, 30000}, false, false, true},
		{RawMeasurement{415148, 0xFFFFF, 0x8000}, true, false, false},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%+v", test.raw), func(t *testing.T) {
			assert.Equal(t, test.press, test.raw.HasPressure())
			assert.Equal(t, test.temp, test.raw.HasTemperature())
			assert.Equal(t, test.humid, test.raw.HasHumidity())
		})
	}
}

func TestCompensator_Float(t *testing.T) {
	tests := []struct {
		raw                RawMeasurement
		temp, press, humid float64
	}{
		{RawMeasurement{415148, 519888, 30000}, 25.08247793081682, 100653.25814481472, 55.000712804837015},
		{RawMeasurement{415148, 519888, 0x6A00}, 25.08247793081682, 100653.25814481472, 39.035063543846846},
		{RawMeasurement{350000, 480000, 20000}, 12.566890239715576, 109769.09972195378, 0.033060620333356744},
		{RawMeasurement{400000, 540000, 40000}, 31.379266023170203, 104267.4740002016, 100},
		{RawMeasurement{415148, 519888, 65000}, 25.08247793081682, 100653.25814481472, 100},
		{RawMeasurement{415148, 519888, 0}, 25.08247793081682, 100653.25814481472, 0},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%+v", test.raw), func(t *testing.T) {
			m := NewCompensator(testCalibration).Compensate(test.raw)
			require.NotNil(t, m.Temperature)
			require.NotNil(t, m.Pressure)
			require.NotNil(t, m.Humidity)
			assert.InDelta(t, test.temp, *m.Temperature, 1e-9)
			assert.InDelta(t, test.press, *m.Pressure, 1e-6)
			assert.InDelta(t, test.humid, *m.Humidity, 1e-9)
		})
	}
}

func TestCompensator_FixedRaw(t *testing.T) {
	tests := []struct {
		raw   RawMeasurement
		temp  int32
		tFine int32
		press uint32
		humid uint32
	}{
		{RawMeasurement{415148, 519888, 30000}, 2508, 128422, 25767233, 56317},
		{RawMeasurement{415148, 519888, 0x6A00}, 2508, 128422, 25767233, 39969},
		{RawMeasurement{350000, 480000, 20000}, 1257, 64342, 28100888, 33},
		{RawMeasurement{400000, 540000, 40000}, 3138, 160661, 26692473, 102400},
		{RawMeasurement{415148, 519888, 65000}, 2508, 128422, 25767233, 102400},
		{RawMeasurement{415148, 519888, 0}, 2508, 128422, 25767233, 0},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%+v", test.raw), func(t *testing.T) {
			c := NewCompensator(testCalibration)
			m := c.CompensateFixedRaw(test.raw)
			require.NotNil(t, m.Temperature)
			require.NotNil(t, m.Pressure)
			require.NotNil(t, m.Humidity)
			assert.Equal(t, test.temp, *m.Temperature)
			assert.Equal(t, test.tFine, c.FineTemperature())
			assert.Equal(t, test.press, *m.Pressure)
			assert.Equal(t, test.humid, *m.Humidity)
		})
	}
}

func TestCompensator_Fixed(t *testing.T) {
	m := NewCompensator(testCalibration).CompensateFixed(RawMeasurement{415148, 519888, 30000})
	require.NotNil(t, m.Temperature)
	assert.Equal(t, Fixed(2508), *m.Temperature)
	assert.Equal(t, "25.08", m.Temperature.String())
	assert.Equal(t, Fixed(10065325), *m.Pressure)
	assert.Equal(t, "100653.25", m.Pressure.String())
	assert.Equal(t, Fixed(5500), *m.Humidity)
	assert.Equal(t, "55.00", m.Humidity.String())

	m = NewCompensator(testCalibration).CompensateFixed(RawMeasurement{415148, 519888, 0x6A00})
	assert.Equal(t, Fixed(3903), *m.Humidity)
}

func TestCompensator_FixedAgreesWithFloat(t *testing.T) {
	raws := []RawMeasurement{
		{415148, 519888, 30000},
		{350000, 480000, 20000},
		{400000, 540000, 40000},
		{300000, 500000, 25000},
	}
	for _, raw := range raws {
		t.Run(fmt.Sprintf("%+v", raw), func(t *testing.T) {
			f := NewCompensator(testCalibration).Compensate(raw)
			x := NewCompensator(testCalibration).CompensateFixed(raw)
			assert.InDelta(t, *f.Temperature, x.Temperature.Float(), 0.01)
			assert.InDelta(t, *f.Pressure, x.Pressure.Float(), 1.0)
			assert.InDelta(t, *f.Humidity, x.Humidity.Float(), 0.02)
		})
	}
}

func TestCompensator_SkippedChannels(t *testing.T) {
	c := NewCompensator(testCalibration)
	m := c.Compensate(RawMeasurement{Pressure: SkippedPressure, Temperature: SkippedTemperature, Humidity: SkippedHumidity})
	assert.Nil(t, m.Temperature)
	assert.Nil(t, m.Pressure)
	assert.Nil(t, m.Humidity)

	x := c.CompensateFixed(RawMeasurement{Pressure: 0xFFFFF, Temperature: 0xFFFFF, Humidity: SkippedHumidity})
	assert.Nil(t, x.Temperature)
	assert.Nil(t, x.Pressure)
	assert.Nil(t, x.Humidity)
}

func TestCompensator_SkippedTemperatureKeepsFineTemperature(t *testing.T) {
	c := NewCompensator(testCalibration)
	// no temperature seen yet: t_fine is 0
	m := c.CompensateFixedRaw(RawMeasurement{Pressure: 415148, Temperature: SkippedTemperature, Humidity: SkippedHumidity})
	assert.Nil(t, m.Temperature)
	require.NotNil(t, m.Pressure)
	assert.Equal(t, uint32(24786192), *m.Pressure)
	f := c.Compensate(RawMeasurement{Pressure: 415148, Temperature: SkippedTemperature, Humidity: SkippedHumidity})
	assert.InDelta(t, 96821.06485722949, *f.Pressure, 1e-6)

	c.CompensateFixedRaw(RawMeasurement{Pressure: SkippedPressure, Temperature: 519888, Humidity: SkippedHumidity})
	assert.Equal(t, int32(128422), c.FineTemperature())
	m = c.CompensateFixedRaw(RawMeasurement{Pressure: 415148, Temperature: SkippedTemperature, Humidity: 30000})
	assert.Equal(t, uint32(25767233), *m.Pressure)
	assert.Equal(t, uint32(56317), *m.Humidity)
}

func TestCompensator_ZeroP1(t *testing.T) {
	cal := testCalibration
	cal.P1 = 0
	c := NewCompensator(cal)
	raw := RawMeasurement{415148, 519888, 30000}
	assert.Equal(t, 0.0, *c.Compensate(raw).Pressure)
	assert.Equal(t, uint32(0), *c.CompensateFixedRaw(raw).Pressure)
}
