package bme280

import (
	"fmt"
	"time"
)

// Oversampling selects how many samples the device averages for one channel.
// Skip disables the channel.
type Oversampling byte

const (
	Skip Oversampling = iota
	Oversampling1X
	Oversampling2X
	Oversampling4X
	Oversampling8X
	Oversampling16X
)

var oversamplingNames = []string{"skip", "1x", "2x", "4x", "8x", "16x"}

// Samples returns the number of samples averaged, 0 for Skip.
func (o Oversampling) Samples() int {
	if o == Skip || o > Oversampling16X {
		return 0
	}
	return 1 << (o - 1)
}

func (o Oversampling) String() string {
	if int(o) < len(oversamplingNames) {
		return oversamplingNames[o]
	}
	return fmt.Sprintf("Oversampling(%d)", byte(o))
}

func (o Oversampling) MarshalText() ([]byte, error) {
	if int(o) >= len(oversamplingNames) {
		return nil, fmt.Errorf("invalid oversampling %d", byte(o))
	}
	return []byte(o.String()), nil
}

func (o *Oversampling) UnmarshalText(text []byte) error {
	v, err := parseEnum(string(text), oversamplingNames)
	if err != nil {
		return fmt.Errorf("oversampling: %w", err)
	}
	*o = Oversampling(v)
	return nil
}

// Filter is the IIR filter coefficient.
type Filter byte

const (
	FilterOff Filter = iota
	FilterCoefficient2
	FilterCoefficient4
	FilterCoefficient8
	FilterCoefficient16
)

var filterNames = []string{"off", "2", "4", "8", "16"}

func (f Filter) String() string {
	if int(f) < len(filterNames) {
		return filterNames[f]
	}
	return fmt.Sprintf("Filter(%d)", byte(f))
}

func (f Filter) MarshalText() ([]byte, error) {
	if int(f) >= len(filterNames) {
		return nil, fmt.Errorf("invalid filter %d", byte(f))
	}
	return []byte(f.String()), nil
}

func (f *Filter) UnmarshalText(text []byte) error {
	v, err := parseEnum(string(text), filterNames)
	if err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	*f = Filter(v)
	return nil
}

// Mode is the power mode written to ctrl_meas[1:0].
type Mode byte

const (
	SleepMode  Mode = 0b00
	ForcedMode Mode = 0b01
	NormalMode Mode = 0b11
)

func (m Mode) String() string {
	switch m {
	case SleepMode:
		return "sleep"
	case ForcedMode, 0b10:
		return "forced"
	case NormalMode:
		return "normal"
	default:
		return fmt.Sprintf("Mode(%d)", byte(m))
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "sleep":
		*m = SleepMode
	case "forced":
		*m = ForcedMode
	case "normal":
		*m = NormalMode
	default:
		return fmt.Errorf("mode: unknown value %q", text)
	}
	return nil
}

// Standby is the inactive period between conversions in normal mode.
type Standby byte

const (
	Standby500us Standby = iota
	Standby62500us
	Standby125ms
	Standby250ms
	Standby500ms
	Standby1000ms
	Standby10ms
	Standby20ms
)

var standbyNames = []string{"0.5ms", "62.5ms", "125ms", "250ms", "500ms", "1000ms", "10ms", "20ms"}

func (s Standby) String() string {
	if int(s) < len(standbyNames) {
		return standbyNames[s]
	}
	return fmt.Sprintf("Standby(%d)", byte(s))
}

func (s Standby) MarshalText() ([]byte, error) {
	if int(s) >= len(standbyNames) {
		return nil, fmt.Errorf("invalid standby %d", byte(s))
	}
	return []byte(s.String()), nil
}

func (s *Standby) UnmarshalText(text []byte) error {
	v, err := parseEnum(string(text), standbyNames)
	if err != nil {
		return fmt.Errorf("standby: %w", err)
	}
	*s = Standby(v)
	return nil
}

func parseEnum(s string, names []string) (int, error) {
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown value %q", s)
}

// Config describes what InitWithConfig writes to ctrl_hum, ctrl_meas and
// config. The zero value skips every channel.
type Config struct {
	Humidity    Oversampling `yaml:"humidity"`
	Pressure    Oversampling `yaml:"pressure"`
	Temperature Oversampling `yaml:"temperature"`
	Filter      Filter       `yaml:"filter"`
	Mode        Mode         `yaml:"mode"`
	Standby     Standby      `yaml:"standby"`
}

// DefaultConfig is the recommended preset: humidity 1x, pressure 16x,
// temperature 2x, IIR filter 16, forced mode.
func DefaultConfig() Config {
	return Config{}.
		WithHumidityOversampling(Oversampling1X).
		WithPressureOversampling(Oversampling16X).
		WithTemperatureOversampling(Oversampling2X).
		WithFilter(FilterCoefficient16).
		WithMode(ForcedMode)
}

func (c Config) WithHumidityOversampling(o Oversampling) Config {
	c.Humidity = o
	return c
}

func (c Config) WithPressureOversampling(o Oversampling) Config {
	c.Pressure = o
	return c
}

func (c Config) WithTemperatureOversampling(o Oversampling) Config {
	c.Temperature = o
	return c
}

func (c Config) WithFilter(f Filter) Config {
	c.Filter = f
	return c
}

func (c Config) WithMode(m Mode) Config {
	c.Mode = m
	return c
}

func (c Config) WithStandby(s Standby) Config {
	c.Standby = s
	return c
}

// Registers returns the ctrl_hum, ctrl_meas and config values written by
// InitWithConfig. Unless the mode is NormalMode, ctrl_meas leaves the device
// asleep; forced conversions are requested per measurement.
func (c Config) Registers() (ctrlHum, ctrlMeas, config byte) {
	mode := SleepMode
	if c.Mode == NormalMode {
		mode = NormalMode
	}
	return c.ctrlHum(), c.ctrlMeas(mode), c.config()
}

func (c Config) ctrlHum() byte {
	return byte(c.Humidity) & 0x07
}

func (c Config) ctrlMeas(m Mode) byte {
	return (byte(c.Temperature)&0x07)<<5 | (byte(c.Pressure)&0x07)<<2 | byte(m)&modeMask
}

func (c Config) config() byte {
	return (byte(c.Standby)&0x07)<<5 | (byte(c.Filter)&0x07)<<2
}

// MeasurementTime is the datasheet maximum duration of one forced conversion
// (appendix B):
//
//	1.25 + 2.3*T + (2.3*P + 0.575) + (2.3*H + 0.575) ms
//
// Skipped channels contribute nothing.
func (c Config) MeasurementTime() time.Duration {
	us := 1250 + 2300*c.Temperature.Samples()
	if n := c.Pressure.Samples(); n > 0 {
		us += 2300*n + 575
	}
	if n := c.Humidity.Samples(); n > 0 {
		us += 2300*n + 575
	}
	return time.Duration(us) * time.Microsecond
}
