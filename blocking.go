package bme280

import "context"

// Blocking drives a BME280 on a BlockingTransport. Every call runs to
// completion on the calling goroutine and waits with SleepDelay unless
// another Delayer is given.
type Blocking struct {
	dev *Dev
}

func NewBlocking(t BlockingTransport, opts ...Opt) *Blocking {
	opts = append([]Opt{WithDelayer(SleepDelay{})}, opts...)
	return &Blocking{dev: New(FromBlocking(t), opts...)}
}

func (b *Blocking) Init() error {
	return b.dev.Init(context.Background())
}

func (b *Blocking) InitWithConfig(cfg Config) error {
	return b.dev.InitWithConfig(context.Background(), cfg)
}

func (b *Blocking) Measure() (Measurements, error) {
	return b.dev.Measure(context.Background())
}

func (b *Blocking) MeasureFixed() (MeasurementsFixed, error) {
	return b.dev.MeasureFixed(context.Background())
}

func (b *Blocking) MeasureFixedRaw() (MeasurementsFixedRaw, error) {
	return b.dev.MeasureFixedRaw(context.Background())
}

func (b *Blocking) MeasureRaw() (RawMeasurement, error) {
	return b.dev.MeasureRaw(context.Background())
}

func (b *Blocking) ChipID() (byte, error) {
	return b.dev.ChipID(context.Background())
}

func (b *Blocking) SoftReset() error {
	return b.dev.SoftReset(context.Background())
}

func (b *Blocking) Calibration() (Calibration, bool) {
	return b.dev.Calibration()
}

func (b *Blocking) Mode() (Mode, error) {
	return b.dev.Mode(context.Background())
}

func (b *Blocking) Status() (Status, error) {
	return b.dev.Status(context.Background())
}

// Config returns the configuration applied by the last successful init.
func (b *Blocking) Config() Config {
	return b.dev.Config()
}
