package bme280

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// startup time after power-on or soft reset (datasheet table 1)
const resetDelay = 2 * time.Millisecond

type Opts struct {
	Delayer Delayer
	Logger  *slog.Logger
}

type Opt func(*Opts)

// WithDelayer sets the wait used after soft reset and between triggering a
// forced conversion and reading it. Defaults to TimerDelay.
func WithDelayer(d Delayer) Opt {
	return func(o *Opts) {
		o.Delayer = d
	}
}

func WithLogger(l *slog.Logger) Opt {
	return func(o *Opts) {
		o.Logger = l
	}
}

// Dev is a BME280 behind a register Transport.
//
// Typical usage:
//
//	d := bme280.New(i2c.NewTransport(bus, i2c.AddrPrimary))
//	if err := d.Init(ctx); err != nil { ... }
//	m, err := d.Measure(ctx)
//
// Dev assumes exclusive use of the transport and does no locking; callers
// sharing a bus must serialize access themselves.
type Dev struct {
	transport Transport
	delay     Delayer
	log       *slog.Logger

	cfg  Config
	comp *Compensator
	buf  [DataLen]byte
}

func New(t Transport, opts ...Opt) *Dev {
	o := Opts{
		Delayer: TimerDelay{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return &Dev{
		transport: t,
		delay:     o.Delayer,
		log:       o.Logger,
	}
}

// Init applies DefaultConfig.
func (d *Dev) Init(ctx context.Context) error {
	return d.InitWithConfig(ctx, DefaultConfig())
}

// InitWithConfig checks the chip identity, resets the device, loads the
// calibration and writes ctrl_hum, ctrl_meas and config in that order
// (ctrl_hum only takes effect after a ctrl_meas write).
//
// A failure part way leaves the device registers in whatever state the
// completed writes produced and the Dev uninitialized; retry Init from
// scratch.
func (d *Dev) InitWithConfig(ctx context.Context, cfg Config) error {
	d.comp = nil
	id, err := d.ChipID(ctx)
	if err != nil {
		return err
	}
	if id != ChipID {
		return &ChipIDError{ID: id}
	}
	if err := d.SoftReset(ctx); err != nil {
		return err
	}
	cal, err := d.readCalibration(ctx)
	if err != nil {
		return err
	}
	ctrlHum, ctrlMeas, config := cfg.Registers()
	if err := d.write(ctx, RegCtrlHum, ctrlHum); err != nil {
		return err
	}
	if err := d.write(ctx, RegCtrlMeas, ctrlMeas); err != nil {
		return err
	}
	if err := d.write(ctx, RegConfig, config); err != nil {
		return err
	}
	d.cfg = cfg
	d.comp = NewCompensator(cal)
	d.log.Debug("bme280 initialized",
		"humidity", cfg.Humidity, "pressure", cfg.Pressure, "temperature", cfg.Temperature,
		"filter", cfg.Filter, "mode", cfg.Mode,
		"ctrl_hum", fmt.Sprintf("%#02x", ctrlHum), "ctrl_meas", fmt.Sprintf("%#02x", ctrlMeas),
		"config", fmt.Sprintf("%#02x", config))
	return nil
}

// ChipID reads the identity register.
func (d *Dev) ChipID(ctx context.Context) (byte, error) {
	id, err := d.transport.ReadRegister(ctx, RegChipID)
	if err != nil {
		return 0, busErr("read", RegChipID, err)
	}
	return id, nil
}

// SoftReset restores the power-on register values and waits for start-up.
// Calibration data survives a reset; the applied configuration does not.
func (d *Dev) SoftReset(ctx context.Context) error {
	if err := d.write(ctx, RegSoftReset, softResetCmd); err != nil {
		return err
	}
	if err := d.delay.Delay(ctx, resetDelay); err != nil {
		return fmt.Errorf("bme280: waiting for reset: %w", err)
	}
	return nil
}

// Mode reads the power mode bits of ctrl_meas.
func (d *Dev) Mode(ctx context.Context) (Mode, error) {
	v, err := d.transport.ReadRegister(ctx, RegCtrlMeas)
	if err != nil {
		return 0, busErr("read", RegCtrlMeas, err)
	}
	return Mode(v & modeMask), nil
}

type Status struct {
	// Measuring is set while a conversion is running.
	Measuring bool `yaml:"measuring"`
	// ImUpdate is set while NVM data is copied to the image registers.
	ImUpdate bool `yaml:"im_update"`
}

func (d *Dev) Status(ctx context.Context) (Status, error) {
	v, err := d.transport.ReadRegister(ctx, RegStatus)
	if err != nil {
		return Status{}, busErr("read", RegStatus, err)
	}
	return Status{
		Measuring: v&statusMeasuring != 0,
		ImUpdate:  v&statusImUpdate != 0,
	}, nil
}

// Calibration returns the constants loaded by Init; ok is false before.
func (d *Dev) Calibration() (cal Calibration, ok bool) {
	if d.comp == nil {
		return Calibration{}, false
	}
	return d.comp.Calibration(), true
}

// Config returns the configuration applied by the last successful Init.
func (d *Dev) Config() Config {
	return d.cfg
}

// Measure triggers a conversion and returns the compensated values as
// floating point.
func (d *Dev) Measure(ctx context.Context) (Measurements, error) {
	raw, err := d.sample(ctx)
	if err != nil {
		return Measurements{}, err
	}
	return d.comp.Compensate(raw), nil
}

// MeasureFixed is Measure computed in integer arithmetic and rounded to
// hundredths of each unit.
func (d *Dev) MeasureFixed(ctx context.Context) (MeasurementsFixed, error) {
	raw, err := d.sample(ctx)
	if err != nil {
		return MeasurementsFixed{}, err
	}
	return d.comp.CompensateFixed(raw), nil
}

// MeasureFixedRaw returns the integer compensation output unscaled.
func (d *Dev) MeasureFixedRaw(ctx context.Context) (MeasurementsFixedRaw, error) {
	raw, err := d.sample(ctx)
	if err != nil {
		return MeasurementsFixedRaw{}, err
	}
	return d.comp.CompensateFixedRaw(raw), nil
}

// MeasureRaw returns the uncompensated ADC words.
func (d *Dev) MeasureRaw(ctx context.Context) (RawMeasurement, error) {
	return d.sample(ctx)
}

// sample requests a forced conversion unless the device runs in normal mode,
// waits the worst case conversion time and reads the data block. The device
// goes back to sleep by itself after a forced conversion.
func (d *Dev) sample(ctx context.Context) (RawMeasurement, error) {
	if d.comp == nil {
		return RawMeasurement{}, ErrUninitialized
	}
	if d.cfg.Mode != NormalMode {
		if err := d.write(ctx, RegCtrlMeas, d.cfg.ctrlMeas(ForcedMode)); err != nil {
			return RawMeasurement{}, err
		}
		if err := d.delay.Delay(ctx, d.cfg.MeasurementTime()); err != nil {
			return RawMeasurement{}, fmt.Errorf("bme280: waiting for conversion: %w", err)
		}
	}
	if err := d.transport.ReadRegisters(ctx, RegPressMSB, d.buf[:]); err != nil {
		return RawMeasurement{}, busErr("read", RegPressMSB, err)
	}
	return ParseRaw(d.buf[:])
}

func (d *Dev) readCalibration(ctx context.Context) (Calibration, error) {
	var tp [CalibTPLen]byte
	var h [CalibHLen]byte
	if err := d.transport.ReadRegisters(ctx, RegCalib00, tp[:]); err != nil {
		return Calibration{}, busErr("read", RegCalib00, err)
	}
	if err := d.transport.ReadRegisters(ctx, RegCalib26, h[:]); err != nil {
		return Calibration{}, busErr("read", RegCalib26, err)
	}
	return parseCalibration(tp[:], h[:]), nil
}

func (d *Dev) write(ctx context.Context, reg, value byte) error {
	if err := d.transport.WriteRegister(ctx, reg, value); err != nil {
		return busErr("write", reg, err)
	}
	return nil
}
