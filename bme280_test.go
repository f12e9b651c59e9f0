package bme280_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mklimuk/bme280"
	"github.com/mklimuk/bme280/bmetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordDelay records requested waits without sleeping.
type recordDelay struct {
	waits []time.Duration
}

func (r *recordDelay) Delay(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func newDev(sim *bmetest.Sim) (*bme280.Dev, *recordDelay) {
	delay := &recordDelay{}
	return bme280.New(sim, bme280.WithDelayer(delay)), delay
}

func TestDev_Init(t *testing.T) {
	sim := bmetest.NewSim()
	dev, delay := newDev(sim)
	require.NoError(t, dev.Init(context.Background()))

	assert.Equal(t, []bmetest.Access{
		{Op: bmetest.OpRead, Reg: 0xD0, Len: 1},
		{Op: bmetest.OpWrite, Reg: 0xE0, Value: 0xB6},
		{Op: bmetest.OpRead, Reg: 0x88, Len: 26},
		{Op: bmetest.OpRead, Reg: 0xE1, Len: 7},
		{Op: bmetest.OpWrite, Reg: 0xF2, Value: 0x01},
		{Op: bmetest.OpWrite, Reg: 0xF4, Value: 0x54},
		{Op: bmetest.OpWrite, Reg: 0xF5, Value: 0x10},
	}, sim.Accesses())
	assert.Equal(t, []time.Duration{2 * time.Millisecond}, delay.waits)

	cal, ok := dev.Calibration()
	assert.True(t, ok)
	assert.Equal(t, uint16(27504), cal.T1)
	assert.Equal(t, int16(313), cal.H4)
	assert.Equal(t, int16(50), cal.H5)
	assert.Equal(t, bme280.DefaultConfig(), dev.Config())

	mode, err := dev.Mode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bme280.SleepMode, mode)
}

func TestDev_InitWrongChip(t *testing.T) {
	sim := bmetest.NewSim()
	sim.SetChipID(0x58)
	dev, _ := newDev(sim)

	err := dev.Init(context.Background())
	assert.ErrorIs(t, err, bme280.ErrUnsupportedChip)
	var idErr *bme280.ChipIDError
	require.ErrorAs(t, err, &idErr)
	assert.Equal(t, byte(0x58), idErr.ID)

	assert.Len(t, sim.Accesses(), 1)
	assert.False(t, sim.Touched(bme280.RegCalib00))
	assert.False(t, sim.Touched(bme280.RegCalib26))
	assert.False(t, sim.Touched(bme280.RegSoftReset))

	_, ok := dev.Calibration()
	assert.False(t, ok)
	_, err = dev.Measure(context.Background())
	assert.ErrorIs(t, err, bme280.ErrUninitialized)
}

func TestDev_InitBusErrors(t *testing.T) {
	busErr := errors.New("nack")
	tests := []struct {
		name  string
		setup func(*bmetest.Sim)
		reg   byte
	}{
		{"chip id", func(s *bmetest.Sim) { s.FailRead(bme280.RegChipID, busErr) }, bme280.RegChipID},
		{"reset", func(s *bmetest.Sim) { s.FailWrite(bme280.RegSoftReset, busErr) }, bme280.RegSoftReset},
		{"calibration", func(s *bmetest.Sim) { s.FailRead(bme280.RegCalib26, busErr) }, bme280.RegCalib26},
		{"ctrl_hum", func(s *bmetest.Sim) { s.FailWrite(bme280.RegCtrlHum, busErr) }, bme280.RegCtrlHum},
		{"config", func(s *bmetest.Sim) { s.FailWrite(bme280.RegConfig, busErr) }, bme280.RegConfig},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sim := bmetest.NewSim()
			test.setup(sim)
			dev, _ := newDev(sim)
			err := dev.Init(context.Background())
			assert.ErrorIs(t, err, bme280.ErrBus)
			assert.ErrorIs(t, err, busErr)
			var be *bme280.BusError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, test.reg, be.Reg)

			_, ok := dev.Calibration()
			assert.False(t, ok)
			_, err = dev.MeasureFixed(context.Background())
			assert.ErrorIs(t, err, bme280.ErrUninitialized)
		})
	}
}

func TestDev_MeasureBeforeInit(t *testing.T) {
	sim := bmetest.NewSim()
	dev, _ := newDev(sim)
	ctx := context.Background()

	_, err := dev.Measure(ctx)
	assert.ErrorIs(t, err, bme280.ErrUninitialized)
	_, err = dev.MeasureFixed(ctx)
	assert.ErrorIs(t, err, bme280.ErrUninitialized)
	_, err = dev.MeasureFixedRaw(ctx)
	assert.ErrorIs(t, err, bme280.ErrUninitialized)
	_, err = dev.MeasureRaw(ctx)
	assert.ErrorIs(t, err, bme280.ErrUninitialized)
	assert.Empty(t, sim.Accesses())
}

func TestDev_Measure(t *testing.T) {
	sim := bmetest.NewSim()
	dev, delay := newDev(sim)
	ctx := context.Background()
	require.NoError(t, dev.Init(ctx))
	sim.Reset()
	delay.waits = nil

	m, err := dev.Measure(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 25.08247793081682, *m.Temperature, 1e-9)
	assert.InDelta(t, 100653.25814481472, *m.Pressure, 1e-6)
	assert.InDelta(t, 55.000712804837015, *m.Humidity, 1e-9)

	assert.Equal(t, []bmetest.Access{
		{Op: bmetest.OpWrite, Reg: 0xF4, Value: 0x55},
		{Op: bmetest.OpRead, Reg: 0xF7, Len: 8},
	}, sim.Accesses())
	assert.Equal(t, []time.Duration{46100 * time.Microsecond}, delay.waits)
	assert.Equal(t, 1, sim.Conversions())
}

func TestDev_MeasureFixed(t *testing.T) {
	sim := bmetest.NewSim()
	dev, _ := newDev(sim)
	ctx := context.Background()
	require.NoError(t, dev.Init(ctx))

	m, err := dev.MeasureFixed(ctx)
	require.NoError(t, err)
	assert.Equal(t, "25.08", m.Temperature.String())
	assert.Equal(t, "100653.25", m.Pressure.String())
	assert.Equal(t, "55.00", m.Humidity.String())

	raw, err := dev.MeasureFixedRaw(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2508), *raw.Temperature)
	assert.Equal(t, uint32(25767233), *raw.Pressure)
	assert.Equal(t, uint32(56317), *raw.Humidity)
}

func TestDev_MeasureSkippedChannels(t *testing.T) {
	sim := bmetest.NewSim()
	dev, delay := newDev(sim)
	ctx := context.Background()
	cfg := bme280.Config{}.
		WithTemperatureOversampling(bme280.Oversampling1X).
		WithMode(bme280.ForcedMode)
	require.NoError(t, dev.InitWithConfig(ctx, cfg))
	sim.SetRaw(bme280.RawMeasurement{
		Pressure:    bme280.SkippedPressure,
		Temperature: 519888,
		Humidity:    bme280.SkippedHumidity,
	})
	delay.waits = nil

	m, err := dev.Measure(ctx)
	require.NoError(t, err)
	assert.NotNil(t, m.Temperature)
	assert.Nil(t, m.Pressure)
	assert.Nil(t, m.Humidity)
	assert.Equal(t, []time.Duration{3550 * time.Microsecond}, delay.waits)
	assert.Equal(t, byte(0x00), sim.Register(bme280.RegCtrlHum))
}

func TestDev_NormalMode(t *testing.T) {
	sim := bmetest.NewSim()
	dev, delay := newDev(sim)
	ctx := context.Background()
	cfg := bme280.DefaultConfig().WithMode(bme280.NormalMode).WithStandby(bme280.Standby125ms)
	require.NoError(t, dev.InitWithConfig(ctx, cfg))
	assert.Equal(t, byte(0x57), sim.Register(bme280.RegCtrlMeas))
	assert.Equal(t, byte(0x50), sim.Register(bme280.RegConfig))
	sim.Reset()
	delay.waits = nil

	m, err := dev.MeasureFixed(ctx)
	require.NoError(t, err)
	assert.Equal(t, bme280.Fixed(2508), *m.Temperature)
	assert.Equal(t, []bmetest.Access{
		{Op: bmetest.OpRead, Reg: 0xF7, Len: 8},
	}, sim.Accesses())
	assert.Empty(t, delay.waits)

	mode, err := dev.Mode(ctx)
	require.NoError(t, err)
	assert.Equal(t, bme280.NormalMode, mode)
}

func TestDev_MeasureCancelled(t *testing.T) {
	sim := bmetest.NewSim()
	dev := bme280.New(sim)
	require.NoError(t, dev.Init(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := dev.Measure(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// a later measurement starts a fresh conversion
	m, err := dev.MeasureFixed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bme280.Fixed(5500), *m.Humidity)
	assert.Equal(t, 2, sim.Conversions())
}

func TestDev_MeasureBusError(t *testing.T) {
	sim := bmetest.NewSim()
	dev, _ := newDev(sim)
	ctx := context.Background()
	require.NoError(t, dev.Init(ctx))
	sim.FailRead(bme280.RegPressMSB, errors.New("timeout"))

	_, err := dev.Measure(ctx)
	assert.ErrorIs(t, err, bme280.ErrBus)
	assert.EqualError(t, err, "bme280: read 0xf7 failed: timeout")
}

func TestDev_Status(t *testing.T) {
	sim := bmetest.NewSim()
	dev, _ := newDev(sim)
	st, err := dev.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bme280.Status{}, st)
}

func TestDev_ReInitRestoresConfig(t *testing.T) {
	sim := bmetest.NewSim()
	dev, _ := newDev(sim)
	ctx := context.Background()
	require.NoError(t, dev.Init(ctx))
	require.NoError(t, dev.SoftReset(ctx))
	assert.Equal(t, byte(0x00), sim.Register(bme280.RegCtrlHum))

	require.NoError(t, dev.Init(ctx))
	assert.Equal(t, byte(0x01), sim.Register(bme280.RegCtrlHum))
}

func TestBlocking(t *testing.T) {
	sim := bmetest.NewSim()
	dev := bme280.NewBlocking(sim.Blocking())

	_, err := dev.Measure()
	assert.ErrorIs(t, err, bme280.ErrUninitialized)

	id, err := dev.ChipID()
	require.NoError(t, err)
	assert.Equal(t, bme280.ChipID, id)

	start := time.Now()
	require.NoError(t, dev.Init())
	m, err := dev.MeasureFixed()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 48*time.Millisecond)
	assert.Equal(t, "25.08", m.Temperature.String())
	assert.Equal(t, "100653.25", m.Pressure.String())
	assert.Equal(t, "55.00", m.Humidity.String())

	raw, err := dev.MeasureRaw()
	require.NoError(t, err)
	assert.Equal(t, bmetest.DefaultRaw, raw)

	mode, err := dev.Mode()
	require.NoError(t, err)
	assert.Equal(t, bme280.SleepMode, mode)

	status, err := dev.Status()
	require.NoError(t, err)
	assert.Equal(t, bme280.Status{}, status)

	assert.Equal(t, bme280.DefaultConfig(), dev.Config())
}
