package i2c

import (
	"context"
	"errors"
	"testing"

	"github.com/mklimuk/bme280"
	"github.com/mklimuk/bme280/bmetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockI2CBus is a mock implementation of bme280.I2CBus using testify/mock
type MockI2CBus struct {
	mock.Mock
}

func (m *MockI2CBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	return args.Error(0)
}

func (m *MockI2CBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	if data, ok := args.Get(0).([]byte); ok {
		copy(buffer, data)
	}
	return args.Error(1)
}

func (m *MockI2CBus) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockI2CTxBus adds combined transactions.
type MockI2CTxBus struct {
	MockI2CBus
}

func (m *MockI2CTxBus) TxToAddr(ctx context.Context, address byte, w, r []byte) error {
	args := m.Called(ctx, address, w, r)
	if data, ok := args.Get(0).([]byte); ok {
		copy(r, data)
	}
	return args.Error(1)
}

func TestTransport_ReadWriteThenRead(t *testing.T) {
	bus := &MockI2CBus{}
	ctx := context.Background()
	bus.On("WriteToAddr", ctx, AddrPrimary, []byte{0xD0}).Return(nil).Once()
	bus.On("ReadFromAddr", ctx, AddrPrimary, mock.AnythingOfType("[]uint8")).Return([]byte{0x60}, nil).Once()

	tr := NewTransport(bus, AddrPrimary)
	id, err := tr.ReadRegister(ctx, 0xD0)
	require.NoError(t, err)
	assert.Equal(t, byte(0x60), id)
	bus.AssertExpectations(t)
}

func TestTransport_ReadCombined(t *testing.T) {
	bus := &MockI2CTxBus{}
	ctx := context.Background()
	data := []byte{0x65, 0x5A, 0xC0, 0x7E, 0xED, 0x00, 0x75, 0x30}
	bus.On("TxToAddr", ctx, AddrSecondary, []byte{0xF7}, mock.AnythingOfType("[]uint8")).Return(data, nil).Once()

	tr := NewTransport(bus, AddrSecondary)
	buf := make([]byte, 8)
	require.NoError(t, tr.ReadRegisters(ctx, 0xF7, buf))
	assert.Equal(t, data, buf)
	bus.AssertExpectations(t)
	bus.AssertNotCalled(t, "WriteToAddr", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransport_Write(t *testing.T) {
	bus := &MockI2CBus{}
	ctx := context.Background()
	bus.On("WriteToAddr", ctx, AddrPrimary, []byte{0xF4, 0x55}).Return(nil).Once()

	tr := NewTransport(bus, AddrPrimary)
	require.NoError(t, tr.WriteRegister(ctx, 0xF4, 0x55))
	bus.AssertExpectations(t)
}

func TestTransport_BusyWithoutRetry(t *testing.T) {
	bus := &MockI2CBus{}
	ctx := context.Background()
	bus.On("WriteToAddr", ctx, AddrPrimary, []byte{0xF4, 0x55}).Return(bme280.ErrBusBusy).Once()
	bus.On("WriteToAddr", ctx, AddrPrimary, []byte{0xF4, 0x55}).Return(nil)

	tr := NewTransport(bus, AddrPrimary)
	err := tr.WriteRegister(ctx, 0xF4, 0x55)
	assert.Equal(t, bme280.ErrBusBusy, err)
	bus.AssertNumberOfCalls(t, "WriteToAddr", 1)
	bus.AssertNotCalled(t, "Release", mock.Anything)
}

func TestTransport_RetryOnBusy(t *testing.T) {
	bus := &MockI2CBus{}
	ctx := context.Background()
	bus.On("WriteToAddr", ctx, AddrPrimary, []byte{0xE0, 0xB6}).Return(bme280.ErrBusBusy).Twice()
	bus.On("WriteToAddr", ctx, AddrPrimary, []byte{0xE0, 0xB6}).Return(nil).Once()
	bus.On("Release", ctx).Return(nil).Twice()

	tr := NewTransport(bus, AddrPrimary, WithRetryLimit(3))
	require.NoError(t, tr.WriteRegister(ctx, 0xE0, 0xB6))
	bus.AssertExpectations(t)
}

func TestTransport_RetryLimit(t *testing.T) {
	bus := &MockI2CBus{}
	ctx := context.Background()
	bus.On("WriteToAddr", ctx, AddrPrimary, []byte{0xF2, 0x01}).Return(bme280.ErrBusBusy)
	bus.On("Release", ctx).Return(nil)

	tr := NewTransport(bus, AddrPrimary, WithRetryLimit(2))
	err := tr.WriteRegister(ctx, 0xF2, 0x01)
	assert.ErrorIs(t, err, bme280.ErrBusBusy)
	assert.EqualError(t, err, "retry limit reached: "+bme280.ErrBusBusy.Error())
	bus.AssertNumberOfCalls(t, "WriteToAddr", 2)
	bus.AssertNumberOfCalls(t, "Release", 1)
}

func TestTransport_NoRetryOnOtherErrors(t *testing.T) {
	bus := &MockI2CBus{}
	ctx := context.Background()
	nack := errors.New("nack")
	bus.On("WriteToAddr", ctx, AddrPrimary, []byte{0xD0}).Return(nack).Once()

	tr := NewTransport(bus, AddrPrimary)
	_, err := tr.ReadRegister(ctx, 0xD0)
	assert.ErrorIs(t, err, nack)
	bus.AssertExpectations(t)
	bus.AssertNotCalled(t, "Release", mock.Anything)
}

// simBus answers I2CBus calls from a simulated register file.
type simBus struct {
	sim     *bmetest.Sim
	address byte
	pointer byte
}

func (s *simBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	if address != s.address {
		return errors.New("nack")
	}
	s.pointer = buffer[0]
	if len(buffer) == 2 {
		return s.sim.WriteRegister(ctx, buffer[0], buffer[1])
	}
	return nil
}

func (s *simBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	if address != s.address {
		return errors.New("nack")
	}
	return s.sim.ReadRegisters(ctx, s.pointer, buffer)
}

func (s *simBus) Release(ctx context.Context) error {
	return nil
}

func TestTransport_Driver(t *testing.T) {
	sim := bmetest.NewSim()
	ctx := context.Background()
	dev := bme280.New(NewTransport(&simBus{sim: sim, address: AddrSecondary}, AddrSecondary))
	require.NoError(t, dev.Init(ctx))
	m, err := dev.MeasureFixed(ctx)
	require.NoError(t, err)
	assert.Equal(t, "25.08", m.Temperature.String())

	wrong := bme280.New(NewTransport(&simBus{sim: sim, address: AddrSecondary}, AddrPrimary))
	assert.ErrorIs(t, wrong.Init(ctx), bme280.ErrBus)
}
