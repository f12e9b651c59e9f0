package i2c

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mklimuk/bme280"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

var _ bme280.I2CBus = &GenericBus{}
var _ bme280.I2CTx = &GenericBus{}

// GenericBus is a host I²C bus opened through periph.io (/dev/i2c-N on Linux).
type GenericBus struct {
	bus i2c.BusCloser
}

// NewGenericBus loads the host drivers and opens dev. An empty name opens the
// first bus found.
func NewGenericBus(dev string) (*GenericBus, error) {
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}
	for _, driver := range state.Loaded {
		slog.Debug("host driver loaded", "driver", driver.String())
	}
	bus, err := i2creg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("could not open i2c bus: %w", err)
	}
	return &GenericBus{
		bus: bus,
	}, nil
}

func (b *GenericBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	err := b.bus.Tx(uint16(address), nil, buffer)
	if err != nil {
		return fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *GenericBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	err := b.bus.Tx(uint16(address), buffer, nil)
	if err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	return nil
}

// TxToAddr writes w and reads r with a repeated start in between.
func (b *GenericBus) TxToAddr(ctx context.Context, address byte, w, r []byte) error {
	err := b.bus.Tx(uint16(address), w, r)
	if err != nil {
		return fmt.Errorf("could not transact with i2c device %x: %w", address, err)
	}
	return nil
}

// SetSpeed sets the bus clock. The BME280 accepts up to 3.4 MHz.
func (b *GenericBus) SetSpeed(f physic.Frequency) error {
	return b.bus.SetSpeed(f)
}

func (b *GenericBus) Release(ctx context.Context) error {
	return nil
}

func (b *GenericBus) Close() error {
	return b.bus.Close()
}

func (b *GenericBus) String() string {
	return b.bus.String()
}
