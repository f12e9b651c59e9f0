// Package i2c carries BME280 register access over I²C.
//
// A register read writes the start address and reads the burst back; a
// register write sends the address followed by the value. The register
// pointer auto-increments on reads.
package i2c

import (
	"context"
	"errors"
	"fmt"

	"github.com/mklimuk/bme280"
)

const (
	// AddrPrimary is used with SDO tied to GND.
	AddrPrimary byte = 0x76
	// AddrSecondary is used with SDO tied to VDDIO.
	AddrSecondary byte = 0x77
)

var _ bme280.Transport = &Transport{}

type TransportOpts struct {
	RetryLimit int
}

type TransportOpt func(*TransportOpts)

// WithRetryLimit sets how many times a transfer is attempted when the bus
// reports bme280.ErrBusBusy. The bus is released between attempts. By default
// a transfer is attempted once and every error is returned as is.
func WithRetryLimit(n int) TransportOpt {
	return func(o *TransportOpts) {
		o.RetryLimit = n
	}
}

// Transport addresses a BME280 at a fixed 7-bit address on an I2CBus. When
// the bus also implements bme280.I2CTx, reads are issued as one combined
// transaction.
type Transport struct {
	bus        bme280.I2CBus
	address    byte
	retryLimit int
}

func NewTransport(bus bme280.I2CBus, address byte, opts ...TransportOpt) *Transport {
	o := TransportOpts{
		RetryLimit: 1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.RetryLimit < 1 {
		o.RetryLimit = 1
	}
	return &Transport{
		bus:        bus,
		address:    address,
		retryLimit: o.RetryLimit,
	}
}

func (t *Transport) Address() byte {
	return t.address
}

func (t *Transport) ReadRegister(ctx context.Context, reg byte) (byte, error) {
	var buf [1]byte
	if err := t.ReadRegisters(ctx, reg, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (t *Transport) ReadRegisters(ctx context.Context, reg byte, buf []byte) error {
	return t.retry(ctx, func() error {
		if tx, ok := t.bus.(bme280.I2CTx); ok {
			return tx.TxToAddr(ctx, t.address, []byte{reg}, buf)
		}
		err := t.bus.WriteToAddr(ctx, t.address, []byte{reg})
		if err != nil {
			return fmt.Errorf("could not set register pointer %#02x: %w", reg, err)
		}
		return t.bus.ReadFromAddr(ctx, t.address, buf)
	})
}

func (t *Transport) WriteRegister(ctx context.Context, reg byte, value byte) error {
	return t.retry(ctx, func() error {
		return t.bus.WriteToAddr(ctx, t.address, []byte{reg, value})
	})
}

func (t *Transport) retry(ctx context.Context, op func() error) error {
	err := op()
	if t.retryLimit == 1 {
		return err
	}
	for i := 1; i < t.retryLimit && errors.Is(err, bme280.ErrBusBusy); i++ {
		// try to release the bus
		_ = t.bus.Release(ctx)
		err = op()
	}
	if errors.Is(err, bme280.ErrBusBusy) {
		return fmt.Errorf("retry limit reached: %w", err)
	}
	return err
}
