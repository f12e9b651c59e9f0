package bme280

import (
	"context"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

// Transport is the register-level access the driver needs from a bus. Calls
// may park the calling goroutine until the bus completes the transfer.
type Transport interface {
	ReadRegister(ctx context.Context, reg byte) (byte, error)
	// ReadRegisters reads len(buf) consecutive registers starting at reg.
	ReadRegisters(ctx context.Context, reg byte, buf []byte) error
	WriteRegister(ctx context.Context, reg byte, value byte) error
}

// BlockingTransport is Transport for buses that run every transfer to
// completion on the calling goroutine and know nothing about contexts.
type BlockingTransport interface {
	ReadRegister(reg byte) (byte, error)
	ReadRegisters(reg byte, buf []byte) error
	WriteRegister(reg byte, value byte) error
}

// FromBlocking adapts a BlockingTransport. The context is not forwarded.
func FromBlocking(t BlockingTransport) Transport {
	return blockingTransport{t: t}
}

type blockingTransport struct {
	t BlockingTransport
}

func (b blockingTransport) ReadRegister(_ context.Context, reg byte) (byte, error) {
	return b.t.ReadRegister(reg)
}

func (b blockingTransport) ReadRegisters(_ context.Context, reg byte, buf []byte) error {
	return b.t.ReadRegisters(reg, buf)
}

func (b blockingTransport) WriteRegister(_ context.Context, reg byte, value byte) error {
	return b.t.WriteRegister(reg, value)
}

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

// I2CBus is a host I²C bus that can only issue separate write and read
// transfers to a 7-bit address.
type I2CBus interface {
	AddressableReader
	AddressableWriter
}

// I2CTx is implemented by buses able to write the register pointer and read
// the data back in one transaction (repeated start).
type I2CTx interface {
	TxToAddr(ctx context.Context, address byte, w, r []byte) error
}
