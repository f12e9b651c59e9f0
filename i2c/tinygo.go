package i2c

import (
	"github.com/mklimuk/bme280"
	"tinygo.org/x/drivers"
)

var _ bme280.BlockingTransport = &TinyGo{}

// TinyGo runs register access over a tinygo drivers.I2C bus.
type TinyGo struct {
	bus     drivers.I2C
	address uint16
	w       [2]byte
}

func NewTinyGo(bus drivers.I2C, address byte) *TinyGo {
	return &TinyGo{bus: bus, address: uint16(address)}
}

func (t *TinyGo) ReadRegister(reg byte) (byte, error) {
	var r [1]byte
	if err := t.ReadRegisters(reg, r[:]); err != nil {
		return 0, err
	}
	return r[0], nil
}

func (t *TinyGo) ReadRegisters(reg byte, buf []byte) error {
	t.w[0] = reg
	return t.bus.Tx(t.address, t.w[:1], buf)
}

func (t *TinyGo) WriteRegister(reg byte, value byte) error {
	t.w[0], t.w[1] = reg, value
	return t.bus.Tx(t.address, t.w[:], nil)
}
