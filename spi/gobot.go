package spi

import (
	"fmt"

	"github.com/mklimuk/bme280"
	"gobot.io/x/gobot/v2/drivers/spi"
)

var _ bme280.BlockingTransport = &Gobot{}

// gobotOps is the subset of the gobot SPI connection the driver needs.
type gobotOps interface {
	ReadCommandData(command []byte, data []byte) error
	WriteBytes(data []byte) error
}

// Gobot runs register access over a gobot SPI connection.
type Gobot struct {
	conn gobotOps
	cmd  [1]byte
	w    [2]byte
}

func NewGobot(conn spi.Connection) *Gobot {
	return &Gobot{conn: conn}
}

// OpenGobot opens bus/chip in mode 0 through a gobot connector, e.g.
// nanopi.NewNeoAdaptor().
func OpenGobot(connector spi.Connector, bus, chip int, maxSpeed int64) (*Gobot, error) {
	conn, err := connector.GetSpiConnection(bus, chip, 0, 8, maxSpeed)
	if err != nil {
		return nil, fmt.Errorf("could not open spi connection %d.%d: %w", bus, chip, err)
	}
	return NewGobot(conn), nil
}

func (g *Gobot) ReadRegister(reg byte) (byte, error) {
	var buf [1]byte
	if err := g.ReadRegisters(reg, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (g *Gobot) ReadRegisters(reg byte, buf []byte) error {
	g.cmd[0] = ReadAddress(reg)
	if err := g.conn.ReadCommandData(g.cmd[:], buf); err != nil {
		return fmt.Errorf("spi read %#02x: %w", reg, err)
	}
	return nil
}

func (g *Gobot) WriteRegister(reg byte, value byte) error {
	g.w[0], g.w[1] = WriteAddress(reg), value
	if err := g.conn.WriteBytes(g.w[:]); err != nil {
		return fmt.Errorf("spi write %#02x: %w", reg, err)
	}
	return nil
}
