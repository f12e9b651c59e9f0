package i2c

import (
	"fmt"

	"github.com/mklimuk/bme280"
	"gobot.io/x/gobot/v2/drivers/i2c"
)

var _ bme280.BlockingTransport = &Gobot{}

// Gobot runs register access over a gobot I²C connection, which is already
// bound to the device address. Use it with bme280.NewBlocking.
type Gobot struct {
	conn i2c.Connection
}

func NewGobot(conn i2c.Connection) *Gobot {
	return &Gobot{conn: conn}
}

// OpenGobot opens the device at address on bus through a gobot connector,
// e.g. nanopi.NewNeoAdaptor().
func OpenGobot(connector i2c.Connector, bus int, address byte) (*Gobot, error) {
	conn, err := connector.GetI2cConnection(int(address), bus)
	if err != nil {
		return nil, fmt.Errorf("could not open i2c connection %d/%#02x: %w", bus, address, err)
	}
	return NewGobot(conn), nil
}

func (g *Gobot) ReadRegister(reg byte) (byte, error) {
	return g.conn.ReadByteData(reg)
}

func (g *Gobot) ReadRegisters(reg byte, buf []byte) error {
	return g.conn.ReadBlockData(reg, buf)
}

func (g *Gobot) WriteRegister(reg byte, value byte) error {
	return g.conn.WriteByteData(reg, value)
}

func (g *Gobot) Close() error {
	return g.conn.Close()
}
