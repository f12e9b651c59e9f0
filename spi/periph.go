package spi

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// DefaultSpeed is well under the 10 MHz the device accepts.
const DefaultSpeed = 1 * physic.MegaHertz

// Port is a Transport on a host SPI port opened through periph.io.
type Port struct {
	*Transport
	port spi.PortCloser
}

// Open loads the host drivers and connects to dev (e.g. "/dev/spidev0.0") in
// mode 0. A zero speed selects DefaultSpeed.
func Open(dev string, speed physic.Frequency) (*Port, error) {
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}
	for _, driver := range state.Loaded {
		slog.Debug("host driver loaded", "driver", driver.String())
	}
	p, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("could not open spi port: %w", err)
	}
	if speed == 0 {
		speed = DefaultSpeed
	}
	conn, err := p.Connect(speed, spi.Mode0, 8)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("could not connect to spi port %s: %w", p, err)
	}
	return &Port{
		Transport: NewTransport(conn),
		port:      p,
	}, nil
}

func (p *Port) Close() error {
	return p.port.Close()
}
