package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/bme280"
	"github.com/mklimuk/bme280/adapter"
	"github.com/mklimuk/bme280/bmetest"
	"github.com/mklimuk/bme280/cmd/bme280/console"
	"github.com/mklimuk/bme280/i2c"
	"github.com/mklimuk/bme280/spi"
)

// settings is what the --config file holds. Flags given on the command line
// take precedence.
type settings struct {
	Adapter   string        `yaml:"adapter"`
	Bus       string        `yaml:"bus"`
	Device    string        `yaml:"device"`
	SPIDevice string        `yaml:"spi_device"`
	Address   string        `yaml:"address"`
	GobotBus  int           `yaml:"gobot_bus"`
	Sensor    bme280.Config `yaml:"sensor"`
	Influx    influxConfig  `yaml:"influx"`
}

type influxConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

var deviceFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "YAML file with adapter and sensor settings",
	},
	&cli.StringFlag{
		Name:    "adapter",
		Aliases: []string{"a"},
		Value:   "generic",
		Usage:   "generic, mcp2221, nanopi or sim",
	},
	&cli.StringFlag{
		Name:  "bus",
		Value: "i2c",
		Usage: "i2c or spi",
	},
	&cli.StringFlag{
		Name:    "device",
		Aliases: []string{"d"},
		Value:   "/dev/i2c-1",
	},
	&cli.StringFlag{
		Name:  "spi-device",
		Value: "/dev/spidev0.0",
	},
	&cli.StringFlag{
		Name:  "addr",
		Value: "0x76",
		Usage: "I²C address, 0x76 or 0x77",
	},
	&cli.IntFlag{
		Name:  "gobot-bus",
		Value: 0,
		Usage: "bus number for the nanopi adapter",
	},
	&cli.StringFlag{Name: "humidity", Usage: "humidity oversampling (skip, 1x..16x)"},
	&cli.StringFlag{Name: "pressure", Usage: "pressure oversampling (skip, 1x..16x)"},
	&cli.StringFlag{Name: "temperature", Usage: "temperature oversampling (skip, 1x..16x)"},
	&cli.StringFlag{Name: "filter", Usage: "IIR filter coefficient (off, 2, 4, 8, 16)"},
	&cli.StringFlag{Name: "mode", Usage: "forced or normal"},
}

func loadSettings(c *cli.Context) (settings, error) {
	s := settings{
		Adapter:   c.String("adapter"),
		Bus:       c.String("bus"),
		Device:    c.String("device"),
		SPIDevice: c.String("spi-device"),
		Address:   c.String("addr"),
		GobotBus:  c.Int("gobot-bus"),
		Sensor:    bme280.DefaultConfig(),
	}
	if path := c.String("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return s, fmt.Errorf("could not read config: %w", err)
		}
		var file settings
		file.Sensor = s.Sensor
		if err := yaml.Unmarshal(data, &file); err != nil {
			return s, fmt.Errorf("could not parse config %s: %w", path, err)
		}
		s.Sensor = file.Sensor
		s.Influx = file.Influx
		overlay(c, "adapter", &s.Adapter, file.Adapter)
		overlay(c, "bus", &s.Bus, file.Bus)
		overlay(c, "device", &s.Device, file.Device)
		overlay(c, "spi-device", &s.SPIDevice, file.SPIDevice)
		overlay(c, "addr", &s.Address, file.Address)
		if !c.IsSet("gobot-bus") && file.GobotBus != 0 {
			s.GobotBus = file.GobotBus
		}
	}
	for _, f := range []struct {
		name string
		into interface{ UnmarshalText([]byte) error }
	}{
		{"humidity", &s.Sensor.Humidity},
		{"pressure", &s.Sensor.Pressure},
		{"temperature", &s.Sensor.Temperature},
		{"filter", &s.Sensor.Filter},
		{"mode", &s.Sensor.Mode},
	} {
		if !c.IsSet(f.name) {
			continue
		}
		if err := f.into.UnmarshalText([]byte(c.String(f.name))); err != nil {
			return s, fmt.Errorf("invalid --%s: %w", f.name, err)
		}
	}
	return s, nil
}

// overlay takes the file value unless the flag was given explicitly.
func overlay(c *cli.Context, flag string, dst *string, fromFile string) {
	if fromFile != "" && !c.IsSet(flag) {
		*dst = fromFile
	}
}

// session is an open bus with a driver on top.
type session struct {
	dev    *bme280.Dev
	closer func() error
}

func (s *session) Close() {
	if s.closer == nil {
		return
	}
	if err := s.closer(); err != nil {
		console.Errorf("error closing bus: %s", console.Red(err))
	}
}

func openSession(ctx context.Context, s settings) (*session, error) {
	addr, err := strconv.ParseUint(s.Address, 0, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", s.Address, err)
	}
	address := byte(addr)

	switch s.Adapter {
	case "sim":
		return &session{dev: bme280.New(bmetest.NewSim())}, nil
	case "mcp2221":
		if s.Bus != "i2c" {
			return nil, fmt.Errorf("mcp2221 only bridges i2c")
		}
		ad := adapter.NewMCP2221()
		if err := ad.Init(ctx); err != nil {
			return nil, fmt.Errorf("adapter initialization error: %w", err)
		}
		// the bridge reports a busy engine after an aborted transfer
		return &session{dev: bme280.New(i2c.NewTransport(ad, address, i2c.WithRetryLimit(3)))}, nil
	case "nanopi":
		npi := nanopi.NewNeoAdaptor()
		if err := npi.Connect(); err != nil {
			return nil, fmt.Errorf("adaptor connect error: %w", err)
		}
		var t bme280.BlockingTransport
		if s.Bus == "spi" {
			t, err = spi.OpenGobot(npi, s.GobotBus, 0, int64(spi.DefaultSpeed/physic.Hertz))
		} else {
			t, err = i2c.OpenGobot(npi, s.GobotBus, address)
		}
		if err != nil {
			_ = npi.Finalize()
			return nil, err
		}
		return &session{dev: bme280.New(bme280.FromBlocking(t)), closer: npi.Finalize}, nil
	case "generic":
		if s.Bus == "spi" {
			port, err := spi.Open(s.SPIDevice, 0)
			if err != nil {
				return nil, err
			}
			return &session{dev: bme280.New(bme280.FromBlocking(port)), closer: port.Close}, nil
		}
		bus, err := i2c.NewGenericBus(s.Device)
		if err != nil {
			return nil, err
		}
		return &session{dev: bme280.New(i2c.NewTransport(bus, address)), closer: bus.Close}, nil
	default:
		return nil, fmt.Errorf("unknown adapter %q", s.Adapter)
	}
}

// openAndInit opens the configured device and applies the sensor settings.
func openAndInit(c *cli.Context) (*session, settings, error) {
	s, err := loadSettings(c)
	if err != nil {
		return nil, s, console.Exit(console.ExitError, "%s", console.Red(err))
	}
	sess, err := openSession(c.Context, s)
	if err != nil {
		return nil, s, console.Exit(console.ExitError, "adapter initialization error: %s", console.Red(err))
	}
	if err := sess.dev.InitWithConfig(c.Context, s.Sensor); err != nil {
		sess.Close()
		return nil, s, exitErr("sensor initialization error", err)
	}
	return sess, s, nil
}

func exitErr(msg string, err error) cli.ExitCoder {
	code := console.ExitError
	switch {
	case errors.Is(err, bme280.ErrUnsupportedChip):
		code = console.ExitUnsupported
	case errors.Is(err, bme280.ErrBus):
		code = console.ExitBus
	}
	return console.Exit(code, "%s: %s", msg, console.Red(err))
}
