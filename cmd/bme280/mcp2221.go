package main

import (
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/bme280/adapter"
	"github.com/mklimuk/bme280/cmd/bme280/console"
)

var mcp2221Flags = []cli.Flag{
	&cli.IntFlag{
		Name:  "index",
		Usage: "bridge index as listed by usb detect",
	},
}

var mcp2221Cmd = cli.Command{
	Name:  "mcp2221",
	Usage: "MCP2221 USB to I²C bridge utilities",
	Subcommands: cli.Commands{
		&mcp2221StatusCmd,
		&mcp2221ReleaseCmd,
		&mcp2221SpeedCmd,
	},
}

var mcp2221StatusCmd = cli.Command{
	Name:  "status",
	Flags: mcp2221Flags,
	Action: func(c *cli.Context) error {
		a := adapter.NewMCP2221(adapter.WithDeviceIndex(c.Int("index")))
		status, err := a.Status(c.Context)
		if err != nil {
			return console.Exit(console.ExitError, "adapter communication error: %s", console.Red(err))
		}
		return encodeYAML(status)
	},
}

var mcp2221ReleaseCmd = cli.Command{
	Name:  "release",
	Usage: "cancel a stuck I²C transfer",
	Flags: mcp2221Flags,
	Action: func(c *cli.Context) error {
		a := adapter.NewMCP2221(adapter.WithDeviceIndex(c.Int("index")))
		status, err := a.ReleaseBus(c.Context)
		if err != nil {
			return console.Exit(console.ExitError, "adapter communication error: %s", console.Red(err))
		}
		return encodeYAML(status)
	},
}

var mcp2221SpeedCmd = cli.Command{
	Name:  "speed",
	Usage: "set the I²C clock",
	Flags: append(append([]cli.Flag{}, mcp2221Flags...), &cli.IntFlag{
		Name:  "hz",
		Value: 100_000,
	}),
	Action: func(c *cli.Context) error {
		a := adapter.NewMCP2221(adapter.WithDeviceIndex(c.Int("index")))
		if err := a.SetSpeed(c.Context, c.Int("hz")); err != nil {
			return console.Exit(console.ExitError, "adapter communication error: %s", console.Red(err))
		}
		console.PInfof(console.PictoFinish, "i2c clock set to %s Hz", console.White(c.Int("hz")))
		return nil
	},
}

func encodeYAML(v any) error {
	enc := yaml.NewEncoder(console.Output())
	defer enc.Close()
	if err := enc.Encode(v); err != nil {
		return console.Exit(console.ExitError, "encoding error: %s", console.Red(err))
	}
	return nil
}
