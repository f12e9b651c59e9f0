package main

import (
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/bme280/cmd/bme280/console"
)

var resetCmd = cli.Command{
	Name:  "reset",
	Usage: "soft reset the sensor",
	Flags: append(append([]cli.Flag{}, deviceFlags...), &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "do not ask for confirmation",
	}),
	Action: func(c *cli.Context) error {
		if !c.Bool("yes") {
			ok, err := console.Confirm("reset the sensor? the running configuration will be lost")
			if err != nil {
				return console.Exit(console.ExitError, "prompt error: %s", console.Red(err))
			}
			if !ok {
				console.PInfof(console.PictoStop, "aborted")
				return nil
			}
		}
		s, err := loadSettings(c)
		if err != nil {
			return console.Exit(console.ExitError, "%s", console.Red(err))
		}
		sess, err := openSession(c.Context, s)
		if err != nil {
			return console.Exit(console.ExitError, "adapter initialization error: %s", console.Red(err))
		}
		defer sess.Close()
		if err := sess.dev.SoftReset(c.Context); err != nil {
			return exitErr("reset error", err)
		}
		console.PInfof(console.PictoFinish, "sensor reset")
		return nil
	},
}
