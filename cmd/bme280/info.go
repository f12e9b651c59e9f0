package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/bme280"
	"github.com/mklimuk/bme280/cmd/bme280/console"
)

type deviceInfo struct {
	ChipID      string             `yaml:"chip_id"`
	Mode        bme280.Mode        `yaml:"mode"`
	Status      bme280.Status      `yaml:"status"`
	Config      bme280.Config      `yaml:"config"`
	Conversion  string             `yaml:"max_conversion_time"`
	Calibration bme280.Calibration `yaml:"calibration"`
}

var infoCmd = cli.Command{
	Name:  "info",
	Usage: "print chip id, status and calibration constants",
	Flags: deviceFlags,
	Action: func(c *cli.Context) error {
		sess, s, err := openAndInit(c)
		if err != nil {
			return err
		}
		defer sess.Close()
		ctx := c.Context
		id, err := sess.dev.ChipID(ctx)
		if err != nil {
			return exitErr("could not read chip id", err)
		}
		mode, err := sess.dev.Mode(ctx)
		if err != nil {
			return exitErr("could not read mode", err)
		}
		st, err := sess.dev.Status(ctx)
		if err != nil {
			return exitErr("could not read status", err)
		}
		cal, _ := sess.dev.Calibration()
		console.PInfof(console.PictoChip, "BME280 %s", console.Green("ready"))
		return encodeYAML(deviceInfo{
			ChipID:      fmt.Sprintf("%#02x", id),
			Mode:        mode,
			Status:      st,
			Config:      s.Sensor,
			Conversion:  s.Sensor.MeasurementTime().String(),
			Calibration: cal,
		})
	},
}
