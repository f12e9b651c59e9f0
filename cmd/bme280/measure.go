package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/bme280"
	"github.com/mklimuk/bme280/cmd/bme280/console"
)

var outputFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "text or yaml",
	},
	&cli.BoolFlag{
		Name:  "fixed",
		Usage: "use integer compensation (hundredths)",
	},
	&cli.BoolFlag{
		Name:  "raw",
		Usage: "print integer compensation output unscaled",
	},
}

var measureCmd = cli.Command{
	Name:    "measure",
	Aliases: []string{"m"},
	Usage:   "initialize the sensor and take one measurement",
	Flags:   append(append([]cli.Flag{}, deviceFlags...), outputFlags...),
	Action: func(c *cli.Context) error {
		sess, _, err := openAndInit(c)
		if err != nil {
			return err
		}
		defer sess.Close()
		s, err := takeSample(c.Context, sess.dev, c.Bool("fixed"), c.Bool("raw"))
		if err != nil {
			return exitErr("measurement error", err)
		}
		return printSample(c.String("format"), s)
	},
}

// sample is one measurement in whichever representation was requested.
type sample struct {
	out    any
	fields map[string]any
}

func takeSample(ctx context.Context, dev *bme280.Dev, fixed, raw bool) (sample, error) {
	fields := map[string]any{}
	switch {
	case raw:
		m, err := dev.MeasureFixedRaw(ctx)
		if err != nil {
			return sample{}, err
		}
		if m.Temperature != nil {
			fields["temperature"] = float64(*m.Temperature) / 100
		}
		if m.Pressure != nil {
			fields["pressure"] = float64(*m.Pressure) / 256
		}
		if m.Humidity != nil {
			fields["humidity"] = float64(*m.Humidity) / 1024
		}
		return sample{out: m, fields: fields}, nil
	case fixed:
		m, err := dev.MeasureFixed(ctx)
		if err != nil {
			return sample{}, err
		}
		for name, v := range map[string]*bme280.Fixed{"temperature": m.Temperature, "pressure": m.Pressure, "humidity": m.Humidity} {
			if v != nil {
				fields[name] = v.Float()
			}
		}
		return sample{out: m, fields: fields}, nil
	default:
		m, err := dev.Measure(ctx)
		if err != nil {
			return sample{}, err
		}
		for name, v := range map[string]*float64{"temperature": m.Temperature, "pressure": m.Pressure, "humidity": m.Humidity} {
			if v != nil {
				fields[name] = *v
			}
		}
		return sample{out: m, fields: fields}, nil
	}
}

func printSample(format string, s sample) error {
	switch format {
	case "yaml":
		return encodeYAML(s.out)
	case "text":
		switch m := s.out.(type) {
		case bme280.Measurements:
			printLine(console.PictoThermometer, m.Temperature, "%.2f °C")
			printLine(console.PictoPressure, m.Pressure, "%.2f Pa")
			printLine(console.PictoHumidity, m.Humidity, "%.2f %%RH")
		case bme280.MeasurementsFixed:
			printLine(console.PictoThermometer, m.Temperature, "%s °C")
			printLine(console.PictoPressure, m.Pressure, "%s Pa")
			printLine(console.PictoHumidity, m.Humidity, "%s %%RH")
		case bme280.MeasurementsFixedRaw:
			printLine(console.PictoThermometer, m.Temperature, "%d (0.01 °C)")
			printLine(console.PictoPressure, m.Pressure, "%d (Q24.8 Pa)")
			printLine(console.PictoHumidity, m.Humidity, "%d (Q22.10 %%RH)")
		}
	default:
		return console.Exit(console.ExitError, "unknown format %q", format)
	}
	return nil
}

func printLine[T any](picto string, v *T, format string) {
	if v == nil {
		console.PInfof(picto, "%s", console.Yellow("skipped"))
		return
	}
	console.PInfof(picto, "%s", console.White(fmt.Sprintf(format, *v)))
}
