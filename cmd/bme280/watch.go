package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api/write"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/bme280/cmd/bme280/console"
)

var watchCmd = cli.Command{
	Name:  "watch",
	Usage: "measure periodically, optionally writing points to InfluxDB",
	Flags: append(append([]cli.Flag{}, deviceFlags...), append(outputFlags,
		&cli.DurationFlag{
			Name:    "interval",
			Aliases: []string{"i"},
			Value:   time.Second,
		},
		&cli.IntFlag{
			Name:  "count",
			Usage: "stop after count measurements (0 runs until interrupted)",
		},
		&cli.StringFlag{Name: "influx-url", Usage: "InfluxDB 2 server, e.g. http://localhost:8086"},
		&cli.StringFlag{Name: "influx-token", EnvVars: []string{"INFLUX_TOKEN"}},
		&cli.StringFlag{Name: "influx-org"},
		&cli.StringFlag{Name: "influx-bucket", Value: "environment"},
		&cli.StringFlag{Name: "measurement", Value: "bme280", Usage: "InfluxDB measurement name"},
		&cli.StringFlag{Name: "name", Usage: "value of the name tag"},
	)...),
	Action: func(c *cli.Context) error {
		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
		defer stop()

		sess, s, err := openAndInit(c)
		if err != nil {
			return err
		}
		defer sess.Close()

		sink, err := newInfluxSink(c, s.Influx)
		if err != nil {
			return console.Exit(console.ExitError, "%s", console.Red(err))
		}
		if sink != nil {
			defer sink.Close()
		}

		ticker := time.NewTicker(c.Duration("interval"))
		defer ticker.Stop()
		count := c.Int("count")
		for i := 0; count == 0 || i < count; i++ {
			smp, err := takeSample(ctx, sess.dev, c.Bool("fixed"), c.Bool("raw"))
			if err != nil {
				if ctx.Err() != nil {
					break
				}
				return exitErr("measurement error", err)
			}
			if err := printSample(c.String("format"), smp); err != nil {
				return err
			}
			if sink != nil {
				if err := sink.Write(ctx, smp.fields, time.Now()); err != nil {
					slog.Error("could not write point", "error", err)
				}
			}
			if count != 0 && i == count-1 {
				break
			}
			select {
			case <-ctx.Done():
				console.PInfof(console.PictoFinish, "stopped")
				return nil
			case <-ticker.C:
			}
		}
		return nil
	},
}

type influxSink struct {
	client      influxdb2.Client
	writer      influxWriter
	measurement string
	tags        map[string]string
}

type influxWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// newInfluxSink returns nil when no server is configured. Flags override
// the influx section of the config file.
func newInfluxSink(c *cli.Context, cfg influxConfig) (*influxSink, error) {
	pick(c, "influx-url", &cfg.URL)
	pick(c, "influx-token", &cfg.Token)
	pick(c, "influx-org", &cfg.Org)
	pick(c, "influx-bucket", &cfg.Bucket)
	if cfg.URL == "" {
		return nil, nil
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("influx bucket is required")
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	tags := map[string]string{}
	if name := c.String("name"); name != "" {
		tags["name"] = name
	}
	slog.Info("writing to influxdb", "url", cfg.URL, "org", cfg.Org, "bucket", cfg.Bucket)
	return &influxSink{
		client:      client,
		writer:      client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		measurement: c.String("measurement"),
		tags:        tags,
	}, nil
}

// pick takes the flag value when it was given or nothing came from the file.
func pick(c *cli.Context, flag string, dst *string) {
	if c.IsSet(flag) || *dst == "" {
		*dst = c.String(flag)
	}
}

func (s *influxSink) Write(ctx context.Context, fields map[string]any, t time.Time) error {
	if len(fields) == 0 {
		return nil
	}
	pt := influxdb2.NewPoint(s.measurement, s.tags, fields, t)
	return s.writer.WritePoint(ctx, pt)
}

func (s *influxSink) Close() {
	s.client.Close()
}
