package main

import (
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/mklimuk/bme280/cmd/dev/cmd"
)

var (
	debugLog bool
	noColor  bool
	version  string
)

// buildVersion is the module version of the dev tool itself or, for a
// checkout build, the short vcs revision.
func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "latest"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return "latest"
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if dirty {
		rev += "-dirty"
	}
	return rev
}

func newLogger() *slog.Logger {
	charm := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "bme",
	})
	if noColor {
		charm.SetColorProfile(termenv.Ascii)
	} else {
		charm.SetColorProfile(termenv.TrueColor)
	}
	charm.SetLevel(log.InfoLevel)
	if debugLog {
		charm.SetReportCaller(true)
		charm.SetLevel(log.DebugLevel)
	}
	return slog.New(charm)
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "dev",
		Short:         "build/test tool for the bme280 driver",
		Long:          "Builds the bme280 cli and runs the unit, lint and integration checks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(c *cobra.Command, args []string) {
			slog.SetDefault(newLogger())
			slog.Debug("dev tool", "command", c.Name(), "version", version)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "disable colored log output")
	rootCmd.PersistentFlags().StringVar(&version, "version", buildVersion(), "version injected into the bme280 binary")

	rootCmd.AddCommand(
		cmd.BuildCmd(),
		cmd.TestCmd(),
		cmd.LintCmd(),
		cmd.IntegrationTestCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("dev command failed", "error", err)
		os.Exit(1)
	}
}
