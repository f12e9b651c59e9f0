package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/gophertribe/devtool/test"
	"github.com/spf13/cobra"
)

func TestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Run unit tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := test.Test(); err != nil {
				return fmt.Errorf("failed to run tests: %w", err)
			}
			return nil
		},
	}
}

func LintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Run linting",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := test.Lint(); err != nil {
				return fmt.Errorf("failed to run linting: %w", err)
			}
			return nil
		},
	}
}

// IntegrationTestCmd runs the integration suite; on a host with a sensor
// attached pass --device to also run the built cli against it.
func IntegrationTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integration-test",
		Short: "Run integration testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := test.Integ(); err != nil {
				return fmt.Errorf("failed to run integration testing: %w", err)
			}
			adapter, err := cmd.Flags().GetString("adapter")
			if err != nil {
				return fmt.Errorf("could not get adapter flag: %w", err)
			}
			device, err := cmd.Flags().GetString("device")
			if err != nil {
				return fmt.Errorf("could not get device flag: %w", err)
			}
			if _, err := os.Stat(binary); err != nil {
				slog.Warn("cli not built, skipping smoke run", "binary", binary)
				return nil
			}
			run := exec.CommandContext(cmd.Context(), binary, "measure", "--adapter", adapter, "--device", device, "--format", "yaml")
			run.Stdout = os.Stdout
			run.Stderr = os.Stderr
			slog.Info("running cli smoke test", "adapter", adapter, "device", device)
			if err := run.Run(); err != nil {
				return fmt.Errorf("cli smoke test failed: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("adapter", "sim", "adapter for the cli smoke run")
	cmd.Flags().String("device", "/dev/i2c-1", "i2c device for the cli smoke run")
	return cmd
}
