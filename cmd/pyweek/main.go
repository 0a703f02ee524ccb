package main

import (
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/pyweekorg/cli/internal/config"
	"github.com/pyweekorg/cli/internal/logctx"
	"github.com/pyweekorg/cli/internal/upgrade"
	"github.com/spf13/cobra"
)

const appVersion = "0.5.3"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "pyweek",
	Short:         "Command line interface to PyWeek",
	Long:          "Download and verify entries for a PyWeek challenge.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		cfg, err = config.LoadConfig()
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
		slog.SetDefault(logger)

		ctx := logctx.WithLogger(cmd.Context(), logger)
		cmd.SetContext(ctx)

		notifyUpgrade(cmd)

		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

// notifyUpgrade runs the advisory version check once at startup. A stale
// installation prints a notice; nothing here affects command correctness.
func notifyUpgrade(cmd *cobra.Command) {
	if cfg.SkipVersionCheck || cmd.Name() == "version" {
		return
	}

	ctx := cmd.Context()
	logger := logctx.LoggerFromContext(ctx)

	newer, err := upgrade.NewNotifier(cfg.PyPIURL, appVersion, cfg.HTTPTimeout).Check(ctx)
	if err != nil {
		logger.Debug("version check failed", "err", err)

		return
	}

	if newer != "" {
		color.Red("There is a newer version %s of this tool. Please update before continuing.", newer)
	}
}
