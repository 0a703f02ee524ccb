package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	"github.com/pyweekorg/cli/internal/fetch"
	"github.com/pyweekorg/cli/internal/pyweek"
	"github.com/spf13/cobra"
)

var downloadDir string

var downloadCmd = &cobra.Command{
	Use:   "download <challenge>",
	Short: "Download all PyWeek entries for a competition",
	Long: "Download all PyWeek entries for a competition. Interrupted runs can be " +
		"rerun against the same directory: complete files are skipped and partial " +
		"files are resumed from where they stopped.",
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadDir, "directory", "d", "",
		"the directory to download into (default: a directory named after the challenge)")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	challenge, err := strconv.Atoi(args[0])
	if err != nil || challenge <= 0 {
		return fmt.Errorf("invalid challenge number %q", args[0])
	}

	dir := downloadDir
	if dir == "" {
		dir = strconv.Itoa(challenge)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver := pyweek.NewClient(cfg.BaseURL, cfg.HTTPTimeout, cfg.RetryAttempts)
	fetcher := fetch.NewFetcher(cfg.HTTPTimeout)
	coordinator := fetch.NewCoordinator(resolver, fetcher, cfg.RetryAttempts, cfg.RetryWait, cfg.MaxParallel)

	outcome, err := coordinator.Run(ctx, challenge, dir)
	if err != nil {
		var notFound *fetch.NotFoundError
		if errors.As(err, &notFound) {
			return notFound
		}

		return err
	}

	if failed := outcome.Failed(); len(failed) > 0 {
		for _, r := range failed {
			color.Red("  %s: %v", r.File.Name, r.Err)
		}

		return fmt.Errorf("%d errors occurred while downloading files", len(failed))
	}

	color.Green("All files downloaded successfully.")

	return nil
}
