package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pyweekorg/cli/internal/logctx"
	"golang.org/x/sync/errgroup"
)

// Status is the per-file state within a run.
type Status string

const (
	StatusPending      Status = "pending"
	StatusFetching     Status = "fetching"
	StatusRetryPending Status = "retry_pending"
	StatusComplete     Status = "complete"
	StatusFailed       Status = "failed"
)

// FileResult records the terminal state of one manifest file.
type FileResult struct {
	File     File
	Status   Status
	Attempts int
	Err      error // first error encountered, nil when the file completed
}

// Outcome aggregates per-file results for a whole run, in manifest order.
type Outcome struct {
	Results []FileResult
}

// Success reports whether every file reached the complete state.
func (o *Outcome) Success() bool {
	return len(o.Failed()) == 0
}

// Failed returns the results for files that did not complete.
func (o *Outcome) Failed() []FileResult {
	var failed []FileResult

	for _, r := range o.Results {
		if r.Status != StatusComplete {
			failed = append(failed, r)
		}
	}

	return failed
}

// Completed returns the results for files that reached the complete state.
func (o *Outcome) Completed() []FileResult {
	var completed []FileResult

	for _, r := range o.Results {
		if r.Status == StatusComplete {
			completed = append(completed, r)
		}
	}

	return completed
}

// Coordinator drives resolver, planner and fetcher for every file of a
// challenge. It keeps no cross-invocation memory: rerunning the whole
// operation is the sole recovery mechanism, with the plan reconstructed from
// whatever the previous run left on disk.
type Coordinator struct {
	resolver    Resolver
	fetcher     *Fetcher
	maxRetries  int
	retryWait   time.Duration
	maxParallel int
}

func NewCoordinator(resolver Resolver, fetcher *Fetcher, maxRetries int, retryWait time.Duration, maxParallel int) *Coordinator {
	if maxParallel < 1 {
		maxParallel = 1
	}

	return &Coordinator{
		resolver:    resolver,
		fetcher:     fetcher,
		maxRetries:  maxRetries,
		retryWait:   retryWait,
		maxParallel: maxParallel,
	}
}

// Run downloads every file of the challenge into dir and reports the outcome.
// Files are processed independently: one file exhausting its retries does not
// halt the others. Only a manifest resolution failure aborts the run.
func (c *Coordinator) Run(ctx context.Context, challenge int, dir string) (*Outcome, error) {
	logger := logctx.LoggerFromContext(ctx)

	manifest, err := c.resolver.Resolve(ctx, challenge)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve downloads for challenge %d: %w", challenge, err)
	}

	plan, err := BuildPlan(manifest, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to plan downloads: %w", err)
	}

	logger.Info("starting download run",
		"challenge", challenge,
		"target_dir", dir,
		"file_count", len(plan))

	results := make([]FileResult, len(plan))
	sem := make(chan struct{}, c.maxParallel)

	var wg errgroup.Group

	for i := range plan {
		entry := plan[i]
		sem <- struct{}{}

		wg.Go(func() error {
			defer func() { <-sem }() // release the slot

			results[i] = c.fetchFile(ctx, entry, dir)

			return nil
		})
	}

	_ = wg.Wait()

	outcome := &Outcome{Results: results}

	logger.Info("download run finished",
		"challenge", challenge,
		"completed", len(outcome.Completed()),
		"failed", len(outcome.Failed()))

	return outcome, ctx.Err()
}

// fetchFile runs the per-file state machine: pending, fetching, then either
// complete, retry-pending (bounded) or failed.
func (c *Coordinator) fetchFile(ctx context.Context, entry PlanEntry, dir string) FileResult {
	logger := logctx.LoggerFromContext(ctx).With("file", entry.File.Name)

	result := FileResult{File: entry.File, Status: StatusPending}

	if entry.State == StateComplete {
		logger.Debug("file already downloaded, skipping")

		result.Status = StatusComplete

		return result
	}

	var (
		offset          = entry.ResumeOffset
		retries         int
		zeroRestarts    int
		mismatchRetries int
		firstErr        error
	)

	for {
		result.Status = StatusFetching
		result.Attempts++

		size, err := c.fetcher.Fetch(ctx, entry.File, offset, dir)
		if err == nil {
			result.Status = StatusComplete

			return result
		}

		if firstErr == nil {
			firstErr = err
		}

		var (
			retryable *RetryableError
			fatal     *FatalFetchError
			mismatch  *CompletionMismatchError
		)

		switch {
		case ctx.Err() != nil || errors.Is(err, context.Canceled):
			result.Status = StatusFailed
			result.Err = firstErr

			return result
		case errors.As(err, &retryable):
			retries++
			if retries > c.maxRetries {
				break
			}

			// Progress from the failed attempt is preserved: resume from the
			// then-current on-disk size, not the original plan's offset.
			offset = size
			result.Status = StatusRetryPending

			logger.Warn("transient failure, retrying", "attempt", result.Attempts, "offset", offset, "err", err)

			if !c.wait(ctx) {
				break
			}

			continue
		case errors.As(err, &fatal):
			zeroRestarts++
			if zeroRestarts > 1 {
				break
			}

			offset = 0
			result.Status = StatusRetryPending

			logger.Warn("fetch rejected, restarting from zero", "err", err)

			continue
		case errors.As(err, &mismatch):
			mismatchRetries++
			if mismatchRetries > 1 {
				break
			}

			if size > entry.File.Size {
				offset = 0
			} else {
				offset = size
			}

			result.Status = StatusRetryPending

			logger.Warn("short stream, retrying", "offset", offset, "err", err)

			continue
		}

		result.Status = StatusFailed
		result.Err = firstErr

		logger.Error("giving up on file", "attempts", result.Attempts, "err", firstErr)

		return result
	}
}

// wait blocks for the configured retry delay, honouring cancellation.
func (c *Coordinator) wait(ctx context.Context) bool {
	if c.retryWait <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(c.retryWait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
