package pyweek

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/pyweekorg/cli/internal/fetch"
	"github.com/pyweekorg/cli/internal/logctx"
)

// Client talks to the pyweek.org JSON API and resolves challenge manifests.
type Client struct {
	baseURL    string
	client     *http.Client
	maxTries   uint
	maxElapsed time.Duration
}

func NewClient(baseURL string, timeout time.Duration, retries int) *Client {
	if retries < 0 {
		retries = 0
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		client:     &http.Client{Timeout: timeout},
		maxTries:   uint(retries) + 1,
		maxElapsed: 2 * time.Minute,
	}
}

// downloadsDocument mirrors {base}/{challenge}/downloads.json: a JSON object
// keyed by entry name, each value the list of files published for that entry.
type downloadsDocument map[string][]struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// Resolve fetches the download index for a challenge and flattens it into one
// manifest. Each file is placed under a directory named after its entry, so a
// manifest name looks like "my-game/game.zip". Transport failures and 5xx
// responses are retried with exponential backoff; a 404 means the challenge
// has no published downloads and is surfaced immediately.
func (c *Client) Resolve(ctx context.Context, challenge int) (fetch.Manifest, error) {
	logger := logctx.LoggerFromContext(ctx).With("challenge", challenge)

	url := fmt.Sprintf("%s/%d/downloads.json", c.baseURL, challenge)

	operation := func() (downloadsDocument, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
		}

		resp, err := c.client.Do(req)
		if err != nil {
			logger.Debug("download index request failed", "err", err)

			return nil, fmt.Errorf("failed to get download index: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, backoff.Permanent(&fetch.NotFoundError{Challenge: challenge})
		case resp.StatusCode >= http.StatusInternalServerError:
			logger.Debug("download index server error", "status", resp.Status)

			return nil, fmt.Errorf("server error: %s", resp.Status)
		case resp.StatusCode != http.StatusOK:
			return nil, backoff.Permanent(fmt.Errorf("unexpected status: %s", resp.Status))
		}

		var doc downloadsDocument
		if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to decode download index: %w", err))
		}

		return doc, nil
	}

	doc, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithMaxElapsedTime(c.maxElapsed),
	)
	if err != nil {
		var notFound *fetch.NotFoundError
		if errors.As(err, &notFound) {
			return nil, notFound
		}

		return nil, &fetch.ServiceUnavailableError{URL: url, Err: err}
	}

	manifest := flatten(doc)

	logger.Debug("resolved manifest", "entry_count", len(doc), "file_count", len(manifest))

	return manifest, nil
}

// flatten turns the keyed download index into a single manifest, ordered by
// entry name so runs are deterministic.
func flatten(doc downloadsDocument) fetch.Manifest {
	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}

	sort.Strings(names)

	var manifest fetch.Manifest

	for _, name := range names {
		dir := SanitizeName(name)
		for _, f := range doc[name] {
			manifest = append(manifest, fetch.File{
				Name: path.Join(dir, f.Name),
				Size: f.Size,
				URL:  f.URL,
			})
		}
	}

	return manifest
}

var nonWord = regexp.MustCompile(`\W+`)

// SanitizeName strips an entry name of characters that might be invalid in
// paths: "What the Frog!?" becomes "what-the-frog".
func SanitizeName(name string) string {
	return strings.Trim(nonWord.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
