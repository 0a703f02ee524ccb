package upgrade

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	version "github.com/hashicorp/go-version"
	"github.com/pyweekorg/cli/internal/logctx"
)

// Notifier checks the package index for a newer release of this CLI. It is
// purely advisory: callers invoke it once at startup and a failure or a stale
// installation never affects a download.
type Notifier struct {
	indexURL string
	current  string
	client   *http.Client
}

func NewNotifier(indexURL, current string, timeout time.Duration) *Notifier {
	return &Notifier{
		indexURL: indexURL,
		current:  current,
		client:   &http.Client{Timeout: timeout},
	}
}

// Check returns the newer published version, or the empty string when the
// installed CLI is up to date.
func (n *Notifier) Check(ctx context.Context) (string, error) {
	logger := logctx.LoggerFromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.indexURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get package index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status from package index: %s", resp.Status)
	}

	var doc struct {
		Info struct {
			Version string `json:"version"`
		} `json:"info"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("failed to decode package index: %w", err)
	}

	latest, err := version.NewVersion(doc.Info.Version)
	if err != nil {
		return "", fmt.Errorf("failed to parse published version %q: %w", doc.Info.Version, err)
	}

	installed, err := version.NewVersion(n.current)
	if err != nil {
		return "", fmt.Errorf("failed to parse installed version %q: %w", n.current, err)
	}

	if latest.GreaterThan(installed) {
		logger.Debug("newer release published", "installed", installed, "latest", latest)

		return latest.String(), nil
	}

	return "", nil
}
