package importer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// CheckResult is the outcome of one availability check.
type CheckResult struct {
	AdapterID string `json:"adapter_id"`
	URL       string `json:"url"`
	Status    int    `json:"status"`
	Error     string `json:"error,omitempty"`
}

// OK reports a 2xx or 3xx answer.
func (r CheckResult) OK() bool { return r.Status >= 200 && r.Status < 400 }

// Checker sends HEAD requests to every feed source URL, on demand or
// periodically, and records their availability in the SourceDB.
type Checker struct {
	sources  *SourceDB
	logger   *slog.Logger
	interval time.Duration
	client   *http.Client
}

// NewChecker creates a Checker that will verify source URLs every interval.
func NewChecker(sources *SourceDB, logger *slog.Logger, interval time.Duration) *Checker {
	return &Checker{
		sources:  sources,
		logger:   logger,
		interval: interval,
		client: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Start runs an immediate check then repeats every interval until ctx is cancelled.
func (c *Checker) Start(ctx context.Context) {
	c.CheckAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CheckAll(ctx)
		}
	}
}

// CheckAll checks every source URL, persists and returns the results.
func (c *Checker) CheckAll(ctx context.Context) []CheckResult {
	sources, err := c.sources.ListSources()
	if err != nil {
		c.logger.Error("source check: list sources", "error", err)
		return nil
	}

	results := make([]CheckResult, 0, len(sources))
	var failed int
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}

		res := CheckResult{AdapterID: src.AdapterID, URL: src.SourceURL}
		status, checkErr := c.checkOne(ctx, src.SourceURL)
		res.Status = status
		if checkErr != nil {
			res.Error = checkErr.Error()
		}
		results = append(results, res)

		if err := c.sources.UpdateCheck(src.AdapterID, status, res.Error); err != nil {
			c.logger.Error("source check: update status", "adapter", src.AdapterID, "error", err)
		}
		if !res.OK() {
			failed++
			c.logger.Warn("source unavailable",
				"adapter", src.AdapterID,
				"url", src.SourceURL,
				"status", status,
				"error", res.Error,
			)
		}
	}

	if len(results) > 0 {
		c.logger.Info("source check complete", "total", len(results), "ok", len(results)-failed, "failed", failed)
	}
	return results
}

// checkOne performs a single HEAD request and returns the HTTP status code.
// On network error, status is 0.
func (c *Checker) checkOne(ctx context.Context, url string) (int, error) {
	if err := currentLimiter().wait(ctx, url); err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HEAD %s: %w", url, err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
