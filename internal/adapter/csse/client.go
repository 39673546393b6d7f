// Package csse fetches JHU CSSE daily report CSVs over HTTP.
package csse

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/covid-daily-etl/internal/domain"
	"github.com/couchcryptid/covid-daily-etl/internal/observability"
)

// Client downloads one daily report file per call. Fetches are idempotent
// reads; transient failures are retried with exponential backoff before
// the day is declared unfetchable.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a daily report client. baseURL must end with a slash;
// retries is the number of extra attempts after the first.
func NewClient(baseURL string, timeout time.Duration, retries int, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retries: retries,
		logger:  logger,
		metrics: metrics,
	}
}

// FetchDaily retrieves the raw CSV for one report date. Server errors and
// network failures are retried; a 4xx status is permanent because the
// dataset is static and the file either exists or it does not.
func (c *Client) FetchDaily(ctx context.Context, day time.Time) ([]byte, error) {
	url := c.baseURL + domain.FileName(day)
	start := time.Now()
	defer func() {
		c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}()

	// Exponential backoff: start at 500ms, double each retry, cap at 5s.
	backoff := 500 * time.Millisecond
	maxBackoff := 5 * time.Second

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.metrics.FetchRetries.Inc()
			c.logger.Warn("retrying fetch", "file", domain.FileName(day), "attempt", attempt, "error", lastErr)
			if !sleepWithContext(ctx, backoff) {
				break
			}
			backoff = nextBackoff(backoff, maxBackoff)
		}

		body, retryable, err := c.doRequest(ctx, url)
		if err == nil {
			c.metrics.FetchRequests.WithLabelValues("success").Inc()
			return body, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	if ctx.Err() != nil && lastErr == nil {
		lastErr = ctx.Err()
	}
	c.metrics.FetchRequests.WithLabelValues("error").Inc()
	return nil, &domain.FetchError{Date: day, Err: lastErr}
}

// doRequest performs a single GET. The second return value reports whether
// the failure is worth retrying.
func (c *Client) doRequest(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		err := fmt.Errorf("status %d: %s", resp.StatusCode, snippet)
		return nil, resp.StatusCode >= 500, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}
	return body, false, nil
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
