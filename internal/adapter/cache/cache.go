// Package cache provides a read-through disk cache for daily report files.
//
// The cache is not authoritative: it is safe to delete the directory and
// rebuild it from the network. Entries are keyed by the date-derived file
// name, so a rerun over the same range never re-fetches a day it already
// has.
package cache

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/covid-daily-etl/internal/domain"
	"github.com/couchcryptid/covid-daily-etl/internal/observability"
)

// Fetcher is the upstream a cache falls through to on a miss.
type Fetcher interface {
	FetchDaily(ctx context.Context, day time.Time) ([]byte, error)
}

// DiskCache wraps a Fetcher with a local directory of raw fetched files.
type DiskCache struct {
	inner   Fetcher
	dir     string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewDiskCache creates a cache decorator storing files under dir. The
// directory is created on first write, not up front.
func NewDiskCache(inner Fetcher, dir string, logger *slog.Logger, metrics *observability.Metrics) *DiskCache {
	return &DiskCache{
		inner:   inner,
		dir:     dir,
		logger:  logger,
		metrics: metrics,
	}
}

// FetchDaily serves the day from disk when present, otherwise fetches it
// and writes it back. Empty or unreadable entries count as misses so a
// truncated download never poisons reruns.
func (c *DiskCache) FetchDaily(ctx context.Context, day time.Time) ([]byte, error) {
	path := filepath.Join(c.dir, domain.FileName(day))

	if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return data, nil
	}
	c.metrics.CacheLookups.WithLabelValues("miss").Inc()

	data, err := c.inner.FetchDaily(ctx, day)
	if err != nil {
		return nil, err
	}

	if err := c.write(path, data); err != nil {
		// Cache writes are best-effort; the load continues on the fetched bytes.
		c.logger.Warn("cache write failed", "path", path, "error", err)
	}
	return data, nil
}

func (c *DiskCache) write(path string, data []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
