package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/covid-daily-etl/internal/domain"
	"github.com/couchcryptid/covid-daily-etl/internal/observability"
)

var testDay = time.Date(2020, time.April, 12, 0, 0, 0, 0, time.UTC)

// countingFetcher records how often the network path is taken.
type countingFetcher struct {
	calls int
	data  []byte
	err   error
}

func (f *countingFetcher) FetchDaily(_ context.Context, _ time.Time) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCache(t *testing.T, inner Fetcher) (*DiskCache, string) {
	t.Helper()
	dir := t.TempDir()
	return NewDiskCache(inner, dir, discardLogger(), observability.NewMetricsForTesting()), dir
}

func TestFetchDaily_MissPopulatesDisk(t *testing.T) {
	inner := &countingFetcher{data: []byte("raw,csv\n1,2\n")}
	c, dir := newTestCache(t, inner)

	data, err := c.FetchDaily(context.Background(), testDay)
	require.NoError(t, err)
	assert.Equal(t, inner.data, data)
	assert.Equal(t, 1, inner.calls)

	onDisk, err := os.ReadFile(filepath.Join(dir, "04-12-2020.csv"))
	require.NoError(t, err)
	assert.Equal(t, inner.data, onDisk)
}

func TestFetchDaily_HitSkipsNetwork(t *testing.T) {
	inner := &countingFetcher{data: []byte("raw,csv\n1,2\n")}
	c, _ := newTestCache(t, inner)

	_, err := c.FetchDaily(context.Background(), testDay)
	require.NoError(t, err)

	data, err := c.FetchDaily(context.Background(), testDay)
	require.NoError(t, err)
	assert.Equal(t, inner.data, data)
	assert.Equal(t, 1, inner.calls, "second fetch must come from disk")
}

func TestFetchDaily_EmptyEntryIsMiss(t *testing.T) {
	inner := &countingFetcher{data: []byte("refetched")}
	c, dir := newTestCache(t, inner)

	// A truncated previous download left a zero-byte file.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "04-12-2020.csv"), nil, 0o644))

	data, err := c.FetchDaily(context.Background(), testDay)
	require.NoError(t, err)
	assert.Equal(t, "refetched", string(data))
	assert.Equal(t, 1, inner.calls)
}

func TestFetchDaily_FetchErrorPropagates(t *testing.T) {
	fetchErr := &domain.FetchError{Date: testDay, Err: errors.New("boom")}
	inner := &countingFetcher{err: fetchErr}
	c, dir := newTestCache(t, inner)

	_, err := c.FetchDaily(context.Background(), testDay)
	assert.ErrorIs(t, err, fetchErr)

	_, statErr := os.Stat(filepath.Join(dir, "04-12-2020.csv"))
	assert.True(t, os.IsNotExist(statErr), "failed fetches must not be cached")
}

func TestFetchDaily_UnwritableDirStillReturnsData(t *testing.T) {
	inner := &countingFetcher{data: []byte("payload")}
	dir := filepath.Join(t.TempDir(), "missing", "\x00bad")
	c := NewDiskCache(inner, dir, discardLogger(), observability.NewMetricsForTesting())

	data, err := c.FetchDaily(context.Background(), testDay)
	require.NoError(t, err, "cache writes are best-effort")
	assert.Equal(t, "payload", string(data))
}

func TestFetchDaily_RerunServesEveryDayFromDisk(t *testing.T) {
	inner := &countingFetcher{data: []byte("a,b\n1,2\n")}
	c, _ := newTestCache(t, inner)

	days := []time.Time{testDay, testDay.AddDate(0, 0, 1), testDay.AddDate(0, 0, 2)}
	for _, d := range days {
		_, err := c.FetchDaily(context.Background(), d)
		require.NoError(t, err)
	}
	require.Equal(t, 3, inner.calls)

	for _, d := range days {
		_, err := c.FetchDaily(context.Background(), d)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.calls, "rerun must be fully cache-served")
}
