// Package pipeline assembles the daily report series into one table.
//
// The load runs in two stages. The fetch stage retrieves every day's raw
// file with bounded parallelism; fetches are read-only and independent of
// each other, so order does not matter. The fold stage is strictly
// sequential in date order, because each day's schema check runs against
// the column set the accumulator has at that point in the series.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/covid-daily-etl/internal/config"
	"github.com/couchcryptid/covid-daily-etl/internal/domain"
	"github.com/couchcryptid/covid-daily-etl/internal/observability"
)

// Fetcher retrieves the raw CSV bytes for one report date.
type Fetcher interface {
	FetchDaily(ctx context.Context, day time.Time) ([]byte, error)
}

// Loader fetches, reconciles, and folds the configured date range into a
// single table. A Loader holds no table state between runs; Load returns
// a finished snapshot each time.
type Loader struct {
	fetcher     Fetcher
	logger      *slog.Logger
	metrics     *observability.Metrics
	start       time.Time
	end         time.Time
	cutover     time.Time
	concurrency int
	ready       atomic.Bool
}

// New creates a Loader over the configured date range.
func New(fetcher Fetcher, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		fetcher:     fetcher,
		logger:      logger,
		metrics:     metrics,
		start:       cfg.StartDate,
		end:         cfg.EndDate,
		cutover:     cfg.SchemaCutover,
		concurrency: cfg.FetchConcurrency,
	}
}

// CheckReadiness returns nil once the loader has folded at least one day,
// or an error describing why the service is not yet ready.
func (l *Loader) CheckReadiness(_ context.Context) error {
	if !l.ready.Load() {
		return errors.New("loader has not folded any daily files yet")
	}
	return nil
}

// Load runs one complete assembly: fetch all days, fold them in date
// order, sort by (region, date), compute deltas. Any single day's fetch,
// parse, or schema failure aborts the whole load with no partial table —
// the report downstream must fail outright rather than ship silent gaps.
func (l *Loader) Load(ctx context.Context) (*domain.Table, error) {
	days := daysBetween(l.start, l.end)

	l.metrics.LoadRunning.Set(1)
	defer l.metrics.LoadRunning.Set(0)
	l.logger.Info("load started",
		"start", l.start.Format(config.DateLayout),
		"end", l.end.Format(config.DateLayout),
		"days", len(days),
		"concurrency", l.concurrency,
	)

	raws, err := l.fetchAll(ctx, days)
	if err != nil {
		return nil, err
	}

	records, err := l.fold(days, raws)
	if err != nil {
		return nil, err
	}

	domain.SortByRegionDate(records)
	records = domain.ComputeDeltas(records)

	table := domain.NewTable(records)
	l.logger.Info("load complete", "days", len(days), "rows", len(records))
	return table, nil
}

// fetchAll retrieves every day's raw file with bounded parallelism,
// returning payloads positionally aligned with days. The first failure
// cancels the remaining fetches.
func (l *Loader) fetchAll(ctx context.Context, days []time.Time) ([][]byte, error) {
	raws := make([][]byte, len(days))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, day := range days {
		g.Go(func() error {
			data, err := l.fetcher.FetchDaily(ctx, day)
			if err != nil {
				return err
			}
			raws[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return raws, nil
}

// fold walks the days in date order, validating each file's schema
// against the accumulator's current column set and appending its rows.
// Rows never collide — each (region, date) pair is unique per file — so
// the outer-join union of the upstream report degenerates to a row append
// once the columns are reconciled.
func (l *Loader) fold(days []time.Time, raws [][]byte) ([]domain.DailyRecord, error) {
	var accumColumns []string
	var records []domain.DailyRecord

	for i, day := range days {
		header, rows, err := domain.ParseDailyCSV(day, raws[i])
		if err != nil {
			return nil, err
		}

		variant := domain.DetectSchema(header)
		if variant == domain.SchemaUnknown {
			return nil, &domain.SchemaMismatchError{Date: day, Header: header}
		}
		// Before the cutover the legacy names are required exactly; a
		// current-schema file there means the series is not what we
		// think it is. At or after the cutover the rename is applied,
		// which also passes an already-legacy header through untouched.
		if day.Before(l.cutover) && variant != domain.SchemaLegacy {
			return nil, &domain.SchemaMismatchError{Date: day, Header: header}
		}
		header = domain.NormalizeHeader(header)

		if accumColumns == nil {
			accumColumns = header
		} else if !domain.SameColumns(accumColumns, header) {
			return nil, &domain.SchemaMismatchError{Date: day, Header: header}
		}

		recs, err := domain.RecordsFromRows(day, header, rows)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)

		l.metrics.FilesFolded.Inc()
		l.metrics.RowsLoaded.Add(float64(len(recs)))
		l.ready.Store(true)
		l.logger.Debug("folded daily file",
			"file", domain.FileName(day),
			"schema", variant.String(),
			"rows", len(recs),
		)
	}
	return records, nil
}

func daysBetween(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
