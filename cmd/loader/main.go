// Command loader assembles the JHU CSSE US daily COVID-19 reports into a
// single combined CSV. It fetches every day in the configured range,
// reconciles the one-time schema rename, computes per-day deltas, writes
// the result to OUTPUT_PATH, and optionally publishes the records to a
// Kafka sink topic. Health and metrics endpoints are served for the
// duration of the run.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/covid-daily-etl/internal/adapter/cache"
	"github.com/couchcryptid/covid-daily-etl/internal/adapter/csse"
	httpadapter "github.com/couchcryptid/covid-daily-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/covid-daily-etl/internal/adapter/kafka"
	"github.com/couchcryptid/covid-daily-etl/internal/config"
	"github.com/couchcryptid/covid-daily-etl/internal/exporter"
	"github.com/couchcryptid/covid-daily-etl/internal/observability"
	"github.com/couchcryptid/covid-daily-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var fetcher pipeline.Fetcher = csse.NewClient(cfg.SourceBaseURL, cfg.FetchTimeout, cfg.FetchRetries, logger, metrics)
	if cfg.CacheEnabled {
		fetcher = cache.NewDiskCache(fetcher, cfg.CacheDir, logger, metrics)
		logger.Info("disk cache enabled", "dir", cfg.CacheDir)
	}

	loader := pipeline.New(fetcher, cfg, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, loader, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	exitCode := run(ctx, cfg, logger, loader)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	os.Exit(exitCode)
}

// run executes one complete load and hands the result off. Any failure
// aborts the run outright: a partial table must never reach the report.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, loader *pipeline.Loader) int {
	table, err := loader.Load(ctx)
	if err != nil {
		logger.Error("load failed", "error", err)
		return 1
	}

	if err := exporter.WriteFile(cfg.OutputPath, table); err != nil {
		logger.Error("export failed", "path", cfg.OutputPath, "error", err)
		return 1
	}
	logger.Info("table exported", "path", cfg.OutputPath, "rows", len(table.Records))

	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		if err := writer.PublishTable(ctx, table); err != nil {
			logger.Error("kafka publish failed", "error", err)
			return 1
		}
	}

	return 0
}
