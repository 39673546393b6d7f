package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used by the date-range and
// cutover environment variables.
const DateLayout = "2006-01-02"

// Observed bounds of the upstream series: 687 daily files, with the
// column rename landing on the 2020-11-09 file.
const (
	defaultBaseURL   = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_daily_reports_us/"
	defaultStartDate = "2020-04-12"
	defaultEndDate   = "2022-02-27"
	defaultCutover   = "2020-11-09"
)

// Config holds all loader settings, populated from environment variables.
type Config struct {
	SourceBaseURL string
	StartDate     time.Time
	EndDate       time.Time
	SchemaCutover time.Time

	CacheEnabled bool
	CacheDir     string
	OutputPath   string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	FetchTimeout     time.Duration
	FetchRetries     int
	FetchConcurrency int

	// Optional Kafka sink for the assembled table.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	start, err := parseDate("START_DATE", defaultStartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("END_DATE", defaultEndDate)
	if err != nil {
		return nil, err
	}
	cutover, err := parseDate("SCHEMA_CUTOVER_DATE", defaultCutover)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	retries, err := parseIntInRange("FETCH_RETRIES", 3, 0, 10)
	if err != nil {
		return nil, err
	}
	concurrency, err := parseIntInRange("FETCH_CONCURRENCY", 8, 1, 64)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		SourceBaseURL: envOrDefault("SOURCE_BASE_URL", defaultBaseURL),
		StartDate:     start,
		EndDate:       end,
		SchemaCutover: cutover,

		CacheEnabled: envOrDefault("CACHE_ENABLED", "true") == "true",
		CacheDir:     envOrDefault("CACHE_DIR", "data/cache"),
		OutputPath:   envOrDefault("OUTPUT_PATH", "data/covid_daily_us.csv"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FetchTimeout:     fetchTimeout,
		FetchRetries:     retries,
		FetchConcurrency: concurrency,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   splitBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "covid-daily-records"),
	}

	if cfg.SourceBaseURL == "" {
		return nil, errors.New("SOURCE_BASE_URL is required")
	}
	if !strings.HasSuffix(cfg.SourceBaseURL, "/") {
		cfg.SourceBaseURL += "/"
	}
	if cfg.EndDate.Before(cfg.StartDate) {
		return nil, errors.New("END_DATE must not be before START_DATE")
	}
	if cfg.CacheEnabled && cfg.CacheDir == "" {
		return nil, errors.New("CACHE_ENABLED is true but CACHE_DIR is empty")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
		}
	}

	return cfg, nil
}

// Days returns the inclusive date sequence covered by the configured range.
func (c *Config) Days() []time.Time {
	var days []time.Time
	for d := c.StartDate; !d.After(c.EndDate); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDate(key, fallback string) (time.Time, error) {
	v := envOrDefault(key, fallback)
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %q is not a %s date", key, v, DateLayout)
	}
	return t.UTC(), nil
}

func parseDuration(key, fallback string) (time.Duration, error) {
	v := envOrDefault(key, fallback)
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}

func parseIntInRange(key string, fallback, minVal, maxVal int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < minVal || n > maxVal {
		return 0, fmt.Errorf("invalid %s: %q (must be %d-%d)", key, s, minVal, maxVal)
	}
	return n, nil
}

func splitBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
