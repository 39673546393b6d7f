// Package kafka publishes the assembled table to a sink topic for
// downstream report consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/covid-daily-etl/internal/config"
	"github.com/couchcryptid/covid-daily-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces assembled daily records to a Kafka topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    100,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishTable serializes every record of an assembled table to the sink
// topic. Records are keyed by (region, date) so replays of the same load
// land on the same partitions.
func (w *Writer) PublishTable(ctx context.Context, table *domain.Table) error {
	if len(table.Records) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, len(table.Records))
	for i := range table.Records {
		msg, err := serializeToMessage(table.Records[i], table.LoadedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	w.logger.Info("publishing table", "topic", w.writer.Topic, "records", len(msgs))
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a DailyRecord into a Kafka message.
func serializeToMessage(rec domain.DailyRecord, loadedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize daily record: %w", err)
	}
	date := rec.Date.Format(config.DateLayout)
	return kafkago.Message{
		Key:   []byte(rec.Region + "|" + date),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "region", Value: []byte(rec.Region)},
			{Key: "date", Value: []byte(date)},
			{Key: "loaded_at", Value: []byte(loadedAt.Format(time.RFC3339))},
		},
	}, nil
}
