//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/covid-daily-etl/internal/adapter/kafka"
	"github.com/couchcryptid/covid-daily-etl/internal/config"
	"github.com/couchcryptid/covid-daily-etl/internal/domain"
)

const testSinkTopic = "test-covid-daily-records"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka broker in a container and returns
// its bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestPublishTable publishes a small assembled table through the sink
// writer and reads it back with a plain consumer, verifying keys,
// headers, and record payloads survive the round trip.
func TestPublishTable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	deaths1, deaths2 := int64(10), int64(15)
	newDeaths := int64(5)
	table := &domain.Table{
		Records: []domain.DailyRecord{
			{
				Region: "Texas",
				Date:   time.Date(2020, time.November, 8, 0, 0, 0, 0, time.UTC),
				Deaths: &deaths1,
			},
			{
				Region:    "Texas",
				Date:      time.Date(2020, time.November, 9, 0, 0, 0, 0, time.UTC),
				Deaths:    &deaths2,
				NewDeaths: &newDeaths,
			},
		},
		LoadedAt: time.Date(2022, time.March, 1, 12, 0, 0, 0, time.UTC),
	}

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.PublishTable(ctx, table))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	byKey := make(map[string]kafkago.Message, len(table.Records))
	for len(byKey) < len(table.Records) {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from sink topic")
		byKey[string(msg.Key)] = msg
	}

	first, ok := byKey["Texas|2020-11-08"]
	require.True(t, ok, "missing first record on sink topic")
	second, ok := byKey["Texas|2020-11-09"]
	require.True(t, ok, "missing second record on sink topic")

	headers := make(map[string]string, len(second.Headers))
	for _, h := range second.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "Texas", headers["region"])
	assert.Equal(t, "2020-11-09", headers["date"])
	assert.Equal(t, "2022-03-01T12:00:00Z", headers["loaded_at"])

	var rec domain.DailyRecord
	require.NoError(t, json.Unmarshal(second.Value, &rec))
	assert.Equal(t, "Texas", rec.Region)
	require.NotNil(t, rec.Deaths)
	assert.Equal(t, int64(15), *rec.Deaths)
	require.NotNil(t, rec.NewDeaths)
	assert.Equal(t, int64(5), *rec.NewDeaths)

	require.NoError(t, json.Unmarshal(first.Value, &rec))
	require.NotNil(t, rec.Deaths)
	assert.Equal(t, int64(10), *rec.Deaths)
	assert.Nil(t, rec.NewDeaths)
}
