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

	"github.com/couchcryptid/readiness-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/readiness-map-service/internal/adapter/source"
	"github.com/couchcryptid/readiness-map-service/internal/config"
	"github.com/couchcryptid/readiness-map-service/internal/dataset"
	"github.com/couchcryptid/readiness-map-service/internal/domain"
	"github.com/couchcryptid/readiness-map-service/internal/insight"
	"github.com/couchcryptid/readiness-map-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const (
	testReportTopic = "test-readiness-insights"
	sampleDataPath  = "../../data/USAF_100_Base_Data.csv"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("readiness-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestReportPublishEndToEnd loads the bundled dataset, builds the report, and
// verifies it round-trips through a real Kafka topic.
func TestReportPublishEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testReportTopic)

	src, err := source.Open(sampleDataPath, source.Options{})
	require.NoError(t, err)

	metrics := observability.NewMetricsForTesting()
	ds := dataset.New(src, discardLogger(), metrics)
	svc := insight.NewService(ds, insight.DefaultOptions())

	report, err := svc.Report(ctx)
	require.NoError(t, err)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaReportTopic: testReportTopic}
	pub := kafka.NewPublisher(cfg, metrics, discardLogger())
	t.Cleanup(func() { _ = pub.Close() })

	require.NoError(t, pub.Publish(ctx, report))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testReportTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from report topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, src.Name(), string(msg.Key))
	assert.Equal(t, src.Name(), headers["source"])
	_, err = time.Parse(time.RFC3339, headers["generated_at"])
	assert.NoError(t, err, "generated_at should be valid RFC3339")

	var got domain.Report
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, 100, got.Total)
	assert.Equal(t, 3, got.Unclassified)
	assert.Equal(t, 28, got.HighCount)
	assert.Equal(t, 31, got.LowCount)
	assert.Len(t, got.RegionAverages, 4)
	require.NotNil(t, got.Best)
	require.NotNil(t, got.Worst)
	assert.Equal(t, report.Best.Region, got.Best.Region)
	assert.Equal(t, report.Worst.Region, got.Worst.Region)
}
