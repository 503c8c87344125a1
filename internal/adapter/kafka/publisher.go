package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/readiness-map-service/internal/config"
	"github.com/couchcryptid/readiness-map-service/internal/domain"
	"github.com/couchcryptid/readiness-map-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces insight reports to a Kafka topic.
type Publisher struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured report topic.
func NewPublisher(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaReportTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, metrics: metrics, logger: logger}
}

// Publish writes one report message keyed by the dataset source.
func (p *Publisher) Publish(ctx context.Context, report domain.Report) error {
	msg, err := serializeToMessage(report)
	if err == nil {
		err = p.writer.WriteMessages(ctx, msg)
	}
	if err != nil {
		p.metrics.ReportsPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("publish report: %w", err)
	}
	p.metrics.ReportsPublished.WithLabelValues("success").Inc()
	p.logger.Info("report published", "source", report.Source, "bytes", len(msg.Value))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a Report into a Kafka message.
func serializeToMessage(report domain.Report) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.Source),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte(report.Source)},
			{Key: "generated_at", Value: []byte(report.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
