package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rental-marketplace-core/internal/config"
	"github.com/segmentio/kafka-go"
)

// BookingEventProducer writes booking events to the event topic.
// Writes are synchronous: the outbox row is only marked processed once the broker acknowledged it.
type BookingEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewBookingEventProducer ensures the event topic exists and builds a writer keyed by aggregate id
func NewBookingEventProducer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*BookingEventProducer, error) {
	if cfg.EventTopic == "" {
		return nil, fmt.Errorf("kafka event topic is not configured")
	}

	if err := EnsureTopic(logger, cfg.Brokers, cfg.EventTopic, cfg.NumPartitions, cfg.ReplicationFactor); err != nil {
		return nil, fmt.Errorf("failed to ensure event topic %s exists: %w", cfg.EventTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.EventTopic,
		Balancer:     &kafka.Hash{}, // same booking, same partition
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &BookingEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.EventTopic,
	}, nil
}

// Publish marshals value to JSON and writes it under key.
// json.RawMessage values are written as-is.
func (p *BookingEventProducer) Publish(ctx context.Context, key string, value any) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal booking event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish booking event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published booking event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *BookingEventProducer) Close() error {
	p.logger.Info("Closing booking event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
