// Package kafka contains the moderation event stream producer
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/Conte777/moderation-bot/config"
	"github.com/Conte777/moderation-bot/internal/domain/moderation/entities"
)

// unhealthyAfter is the number of consecutive send failures that marks the stream unhealthy
const unhealthyAfter = 3

var newSyncProducer = sarama.NewSyncProducer

// EventProducer publishes moderation events to a Kafka topic
type EventProducer struct {
	producer sarama.SyncProducer
	topic    string
	logger   zerolog.Logger
	failures atomic.Int32
}

// NewProducer connects to the configured brokers.
// With no brokers configured, or none reachable at startup, the stream is
// disabled and events are dropped. Unreachable brokers also mark it unhealthy.
func NewProducer(cfg *config.KafkaConfig, logger zerolog.Logger) *EventProducer {
	logger = logger.With().Str("component", "kafka-producer").Logger()

	if len(cfg.Brokers) == 0 {
		logger.Info().Msg("Kafka brokers are not configured, moderation events are disabled")
		return &EventProducer{topic: cfg.Topic, logger: logger}
	}

	producer, err := newSyncProducer(cfg.Brokers, newSaramaConfig())
	if err != nil {
		logger.Error().
			Err(err).
			Strs("brokers", cfg.Brokers).
			Msg("Failed to create Kafka producer, moderation events are disabled")
		p := &EventProducer{topic: cfg.Topic, logger: logger}
		p.failures.Store(unhealthyAfter)
		return p
	}

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Msg("Kafka producer initialized successfully")

	return newEventProducer(producer, cfg.Topic, logger)
}

func newEventProducer(producer sarama.SyncProducer, topic string, logger zerolog.Logger) *EventProducer {
	return &EventProducer{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

func newSaramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionSnappy
	return cfg
}

// Enabled reports whether events reach a broker
func (p *EventProducer) Enabled() bool {
	return p.producer != nil
}

// IsHealthy reports whether recent events reached the broker.
// A stream disabled by configuration is healthy.
func (p *EventProducer) IsHealthy() bool {
	return p.failures.Load() < unhealthyAfter
}

// Publish sends the event keyed by its submission or post
func (p *EventProducer) Publish(ctx context.Context, event *entities.ModerationEvent) error {
	if p.producer == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event to JSON: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Key()),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		p.failures.Add(1)
		p.logger.Error().
			Err(err).
			Str("topic", p.topic).
			Str("event", string(event.Type)).
			Msg("Failed to send Kafka message")
		return fmt.Errorf("failed to send %s event: %w", event.Type, err)
	}
	p.failures.Store(0)

	p.logger.Debug().
		Str("topic", p.topic).
		Str("event", string(event.Type)).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Kafka message sent successfully")
	return nil
}

// Close closes the underlying producer
func (p *EventProducer) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		p.logger.Error().Err(err).Msg("Failed to close Kafka producer")
		return err
	}
	p.logger.Info().Msg("Kafka producer closed successfully")
	return nil
}
