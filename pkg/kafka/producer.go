package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	skafka "github.com/segmentio/kafka-go"

	"github.com/Tanmoy095/VaultShip/pkg/logger"
)

// Writer defines the subset of segmentio kafka.Writer we need. This makes the producer testable.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Publisher is the interface used by services to publish events.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// KafkaProducer is a thin wrapper around a kafka writer implementing Publisher.
type KafkaProducer struct {
	writer Writer
	log    *logger.Logger
}

// NewKafkaProducer creates a producer that writes to the provided broker/topic.
func NewKafkaProducer(brokerURL, topic string, log *logger.Logger) *KafkaProducer {
	w := &skafka.Writer{
		Addr:         skafka.TCP(brokerURL),
		Topic:        topic,
		Balancer:     &skafka.Hash{}, // same key, same partition
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaProducer{writer: w, log: logger.OrNop(log).With("topic", topic)}
}

// NewKafkaProducerWithWriter allows injecting a test writer.
func NewKafkaProducerWithWriter(w Writer, log *logger.Logger) *KafkaProducer {
	return &KafkaProducer{writer: w, log: logger.OrNop(log)}
}

// Publish marshals the value to JSON and writes a kafka message with the given key.
func (p *KafkaProducer) Publish(ctx context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		p.log.Error("failed to marshal kafka value", "key", key, "error", err)
		return fmt.Errorf("marshal kafka value: %w", err)
	}
	msg := skafka.Message{Key: []byte(key), Value: b}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("kafka write error", "key", key, "error", err)
		return fmt.Errorf("kafka write: %w", err)
	}
	p.log.Debug("kafka published", "key", key, "bytes", len(b))
	return nil
}

// Close closes the underlying writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
