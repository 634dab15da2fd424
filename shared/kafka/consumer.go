package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Tanmoy095/VaultShip/pkg/logger"
)

// Reader is the subset of kafka.Reader the consumer loop uses.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer runs a Handler over every message of one topic.
type Consumer struct {
	reader  Reader
	log     *logger.Logger
	timeout time.Duration
	backoff time.Duration
}

// Handler processes one message. Returning an error leaves the offset
// uncommitted so the message is delivered again.
type Handler func(ctx context.Context, key []byte, value []byte) error

// NewConsumer joins groupID on topic. Copies of the service with the same
// group split the partitions between them.
func NewConsumer(brokers []string, topic string, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return NewConsumerWithReader(reader, logger.OrNop(log).With("topic", topic, "group", groupID))
}

// NewConsumerWithReader allows injecting a test reader.
func NewConsumerWithReader(r Reader, log *logger.Logger) *Consumer {
	return &Consumer{
		reader:  r,
		log:     logger.OrNop(log),
		timeout: 10 * time.Second,
		backoff: time.Second,
	}
}

// Start blocks until ctx is canceled, then returns ctx.Err().
func (c *Consumer) Start(ctx context.Context, handler Handler) error {
	c.log.Info("kafka consumer started")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warn("error fetching message", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff):
			}
			continue
		}

		processCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err = handler(processCtx, m.Key, m.Value)
		cancel()

		if err != nil {
			// Not committed: the group redelivers it.
			c.log.Error("processing failed", "offset", m.Offset, "partition", m.Partition, "error", err)
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.log.Error("failed to commit offset", "offset", m.Offset, "error", err)
		}
	}
}

// Close disconnects from the server.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
