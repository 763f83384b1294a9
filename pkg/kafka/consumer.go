package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// HandlerFunc processes one message. A returned error is retried with
// exponential backoff until the handler succeeds or the context ends.
// Offsets are committed in order, so a failing message holds back the
// messages behind it. Return nil for messages that can never succeed.
type HandlerFunc func(ctx context.Context, msg kafkago.Message) error

// messageReader is the part of *kafkago.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer reads a single topic as part of a consumer group.
type Consumer struct {
	reader     messageReader
	topic      string
	newBackOff func() backoff.BackOff
	logger     *zap.Logger
}

// NewConsumer creates a Consumer for topic in group groupID.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	return newConsumer(reader, topic, defaultBackOff, logger)
}

func newConsumer(reader messageReader, topic string, newBackOff func() backoff.BackOff, logger *zap.Logger) *Consumer {
	return &Consumer{reader: reader, topic: topic, newBackOff: newBackOff, logger: logger}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0 // retry until the context ends
	return b
}

// Consume blocks, passing each message to handler until ctx is cancelled.
// A message is committed only after its handler succeeds.
func (c *Consumer) Consume(ctx context.Context, handler HandlerFunc) error {
	c.logger.Info("kafka consumer started", zap.String("topic", c.topic))
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("kafka consumer stopped", zap.String("topic", c.topic))
				return nil
			}
			return fmt.Errorf("failed to fetch message from %s: %w", c.topic, err)
		}

		if err := c.handleWithRetry(ctx, handler, msg); err != nil {
			if ctx.Err() != nil {
				// Left uncommitted; the group redelivers it after a restart.
				c.logger.Info("kafka consumer stopped with message pending",
					zap.String("topic", c.topic),
					zap.Int64("offset", msg.Offset),
				)
				return nil
			}
			return fmt.Errorf("failed to handle message at offset %d: %w", msg.Offset, err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Warn("failed to commit offset",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, handler HandlerFunc, msg kafkago.Message) error {
	return backoff.RetryNotify(
		func() error { return handler(ctx, msg) },
		backoff.WithContext(c.newBackOff(), ctx),
		func(err error, wait time.Duration) {
			c.logger.Warn("failed to handle message, retrying",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Duration("retry_in", wait),
				zap.Error(err),
			)
		},
	)
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
