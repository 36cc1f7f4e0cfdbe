package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Handler processes one consumed message. A returned error is retried on the
// same message with backoff; later messages are not fetched until it succeeds.
type Handler func(ctx context.Context, msg Message) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

const (
	defaultMinRetryBackoff = 200 * time.Millisecond
	defaultMaxRetryBackoff = 30 * time.Second
)

// Consumer reads a single topic within a consumer group.
type Consumer struct {
	reader     messageReader
	topic      string
	handler    Handler
	logger     *slog.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewConsumer creates a group consumer for topic.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger) *Consumer {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10 << 20,
		Dialer:   cfg.dialer(),
	})
	return &Consumer{
		reader:     r,
		topic:      topic,
		handler:    handler,
		logger:     logger,
		minBackoff: defaultMinRetryBackoff,
		maxBackoff: defaultMaxRetryBackoff,
	}
}

// Run consumes until ctx is cancelled. Offsets are committed in order, so a
// message whose handler keeps failing holds back every later offset on the
// partition.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.InfoContext(ctx, "kafka consumer starting", "topic", c.topic)
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.InfoContext(ctx, "kafka consumer stopping", "topic", c.topic)
				return nil
			}
			return fmt.Errorf("fetch message from %s: %w", c.topic, err)
		}

		if err := c.handle(ctx, m); err != nil {
			c.logger.InfoContext(ctx, "kafka consumer stopping with uncommitted message",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
			)
			return nil
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.ErrorContext(ctx, "kafka commit failed",
				"topic", m.Topic,
				"offset", m.Offset,
				"error", err,
			)
		}
	}
}

// handle runs the handler until it succeeds, backing off exponentially
// between attempts. It only returns an error when ctx is done.
func (c *Consumer) handle(ctx context.Context, m kafkago.Message) error {
	msg := Message{Key: m.Key, Value: m.Value, Headers: fromHeaders(m.Headers)}
	delay := c.minBackoff
	for attempt := 1; ; attempt++ {
		err := c.handler(ctx, msg)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.ErrorContext(ctx, "kafka handler failed, retrying",
			"topic", m.Topic,
			"partition", m.Partition,
			"offset", m.Offset,
			"attempt", attempt,
			"retry_in", delay,
			"error", err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
		if delay > c.maxBackoff {
			delay = c.maxBackoff
		}
	}
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("closing kafka reader: %w", err)
	}
	return nil
}
