package event

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/config"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

// Handler processes one decoded event. A failing handler is retried with
// backoff. The group reader has already moved past the message, so once the
// retries are spent the event is logged and dropped.
type Handler[T any] func(ctx context.Context, payload T) error

type retryPolicy struct {
	attempts int
	backoff  time.Duration
}

var defaultRetry = retryPolicy{attempts: 4, backoff: 500 * time.Millisecond}

// run calls fn until it succeeds, the attempts are spent or ctx is done,
// doubling the wait between attempts. It returns the last error.
func (p retryPolicy) run(ctx context.Context, log logger.Logger, fn func(context.Context) error) error {
	wait := p.backoff
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= p.attempts {
			return err
		}
		log.Warn("Event handler failed, retrying",
			zap.Int("attempt", attempt), zap.Duration("backoff", wait), zap.Error(err))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		wait *= 2
	}
}

type Consumer[T any] struct {
	reader *kafka.Reader
	topic  string
	retry  retryPolicy
	logger logger.Logger
}

func newConsumer[T any](cfg config.Config, topic, groupID string, log logger.Logger) *Consumer[T] {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	return &Consumer[T]{reader: reader, topic: topic, retry: defaultRetry, logger: log}
}

func NewPortfolioConsumer(cfg config.Config, groupID string, log logger.Logger) *Consumer[PortfolioEventPayload] {
	return newConsumer[PortfolioEventPayload](cfg, TopicPortfolioEvents, groupID, log)
}

func NewDraftConsumer(cfg config.Config, groupID string, log logger.Logger) *Consumer[DraftEventPayload] {
	return newConsumer[DraftEventPayload](cfg, TopicDraftEvents, groupID, log)
}

// Run reads until ctx is cancelled. Unparseable messages and events whose
// retries are spent are committed and skipped. An event interrupted by
// shutdown is left uncommitted.
func (c *Consumer[T]) Run(ctx context.Context, handle Handler[T]) error {
	c.logger.Info("Worker listening", zap.String("topic", c.topic))
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to read message from Kafka", err)
			continue
		}

		log := c.logger.With(zap.String("topic", msg.Topic), zap.String("key", string(msg.Key)), zap.Int64("offset", msg.Offset))

		var payload T
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			log.Error("Failed to unmarshal event, skipping", err)
			c.commit(ctx, msg)
			continue
		}

		err = c.retry.run(ctx, log, func(ctx context.Context) error { return handle(ctx, payload) })
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error("Failed to process event, dropping it", err, zap.Int("attempts", c.retry.attempts))
		}

		c.commit(ctx, msg)
	}
}

func (c *Consumer[T]) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message", err)
	}
}

func (c *Consumer[T]) Close() error {
	return c.reader.Close()
}
