package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/config"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

const (
	TopicDraftEvents     = "draft.events"
	TopicPortfolioEvents = "portfolio.events"
)

const (
	DraftEventTypeSaved = "draft.saved"

	PortfolioEventTypeGenerated = "portfolio.generated"
	PortfolioEventTypePublished = "portfolio.published"
)

type DraftEventPayload struct {
	EventType  string    `json:"event_type"`
	OwnerID    uuid.UUID `json:"owner_id"`
	SkillCount int       `json:"skill_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

type PortfolioEventPayload struct {
	EventType   string    `json:"event_type"`
	PortfolioID uuid.UUID `json:"portfolio_id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Username    string    `json:"username,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type KafkaProducerClient struct {
	DraftEventsWriter     *kafka.Writer
	PortfolioEventsWriter *kafka.Writer
	logger                logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	draftWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicDraftEvents,
		Balancer: &kafka.LeastBytes{},
	}

	// keyed by owner so one owner's events stay ordered
	portfolioWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicPortfolioEvents,
		Balancer: &kafka.Hash{},
	}

	log.Info("Initialize Kafka Producers successfully.", zap.Strings("brokers", brokers))

	return &KafkaProducerClient{
		DraftEventsWriter:     draftWriter,
		PortfolioEventsWriter: portfolioWriter,
		logger:                log,
	}, nil
}

func (c *KafkaProducerClient) PublishDraftEvent(ctx context.Context, payload DraftEventPayload) error {
	if payload.OccurredAt.IsZero() {
		payload.OccurredAt = time.Now().UTC()
	}
	return c.write(ctx, c.DraftEventsWriter, payload.OwnerID.String(), payload)
}

func (c *KafkaProducerClient) PublishPortfolioEvent(ctx context.Context, payload PortfolioEventPayload) error {
	if payload.OccurredAt.IsZero() {
		payload.OccurredAt = time.Now().UTC()
	}
	return c.write(ctx, c.PortfolioEventsWriter, payload.OwnerID.String(), payload)
}

func (c *KafkaProducerClient) write(ctx context.Context, w *kafka.Writer, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event for topic %s failed: %w", w.Topic, err)
	}
	if err := w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value}); err != nil {
		return fmt.Errorf("write event to topic %s failed: %w", w.Topic, err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.DraftEventsWriter != nil {
		c.DraftEventsWriter.Close()
	}
	if c.PortfolioEventsWriter != nil {
		c.PortfolioEventsWriter.Close()
	}
	c.logger.Info("Closed Kafka Producers")
}
