package service

import (
	"context"

	"github.com/khoahotran/portfolio-builder/adapters/event"
)

type EventPublisher interface {
	PublishDraftEvent(ctx context.Context, payload event.DraftEventPayload) error
	PublishPortfolioEvent(ctx context.Context, payload event.PortfolioEventPayload) error
}
