package wizard

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/adapters/event"
	"github.com/khoahotran/portfolio-builder/internal/application/service"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type GeneratePortfolioUseCase struct {
	sessions   *Sessions
	generator  service.Generator
	portfolios portfolio.Repository
	events     service.EventPublisher
	timeout    time.Duration
	logger     logger.Logger
}

func NewGeneratePortfolioUseCase(
	sessions *Sessions,
	gen service.Generator,
	pr portfolio.Repository,
	events service.EventPublisher,
	timeout time.Duration,
	log logger.Logger,
) *GeneratePortfolioUseCase {
	return &GeneratePortfolioUseCase{
		sessions:   sessions,
		generator:  gen,
		portfolios: pr,
		events:     events,
		timeout:    timeout,
		logger:     log,
	}
}

type GeneratePortfolioInput struct {
	OwnerID uuid.UUID
}

type GeneratePortfolioOutput struct {
	Portfolio *portfolio.Portfolio `json:"portfolio"`
}

// Execute submits the draft to the generator and stores the result as the
// owner's portfolio. The wizard session is only read; on failure it is left
// on the last step with its draft untouched.
func (uc *GeneratePortfolioUseCase) Execute(ctx context.Context, input GeneratePortfolioInput) (*GeneratePortfolioOutput, error) {
	ctx, span := tracer.Start(ctx, "GeneratePortfolio")
	defer span.End()
	span.SetAttributes(attribute.String("owner_id", input.OwnerID.String()))

	l := uc.logger.With(zap.String("owner_id", input.OwnerID.String()))

	w, err := uc.sessions.Snapshot(ctx, input.OwnerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	submitted, err := w.Submit()
	if err != nil {
		return nil, apperror.NewPrecondition("portfolio can only be generated from the last step")
	}

	if err := uc.sessions.begin(input.OwnerID, opGenerate); err != nil {
		return nil, err
	}
	defer uc.sessions.end(input.OwnerID, opGenerate)

	genCtx := ctx
	if uc.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	l.Info("Generating portfolio", zap.Int("experiences", len(submitted.Experiences)), zap.Int("projects", len(submitted.Projects)))
	generated, err := uc.generator.Generate(genCtx, submitted)
	if err != nil {
		l.Error("Portfolio generation failed", err)
		span.RecordError(err)
		return nil, apperror.NewUnavailable("portfolio generation failed", err)
	}

	now := uc.sessions.now()
	p, err := uc.portfolios.FindByOwner(ctx, input.OwnerID)
	switch {
	case err == nil:
		p.Replace(generated, now)
	case errors.Is(err, apperror.ErrNotFound):
		p = &portfolio.Portfolio{
			ID:        uuid.New(),
			OwnerID:   input.OwnerID,
			Status:    portfolio.StatusPreview,
			CreatedAt: now,
		}
		p.Replace(generated, now)
	default:
		span.RecordError(err)
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, apperror.NewInternal("generated portfolio is invalid", err)
	}
	if err := uc.portfolios.Save(ctx, p); err != nil {
		l.Error("Failed to store generated portfolio", err)
		span.RecordError(err)
		return nil, err
	}
	l.Info("Portfolio generated", zap.String("portfolio_id", p.ID.String()), zap.String("status", string(p.Status)))

	payload := event.PortfolioEventPayload{
		EventType:   event.PortfolioEventTypeGenerated,
		PortfolioID: p.ID,
		OwnerID:     p.OwnerID,
		Username:    p.Username,
		OccurredAt:  now,
	}
	go func() {
		if err := uc.events.PublishPortfolioEvent(context.Background(), payload); err != nil {
			l.Error("Failed to publish Kafka 'portfolio.generated' event", err)
		}
	}()

	return &GeneratePortfolioOutput{Portfolio: p}, nil
}
