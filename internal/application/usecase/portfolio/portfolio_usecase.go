package portfolio

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/adapters/event"
	"github.com/khoahotran/portfolio-builder/internal/application/service"
	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/domain/tag"
	"github.com/khoahotran/portfolio-builder/internal/preview"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

var tracer = otel.Tracer("portfolio_usecase")

// DraftSource yields the owner's in-progress draft for previews made before
// any portfolio was generated.
type DraftSource interface {
	CurrentDraft(ctx context.Context, ownerID uuid.UUID) (draft.Draft, error)
}

type PortfolioUseCase struct {
	portfolios    portfolio.Repository
	tags          tag.Repository
	drafts        DraftSource
	events        service.EventPublisher
	publicBaseURL string
	logger        logger.Logger
}

func NewPortfolioUseCase(
	pr portfolio.Repository,
	tr tag.Repository,
	ds DraftSource,
	events service.EventPublisher,
	publicBaseURL string,
	log logger.Logger,
) *PortfolioUseCase {
	return &PortfolioUseCase{
		portfolios:    pr,
		tags:          tr,
		drafts:        ds,
		events:        events,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        log,
	}
}

type PreviewOutput struct {
	// Portfolio is nil when the preview was built from the unsaved draft.
	Portfolio *portfolio.Portfolio `json:"portfolio,omitempty"`
	Document  preview.Document     `json:"document"`
}

// GetPreview shows the generated portfolio, or the raw draft when nothing has
// been generated yet.
func (uc *PortfolioUseCase) GetPreview(ctx context.Context, ownerID uuid.UUID) (*PreviewOutput, error) {
	ctx, span := tracer.Start(ctx, "GetPreview")
	defer span.End()

	p, err := uc.portfolios.FindByOwner(ctx, ownerID)
	if err == nil {
		return &PreviewOutput{Portfolio: p, Document: preview.FromPortfolio(p)}, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		span.RecordError(err)
		return nil, err
	}

	d, err := uc.drafts.CurrentDraft(ctx, ownerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &PreviewOutput{Document: preview.FromDraft(d)}, nil
}

type PublishInput struct {
	OwnerID  uuid.UUID
	Username string
}

type PublishOutput struct {
	Portfolio *portfolio.Portfolio `json:"portfolio"`
	ShareURL  string               `json:"share_url"`
}

func (uc *PortfolioUseCase) Publish(ctx context.Context, input PublishInput) (*PublishOutput, error) {
	ctx, span := tracer.Start(ctx, "Publish")
	defer span.End()
	span.SetAttributes(attribute.String("owner_id", input.OwnerID.String()), attribute.String("username", input.Username))

	l := uc.logger.With(zap.String("owner_id", input.OwnerID.String()))

	p, err := uc.portfolios.FindByOwner(ctx, input.OwnerID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NewPrecondition("generate a portfolio before publishing")
		}
		span.RecordError(err)
		return nil, err
	}

	username := strings.ToLower(strings.TrimSpace(input.Username))
	now := timeNow()
	if err := p.Publish(username, now); err != nil {
		return nil, apperror.NewInvalidInput("username only includes lowercase letter, digit and -", err)
	}
	if err := uc.portfolios.Save(ctx, p); err != nil {
		span.RecordError(err)
		return nil, err
	}

	tags, err := uc.tags.FindOrCreateTags(ctx, p.Draft.Skills)
	if err != nil {
		l.Warn("Failed to create skill tags", zap.Error(err))
	} else {
		tagIDs := make([]uuid.UUID, len(tags))
		for i, t := range tags {
			tagIDs[i] = t.ID
		}
		if err := uc.tags.SetTagsForResource(ctx, p.ID, tag.ResourcePortfolio, tagIDs); err != nil {
			l.Warn("Failed to set skill tags for portfolio", zap.String("portfolio_id", p.ID.String()), zap.Error(err))
		}
	}

	payload := event.PortfolioEventPayload{
		EventType:   event.PortfolioEventTypePublished,
		PortfolioID: p.ID,
		OwnerID:     p.OwnerID,
		Username:    p.Username,
		OccurredAt:  now,
	}
	go func() {
		if err := uc.events.PublishPortfolioEvent(context.Background(), payload); err != nil {
			l.Error("Failed to publish Kafka 'portfolio.published' event", err)
		}
	}()

	l.Info("Portfolio published", zap.String("username", p.Username))
	return &PublishOutput{Portfolio: p, ShareURL: uc.shareURL(p.Username)}, nil
}

type ShareLinkOutput struct {
	URL       string  `json:"url"`
	HostedURL *string `json:"hosted_url,omitempty"`
}

func (uc *PortfolioUseCase) ShareLink(ctx context.Context, ownerID uuid.UUID) (*ShareLinkOutput, error) {
	p, err := uc.portfolios.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NewPrecondition("portfolio has not been generated")
		}
		return nil, err
	}
	if !p.IsPublished() {
		return nil, apperror.NewPrecondition("portfolio is not published")
	}
	return &ShareLinkOutput{URL: uc.shareURL(p.Username), HostedURL: p.HostedURL}, nil
}

func (uc *PortfolioUseCase) shareURL(username string) string {
	return uc.publicBaseURL + "/p/" + username
}

func (uc *PortfolioUseCase) GetPublic(ctx context.Context, username string) (*portfolio.Portfolio, error) {
	return uc.portfolios.FindPublishedByUsername(ctx, strings.ToLower(username))
}

type ListBySkillInput struct {
	Skill string
	Page  int
	Limit int
}

func (uc *PortfolioUseCase) ListBySkill(ctx context.Context, input ListBySkillInput) ([]*portfolio.Portfolio, error) {
	slug := tag.Slugify(input.Skill)
	if slug == "" {
		return nil, apperror.NewInvalidInput("skill is required", nil)
	}
	if input.Page <= 0 {
		input.Page = 1
	}
	if input.Limit <= 0 || input.Limit > 50 {
		input.Limit = 10
	}
	offset := (input.Page - 1) * input.Limit
	return uc.portfolios.ListPublishedBySkill(ctx, slug, input.Limit, offset)
}
