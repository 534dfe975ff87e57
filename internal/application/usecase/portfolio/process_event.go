package portfolio

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/adapters/event"
	"github.com/khoahotran/portfolio-builder/internal/application/service"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/preview"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

// ProcessPortfolioEventUseCase renders published portfolios to static HTML
// and hosts them through the uploader.
type ProcessPortfolioEventUseCase struct {
	portfolios portfolio.Repository
	uploader   service.Uploader
	logger     logger.Logger
}

func NewProcessPortfolioEventUseCase(pr portfolio.Repository, up service.Uploader, log logger.Logger) *ProcessPortfolioEventUseCase {
	return &ProcessPortfolioEventUseCase{portfolios: pr, uploader: up, logger: log}
}

func hostedFolder(p *portfolio.Portfolio) string {
	return fmt.Sprintf("portfolios/%s", p.OwnerID.String())
}

func (uc *ProcessPortfolioEventUseCase) Execute(ctx context.Context, payload event.PortfolioEventPayload) error {
	ctx, span := tracer.Start(ctx, "ProcessPortfolioEvent")
	defer span.End()

	l := uc.logger.With(zap.String("event_type", payload.EventType), zap.String("portfolio_id", payload.PortfolioID.String()))

	switch payload.EventType {
	case event.PortfolioEventTypePublished, event.PortfolioEventTypeGenerated:
	default:
		l.Warn("Unknown portfolio event, skip")
		return nil
	}

	p, err := uc.portfolios.FindByID(ctx, payload.PortfolioID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			l.Warn("Portfolio not found, skip")
			return nil
		}
		span.RecordError(err)
		return fmt.Errorf("get portfolio failed: %w", err)
	}

	if !p.IsPublished() {
		l.Info("Portfolio is not published, nothing to host")
		return nil
	}

	var page bytes.Buffer
	if err := preview.Render(&page, preview.FromPortfolio(p), preview.Options{Mode: preview.ModeDesktop}); err != nil {
		span.RecordError(err)
		return err
	}

	url, err := uc.uploader.Upload(ctx, &page, hostedFolder(p), p.Username)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("upload portfolio page failed: %w", err)
	}

	if err := uc.portfolios.UpdateHostedURL(ctx, p.ID, url); err != nil {
		span.RecordError(err)
		return fmt.Errorf("update hosted url for portfolio %s failed: %w", p.ID, err)
	}

	l.Info("Portfolio page hosted", zap.String("username", p.Username), zap.String("url", url))
	return nil
}
