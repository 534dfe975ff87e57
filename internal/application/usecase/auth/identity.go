package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/domain/user"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

// IdentityUseCase resolves the signed-in owner and their dashboard state.
type IdentityUseCase struct {
	userRepo      user.Repository
	portfolioRepo portfolio.Repository
	logger        logger.Logger
}

func NewIdentityUseCase(ur user.Repository, pr portfolio.Repository, log logger.Logger) *IdentityUseCase {
	return &IdentityUseCase{userRepo: ur, portfolioRepo: pr, logger: log}
}

type IdentityOutput struct {
	user.Identity
	HasPortfolio bool             `json:"has_portfolio"`
	Status       portfolio.Status `json:"portfolio_status,omitempty"`
	Username     string           `json:"username,omitempty"`
}

func (uc *IdentityUseCase) Execute(ctx context.Context, ownerID uuid.UUID) (*IdentityOutput, error) {
	ctx, span := tracer.Start(ctx, "Identity")
	defer span.End()

	u, err := uc.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			err = apperror.NewUnauthorized("account no longer exists", err)
		}
		span.RecordError(err)
		return nil, err
	}

	out := &IdentityOutput{Identity: u.Identity()}
	p, err := uc.portfolioRepo.FindByOwner(ctx, ownerID)
	switch {
	case err == nil:
		out.HasPortfolio = true
		out.Status = p.Status
		out.Username = p.Username
	case errors.Is(err, apperror.ErrNotFound):
	default:
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}
