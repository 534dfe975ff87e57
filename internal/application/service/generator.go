package service

import (
	"context"

	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
)

// Generator turns a submitted draft into portfolio content. The returned
// portfolio carries the draft and its enhancements only; identity and status
// are set by the caller.
type Generator interface {
	Generate(ctx context.Context, d draft.Draft) (*portfolio.Portfolio, error)
}
