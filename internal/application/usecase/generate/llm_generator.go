package generate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/portfolio-builder/internal/application/service"
	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

var tracer = otel.Tracer("generate_usecase")

const defaultConcurrency = 4

// LLMGenerator enhances a draft with one prompt for the bio and one per
// experience or project that has a description. Prompts run concurrently;
// any failure fails the whole generation.
type LLMGenerator struct {
	llm         service.LLMService
	concurrency int
	logger      logger.Logger
}

func NewLLMGenerator(llm service.LLMService, log logger.Logger) *LLMGenerator {
	return &LLMGenerator{llm: llm, concurrency: defaultConcurrency, logger: log}
}

var _ service.Generator = (*LLMGenerator)(nil)

func (g *LLMGenerator) Generate(ctx context.Context, d draft.Draft) (*portfolio.Portfolio, error) {
	ctx, span := tracer.Start(ctx, "Generate")
	defer span.End()

	out := &portfolio.Portfolio{
		Draft:               *d.Clone(),
		EnhancedExperiences: make(map[uuid.UUID]string),
		EnhancedProjects:    make(map[uuid.UUID]string),
	}

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)

	prompts := 1
	eg.Go(func() error {
		bio, err := g.complete(egCtx, buildBioPrompt(d))
		if err != nil {
			return fmt.Errorf("generate bio: %w", err)
		}
		mu.Lock()
		out.GeneratedBio = bio
		mu.Unlock()
		return nil
	})

	for _, e := range d.Experiences {
		if strings.TrimSpace(e.Description) == "" {
			continue
		}
		prompts++
		eg.Go(func() error {
			text, err := g.complete(egCtx, buildExperiencePrompt(e))
			if err != nil {
				return fmt.Errorf("enhance experience %s: %w", e.ID, err)
			}
			mu.Lock()
			out.EnhancedExperiences[e.ID] = text
			mu.Unlock()
			return nil
		})
	}

	for _, p := range d.Projects {
		if strings.TrimSpace(p.Description) == "" {
			continue
		}
		prompts++
		eg.Go(func() error {
			text, err := g.complete(egCtx, buildProjectPrompt(p))
			if err != nil {
				return fmt.Errorf("enhance project %s: %w", p.ID, err)
			}
			mu.Lock()
			out.EnhancedProjects[p.ID] = text
			mu.Unlock()
			return nil
		})
	}

	span.SetAttributes(attribute.Int("prompts", prompts))
	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	g.logger.Info("Draft enhanced", zap.Int("prompts", prompts),
		zap.Int("experiences", len(out.EnhancedExperiences)), zap.Int("projects", len(out.EnhancedProjects)))
	return out, nil
}

func (g *LLMGenerator) complete(ctx context.Context, prompt string) (string, error) {
	text, err := g.llm.GenerateChatResponse(ctx, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("model returned an empty response")
	}
	return text, nil
}
