package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-builder/adapters/event"
	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/domain/wizard"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
)

type memSessionStore struct {
	mu     sync.Mutex
	states map[uuid.UUID]wizard.State
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{states: make(map[uuid.UUID]wizard.State)}
}

func (m *memSessionStore) Load(_ context.Context, ownerID uuid.UUID) (*wizard.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[ownerID]
	if !ok {
		return nil, apperror.NewNotFound("wizard session", ownerID.String())
	}
	s.Draft = *s.Draft.Clone()
	return &s, nil
}

func (m *memSessionStore) Store(_ context.Context, ownerID uuid.UUID, state *wizard.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := *state
	s.Draft = *state.Draft.Clone()
	m.states[ownerID] = s
	return nil
}

func (m *memSessionStore) Delete(_ context.Context, ownerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, ownerID)
	return nil
}

type memDraftRepo struct {
	mu      sync.Mutex
	drafts  map[uuid.UUID]draft.Draft
	saveErr error
}

func newMemDraftRepo() *memDraftRepo {
	return &memDraftRepo{drafts: make(map[uuid.UUID]draft.Draft)}
}

func (m *memDraftRepo) Save(_ context.Context, ownerID uuid.UUID, d *draft.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.drafts[ownerID] = *d.Clone()
	return nil
}

func (m *memDraftRepo) FindByOwner(_ context.Context, ownerID uuid.UUID) (*draft.SavedDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[ownerID]
	if !ok {
		return nil, apperror.NewNotFound("draft", ownerID.String())
	}
	return &draft.SavedDraft{OwnerID: ownerID, Draft: *d.Clone(), UpdatedAt: time.Now()}, nil
}

func (m *memDraftRepo) Delete(_ context.Context, ownerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, ownerID)
	return nil
}

type memPortfolioRepo struct {
	mu      sync.Mutex
	byOwner map[uuid.UUID]*portfolio.Portfolio
}

func newMemPortfolioRepo() *memPortfolioRepo {
	return &memPortfolioRepo{byOwner: make(map[uuid.UUID]*portfolio.Portfolio)}
}

func (m *memPortfolioRepo) Save(_ context.Context, p *portfolio.Portfolio) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.byOwner[p.OwnerID] = &cp
	return nil
}

func (m *memPortfolioRepo) FindByOwner(_ context.Context, ownerID uuid.UUID) (*portfolio.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byOwner[ownerID]
	if !ok {
		return nil, apperror.NewNotFound("portfolio", ownerID.String())
	}
	cp := *p
	return &cp, nil
}

func (m *memPortfolioRepo) FindByID(_ context.Context, id uuid.UUID) (*portfolio.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byOwner {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("portfolio", id.String())
}

func (m *memPortfolioRepo) FindPublishedByUsername(context.Context, string) (*portfolio.Portfolio, error) {
	return nil, apperror.NewNotFound("portfolio", "")
}

func (m *memPortfolioRepo) ListPublishedBySkill(context.Context, string, int, int) ([]*portfolio.Portfolio, error) {
	return nil, nil
}

func (m *memPortfolioRepo) UpdateHostedURL(context.Context, uuid.UUID, string) error {
	return nil
}

type recordingPublisher struct {
	drafts     chan event.DraftEventPayload
	portfolios chan event.PortfolioEventPayload
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{
		drafts:     make(chan event.DraftEventPayload, 8),
		portfolios: make(chan event.PortfolioEventPayload, 8),
	}
}

func (r *recordingPublisher) PublishDraftEvent(_ context.Context, p event.DraftEventPayload) error {
	r.drafts <- p
	return nil
}

func (r *recordingPublisher) PublishPortfolioEvent(_ context.Context, p event.PortfolioEventPayload) error {
	r.portfolios <- p
	return nil
}

type generatorFunc func(ctx context.Context, d draft.Draft) (*portfolio.Portfolio, error)

func (f generatorFunc) Generate(ctx context.Context, d draft.Draft) (*portfolio.Portfolio, error) {
	return f(ctx, d)
}
