package http

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-builder/adapters/event"
	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/domain/tag"
	"github.com/khoahotran/portfolio-builder/internal/domain/user"
	"github.com/khoahotran/portfolio-builder/internal/domain/wizard"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
)

type memSessionStore struct {
	mu     sync.Mutex
	states map[uuid.UUID]wizard.State
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
	mu     sync.Mutex
	drafts map[uuid.UUID]draft.Draft
	err    error
}

func (m *memDraftRepo) Save(_ context.Context, ownerID uuid.UUID, d *draft.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
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
	mu    sync.Mutex
	items map[uuid.UUID]*portfolio.Portfolio
}

func (m *memPortfolioRepo) Save(_ context.Context, p *portfolio.Portfolio) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.items {
		if other.ID != p.ID && p.Username != "" && other.Username == p.Username {
			return apperror.NewConflict("portfolio", "username", p.Username)
		}
	}
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memPortfolioRepo) find(match func(*portfolio.Portfolio) bool) (*portfolio.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if match(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("portfolio", "")
}

func (m *memPortfolioRepo) FindByOwner(_ context.Context, ownerID uuid.UUID) (*portfolio.Portfolio, error) {
	return m.find(func(p *portfolio.Portfolio) bool { return p.OwnerID == ownerID })
}

func (m *memPortfolioRepo) FindByID(_ context.Context, id uuid.UUID) (*portfolio.Portfolio, error) {
	return m.find(func(p *portfolio.Portfolio) bool { return p.ID == id })
}

func (m *memPortfolioRepo) FindPublishedByUsername(_ context.Context, username string) (*portfolio.Portfolio, error) {
	return m.find(func(p *portfolio.Portfolio) bool { return p.IsPublished() && p.Username == username })
}

func (m *memPortfolioRepo) ListPublishedBySkill(_ context.Context, skillSlug string, limit, offset int) ([]*portfolio.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*portfolio.Portfolio{}
	for _, p := range m.items {
		if !p.IsPublished() {
			continue
		}
		for _, s := range p.Draft.Skills {
			if tag.Slugify(s) == skillSlug {
				cp := *p
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

func (m *memPortfolioRepo) UpdateHostedURL(_ context.Context, id uuid.UUID, url string) error {
	return nil
}

type memTagRepo struct{}

func (memTagRepo) FindOrCreateTags(_ context.Context, names []string) ([]tag.Tag, error) {
	out := make([]tag.Tag, len(names))
	for i, n := range names {
		out[i] = tag.Tag{ID: uuid.New(), Name: n, Slug: tag.Slugify(n)}
	}
	return out, nil
}

func (memTagRepo) SetTagsForResource(context.Context, uuid.UUID, string, []uuid.UUID) error {
	return nil
}

func (memTagRepo) GetTagsForResource(context.Context, uuid.UUID, string) ([]tag.Tag, error) {
	return nil, nil
}

type memUserRepo struct {
	users []*user.User
}

func (m *memUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (m *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", id.String())
}

type nopPublisher struct{}

func (nopPublisher) PublishDraftEvent(context.Context, event.DraftEventPayload) error { return nil }

func (nopPublisher) PublishPortfolioEvent(context.Context, event.PortfolioEventPayload) error {
	return nil
}

// echoGenerator copies the draft and uses the summary as the bio.
type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, d draft.Draft) (*portfolio.Portfolio, error) {
	return &portfolio.Portfolio{
		Draft:               *d.Clone(),
		GeneratedBio:        "Generated: " + d.PersonalInfo.FullName,
		EnhancedExperiences: map[uuid.UUID]string{},
		EnhancedProjects:    map[uuid.UUID]string{},
	}, nil
}
