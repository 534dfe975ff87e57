package portfolio

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-builder/adapters/event"
	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/domain/tag"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
)

type memPortfolioRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]*portfolio.Portfolio
	saveErr   error
	hosted    map[uuid.UUID]string
	lastSkill string
	lastLimit int
	lastOff   int
}

func newMemPortfolioRepo(items ...*portfolio.Portfolio) *memPortfolioRepo {
	m := &memPortfolioRepo{items: make(map[uuid.UUID]*portfolio.Portfolio), hosted: make(map[uuid.UUID]string)}
	for _, p := range items {
		m.items[p.ID] = p
	}
	return m
}

func (m *memPortfolioRepo) Save(_ context.Context, p *portfolio.Portfolio) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
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
	m.lastSkill, m.lastLimit, m.lastOff = skillSlug, limit, offset
	return []*portfolio.Portfolio{}, nil
}

func (m *memPortfolioRepo) UpdateHostedURL(_ context.Context, id uuid.UUID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return apperror.NewNotFound("portfolio", id.String())
	}
	m.hosted[id] = url
	m.items[id].SetHostedURL(url)
	return nil
}

type memTagRepo struct {
	mu        sync.Mutex
	createErr error
	resources map[uuid.UUID][]uuid.UUID
	names     map[uuid.UUID]string
}

func newMemTagRepo() *memTagRepo {
	return &memTagRepo{resources: make(map[uuid.UUID][]uuid.UUID), names: make(map[uuid.UUID]string)}
}

func (m *memTagRepo) FindOrCreateTags(_ context.Context, names []string) ([]tag.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	out := make([]tag.Tag, 0, len(names))
	for _, n := range names {
		t := tag.Tag{ID: uuid.New(), Name: n, Slug: tag.Slugify(n)}
		m.names[t.ID] = t.Slug
		out = append(out, t)
	}
	return out, nil
}

func (m *memTagRepo) SetTagsForResource(_ context.Context, resourceID uuid.UUID, _ string, tagIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources[resourceID] = tagIDs
	return nil
}

func (m *memTagRepo) GetTagsForResource(_ context.Context, resourceID uuid.UUID, _ string) ([]tag.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []tag.Tag
	for _, id := range m.resources[resourceID] {
		out = append(out, tag.Tag{ID: id, Slug: m.names[id]})
	}
	return out, nil
}

type draftSourceFunc func(ctx context.Context, ownerID uuid.UUID) (draft.Draft, error)

func (f draftSourceFunc) CurrentDraft(ctx context.Context, ownerID uuid.UUID) (draft.Draft, error) {
	return f(ctx, ownerID)
}

type recordingPublisher struct {
	portfolios chan event.PortfolioEventPayload
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{portfolios: make(chan event.PortfolioEventPayload, 8)}
}

func (r *recordingPublisher) PublishDraftEvent(context.Context, event.DraftEventPayload) error {
	return nil
}

func (r *recordingPublisher) PublishPortfolioEvent(_ context.Context, p event.PortfolioEventPayload) error {
	r.portfolios <- p
	return nil
}

type fakeUploader struct {
	mu       sync.Mutex
	body     string
	folder   string
	publicID string
	err      error
}

func (f *fakeUploader) Upload(_ context.Context, file io.Reader, folder, publicID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	f.body, f.folder, f.publicID = string(b), folder, publicID
	return "https://cdn.example.com/" + folder + "/" + publicID, nil
}

func (f *fakeUploader) Delete(context.Context, string) error {
	return errors.New("not implemented")
}
