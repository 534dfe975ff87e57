package portfolio

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
)

type Status string

const (
	StatusPreview   Status = "preview"
	StatusPublished Status = "published"
)

// Portfolio is the generated, enhanced form of a submitted draft. An owner
// has at most one.
type Portfolio struct {
	ID                  uuid.UUID            `json:"id"`
	OwnerID             uuid.UUID            `json:"owner_id"`
	Username            string               `json:"username"`
	Draft               draft.Draft          `json:"draft"`
	GeneratedBio        string               `json:"generated_bio"`
	EnhancedExperiences map[uuid.UUID]string `json:"enhanced_experiences"`
	EnhancedProjects    map[uuid.UUID]string `json:"enhanced_projects"`
	Status              Status               `json:"status"`
	HostedURL           *string              `json:"hosted_url"`
	PublishedAt         *time.Time           `json:"published_at"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

var (
	ErrInvalidStatus   = errors.New("invalid portfolio status")
	ErrInvalidUsername = errors.New("username only includes lowercase letter, digit and -")
	ErrNotPublished    = errors.New("portfolio is not published")
	usernameRegex      = regexp.MustCompile(`^[a-z0-9-]+$`)
)

func ValidUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

func (p *Portfolio) Validate() error {
	switch p.Status {
	case StatusPreview, StatusPublished:
	default:
		return ErrInvalidStatus
	}
	if p.Username != "" && !ValidUsername(p.Username) {
		return ErrInvalidUsername
	}
	if p.Status == StatusPublished && p.Username == "" {
		return ErrInvalidUsername
	}
	return nil
}

// Publish claims username and marks the portfolio public. Republishing keeps
// the first publication time.
func (p *Portfolio) Publish(username string, now time.Time) error {
	if !ValidUsername(username) {
		return ErrInvalidUsername
	}
	p.Username = username
	p.Status = StatusPublished
	p.UpdatedAt = now
	if p.PublishedAt == nil {
		p.PublishedAt = &now
	}
	return nil
}

// Replace swaps in freshly generated content while keeping identity and
// publication state.
func (p *Portfolio) Replace(next *Portfolio, now time.Time) {
	p.Draft = next.Draft
	p.GeneratedBio = next.GeneratedBio
	p.EnhancedExperiences = next.EnhancedExperiences
	p.EnhancedProjects = next.EnhancedProjects
	p.UpdatedAt = now
}

func (p *Portfolio) SetHostedURL(url string) {
	p.HostedURL = &url
}

func (p *Portfolio) IsPublished() bool {
	return p.Status == StatusPublished
}

// ExperienceDescription prefers the enhanced text over the raw one.
func (p *Portfolio) ExperienceDescription(e draft.Experience) string {
	if s, ok := p.EnhancedExperiences[e.ID]; ok && s != "" {
		return s
	}
	return e.Description
}

func (p *Portfolio) ProjectDescription(pr draft.Project) string {
	if s, ok := p.EnhancedProjects[pr.ID]; ok && s != "" {
		return s
	}
	return pr.Description
}

// Bio is the generated bio, or the owner's own summary when none was
// generated.
func (p *Portfolio) Bio() string {
	if p.GeneratedBio != "" {
		return p.GeneratedBio
	}
	return p.Draft.PersonalInfo.Summary
}

type Repository interface {
	// Save inserts or replaces the owner's portfolio.
	Save(ctx context.Context, p *Portfolio) error
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*Portfolio, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Portfolio, error)
	FindPublishedByUsername(ctx context.Context, username string) (*Portfolio, error)
	ListPublishedBySkill(ctx context.Context, skillSlug string, limit, offset int) ([]*Portfolio, error)
	UpdateHostedURL(ctx context.Context, id uuid.UUID, url string) error
}
