package draft

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PersonalInfo struct {
	FullName    string `json:"full_name"`
	Title       string `json:"title"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Location    string `json:"location"`
	LinkedinURL string `json:"linkedin_url"`
	GithubURL   string `json:"github_url"`
	Summary     string `json:"summary"`
}

// HasRequired reports whether the fields needed to leave the personal step
// are all filled in.
func (p PersonalInfo) HasRequired() bool {
	return p.FullName != "" && p.Title != "" && p.Email != ""
}

type Experience struct {
	ID          uuid.UUID `json:"id"`
	Company     string    `json:"company"`
	Role        string    `json:"role"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	IsCurrent   bool      `json:"is_current"`
	Description string    `json:"description"`
}

type Project struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TechStack   []string  `json:"tech_stack"`
	LiveURL     string    `json:"live_url"`
	GithubURL   string    `json:"github_url"`
}

// Draft is the portfolio document assembled across the wizard steps.
type Draft struct {
	PersonalInfo PersonalInfo `json:"personal_info"`
	Experiences  []Experience `json:"experiences"`
	Skills       []string     `json:"skills"`
	Projects     []Project    `json:"projects"`
}

func New() *Draft {
	return &Draft{
		Experiences: []Experience{},
		Skills:      []string{},
		Projects:    []Project{},
	}
}

// Normalize replaces nil collections with empty ones, folds skills and tech
// stacks into trimmed sets and clears the end date of current roles. Drafts
// decoded from storage go through it so callers never see a broken draft.
func (d *Draft) Normalize() {
	if d.Experiences == nil {
		d.Experiences = []Experience{}
	}
	for i := range d.Experiences {
		if d.Experiences[i].IsCurrent {
			d.Experiences[i].EndDate = ""
		}
	}
	d.Skills = NormalizeTags(d.Skills)
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	for i := range d.Projects {
		d.Projects[i].TechStack = NormalizeTags(d.Projects[i].TechStack)
	}
}

// Clone returns a deep copy.
func (d *Draft) Clone() *Draft {
	c := &Draft{
		PersonalInfo: d.PersonalInfo,
		Experiences:  append([]Experience{}, d.Experiences...),
		Skills:       append([]string{}, d.Skills...),
		Projects:     make([]Project, len(d.Projects)),
	}
	for i, p := range d.Projects {
		p.TechStack = append([]string{}, p.TechStack...)
		c.Projects[i] = p
	}
	return c
}

type SavedDraft struct {
	OwnerID   uuid.UUID `json:"owner_id"`
	Draft     Draft     `json:"draft"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Repository interface {
	Save(ctx context.Context, ownerID uuid.UUID, d *Draft) error
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*SavedDraft, error)
	Delete(ctx context.Context, ownerID uuid.UUID) error
}
