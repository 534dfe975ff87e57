package http

import (
	"time"

	"github.com/google/uuid"

	portfolioUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/preview"
)

// Auth

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Wizard

type JumpRequest struct {
	Step int `json:"step" binding:"required,min=1"`
}

type ReplaceSkillsRequest struct {
	Skills []string `json:"skills"`
}

type AddSkillRequest struct {
	Skill string `json:"skill" binding:"required"`
}

type AddTechRequest struct {
	Tech string `json:"tech" binding:"required"`
}

// UpdateFieldRequest edits one field of an experience or project entry.
// Value is a string, a boolean for is_current, or a list for tech_stack.
type UpdateFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value any    `json:"value"`
}

// Portfolio

type PublishRequest struct {
	Username string `json:"username" binding:"required"`
}

type PortfolioDTO struct {
	ID                  uuid.UUID            `json:"id"`
	Username            string               `json:"username,omitempty"`
	Status              portfolio.Status     `json:"status"`
	Draft               draft.Draft          `json:"draft"`
	GeneratedBio        string               `json:"generated_bio"`
	EnhancedExperiences map[uuid.UUID]string `json:"enhanced_experiences"`
	EnhancedProjects    map[uuid.UUID]string `json:"enhanced_projects"`
	HostedURL           *string              `json:"hosted_url,omitempty"`
	PublishedAt         *time.Time           `json:"published_at,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

func ToPortfolioDTO(p *portfolio.Portfolio) PortfolioDTO {
	return PortfolioDTO{
		ID:                  p.ID,
		Username:            p.Username,
		Status:              p.Status,
		Draft:               p.Draft,
		GeneratedBio:        p.GeneratedBio,
		EnhancedExperiences: p.EnhancedExperiences,
		EnhancedProjects:    p.EnhancedProjects,
		HostedURL:           p.HostedURL,
		PublishedAt:         p.PublishedAt,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

type PreviewDTO struct {
	Mode      preview.Mode     `json:"mode"`
	Generated bool             `json:"generated"`
	Portfolio *PortfolioDTO    `json:"portfolio,omitempty"`
	Document  preview.Document `json:"document"`
}

func ToPreviewDTO(out *portfolioUC.PreviewOutput, mode preview.Mode) PreviewDTO {
	dto := PreviewDTO{Mode: mode, Document: out.Document}
	if out.Portfolio != nil {
		p := ToPortfolioDTO(out.Portfolio)
		dto.Portfolio = &p
		dto.Generated = true
	}
	return dto
}

type PublicPortfolioDTO struct {
	Username    string           `json:"username"`
	HostedURL   *string          `json:"hosted_url,omitempty"`
	PublishedAt *time.Time       `json:"published_at,omitempty"`
	Document    preview.Document `json:"document"`
}

func ToPublicPortfolioDTO(p *portfolio.Portfolio) PublicPortfolioDTO {
	return PublicPortfolioDTO{
		Username:    p.Username,
		HostedURL:   p.HostedURL,
		PublishedAt: p.PublishedAt,
		Document:    preview.FromPortfolio(p),
	}
}

type PortfolioSummaryDTO struct {
	Username    string     `json:"username"`
	FullName    string     `json:"full_name"`
	Title       string     `json:"title"`
	Skills      []string   `json:"skills"`
	HostedURL   *string    `json:"hosted_url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

func ToPortfolioSummaryDTO(p *portfolio.Portfolio) PortfolioSummaryDTO {
	return PortfolioSummaryDTO{
		Username:    p.Username,
		FullName:    p.Draft.PersonalInfo.FullName,
		Title:       p.Draft.PersonalInfo.Title,
		Skills:      p.Draft.Skills,
		HostedURL:   p.HostedURL,
		PublishedAt: p.PublishedAt,
	}
}
