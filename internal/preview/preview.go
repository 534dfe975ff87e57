// Package preview builds the read-only portfolio view from a draft or a
// generated portfolio and renders it as a standalone HTML page.
package preview

import (
	"strings"
	"time"

	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
)

type Mode string

const (
	ModeDesktop Mode = "desktop"
	ModeMobile  Mode = "mobile"
)

// ParseMode maps anything other than "mobile" to desktop.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeMobile {
		return ModeMobile
	}
	return ModeDesktop
}

type Hero struct {
	FullName    string `json:"full_name"`
	Initials    string `json:"initials"`
	Title       string `json:"title"`
	Location    string `json:"location,omitempty"`
	Email       string `json:"email"`
	LinkedinURL string `json:"linkedin_url,omitempty"`
	GithubURL   string `json:"github_url,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

type ExperienceItem struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type ProjectItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TechStack   []string `json:"tech_stack"`
	LiveURL     string   `json:"live_url,omitempty"`
	GithubURL   string   `json:"github_url,omitempty"`
}

type Footer struct {
	FullName string `json:"full_name"`
}

// Document is the render model. Empty sections are nil slices and are left
// out of the page.
type Document struct {
	Hero        Hero             `json:"hero"`
	Experiences []ExperienceItem `json:"experiences,omitempty"`
	Skills      []string         `json:"skills,omitempty"`
	Projects    []ProjectItem    `json:"projects,omitempty"`
	Footer      Footer           `json:"footer"`
}

// FromDraft renders the owner's raw input; the hero bio is their summary.
func FromDraft(d draft.Draft) Document {
	return build(d, d.PersonalInfo.Summary,
		func(e draft.Experience) string { return e.Description },
		func(p draft.Project) string { return p.Description },
	)
}

// FromPortfolio prefers generated text wherever it exists.
func FromPortfolio(p *portfolio.Portfolio) Document {
	return build(p.Draft, p.Bio(), p.ExperienceDescription, p.ProjectDescription)
}

func build(d draft.Draft, bio string, expDesc func(draft.Experience) string, projDesc func(draft.Project) string) Document {
	info := d.PersonalInfo
	doc := Document{
		Hero: Hero{
			FullName:    info.FullName,
			Initials:    Initials(info.FullName),
			Title:       info.Title,
			Location:    info.Location,
			Email:       info.Email,
			LinkedinURL: info.LinkedinURL,
			GithubURL:   info.GithubURL,
			Bio:         bio,
		},
		Footer: Footer{FullName: info.FullName},
	}

	for _, e := range d.Experiences {
		item := ExperienceItem{
			Company:     e.Company,
			Role:        e.Role,
			Start:       FormatDate(e.StartDate),
			Current:     e.IsCurrent,
			Description: expDesc(e),
		}
		if e.IsCurrent {
			item.End = "Present"
		} else {
			item.End = FormatDate(e.EndDate)
		}
		doc.Experiences = append(doc.Experiences, item)
	}

	if len(d.Skills) > 0 {
		doc.Skills = append([]string{}, d.Skills...)
	}

	for _, p := range d.Projects {
		doc.Projects = append(doc.Projects, ProjectItem{
			Title:       p.Title,
			Description: projDesc(p),
			TechStack:   append([]string{}, p.TechStack...),
			LiveURL:     p.LiveURL,
			GithubURL:   p.GithubURL,
		})
	}
	return doc
}

// FormatDate turns a "2006-01" month into "Jan 2006". Other input is
// returned as is.
func FormatDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2006")
}

// Initials takes the first letter of the first two words, upper-cased.
func Initials(name string) string {
	var out []rune
	for _, w := range strings.Fields(name) {
		out = append(out, []rune(w)[0])
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}
