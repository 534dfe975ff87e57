package draft

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// The editors below are pure reducers: each takes the current slice of a
// Draft and returns the next one without touching its input.

var (
	ErrUnknownField      = errors.New("unknown field")
	ErrInvalidFieldValue = errors.New("invalid field value")
)

type PersonalInfoPatch struct {
	FullName    *string `json:"full_name"`
	Title       *string `json:"title"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Location    *string `json:"location"`
	LinkedinURL *string `json:"linkedin_url"`
	GithubURL   *string `json:"github_url"`
	Summary     *string `json:"summary"`
}

func ApplyPersonalInfoEdit(current PersonalInfo, patch PersonalInfoPatch) PersonalInfo {
	next := current
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&next.FullName, patch.FullName)
	set(&next.Title, patch.Title)
	set(&next.Email, patch.Email)
	set(&next.Phone, patch.Phone)
	set(&next.Location, patch.Location)
	set(&next.LinkedinURL, patch.LinkedinURL)
	set(&next.GithubURL, patch.GithubURL)
	set(&next.Summary, patch.Summary)
	return next
}

// AddTag trims value and appends it unless it is empty or already present.
// The second result reports whether the list changed.
func AddTag(list []string, value string) ([]string, bool) {
	v := strings.TrimSpace(value)
	if v == "" || slices.Contains(list, v) {
		return list, false
	}
	next := make([]string, len(list), len(list)+1)
	copy(next, list)
	return append(next, v), true
}

func RemoveTag(list []string, value string) []string {
	i := slices.Index(list, value)
	if i < 0 {
		return list
	}
	return slices.Delete(slices.Clone(list), i, i+1)
}

// RemoveLastTag drops the most recently added tag.
func RemoveLastTag(list []string) []string {
	if len(list) == 0 {
		return list
	}
	return slices.Clone(list[:len(list)-1])
}

// NormalizeTags folds values through AddTag, so the result is trimmed,
// non-empty and free of duplicates, in first-seen order.
func NormalizeTags(values []string) []string {
	out := []string{}
	for _, v := range values {
		out, _ = AddTag(out, v)
	}
	return out
}

type ExperienceField string

const (
	ExperienceCompany     ExperienceField = "company"
	ExperienceRole        ExperienceField = "role"
	ExperienceStartDate   ExperienceField = "start_date"
	ExperienceEndDate     ExperienceField = "end_date"
	ExperienceIsCurrent   ExperienceField = "is_current"
	ExperienceDescription ExperienceField = "description"
)

func AddExperience(list []Experience) ([]Experience, Experience) {
	e := Experience{ID: uuid.New()}
	next := make([]Experience, len(list), len(list)+1)
	copy(next, list)
	return append(next, e), e
}

func RemoveExperience(list []Experience, id uuid.UUID) []Experience {
	return slices.DeleteFunc(slices.Clone(list), func(e Experience) bool { return e.ID == id })
}

// UpdateExperienceField sets one field on the entry with the given id.
// Turning is_current on clears end_date in the same step, and end_date
// cannot be set while the entry is current.
func UpdateExperienceField(list []Experience, id uuid.UUID, field ExperienceField, value any) ([]Experience, error) {
	apply, err := experienceSetter(field, value)
	if err != nil {
		return list, err
	}
	return updateByID(list, func(e Experience) bool { return e.ID == id }, apply), nil
}

func experienceSetter(field ExperienceField, value any) (func(*Experience), error) {
	if field == ExperienceIsCurrent {
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a boolean", ErrInvalidFieldValue, field)
		}
		return func(e *Experience) {
			e.IsCurrent = b
			if b {
				e.EndDate = ""
			}
		}, nil
	}

	var target func(*Experience) *string
	switch field {
	case ExperienceCompany:
		target = func(e *Experience) *string { return &e.Company }
	case ExperienceRole:
		target = func(e *Experience) *string { return &e.Role }
	case ExperienceStartDate:
		target = func(e *Experience) *string { return &e.StartDate }
	case ExperienceEndDate:
		target = func(e *Experience) *string { return &e.EndDate }
	case ExperienceDescription:
		target = func(e *Experience) *string { return &e.Description }
	default:
		return nil, fmt.Errorf("%w: experience.%s", ErrUnknownField, field)
	}

	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a string", ErrInvalidFieldValue, field)
	}
	return func(e *Experience) {
		if field == ExperienceEndDate && e.IsCurrent {
			return
		}
		*target(e) = s
	}, nil
}

type ProjectField string

const (
	ProjectTitle       ProjectField = "title"
	ProjectDescription ProjectField = "description"
	ProjectTechStack   ProjectField = "tech_stack"
	ProjectLiveURL     ProjectField = "live_url"
	ProjectGithubURL   ProjectField = "github_url"
)

func AddProject(list []Project) ([]Project, Project) {
	p := Project{ID: uuid.New(), TechStack: []string{}}
	next := make([]Project, len(list), len(list)+1)
	copy(next, list)
	return append(next, p), p
}

func RemoveProject(list []Project, id uuid.UUID) []Project {
	return slices.DeleteFunc(slices.Clone(list), func(p Project) bool { return p.ID == id })
}

func UpdateProjectField(list []Project, id uuid.UUID, field ProjectField, value any) ([]Project, error) {
	apply, err := projectSetter(field, value)
	if err != nil {
		return list, err
	}
	return updateByID(list, func(p Project) bool { return p.ID == id }, apply), nil
}

func AddProjectTech(list []Project, id uuid.UUID, tech string) []Project {
	return updateByID(list, func(p Project) bool { return p.ID == id }, func(p *Project) {
		p.TechStack, _ = AddTag(p.TechStack, tech)
	})
}

func RemoveProjectTech(list []Project, id uuid.UUID, tech string) []Project {
	return updateByID(list, func(p Project) bool { return p.ID == id }, func(p *Project) {
		p.TechStack = RemoveTag(p.TechStack, tech)
	})
}

func projectSetter(field ProjectField, value any) (func(*Project), error) {
	if field == ProjectTechStack {
		values, ok := stringList(value)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a list of strings", ErrInvalidFieldValue, field)
		}
		stack := NormalizeTags(values)
		return func(p *Project) { p.TechStack = stack }, nil
	}

	var target func(*Project) *string
	switch field {
	case ProjectTitle:
		target = func(p *Project) *string { return &p.Title }
	case ProjectDescription:
		target = func(p *Project) *string { return &p.Description }
	case ProjectLiveURL:
		target = func(p *Project) *string { return &p.LiveURL }
	case ProjectGithubURL:
		target = func(p *Project) *string { return &p.GithubURL }
	default:
		return nil, fmt.Errorf("%w: project.%s", ErrUnknownField, field)
	}

	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a string", ErrInvalidFieldValue, field)
	}
	return func(p *Project) { *target(p) = s }, nil
}

// stringList accepts []string or the []any a JSON decoder produces.
func stringList(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// updateByID copies list and applies fn to the first matching entry. Other
// entries are copied as-is. An unknown id yields an unchanged copy.
func updateByID[T any](list []T, match func(T) bool, fn func(*T)) []T {
	next := slices.Clone(list)
	for i := range next {
		if match(next[i]) {
			fn(&next[i])
			break
		}
	}
	return next
}
