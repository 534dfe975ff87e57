package wizard

import (
	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
	"github.com/khoahotran/portfolio-builder/internal/domain/wizard"
)

// View is everything a client needs to draw the wizard: the step indicator,
// button availability and the draft itself.
type View struct {
	CurrentStep     wizard.Step         `json:"current_step"`
	Steps           []wizard.StepStatus `json:"steps"`
	CanAdvance      bool                `json:"can_advance"`
	CanGoBack       bool                `json:"can_go_back"`
	IsLast          bool                `json:"is_last"`
	Saving          bool                `json:"saving"`
	Generating      bool                `json:"generating"`
	CanSave         bool                `json:"can_save"`
	CanGenerate     bool                `json:"can_generate"`
	Draft           draft.Draft         `json:"draft"`
	SkillHint       string              `json:"skill_hint"`
	SuggestedSkills []string            `json:"suggested_skills"`
}

func newView(w *wizard.Wizard) *View {
	d := w.Draft()
	return &View{
		CurrentStep:     w.CurrentStep(),
		Steps:           w.Progress(),
		CanAdvance:      !w.IsLast() && w.CanAdvance(w.CurrentStep()),
		CanGoBack:       w.CanGoBack(),
		IsLast:          w.IsLast(),
		Saving:          w.Saving(),
		Generating:      w.Generating(),
		CanSave:         !w.Saving(),
		CanGenerate:     w.IsLast() && !w.Generating(),
		Draft:           d,
		SkillHint:       draft.SkillHint(len(d.Skills)),
		SuggestedSkills: draft.Suggestions(d.Skills),
	}
}

// NavigationResult reports whether a navigation request moved the wizard.
// A refused move is not an error.
type NavigationResult struct {
	View
	Moved bool `json:"moved"`
}

// EntryResult carries the id of a newly added experience or project.
type EntryResult struct {
	View
	ID string `json:"id"`
}
