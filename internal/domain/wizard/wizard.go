package wizard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
)

var (
	ErrNotTerminal   = errors.New("submit is only available on the last step")
	ErrSliceMismatch = errors.New("value does not match the step's draft slice")
	ErrInvalidStep   = errors.New("invalid step")
)

// Wizard owns the current step and the Draft being built. It is not safe for
// concurrent use; callers serialize access per owner.
type Wizard struct {
	current    Step
	draft      *draft.Draft
	saving     bool
	generating bool
}

func New() *Wizard {
	return &Wizard{current: FirstStep, draft: draft.New()}
}

// State is the persisted form of a wizard session.
type State struct {
	CurrentStep Step        `json:"current_step"`
	Draft       draft.Draft `json:"draft"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Restore rebuilds a wizard from a stored state. An out-of-range step falls
// back to the first one.
func Restore(s State) *Wizard {
	d := s.Draft.Clone()
	d.Normalize()
	step := s.CurrentStep
	if !step.Valid() {
		step = FirstStep
	}
	return &Wizard{current: step, draft: d}
}

// FromDraft starts a wizard on the first step over an existing draft.
func FromDraft(d draft.Draft) *Wizard {
	return Restore(State{CurrentStep: FirstStep, Draft: d})
}

func (w *Wizard) State() State {
	return State{CurrentStep: w.current, Draft: *w.draft.Clone()}
}

func (w *Wizard) CurrentStep() Step {
	return w.current
}

// Draft returns a copy of the draft.
func (w *Wizard) Draft() draft.Draft {
	return *w.draft.Clone()
}

func (w *Wizard) CanAdvance(step Step) bool {
	return step.Gate(w.draft)
}

func (w *Wizard) IsLast() bool {
	return w.current == LastStep
}

func (w *Wizard) CanGoBack() bool {
	return w.current > FirstStep
}

// GoNext moves one step forward when the current step's gate passes. It
// reports whether the step changed.
func (w *Wizard) GoNext() bool {
	if w.current == LastStep || !w.CanAdvance(w.current) {
		return false
	}
	w.current++
	return true
}

func (w *Wizard) GoPrev() bool {
	if w.current == FirstStep {
		return false
	}
	w.current--
	return true
}

// JumpTo moves to an already visited step. Forward jumps are refused so that
// every gate between here and the target runs through GoNext.
func (w *Wizard) JumpTo(step Step) bool {
	if !step.Valid() || step > w.current {
		return false
	}
	w.current = step
	return true
}

// UpdateStep replaces the draft slice owned by step. No gate is evaluated
// here; validity only matters when navigating or submitting.
func (w *Wizard) UpdateStep(step Step, value any) error {
	mismatch := func() error {
		return fmt.Errorf("%w: step %s got %T", ErrSliceMismatch, step, value)
	}
	switch step {
	case StepPersonal:
		v, ok := value.(draft.PersonalInfo)
		if !ok {
			return mismatch()
		}
		w.UpdatePersonalInfo(v)
	case StepExperience:
		v, ok := value.([]draft.Experience)
		if !ok {
			return mismatch()
		}
		w.UpdateExperiences(v)
	case StepSkills:
		v, ok := value.([]string)
		if !ok {
			return mismatch()
		}
		w.UpdateSkills(v)
	case StepProjects:
		v, ok := value.([]draft.Project)
		if !ok {
			return mismatch()
		}
		w.UpdateProjects(v)
	default:
		return fmt.Errorf("%w: %d", ErrInvalidStep, int(step))
	}
	return nil
}

func (w *Wizard) UpdatePersonalInfo(p draft.PersonalInfo) {
	w.draft.PersonalInfo = p
}

// The list updates copy their input, so later changes by the caller do not
// reach the draft.
func (w *Wizard) UpdateExperiences(list []draft.Experience) {
	w.draft.Experiences = slices.Clone(list)
	w.draft.Normalize()
}

func (w *Wizard) UpdateSkills(list []string) {
	w.draft.Skills = draft.NormalizeTags(list)
}

func (w *Wizard) UpdateProjects(list []draft.Project) {
	w.draft.Projects = slices.Clone(list)
	w.draft.Normalize()
}

// Submit hands out a copy of the assembled draft. Only the last step may
// submit.
func (w *Wizard) Submit() (draft.Draft, error) {
	if w.current != LastStep {
		return draft.Draft{}, ErrNotTerminal
	}
	return w.Draft(), nil
}

// Saving and Generating only drive button availability; navigation ignores
// them.
func (w *Wizard) Saving() bool         { return w.saving }
func (w *Wizard) Generating() bool     { return w.generating }
func (w *Wizard) SetSaving(v bool)     { w.saving = v }
func (w *Wizard) SetGenerating(v bool) { w.generating = v }

type StepStatus struct {
	StepInfo
	Completed bool `json:"completed"`
	Current   bool `json:"current"`
	Clickable bool `json:"clickable"`
}

// Progress describes each step relative to the current one, as shown by a
// step indicator.
func (w *Wizard) Progress() []StepStatus {
	out := make([]StepStatus, len(steps))
	for i, info := range steps {
		completed := info.Step < w.current
		current := info.Step == w.current
		out[i] = StepStatus{
			StepInfo:  info,
			Completed: completed,
			Current:   current,
			Clickable: completed || current,
		}
	}
	return out
}

type SessionStore interface {
	Load(ctx context.Context, ownerID uuid.UUID) (*State, error)
	Store(ctx context.Context, ownerID uuid.UUID, state *State) error
	Delete(ctx context.Context, ownerID uuid.UUID) error
}
