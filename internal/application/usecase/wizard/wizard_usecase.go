package wizard

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
	"github.com/khoahotran/portfolio-builder/internal/domain/wizard"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

var tracer = otel.Tracer("wizard_usecase")

// WizardUseCase drives navigation and step editing for one owner's session.
type WizardUseCase struct {
	sessions *Sessions
	logger   logger.Logger
}

func NewWizardUseCase(sessions *Sessions, log logger.Logger) *WizardUseCase {
	return &WizardUseCase{sessions: sessions, logger: log}
}

func (uc *WizardUseCase) Get(ctx context.Context, ownerID uuid.UUID) (*View, error) {
	return uc.sessions.Read(ctx, ownerID)
}

func (uc *WizardUseCase) navigate(ctx context.Context, ownerID uuid.UUID, name string, move func(w *wizard.Wizard) bool) (*NavigationResult, error) {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()

	var moved bool
	view, err := uc.sessions.Update(ctx, ownerID, func(w *wizard.Wizard) error {
		moved = move(w)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Bool("moved", moved), attribute.Int("step", int(view.CurrentStep)))
	return &NavigationResult{View: *view, Moved: moved}, nil
}

func (uc *WizardUseCase) Next(ctx context.Context, ownerID uuid.UUID) (*NavigationResult, error) {
	return uc.navigate(ctx, ownerID, "Next", (*wizard.Wizard).GoNext)
}

func (uc *WizardUseCase) Prev(ctx context.Context, ownerID uuid.UUID) (*NavigationResult, error) {
	return uc.navigate(ctx, ownerID, "Prev", (*wizard.Wizard).GoPrev)
}

// JumpTo only moves backwards or stays put; forward jumps report Moved=false.
func (uc *WizardUseCase) JumpTo(ctx context.Context, ownerID uuid.UUID, step int) (*NavigationResult, error) {
	return uc.navigate(ctx, ownerID, "JumpTo", func(w *wizard.Wizard) bool {
		return w.JumpTo(wizard.Step(step))
	})
}

func (uc *WizardUseCase) Reset(ctx context.Context, ownerID uuid.UUID) (*View, error) {
	if err := uc.sessions.Reset(ctx, ownerID); err != nil {
		return nil, err
	}
	return uc.sessions.Read(ctx, ownerID)
}

// Submit returns the assembled draft. Only allowed from the last step.
func (uc *WizardUseCase) Submit(ctx context.Context, ownerID uuid.UUID) (*draft.Draft, error) {
	w, err := uc.sessions.Snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	d, err := w.Submit()
	if err != nil {
		return nil, apperror.NewPrecondition("submit is only available on the last step")
	}
	return &d, nil
}

// Personal info

func (uc *WizardUseCase) UpdatePersonalInfo(ctx context.Context, ownerID uuid.UUID, patch draft.PersonalInfoPatch) (*View, error) {
	return uc.sessions.Update(ctx, ownerID, func(w *wizard.Wizard) error {
		w.UpdatePersonalInfo(draft.ApplyPersonalInfoEdit(w.Draft().PersonalInfo, patch))
		return nil
	})
}

// Skills

func (uc *WizardUseCase) editSkills(ctx context.Context, ownerID uuid.UUID, edit func([]string) []string) (*View, error) {
	return uc.sessions.Update(ctx, ownerID, func(w *wizard.Wizard) error {
		w.UpdateSkills(edit(w.Draft().Skills))
		return nil
	})
}

func (uc *WizardUseCase) ReplaceSkills(ctx context.Context, ownerID uuid.UUID, skills []string) (*View, error) {
	return uc.editSkills(ctx, ownerID, func([]string) []string { return draft.NormalizeTags(skills) })
}

// AddSkill ignores empty values and exact duplicates.
func (uc *WizardUseCase) AddSkill(ctx context.Context, ownerID uuid.UUID, skill string) (*View, error) {
	return uc.editSkills(ctx, ownerID, func(list []string) []string {
		next, _ := draft.AddTag(list, skill)
		return next
	})
}

func (uc *WizardUseCase) RemoveSkill(ctx context.Context, ownerID uuid.UUID, skill string) (*View, error) {
	return uc.editSkills(ctx, ownerID, func(list []string) []string { return draft.RemoveTag(list, skill) })
}

func (uc *WizardUseCase) RemoveLastSkill(ctx context.Context, ownerID uuid.UUID) (*View, error) {
	return uc.editSkills(ctx, ownerID, draft.RemoveLastTag)
}

func (uc *WizardUseCase) ClearSkills(ctx context.Context, ownerID uuid.UUID) (*View, error) {
	return uc.editSkills(ctx, ownerID, func([]string) []string { return []string{} })
}

// Experiences

func (uc *WizardUseCase) AddExperience(ctx context.Context, ownerID uuid.UUID) (*EntryResult, error) {
	var added draft.Experience
	view, err := uc.sessions.Update(ctx, ownerID, func(w *wizard.Wizard) error {
		var list []draft.Experience
		list, added = draft.AddExperience(w.Draft().Experiences)
		w.UpdateExperiences(list)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &EntryResult{View: *view, ID: added.ID.String()}, nil
}

func (uc *WizardUseCase) UpdateExperience(ctx context.Context, ownerID, id uuid.UUID, field string, value any) (*View, error) {
	return uc.sessions.Update(ctx, ownerID, func(w *wizard.Wizard) error {
		list, err := draft.UpdateExperienceField(w.Draft().Experiences, id, draft.ExperienceField(field), value)
		if err != nil {
			return fieldError(err)
		}
		w.UpdateExperiences(list)
		return nil
	})
}

func (uc *WizardUseCase) RemoveExperience(ctx context.Context, ownerID, id uuid.UUID) (*View, error) {
	return uc.sessions.Update(ctx, ownerID, func(w *wizard.Wizard) error {
		w.UpdateExperiences(draft.RemoveExperience(w.Draft().Experiences, id))
		return nil
	})
}

// Projects

func (uc *WizardUseCase) AddProject(ctx context.Context, ownerID uuid.UUID) (*EntryResult, error) {
	var added draft.Project
	view, err := uc.sessions.Update(ctx, ownerID, func(w *wizard.Wizard) error {
		var list []draft.Project
		list, added = draft.AddProject(w.Draft().Projects)
		w.UpdateProjects(list)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &EntryResult{View: *view, ID: added.ID.String()}, nil
}

func (uc *WizardUseCase) UpdateProject(ctx context.Context, ownerID, id uuid.UUID, field string, value any) (*View, error) {
	return uc.sessions.Update(ctx, ownerID, func(w *wizard.Wizard) error {
		list, err := draft.UpdateProjectField(w.Draft().Projects, id, draft.ProjectField(field), value)
		if err != nil {
			return fieldError(err)
		}
		w.UpdateProjects(list)
		return nil
	})
}

func (uc *WizardUseCase) RemoveProject(ctx context.Context, ownerID, id uuid.UUID) (*View, error) {
	return uc.sessions.Update(ctx, ownerID, func(w *wizard.Wizard) error {
		w.UpdateProjects(draft.RemoveProject(w.Draft().Projects, id))
		return nil
	})
}

func (uc *WizardUseCase) AddProjectTech(ctx context.Context, ownerID, id uuid.UUID, tech string) (*View, error) {
	return uc.sessions.Update(ctx, ownerID, func(w *wizard.Wizard) error {
		w.UpdateProjects(draft.AddProjectTech(w.Draft().Projects, id, tech))
		return nil
	})
}

func (uc *WizardUseCase) RemoveProjectTech(ctx context.Context, ownerID, id uuid.UUID, tech string) (*View, error) {
	return uc.sessions.Update(ctx, ownerID, func(w *wizard.Wizard) error {
		w.UpdateProjects(draft.RemoveProjectTech(w.Draft().Projects, id, tech))
		return nil
	})
}

func fieldError(err error) error {
	if errors.Is(err, draft.ErrUnknownField) || errors.Is(err, draft.ErrInvalidFieldValue) {
		return apperror.NewInvalidInput(err.Error(), err)
	}
	return err
}
