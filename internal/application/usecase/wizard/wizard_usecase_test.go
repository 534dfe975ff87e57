package wizard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/domain/wizard"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/keylock"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type fixture struct {
	store      *memSessionStore
	drafts     *memDraftRepo
	portfolios *memPortfolioRepo
	events     *recordingPublisher
	sessions   *Sessions
	wizard     *WizardUseCase
	owner      uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		store:      newMemSessionStore(),
		drafts:     newMemDraftRepo(),
		portfolios: newMemPortfolioRepo(),
		events:     newRecordingPublisher(),
		owner:      uuid.New(),
	}
	log := logger.NewNop()
	f.sessions = NewSessions(f.store, f.drafts, keylock.New(), log)
	f.wizard = NewWizardUseCase(f.sessions, log)
	return f
}

func (f *fixture) generateUseCase(gen generatorFunc) *GeneratePortfolioUseCase {
	return NewGeneratePortfolioUseCase(f.sessions, gen, f.portfolios, f.events, time.Second, logger.NewNop())
}

func ptr(s string) *string { return &s }

// toLastStep fills the required fields and walks to the projects step.
func (f *fixture) toLastStep(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.wizard.UpdatePersonalInfo(ctx, f.owner, draft.PersonalInfoPatch{
		FullName: ptr("Jane Doe"), Title: ptr("Engineer"), Email: ptr("jane@x.com"),
	})
	require.NoError(t, err)
	_, err = f.wizard.AddSkill(ctx, f.owner, "Go")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		res, err := f.wizard.Next(ctx, f.owner)
		require.NoError(t, err)
		require.True(t, res.Moved)
	}
}

func TestGet_FreshSession(t *testing.T) {
	f := newFixture()

	view, err := f.wizard.Get(context.Background(), f.owner)
	require.NoError(t, err)

	assert.Equal(t, wizard.StepPersonal, view.CurrentStep)
	assert.False(t, view.CanAdvance)
	assert.False(t, view.CanGoBack)
	assert.True(t, view.CanSave)
	assert.False(t, view.CanGenerate)
	assert.Len(t, view.Steps, 4)
	assert.Len(t, view.SuggestedSkills, 12)
	assert.Equal(t, "Add at least 5 skills for better results", view.SkillHint)
	assert.NotNil(t, view.Draft.Skills)
}

func TestGet_SeedsFromSavedDraft(t *testing.T) {
	f := newFixture()
	saved := draft.New()
	saved.Skills = []string{"Go"}
	require.NoError(t, f.drafts.Save(context.Background(), f.owner, saved))

	view, err := f.wizard.Get(context.Background(), f.owner)
	require.NoError(t, err)

	assert.Equal(t, wizard.StepPersonal, view.CurrentStep)
	assert.Equal(t, []string{"Go"}, view.Draft.Skills)
}

func TestNavigation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.wizard.Next(ctx, f.owner)
	require.NoError(t, err)
	assert.False(t, res.Moved, "personal gate blocks an empty draft")

	_, err = f.wizard.UpdatePersonalInfo(ctx, f.owner, draft.PersonalInfoPatch{
		FullName: ptr("Jane Doe"), Title: ptr("Engineer"), Email: ptr("jane@x.com"),
	})
	require.NoError(t, err)

	res, err = f.wizard.Next(ctx, f.owner)
	require.NoError(t, err)
	assert.True(t, res.Moved)
	assert.Equal(t, wizard.StepExperience, res.CurrentStep)

	res, err = f.wizard.JumpTo(ctx, f.owner, int(wizard.StepSkills))
	require.NoError(t, err)
	assert.False(t, res.Moved, "forward jumps are refused")
	assert.Equal(t, wizard.StepExperience, res.CurrentStep)

	res, err = f.wizard.JumpTo(ctx, f.owner, int(wizard.StepPersonal))
	require.NoError(t, err)
	assert.True(t, res.Moved)

	// The session survives a new use case over the same store.
	other := NewWizardUseCase(NewSessions(f.store, f.drafts, keylock.New(), logger.NewNop()), logger.NewNop())
	view, err := other.Get(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, wizard.StepPersonal, view.CurrentStep)
	assert.Equal(t, "Jane Doe", view.Draft.PersonalInfo.FullName)
}

func TestView_CanAdvanceOffOnLastStep(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	view, err := f.wizard.UpdatePersonalInfo(ctx, f.owner, draft.PersonalInfoPatch{
		FullName: ptr("Jane Doe"), Title: ptr("Engineer"), Email: ptr("jane@x.com"),
	})
	require.NoError(t, err)
	assert.True(t, view.CanAdvance)

	f.toLastStep(t)
	view, err = f.wizard.Get(ctx, f.owner)
	require.NoError(t, err)
	assert.True(t, view.IsLast)
	assert.False(t, view.CanAdvance)
	assert.True(t, view.CanGenerate)
}

func TestSkillEditing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.wizard.AddSkill(ctx, f.owner, "React")
	require.NoError(t, err)
	_, err = f.wizard.AddSkill(ctx, f.owner, " Go ")
	require.NoError(t, err)
	view, err := f.wizard.AddSkill(ctx, f.owner, "React")
	require.NoError(t, err)
	assert.Equal(t, []string{"React", "Go"}, view.Draft.Skills)
	assert.NotContains(t, view.SuggestedSkills, "React")

	view, err = f.wizard.RemoveLastSkill(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"React"}, view.Draft.Skills)

	view, err = f.wizard.ReplaceSkills(ctx, f.owner, []string{"SQL", "SQL", " ", "Redis"})
	require.NoError(t, err)
	assert.Equal(t, []string{"SQL", "Redis"}, view.Draft.Skills)

	view, err = f.wizard.RemoveSkill(ctx, f.owner, "SQL")
	require.NoError(t, err)
	assert.Equal(t, []string{"Redis"}, view.Draft.Skills)

	view, err = f.wizard.ClearSkills(ctx, f.owner)
	require.NoError(t, err)
	assert.Empty(t, view.Draft.Skills)
}

func TestExperienceEditing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	added, err := f.wizard.AddExperience(ctx, f.owner)
	require.NoError(t, err)
	id := uuid.MustParse(added.ID)

	_, err = f.wizard.UpdateExperience(ctx, f.owner, id, "end_date", "2020-01")
	require.NoError(t, err)
	view, err := f.wizard.UpdateExperience(ctx, f.owner, id, "is_current", true)
	require.NoError(t, err)
	require.Len(t, view.Draft.Experiences, 1)
	assert.True(t, view.Draft.Experiences[0].IsCurrent)
	assert.Empty(t, view.Draft.Experiences[0].EndDate)

	_, err = f.wizard.UpdateExperience(ctx, f.owner, id, "salary", "1")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	view, err = f.wizard.RemoveExperience(ctx, f.owner, id)
	require.NoError(t, err)
	assert.Empty(t, view.Draft.Experiences)
}

func TestProjectEditing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	added, err := f.wizard.AddProject(ctx, f.owner)
	require.NoError(t, err)
	id := uuid.MustParse(added.ID)

	_, err = f.wizard.UpdateProject(ctx, f.owner, id, "title", "CLI")
	require.NoError(t, err)
	_, err = f.wizard.AddProjectTech(ctx, f.owner, id, "Go")
	require.NoError(t, err)
	view, err := f.wizard.AddProjectTech(ctx, f.owner, id, "Go")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, view.Draft.Projects[0].TechStack)

	view, err = f.wizard.RemoveProjectTech(ctx, f.owner, id, "Go")
	require.NoError(t, err)
	assert.Empty(t, view.Draft.Projects[0].TechStack)

	_, err = f.wizard.UpdateProject(ctx, f.owner, id, "tech_stack", 42)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	view, err = f.wizard.RemoveProject(ctx, f.owner, id)
	require.NoError(t, err)
	assert.Empty(t, view.Draft.Projects)
}

func TestSubmit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.wizard.Submit(ctx, f.owner)
	assert.ErrorIs(t, err, apperror.ErrPrecondition)

	f.toLastStep(t)
	d, err := f.wizard.Submit(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, d.Skills)
	assert.Equal(t, "Jane Doe", d.PersonalInfo.FullName)
}

func TestReset(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.toLastStep(t)

	view, err := f.wizard.Reset(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, wizard.StepPersonal, view.CurrentStep)
	assert.Empty(t, view.Draft.PersonalInfo.FullName)
}

func TestConcurrentEditsAreSerialized(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.wizard.AddSkill(ctx, f.owner, fmt.Sprintf("skill-%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	view, err := f.wizard.Get(ctx, f.owner)
	require.NoError(t, err)
	assert.Len(t, view.Draft.Skills, 20)
}

func TestCancelledWhileWaitingForSession(t *testing.T) {
	locks := keylock.New()
	owner := uuid.New()
	uc := NewWizardUseCase(NewSessions(newMemSessionStore(), newMemDraftRepo(), locks, logger.NewNop()), logger.NewNop())

	unlock, err := locks.Lock(context.Background(), owner.String())
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = uc.AddSkill(ctx, owner, "Go")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrTimeout)
	assert.Equal(t, http.StatusRequestTimeout, apperror.ToHTTPStatus(err))
}

func TestSaveDraft(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	uc := NewSaveDraftUseCase(f.sessions, f.drafts, f.events, logger.NewNop())

	_, err := f.wizard.AddSkill(ctx, f.owner, "Go")
	require.NoError(t, err)

	out, err := uc.Execute(ctx, SaveDraftInput{OwnerID: f.owner})
	require.NoError(t, err)
	assert.False(t, out.View.Saving)
	assert.Equal(t, []string{"Go"}, f.drafts.drafts[f.owner].Skills)

	select {
	case ev := <-f.events.drafts:
		assert.Equal(t, f.owner, ev.OwnerID)
		assert.Equal(t, 1, ev.SkillCount)
	case <-time.After(time.Second):
		t.Fatal("draft.saved event was not published")
	}
}

func TestSaveDraft_FailureKeepsSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.drafts.saveErr = errors.New("db down")
	uc := NewSaveDraftUseCase(f.sessions, f.drafts, f.events, logger.NewNop())

	before, err := f.wizard.AddSkill(ctx, f.owner, "Go")
	require.NoError(t, err)

	_, err = uc.Execute(ctx, SaveDraftInput{OwnerID: f.owner})
	assert.ErrorIs(t, err, apperror.ErrUnavailable)

	after, err := f.wizard.Get(ctx, f.owner)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(before.Draft, after.Draft))
	assert.False(t, after.Saving)
}

func TestSaveDraft_RejectsConcurrentSave(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.sessions.begin(f.owner, opSave))
	defer f.sessions.end(f.owner, opSave)

	uc := NewSaveDraftUseCase(f.sessions, f.drafts, f.events, logger.NewNop())
	_, err := uc.Execute(context.Background(), SaveDraftInput{OwnerID: f.owner})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	view, err := f.wizard.Get(context.Background(), f.owner)
	require.NoError(t, err)
	assert.True(t, view.Saving)
	assert.False(t, view.CanSave)
}

func TestGenerate_OnlyFromLastStep(t *testing.T) {
	f := newFixture()
	called := false
	uc := f.generateUseCase(func(context.Context, draft.Draft) (*portfolio.Portfolio, error) {
		called = true
		return &portfolio.Portfolio{}, nil
	})

	_, err := uc.Execute(context.Background(), GeneratePortfolioInput{OwnerID: f.owner})
	assert.ErrorIs(t, err, apperror.ErrPrecondition)
	assert.False(t, called)
}

func TestGenerate_Success(t *testing.T) {
	f := newFixture()
	f.toLastStep(t)

	uc := f.generateUseCase(func(_ context.Context, d draft.Draft) (*portfolio.Portfolio, error) {
		return &portfolio.Portfolio{Draft: d, GeneratedBio: "bio"}, nil
	})

	out, err := uc.Execute(context.Background(), GeneratePortfolioInput{OwnerID: f.owner})
	require.NoError(t, err)
	assert.Equal(t, portfolio.StatusPreview, out.Portfolio.Status)
	assert.Equal(t, "bio", out.Portfolio.GeneratedBio)
	assert.Equal(t, f.owner, out.Portfolio.OwnerID)

	stored, err := f.portfolios.FindByOwner(context.Background(), f.owner)
	require.NoError(t, err)
	assert.Equal(t, out.Portfolio.ID, stored.ID)

	select {
	case ev := <-f.events.portfolios:
		assert.Equal(t, out.Portfolio.ID, ev.PortfolioID)
	case <-time.After(time.Second):
		t.Fatal("portfolio.generated event was not published")
	}

	// Regenerating keeps the same portfolio.
	out2, err := uc.Execute(context.Background(), GeneratePortfolioInput{OwnerID: f.owner})
	require.NoError(t, err)
	assert.Equal(t, out.Portfolio.ID, out2.Portfolio.ID)
}

func TestGenerate_FailureLeavesStateUnchanged(t *testing.T) {
	f := newFixture()
	f.toLastStep(t)
	ctx := context.Background()

	before, err := f.wizard.Get(ctx, f.owner)
	require.NoError(t, err)

	uc := f.generateUseCase(func(context.Context, draft.Draft) (*portfolio.Portfolio, error) {
		return nil, errors.New("model offline")
	})
	_, err = uc.Execute(ctx, GeneratePortfolioInput{OwnerID: f.owner})
	assert.ErrorIs(t, err, apperror.ErrUnavailable)

	after, err := f.wizard.Get(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, wizard.StepProjects, after.CurrentStep)
	assert.False(t, after.Generating)
	assert.Empty(t, cmp.Diff(before, after))

	_, err = f.portfolios.FindByOwner(ctx, f.owner)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGenerate_InFlightFlagAndNavigation(t *testing.T) {
	f := newFixture()
	f.toLastStep(t)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	uc := f.generateUseCase(func(_ context.Context, d draft.Draft) (*portfolio.Portfolio, error) {
		close(started)
		<-release
		return &portfolio.Portfolio{Draft: d}, nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := uc.Execute(ctx, GeneratePortfolioInput{OwnerID: f.owner})
		done <- err
	}()
	<-started

	view, err := f.wizard.Get(ctx, f.owner)
	require.NoError(t, err)
	assert.True(t, view.Generating)
	assert.False(t, view.CanGenerate)

	_, err = uc.Execute(ctx, GeneratePortfolioInput{OwnerID: f.owner})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	// Navigation is not blocked while generating.
	res, err := f.wizard.Prev(ctx, f.owner)
	require.NoError(t, err)
	assert.True(t, res.Moved)

	close(release)
	require.NoError(t, <-done)

	view, err = f.wizard.Get(ctx, f.owner)
	require.NoError(t, err)
	assert.False(t, view.Generating)
}

func TestGenerate_Timeout(t *testing.T) {
	f := newFixture()
	f.toLastStep(t)

	uc := NewGeneratePortfolioUseCase(f.sessions, generatorFunc(func(ctx context.Context, _ draft.Draft) (*portfolio.Portfolio, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), f.portfolios, f.events, 10*time.Millisecond, logger.NewNop())

	_, err := uc.Execute(context.Background(), GeneratePortfolioInput{OwnerID: f.owner})
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
}
