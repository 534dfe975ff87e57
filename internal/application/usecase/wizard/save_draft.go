package wizard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/adapters/event"
	"github.com/khoahotran/portfolio-builder/internal/application/service"
	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type SaveDraftUseCase struct {
	sessions *Sessions
	drafts   draft.Repository
	events   service.EventPublisher
	logger   logger.Logger
}

func NewSaveDraftUseCase(sessions *Sessions, drafts draft.Repository, events service.EventPublisher, log logger.Logger) *SaveDraftUseCase {
	return &SaveDraftUseCase{sessions: sessions, drafts: drafts, events: events, logger: log}
}

type SaveDraftInput struct {
	OwnerID uuid.UUID
}

type SaveDraftOutput struct {
	View    *View     `json:"wizard"`
	SavedAt time.Time `json:"saved_at"`
}

// Execute persists a snapshot of the session draft. The session itself is
// never modified, so a failed save leaves it exactly as it was.
func (uc *SaveDraftUseCase) Execute(ctx context.Context, input SaveDraftInput) (*SaveDraftOutput, error) {
	ctx, span := tracer.Start(ctx, "SaveDraft")
	defer span.End()

	l := uc.logger.With(zap.String("owner_id", input.OwnerID.String()))

	if err := uc.sessions.begin(input.OwnerID, opSave); err != nil {
		return nil, err
	}
	d, err := uc.sessions.CurrentDraft(ctx, input.OwnerID)
	if err != nil {
		uc.sessions.end(input.OwnerID, opSave)
		span.RecordError(err)
		return nil, err
	}

	err = uc.drafts.Save(ctx, input.OwnerID, &d)
	uc.sessions.end(input.OwnerID, opSave)
	if err != nil {
		l.Error("Failed to save draft", err)
		span.RecordError(err)
		return nil, apperror.NewUnavailable("failed to save draft", err)
	}
	savedAt := uc.sessions.now()
	l.Info("Draft saved", zap.Int("experiences", len(d.Experiences)), zap.Int("skills", len(d.Skills)), zap.Int("projects", len(d.Projects)))

	go func() {
		err := uc.events.PublishDraftEvent(context.Background(), event.DraftEventPayload{
			EventType:  event.DraftEventTypeSaved,
			OwnerID:    input.OwnerID,
			SkillCount: len(d.Skills),
			OccurredAt: savedAt,
		})
		if err != nil {
			l.Error("Failed to publish Kafka 'draft.saved' event", err)
		}
	}()

	view, err := uc.sessions.Read(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}
	return &SaveDraftOutput{View: view, SavedAt: savedAt}, nil
}
