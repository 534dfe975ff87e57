package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
	"github.com/khoahotran/portfolio-builder/internal/domain/wizard"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/keylock"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type operation int

const (
	opSave operation = iota
	opGenerate
)

func (o operation) String() string {
	if o == opSave {
		return "save"
	}
	return "generate"
}

type inflight struct {
	saving     bool
	generating bool
}

// Sessions owns every owner's wizard session. Mutations for one owner run one
// at a time under a per-owner lock and are written back to the store before
// the lock is released. Save and generate progress is tracked in memory.
type Sessions struct {
	store  wizard.SessionStore
	drafts draft.Repository
	locks  *keylock.KeyLock
	logger logger.Logger

	mu   sync.Mutex
	busy map[uuid.UUID]*inflight
	now  func() time.Time
}

func NewSessions(store wizard.SessionStore, drafts draft.Repository, locks *keylock.KeyLock, log logger.Logger) *Sessions {
	return &Sessions{
		store:  store,
		drafts: drafts,
		locks:  locks,
		logger: log,
		busy:   make(map[uuid.UUID]*inflight),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Sessions) lock(ctx context.Context, ownerID uuid.UUID) (func(), error) {
	unlock, err := s.locks.Lock(ctx, ownerID.String())
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperror.NewTimeout("gave up waiting for the wizard session", err)
		}
		return nil, apperror.NewInternal("wizard session is busy", err)
	}
	return unlock, nil
}

// load returns the stored session, or a fresh one seeded from the owner's
// saved draft. Callers hold the owner lock.
func (s *Sessions) load(ctx context.Context, ownerID uuid.UUID) (*wizard.Wizard, error) {
	state, err := s.store.Load(ctx, ownerID)
	if err == nil {
		return wizard.Restore(*state), nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	saved, err := s.drafts.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return wizard.New(), nil
		}
		s.logger.Warn("Failed to seed wizard from saved draft, starting empty", zap.String("owner_id", ownerID.String()), zap.Error(err))
		return wizard.New(), nil
	}
	s.logger.Info("Wizard session seeded from saved draft", zap.String("owner_id", ownerID.String()))
	return wizard.FromDraft(saved.Draft), nil
}

func (s *Sessions) save(ctx context.Context, ownerID uuid.UUID, w *wizard.Wizard) error {
	state := w.State()
	state.UpdatedAt = s.now()
	return s.store.Store(ctx, ownerID, &state)
}

// Read returns the owner's current view without changing anything.
func (s *Sessions) Read(ctx context.Context, ownerID uuid.UUID) (*View, error) {
	w, err := s.Snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return newView(w), nil
}

// Snapshot loads the owner's wizard with its in-flight flags applied. The
// returned value is detached from the store.
func (s *Sessions) Snapshot(ctx context.Context, ownerID uuid.UUID) (*wizard.Wizard, error) {
	unlock, err := s.lock(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	w, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	s.applyFlags(ownerID, w)
	return w, nil
}

// CurrentDraft returns a copy of the owner's in-progress draft.
func (s *Sessions) CurrentDraft(ctx context.Context, ownerID uuid.UUID) (draft.Draft, error) {
	w, err := s.Snapshot(ctx, ownerID)
	if err != nil {
		return draft.Draft{}, err
	}
	return w.Draft(), nil
}

// Update applies fn to the owner's wizard and stores the result. When fn
// returns an error nothing is stored.
func (s *Sessions) Update(ctx context.Context, ownerID uuid.UUID, fn func(w *wizard.Wizard) error) (*View, error) {
	unlock, err := s.lock(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	w, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := fn(w); err != nil {
		return nil, err
	}
	if err := s.save(ctx, ownerID, w); err != nil {
		return nil, err
	}
	s.applyFlags(ownerID, w)
	return newView(w), nil
}

// Reset drops the session. A saved draft is kept and seeds the next session.
func (s *Sessions) Reset(ctx context.Context, ownerID uuid.UUID) error {
	unlock, err := s.lock(ctx, ownerID)
	if err != nil {
		return err
	}
	defer unlock()
	return s.store.Delete(ctx, ownerID)
}

// begin marks op as running for the owner. A second call before end is a
// conflict.
func (s *Sessions) begin(ownerID uuid.UUID, op operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.busy[ownerID]
	if !ok {
		f = &inflight{}
		s.busy[ownerID] = f
	}
	flag := &f.saving
	if op == opGenerate {
		flag = &f.generating
	}
	if *flag {
		return apperror.NewAppError(apperror.ErrConflict, "Operation already in progress", op.String()+" is already running for this wizard", nil)
	}
	*flag = true
	return nil
}

func (s *Sessions) end(ownerID uuid.UUID, op operation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.busy[ownerID]
	if !ok {
		return
	}
	if op == opGenerate {
		f.generating = false
	} else {
		f.saving = false
	}
	if !f.saving && !f.generating {
		delete(s.busy, ownerID)
	}
}

func (s *Sessions) applyFlags(ownerID uuid.UUID, w *wizard.Wizard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.busy[ownerID]; ok {
		w.SetSaving(f.saving)
		w.SetGenerating(f.generating)
	}
}
