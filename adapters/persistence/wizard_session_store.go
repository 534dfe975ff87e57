package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/domain/wizard"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

const wizardSessionKeyPrefix = "wizard:session:"

type redisWizardSessionStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewRedisWizardSessionStore keeps one JSON encoded wizard state per owner.
// Every Store refreshes the ttl, so idle sessions expire on their own.
func NewRedisWizardSessionStore(rdb *redis.Client, ttl time.Duration, logger logger.Logger) wizard.SessionStore {
	return &redisWizardSessionStore{rdb: rdb, ttl: ttl, logger: logger}
}

func wizardSessionKey(ownerID uuid.UUID) string {
	return wizardSessionKeyPrefix + ownerID.String()
}

func (s *redisWizardSessionStore) Load(ctx context.Context, ownerID uuid.UUID) (*wizard.State, error) {
	raw, err := s.rdb.Get(ctx, wizardSessionKey(ownerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperror.NewNotFound("wizard session", ownerID.String())
		}
		return nil, apperror.NewInternal("failed to load wizard session", err)
	}

	var state wizard.State
	if err := json.Unmarshal(raw, &state); err != nil {
		s.logger.Warn("Discarding unreadable wizard session", zap.String("owner_id", ownerID.String()), zap.Error(err))
		return nil, apperror.NewNotFound("wizard session", ownerID.String())
	}
	state.Draft.Normalize()
	return &state, nil
}

func (s *redisWizardSessionStore) Store(ctx context.Context, ownerID uuid.UUID, state *wizard.State) error {
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return apperror.NewInternal("failed to marshal wizard session", err)
	}
	if err := s.rdb.Set(ctx, wizardSessionKey(ownerID), raw, s.ttl).Err(); err != nil {
		return apperror.NewInternal("failed to store wizard session", err)
	}
	return nil
}

func (s *redisWizardSessionStore) Delete(ctx context.Context, ownerID uuid.UUID) error {
	if err := s.rdb.Del(ctx, wizardSessionKey(ownerID)).Err(); err != nil {
		return apperror.NewInternal("failed to delete wizard session", err)
	}
	return nil
}
