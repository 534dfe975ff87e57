package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type postgresDraftRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresDraftRepo(db *pgxpool.Pool, logger logger.Logger) draft.Repository {
	return &postgresDraftRepo{db: db, logger: logger}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *postgresDraftRepo) Save(ctx context.Context, ownerID uuid.UUID, d *draft.Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return apperror.NewInternal("failed to marshal draft", err)
	}

	sql, args, err := psql.Insert("drafts").
		Columns("owner_id", "data", "updated_at").
		Values(ownerID, data, time.Now().UTC()).
		Suffix("ON CONFLICT (owner_id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build save draft query", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return apperror.NewInternal("failed to save draft", err)
	}
	return nil
}

func (r *postgresDraftRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*draft.SavedDraft, error) {
	sql, args, err := psql.Select("owner_id", "data", "updated_at").
		From("drafts").
		Where(sq.Eq{"owner_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build find draft query", err)
	}

	saved := &draft.SavedDraft{}
	var data []byte
	err = r.db.QueryRow(ctx, sql, args...).Scan(&saved.OwnerID, &data, &saved.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("draft", ownerID.String())
		}
		return nil, apperror.NewInternal("failed to query draft", err)
	}

	if err := json.Unmarshal(data, &saved.Draft); err != nil {
		r.logger.Warn("Failed to unmarshal stored draft, starting empty", zap.String("owner_id", ownerID.String()), zap.Error(err))
		saved.Draft = *draft.New()
	}
	saved.Draft.Normalize()
	return saved, nil
}

func (r *postgresDraftRepo) Delete(ctx context.Context, ownerID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM drafts WHERE owner_id = $1`, ownerID)
	if err != nil {
		return apperror.NewInternal("failed to delete draft", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("draft", ownerID.String())
	}
	return nil
}
