package persistence

import (
	"context"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/domain/tag"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type postgresPortfolioRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresPortfolioRepo(db *pgxpool.Pool, logger logger.Logger) portfolio.Repository {
	return &postgresPortfolioRepo{db: db, logger: logger}
}

var portfolioColumns = []string{
	"p.id", "p.owner_id", "p.username", "p.draft", "p.generated_bio",
	"p.enhanced_experiences", "p.enhanced_projects", "p.status", "p.hosted_url",
	"p.published_at", "p.created_at", "p.updated_at",
}

func scanPortfolio(row pgx.Row, l logger.Logger, identifier string) (*portfolio.Portfolio, error) {
	p := &portfolio.Portfolio{}
	var username *string
	var draftBytes, expBytes, projBytes []byte

	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&username,
		&draftBytes,
		&p.GeneratedBio,
		&expBytes,
		&projBytes,
		&p.Status,
		&p.HostedURL,
		&p.PublishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("portfolio", identifier)
		}
		return nil, apperror.NewInternal("failed to scan portfolio row", err)
	}
	if username != nil {
		p.Username = *username
	}

	if err := json.Unmarshal(draftBytes, &p.Draft); err != nil {
		return nil, apperror.NewInternal("failed to unmarshal portfolio draft", err)
	}
	p.Draft.Normalize()

	if err := json.Unmarshal(expBytes, &p.EnhancedExperiences); err != nil {
		l.Warn("Failed to unmarshal enhanced experiences", zap.String("portfolio_id", p.ID.String()), zap.Error(err))
	}
	if err := json.Unmarshal(projBytes, &p.EnhancedProjects); err != nil {
		l.Warn("Failed to unmarshal enhanced projects", zap.String("portfolio_id", p.ID.String()), zap.Error(err))
	}
	if p.EnhancedExperiences == nil {
		p.EnhancedExperiences = map[uuid.UUID]string{}
	}
	if p.EnhancedProjects == nil {
		p.EnhancedProjects = map[uuid.UUID]string{}
	}
	return p, nil
}

func scanPortfolios(rows pgx.Rows, l logger.Logger) ([]*portfolio.Portfolio, error) {
	defer rows.Close()
	out := make([]*portfolio.Portfolio, 0)
	for rows.Next() {
		p, err := scanPortfolio(rows, l, "")
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating portfolio rows", err)
	}
	return out, nil
}

func (r *postgresPortfolioRepo) Save(ctx context.Context, p *portfolio.Portfolio) error {
	draftBytes, err := json.Marshal(p.Draft)
	if err != nil {
		return apperror.NewInternal("failed to marshal portfolio draft", err)
	}
	expBytes, err := json.Marshal(p.EnhancedExperiences)
	if err != nil {
		return apperror.NewInternal("failed to marshal enhanced experiences", err)
	}
	projBytes, err := json.Marshal(p.EnhancedProjects)
	if err != nil {
		return apperror.NewInternal("failed to marshal enhanced projects", err)
	}

	var username *string
	if p.Username != "" {
		username = &p.Username
	}

	sql, args, err := psql.Insert("portfolios").
		Columns("id", "owner_id", "username", "draft", "generated_bio", "enhanced_experiences",
			"enhanced_projects", "status", "hosted_url", "published_at", "created_at", "updated_at").
		Values(p.ID, p.OwnerID, username, draftBytes, p.GeneratedBio, expBytes,
			projBytes, p.Status, p.HostedURL, p.PublishedAt, p.CreatedAt, p.UpdatedAt).
		Suffix(`ON CONFLICT (owner_id) DO UPDATE SET
			username = EXCLUDED.username,
			draft = EXCLUDED.draft,
			generated_bio = EXCLUDED.generated_bio,
			enhanced_experiences = EXCLUDED.enhanced_experiences,
			enhanced_projects = EXCLUDED.enhanced_projects,
			status = EXCLUDED.status,
			hosted_url = EXCLUDED.hosted_url,
			published_at = EXCLUDED.published_at,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build save portfolio query", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewConflict("portfolio", "username", p.Username)
		}
		return apperror.NewInternal("failed to save portfolio", err)
	}
	return nil
}

func (r *postgresPortfolioRepo) findOne(ctx context.Context, where sq.Sqlizer, identifier string) (*portfolio.Portfolio, error) {
	sql, args, err := psql.Select(portfolioColumns...).
		From("portfolios p").
		Where(where).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build find portfolio query", err)
	}
	return scanPortfolio(r.db.QueryRow(ctx, sql, args...), r.logger, identifier)
}

func (r *postgresPortfolioRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*portfolio.Portfolio, error) {
	return r.findOne(ctx, sq.Eq{"p.owner_id": ownerID}, ownerID.String())
}

func (r *postgresPortfolioRepo) FindByID(ctx context.Context, id uuid.UUID) (*portfolio.Portfolio, error) {
	return r.findOne(ctx, sq.Eq{"p.id": id}, id.String())
}

func (r *postgresPortfolioRepo) FindPublishedByUsername(ctx context.Context, username string) (*portfolio.Portfolio, error) {
	return r.findOne(ctx, sq.Eq{"p.username": username, "p.status": portfolio.StatusPublished}, username)
}

func (r *postgresPortfolioRepo) ListPublishedBySkill(ctx context.Context, skillSlug string, limit, offset int) ([]*portfolio.Portfolio, error) {
	builder := psql.Select(portfolioColumns...).
		From("portfolios p").
		Join("tag_relations tr ON tr.resource_id = p.id AND tr.resource_type = ?", tag.ResourcePortfolio).
		Join("tags t ON t.id = tr.tag_id").
		Where(sq.Eq{"p.status": portfolio.StatusPublished, "t.slug": skillSlug}).
		OrderBy("p.published_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list by skill query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query portfolios by skill", err)
	}
	return scanPortfolios(rows, r.logger)
}

func (r *postgresPortfolioRepo) UpdateHostedURL(ctx context.Context, id uuid.UUID, url string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE portfolios SET hosted_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
	if err != nil {
		return apperror.NewInternal("failed to update hosted url", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("portfolio", id.String())
	}
	return nil
}
