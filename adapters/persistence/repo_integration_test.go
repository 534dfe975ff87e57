package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/domain/tag"
	"github.com/khoahotran/portfolio-builder/internal/domain/user"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type RepoIntegrationTestSuite struct {
	suite.Suite
	dbPool        *pgxpool.Pool
	pgContainer   *postgres.PostgresContainer
	testLogger    logger.Logger
	userRepo      user.Repository
	draftRepo     draft.Repository
	portfolioRepo portfolio.Repository
	tagRepo       tag.Repository
}

func (s *RepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()
	s.testLogger = logger.NewNop()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	if err := RunMigrations("file://../../migrations", dsn, s.testLogger); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.dbPool = pool

	s.userRepo = NewPostgresUserRepo(s.dbPool, s.testLogger)
	s.draftRepo = NewPostgresDraftRepo(s.dbPool, s.testLogger)
	s.portfolioRepo = NewPostgresPortfolioRepo(s.dbPool, s.testLogger)
	s.tagRepo = NewPostgresTagRepo(s.dbPool, s.testLogger)
}

func (s *RepoIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func TestRepoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(RepoIntegrationTestSuite))
}

func (s *RepoIntegrationTestSuite) seedOwner(email string) *user.User {
	name := "Jane Doe"
	u := &user.User{ID: uuid.New(), Email: email, Name: &name, PasswordHash: "hashedpassword"}
	_, err := s.dbPool.Exec(context.Background(),
		`INSERT INTO users (id, email, name, password_hash) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Email, u.Name, u.PasswordHash)
	s.Require().NoError(err)
	return u
}

func sampleDraft() draft.Draft {
	d := draft.New()
	d.PersonalInfo = draft.PersonalInfo{FullName: "Jane Doe", Title: "Engineer", Email: "jane@x.com"}
	d.Skills = []string{"Go", "Distributed Systems"}
	d.Experiences = []draft.Experience{{ID: uuid.New(), Company: "Acme", Role: "Backend", StartDate: "2021-03", IsCurrent: true}}
	d.Projects = []draft.Project{{ID: uuid.New(), Title: "CLI", TechStack: []string{"Go"}}}
	return *d
}

func (s *RepoIntegrationTestSuite) Test_User_FindByEmailAndID() {
	ctx := context.Background()
	owner := s.seedOwner("user-lookup@example.com")

	found, err := s.userRepo.FindByEmail(ctx, owner.Email)
	s.Require().NoError(err)
	s.Equal(owner.ID, found.ID)
	s.Equal("Jane Doe", found.DisplayName())

	_, err = s.userRepo.FindByID(ctx, uuid.New())
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *RepoIntegrationTestSuite) Test_Draft_SaveAndFind() {
	ctx := context.Background()
	owner := s.seedOwner("draft@example.com")

	_, err := s.draftRepo.FindByOwner(ctx, owner.ID)
	s.ErrorIs(err, apperror.ErrNotFound)

	d := sampleDraft()
	s.Require().NoError(s.draftRepo.Save(ctx, owner.ID, &d))

	d.Skills = append(d.Skills, "SQL")
	s.Require().NoError(s.draftRepo.Save(ctx, owner.ID, &d))

	saved, err := s.draftRepo.FindByOwner(ctx, owner.ID)
	s.Require().NoError(err)
	s.Equal(d, saved.Draft)

	s.Require().NoError(s.draftRepo.Delete(ctx, owner.ID))
	s.ErrorIs(s.draftRepo.Delete(ctx, owner.ID), apperror.ErrNotFound)
}

func (s *RepoIntegrationTestSuite) newPortfolio(ownerID uuid.UUID) *portfolio.Portfolio {
	now := time.Now().UTC().Truncate(time.Millisecond)
	d := sampleDraft()
	return &portfolio.Portfolio{
		ID:                  uuid.New(),
		OwnerID:             ownerID,
		Draft:               d,
		GeneratedBio:        "Jane builds things.",
		EnhancedExperiences: map[uuid.UUID]string{d.Experiences[0].ID: "Led the backend."},
		EnhancedProjects:    map[uuid.UUID]string{},
		Status:              portfolio.StatusPreview,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func (s *RepoIntegrationTestSuite) Test_Portfolio_UpsertPerOwner() {
	ctx := context.Background()
	owner := s.seedOwner("portfolio@example.com")

	p := s.newPortfolio(owner.ID)
	s.Require().NoError(s.portfolioRepo.Save(ctx, p))

	p.GeneratedBio = "Regenerated."
	s.Require().NoError(s.portfolioRepo.Save(ctx, p))

	found, err := s.portfolioRepo.FindByOwner(ctx, owner.ID)
	s.Require().NoError(err)
	s.Equal(p.ID, found.ID)
	s.Equal("Regenerated.", found.GeneratedBio)
	s.Equal(p.Draft, found.Draft)
	s.Equal("Led the backend.", found.EnhancedExperiences[p.Draft.Experiences[0].ID])

	_, err = s.portfolioRepo.FindPublishedByUsername(ctx, "jane")
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *RepoIntegrationTestSuite) Test_Portfolio_PublishAndListBySkill() {
	ctx := context.Background()
	owner := s.seedOwner("publish@example.com")

	p := s.newPortfolio(owner.ID)
	s.Require().NoError(p.Publish("jane-published", time.Now().UTC()))
	s.Require().NoError(s.portfolioRepo.Save(ctx, p))

	tags, err := s.tagRepo.FindOrCreateTags(ctx, p.Draft.Skills)
	s.Require().NoError(err)
	s.Len(tags, 2)
	ids := []uuid.UUID{tags[0].ID, tags[1].ID}
	s.Require().NoError(s.tagRepo.SetTagsForResource(ctx, p.ID, tag.ResourcePortfolio, ids))

	list, err := s.portfolioRepo.ListPublishedBySkill(ctx, "distributed-systems", 10, 0)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(p.ID, list[0].ID)

	list, err = s.portfolioRepo.ListPublishedBySkill(ctx, "cobol", 10, 0)
	s.Require().NoError(err)
	s.Empty(list)

	found, err := s.portfolioRepo.FindPublishedByUsername(ctx, "jane-published")
	s.Require().NoError(err)
	s.NotNil(found.PublishedAt)

	s.Require().NoError(s.portfolioRepo.UpdateHostedURL(ctx, p.ID, "https://cdn.example.com/jane"))
	found, err = s.portfolioRepo.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.HostedURL)
	s.Equal("https://cdn.example.com/jane", *found.HostedURL)

	s.ErrorIs(s.portfolioRepo.UpdateHostedURL(ctx, uuid.New(), "x"), apperror.ErrNotFound)
}

func (s *RepoIntegrationTestSuite) Test_Portfolio_UsernameConflict() {
	ctx := context.Background()
	first := s.newPortfolio(s.seedOwner("first@example.com").ID)
	second := s.newPortfolio(s.seedOwner("second@example.com").ID)

	s.Require().NoError(first.Publish("taken", time.Now().UTC()))
	s.Require().NoError(s.portfolioRepo.Save(ctx, first))

	s.Require().NoError(second.Publish("taken", time.Now().UTC()))
	s.ErrorIs(s.portfolioRepo.Save(ctx, second), apperror.ErrConflict)
}

func (s *RepoIntegrationTestSuite) Test_Tags_ReplaceForResource() {
	ctx := context.Background()
	resourceID := uuid.New()

	first, err := s.tagRepo.FindOrCreateTags(ctx, []string{"Go", " go ", "Kafka"})
	s.Require().NoError(err)
	s.Len(first, 2)

	s.Require().NoError(s.tagRepo.SetTagsForResource(ctx, resourceID, tag.ResourcePortfolio, []uuid.UUID{first[0].ID, first[1].ID}))

	second, err := s.tagRepo.FindOrCreateTags(ctx, []string{"Redis"})
	s.Require().NoError(err)
	s.Require().NoError(s.tagRepo.SetTagsForResource(ctx, resourceID, tag.ResourcePortfolio, []uuid.UUID{second[0].ID}))

	got, err := s.tagRepo.GetTagsForResource(ctx, resourceID, tag.ResourcePortfolio)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("redis", got[0].Slug)
}
