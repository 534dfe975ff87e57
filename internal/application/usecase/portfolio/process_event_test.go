package portfolio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/portfolio-builder/adapters/event"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

func publishedPortfolio(t *testing.T) *portfolio.Portfolio {
	t.Helper()
	p := samplePortfolio(uuid.New())
	require.NoError(t, p.Publish("jane", time.Now()))
	return p
}

func TestProcessPortfolioEvent_HostsPublishedPage(t *testing.T) {
	p := publishedPortfolio(t)
	repo := newMemPortfolioRepo(p)
	up := &fakeUploader{}
	uc := NewProcessPortfolioEventUseCase(repo, up, logger.NewNop())

	err := uc.Execute(context.Background(), event.PortfolioEventPayload{
		EventType:   event.PortfolioEventTypePublished,
		PortfolioID: p.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "portfolios/"+p.OwnerID.String(), up.folder)
	assert.Equal(t, "jane", up.publicID)
	assert.Contains(t, up.body, "Jane Doe")
	assert.Contains(t, up.body, "Jane builds things.")

	stored, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.HostedURL)
	assert.Equal(t, "https://cdn.example.com/portfolios/"+p.OwnerID.String()+"/jane", *stored.HostedURL)
}

func TestProcessPortfolioEvent_Skips(t *testing.T) {
	preview := samplePortfolio(uuid.New())
	repo := newMemPortfolioRepo(preview)
	up := &fakeUploader{}
	uc := NewProcessPortfolioEventUseCase(repo, up, logger.NewNop())

	tests := []struct {
		name    string
		payload event.PortfolioEventPayload
	}{
		{"unknown event", event.PortfolioEventPayload{EventType: "portfolio.deleted", PortfolioID: preview.ID}},
		{"missing portfolio", event.PortfolioEventPayload{EventType: event.PortfolioEventTypePublished, PortfolioID: uuid.New()}},
		{"not published", event.PortfolioEventPayload{EventType: event.PortfolioEventTypeGenerated, PortfolioID: preview.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, uc.Execute(context.Background(), tt.payload))
			assert.Empty(t, up.publicID)
		})
	}
}

func TestProcessPortfolioEvent_UploadFailure(t *testing.T) {
	p := publishedPortfolio(t)
	repo := newMemPortfolioRepo(p)
	uc := NewProcessPortfolioEventUseCase(repo, &fakeUploader{err: errors.New("cdn down")}, logger.NewNop())

	err := uc.Execute(context.Background(), event.PortfolioEventPayload{
		EventType:   event.PortfolioEventTypeGenerated,
		PortfolioID: p.ID,
	})
	assert.Error(t, err)
	assert.Empty(t, repo.hosted)
}
