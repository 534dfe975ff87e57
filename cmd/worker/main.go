package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/portfolio-builder/adapters/event"
	"github.com/khoahotran/portfolio-builder/adapters/media_storage"
	"github.com/khoahotran/portfolio-builder/adapters/persistence"
	portfolioUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/config"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
	"github.com/khoahotran/portfolio-builder/pkg/tracing"
)

func main() {
	fmt.Println("Starting Portfolio Builder Worker...")

	// Configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(cfg, appLogger, "portfolio-builder-worker")
	if err != nil {
		appLogger.Fatal("cannot init tracing", err)
	}
	defer shutdownTracing(context.Background())

	// Database
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Postgres", err)
	}
	defer dbPool.Close()

	// Cloudinary Uploader
	uploader, err := media_storage.NewCloudinaryAdapter(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize uploader", err)
	}

	// Repositories
	portfolioRepo := persistence.NewPostgresPortfolioRepo(dbPool, appLogger)

	// Worker Use Case
	processPortfolioEventUC := portfolioUC.NewProcessPortfolioEventUseCase(portfolioRepo, uploader, appLogger)

	// Kafka Consumers
	portfolioConsumer := event.NewPortfolioConsumer(cfg, "portfolio-publisher-group", appLogger)
	defer portfolioConsumer.Close()
	draftConsumer := event.NewDraftConsumer(cfg, "draft-audit-group", appLogger)
	defer draftConsumer.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return portfolioConsumer.Run(gctx, processPortfolioEventUC.Execute)
	})
	g.Go(func() error {
		return draftConsumer.Run(gctx, func(_ context.Context, payload event.DraftEventPayload) error {
			appLogger.Info("Draft saved",
				zap.String("owner_id", payload.OwnerID.String()),
				zap.Int("skills", payload.SkillCount),
				zap.Time("occurred_at", payload.OccurredAt),
			)
			return nil
		})
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Worker stopped with error", err)
	}
	appLogger.Info("Worker stopped")
}
