package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/adapters/event"
	httpAdapter "github.com/khoahotran/portfolio-builder/adapters/http"
	"github.com/khoahotran/portfolio-builder/adapters/llm"
	"github.com/khoahotran/portfolio-builder/adapters/persistence"
	authUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/auth"
	"github.com/khoahotran/portfolio-builder/internal/application/usecase/generate"
	portfolioUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/portfolio"
	wizardUC "github.com/khoahotran/portfolio-builder/internal/application/usecase/wizard"
	"github.com/khoahotran/portfolio-builder/internal/config"
	"github.com/khoahotran/portfolio-builder/pkg/auth"
	"github.com/khoahotran/portfolio-builder/pkg/keylock"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
	"github.com/khoahotran/portfolio-builder/pkg/tracing"
)

func main() {
	fmt.Println("Start Portfolio Builder API Server...")

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(cfg, appLogger, "portfolio-builder-api")
	if err != nil {
		appLogger.Fatal("cannot init tracing", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", err)
		}
	}()

	// Initialize dependencies
	if cfg.DB.AutoMigrate {
		if err := persistence.RunMigrations(cfg.DB.MigrationsPath, cfg.DB.DSN, appLogger); err != nil {
			appLogger.Fatal("cannot migrate database", err)
		}
	}

	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Redis", err)
	}
	defer redisClient.Close()

	kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot init Kafka", err)
	}
	defer kafkaClient.Close()

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(dbPool, appLogger)
	draftRepo := persistence.NewPostgresDraftRepo(dbPool, appLogger)
	portfolioRepo := persistence.NewPostgresPortfolioRepo(dbPool, appLogger)
	tagRepo := persistence.NewPostgresTagRepo(dbPool, appLogger)
	sessionStore := persistence.NewRedisWizardSessionStore(redisClient, cfg.Wizard.SessionTTL, appLogger)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	llmSvc, err := llm.NewOllamaLLMAdapter(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot init LLM adapter", err)
	}
	generator := generate.NewLLMGenerator(llmSvc, appLogger)
	sessions := wizardUC.NewSessions(sessionStore, draftRepo, keylock.New(), appLogger)

	// Use Cases
	loginUseCase := authUC.NewLoginUseCase(userRepo, jwtSvc, appLogger)
	identityUseCase := authUC.NewIdentityUseCase(userRepo, portfolioRepo, appLogger)
	wizardUseCase := wizardUC.NewWizardUseCase(sessions, appLogger)
	saveDraftUseCase := wizardUC.NewSaveDraftUseCase(sessions, draftRepo, kafkaClient, appLogger)
	generateUseCase := wizardUC.NewGeneratePortfolioUseCase(
		sessions,
		generator,
		portfolioRepo,
		kafkaClient,
		cfg.Wizard.GenerationTimeout,
		appLogger,
	)
	portfolioUseCase := portfolioUC.NewPortfolioUseCase(
		portfolioRepo,
		tagRepo,
		sessions,
		kafkaClient,
		cfg.App.PublicBaseURL,
		appLogger,
	)

	// HTTP Handlers
	handlers := httpAdapter.Handlers{
		Auth:      httpAdapter.NewAuthHandler(loginUseCase, identityUseCase, appLogger),
		Wizard:    httpAdapter.NewWizardHandler(wizardUseCase, saveDraftUseCase, generateUseCase, appLogger),
		Portfolio: httpAdapter.NewPortfolioHandler(portfolioUseCase, appLogger),
	}
	router := httpAdapter.NewRouter(handlers, jwtSvc, appLogger)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Cannot run server", err)
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}
