package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clubarena/championship-system/config"
	"github.com/clubarena/championship-system/db"
	"github.com/clubarena/championship-system/handlers"
	"github.com/clubarena/championship-system/middleware"
	"github.com/clubarena/championship-system/notifications"
	"github.com/clubarena/championship-system/repositories"
	"github.com/clubarena/championship-system/routes"
	"github.com/clubarena/championship-system/services"
	"github.com/clubarena/championship-system/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		uploader = storage.NopUploader{}
		logger.Warn("object storage not configured, uploads disabled")
	}

	wsHub := notifications.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	championshipRepo := repositories.NewPostgresChampionshipRepository(dbConn)
	entryRepo := repositories.NewPostgresEntryRepository(dbConn)
	stageRepo := repositories.NewPostgresStageRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	availabilityRepo := repositories.NewPostgresAvailabilityRepository(dbConn)
	resultProposalRepo := repositories.NewPostgresResultProposalRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)
	categoryRepo := repositories.NewPostgresCategoryRepository(dbConn)
	reportRepo := repositories.NewPostgresReportRepository(dbConn)
	logger.Info("repositories initialized")

	notifier := services.NewHubNotifier(wsHub, logger)
	engine := services.NewFormatEngine(stageRepo, matchRepo, logger)

	authService := services.NewAuthService(playerRepo, uploader, []byte(cfg.JWTSecretKey), logger)
	progressionService := services.NewProgressionService(
		dbConn,
		championshipRepo,
		stageRepo,
		matchRepo,
		entryRepo,
		standingRepo,
		engine,
		notifier,
		logger,
	)
	negotiationService := services.NewNegotiationService(
		matchRepo,
		availabilityRepo,
		entryRepo,
		stageRepo,
		notifier,
		logger,
	)
	resultService := services.NewResultService(
		matchRepo,
		resultProposalRepo,
		entryRepo,
		stageRepo,
		playerRepo,
		reportRepo,
		progressionService,
		notifier,
		logger,
	)
	championshipService := services.NewChampionshipService(
		championshipRepo,
		entryRepo,
		playerRepo,
		categoryRepo,
		stageRepo,
		matchRepo,
		standingRepo,
		engine,
		uploader,
		logger,
	)
	categoryService := services.NewCategoryService(categoryRepo, logger)
	reportService := services.NewReportService(reportRepo, playerRepo, logger)
	logger.Info("services initialized")

	auth := middleware.NewAuth([]byte(cfg.JWTSecretKey))
	router := routes.InitRoutes(routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Championship: handlers.NewChampionshipHandler(championshipService, progressionService),
		Match:        handlers.NewMatchHandler(negotiationService, resultService),
		Category:     handlers.NewCategoryHandler(categoryService),
		Report:       handlers.NewReportHandler(reportService),
		WebSocket:    handlers.NewWebSocketHandler(wsHub, logger),
	}, auth)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
