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

	"github.com/go-chi/chi/v5"
	"github.com/liguebillard/federation-admin/config"
	"github.com/liguebillard/federation-admin/db"
	"github.com/liguebillard/federation-admin/handlers"
	"github.com/liguebillard/federation-admin/repositories"
	api "github.com/liguebillard/federation-admin/routes"
	"github.com/liguebillard/federation-admin/services"
	"github.com/liguebillard/federation-admin/storage"
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
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewS3Uploader(storage.S3UploaderConfig{
		AccountID:       cfg.S3AccountID,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		BucketName:      cfg.S3BucketName,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize object storage uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("object storage uploader initialized")

	// Repositories
	categoryRepo := repositories.NewPostgresCategoryRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	rankingRepo := repositories.NewPostgresRankingRepository(dbConn)
	announcementRepo := repositories.NewPostgresAnnouncementRepository(dbConn)
	settingRepo := repositories.NewPostgresSettingRepository(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	campaignRepo := repositories.NewPostgresCampaignRepository(dbConn)
	logger.Info("repositories initialized")

	// Services
	emailService := services.NewEmailService(cfg, cfg.TemplatesDir)
	settingsService := services.NewSettingsService(settingRepo, uploader)
	rankingService := services.NewRankingService(dbConn, resultRepo, rankingRepo, tournamentRepo, categoryRepo, logger)
	importService := services.NewImportService(dbConn, tournamentRepo, resultRepo, playerRepo, categoryRepo, rankingService, logger)
	announcementService := services.NewAnnouncementService(announcementRepo)
	playerService := services.NewPlayerService(playerRepo)
	authService := services.NewAuthService(userRepo)
	exportService := services.NewExportService(rankingRepo, categoryRepo)
	campaignService := services.NewCampaignService(
		playerRepo,
		rankingRepo,
		tournamentRepo,
		categoryRepo,
		campaignRepo,
		settingsService,
		emailService,
		logger,
	)
	logger.Info("services initialized")

	// HTTP handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	tournamentHandler := handlers.NewTournamentHandler(importService, rankingService, tournamentRepo)
	rankingHandler := handlers.NewRankingHandler(rankingService, exportService)
	announcementHandler := handlers.NewAnnouncementHandler(announcementService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	playerHandler := handlers.NewPlayerHandler(playerService)
	campaignHandler := handlers.NewCampaignHandler(campaignService)
	categoryHandler := handlers.NewCategoryHandler(categoryRepo)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		tournamentHandler,
		rankingHandler,
		announcementHandler,
		settingsHandler,
		playerHandler,
		campaignHandler,
		categoryHandler,
		cfg.CORSAllowedOrigin,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second, // campaigns block on throttled sends
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
