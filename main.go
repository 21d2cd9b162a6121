package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/krishkalaria12/pic-profile-maker/auth"
	"github.com/krishkalaria12/pic-profile-maker/config"
	"github.com/krishkalaria12/pic-profile-maker/database"
	handler "github.com/krishkalaria12/pic-profile-maker/handlers"
	"github.com/krishkalaria12/pic-profile-maker/imaging"
	"github.com/krishkalaria12/pic-profile-maker/logger"
	"github.com/krishkalaria12/pic-profile-maker/pictures"
	"github.com/krishkalaria12/pic-profile-maker/repository"
	"github.com/krishkalaria12/pic-profile-maker/router"
	"github.com/krishkalaria12/pic-profile-maker/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	logger := logger.New(cfg.LogLevel)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	// close the database connection
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("failed to close database connection", "error", err)
		}
	}()

	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal("failed to migrate database", "error", err)
	}

	workDir := cfg.Pictures.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	if err := os.MkdirAll(cfg.Pictures.ResourcesDir, 0o755); err != nil {
		logger.Fatal("failed to create resources directory", "error", err)
	}

	mirror, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	if mirror != nil {
		logger.Info("mirroring pictures to object storage", "backend", cfg.Storage.Backend, "gcs_project", cfg.Storage.GCS.ProjectID)
	}

	userRepo := repository.NewUserRepository(db)
	pictureRepo := repository.NewPictureRepository(db)

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Duration)
	authService := auth.NewService(userRepo, tokens, logger)

	processor := imaging.NewGiftProcessor(workDir, imaging.WholeFrameDetector, logger)
	maker := pictures.NewMaker(processor, pictureRepo, mirror, pictures.Options{
		ResourcesDir: cfg.Pictures.ResourcesDir,
		WorkDir:      workDir,
		Retention:    cfg.Pictures.TemporaryRetention,
		Blur:         cfg.Pictures.Blur,
	}, logger)

	h := handler.New(authService, maker, logger)
	app := router.NewApp(h, authService, cfg.Pictures.MaxUploadBytes, true)

	go func() {
		logger.Info("Starting server on", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("server stopped", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("failed to shut down server", "error", err)
	}
	logger.Info("shutdown complete")
}
