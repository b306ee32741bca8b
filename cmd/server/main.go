package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/article-image-api/internal/api"
	"github.com/article-image-api/internal/config"
	"github.com/article-image-api/internal/database"
	"github.com/article-image-api/internal/imagehost"
	"github.com/article-image-api/internal/repository"
	"github.com/article-image-api/internal/service"
	"github.com/article-image-api/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting Article Image API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize repositories
	var (
		repos  *repository.Repositories
		health api.HealthChecker
	)
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := database.New(&cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}

		repos = repository.NewPostgresRepositories(db)
		health = db
	default:
		if err := os.MkdirAll(cfg.Store.DataDir, 0o755); err != nil {
			log.Fatal().Err(err).Str("dir", cfg.Store.DataDir).Msg("Failed to create data directory")
		}
		repos = repository.NewFileRepositories(&cfg.Store)
	}
	log.Info().Str("driver", cfg.Store.Driver).Msg("Record store ready")

	if cfg.ImageHost.APIKey == "" {
		log.Warn().Msg("IMAGE_HOST_API_KEY is not set; uploads require an X-API-Key header")
	}

	// Initialize image host client
	host := imagehost.New(imagehost.Config{
		URL:            cfg.ImageHost.URL,
		Timeout:        cfg.ImageHost.Timeout,
		DuplicateCodes: cfg.ImageHost.DuplicateCodes,
	}, log)

	// Initialize services
	services := service.NewServices(repos, host, cfg, log)

	// Initialize router
	router := api.NewRouter(services, cfg, health, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
