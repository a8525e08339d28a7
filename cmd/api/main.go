package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/arjunmalik/editcore/internal/assets"
	"github.com/arjunmalik/editcore/internal/config"
	"github.com/arjunmalik/editcore/internal/facetrack"
	"github.com/arjunmalik/editcore/internal/logging"
	"github.com/arjunmalik/editcore/internal/middleware"
	"github.com/arjunmalik/editcore/internal/project"
	"github.com/arjunmalik/editcore/internal/queue"
	"github.com/arjunmalik/editcore/internal/tracing"
	"github.com/arjunmalik/editcore/pkg/models"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewDefaultLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	middleware.SetJWTSecret(cfg.Auth.JWTSecret)

	// Tracing
	if cfg.Tracing.Enabled {
		_, closer, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize tracer")
		}
		defer closer.Close()
	}

	// Database
	db, err := project.New(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	store := project.NewStore(db)

	// Object storage
	stor, err := assets.NewStorage(cfg.Storage)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize storage")
	}

	// Asset library
	library := assets.NewLibrary(assets.NewRepository(db.Pool), stor, logger)
	if err := library.Load(context.Background()); err != nil {
		logger.WithError(err).Fatal("Failed to load asset library")
	}

	// Event queue
	q, err := queue.New(cfg.Queue, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to queue")
	}
	defer q.Close()

	// Face tracking: remote detection fronted by the Redis cache
	cache, err := facetrack.NewCache(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer cache.Close()

	detector := facetrack.NewCachedDetector(
		facetrack.NewHTTPDetector(cfg.Editor.FaceTrackServiceURL),
		cache, cfg.Editor.FaceTrackCacheTTL, logger,
	)

	// Editing sessions
	sessions := newSessionManager(store, library, models.DefaultTracks(), cfg.Editor.SaveDebounce, logger)
	defer sessions.closeAll()

	api := &API{
		cfg:             cfg,
		logger:          logger,
		library:         library,
		storage:         stor,
		sessions:        sessions,
		db:              db,
		events:          q,
		faces:           detector,
		invalidateFaces: detector.Invalidate,
	}

	router := setupRouter(api)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Starting API server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	// Graceful shutdown: stop accepting requests, then flush pending saves
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}
	sessions.closeAll()

	logger.Info("Server stopped")
}
