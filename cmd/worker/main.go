package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arjunmalik/editcore/internal/assets"
	"github.com/arjunmalik/editcore/internal/config"
	"github.com/arjunmalik/editcore/internal/facetrack"
	"github.com/arjunmalik/editcore/internal/logging"
	"github.com/arjunmalik/editcore/internal/metrics"
	"github.com/arjunmalik/editcore/internal/project"
	"github.com/arjunmalik/editcore/internal/queue"
	"github.com/arjunmalik/editcore/pkg/models"
)

func isNotFound(err error) bool {
	var nf *models.NotFoundError
	return errors.As(err, &nf)
}

// The event worker applies media pipeline results to the asset catalog:
// extracted metadata, thumbnails, regenerated media, and face track
// completion notices.
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

	// Database
	db, err := project.New(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	repo := assets.NewRepository(db.Pool)

	// Face track cache, invalidated when assets change
	cache, err := facetrack.NewCache(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer cache.Close()

	// Event queue
	q, err := queue.New(cfg.Queue, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to queue")
	}
	defer q.Close()

	if err := q.SetupDeadLetterQueue(); err != nil {
		logger.WithError(err).Fatal("Failed to set up dead letter queue")
	}

	// Metrics server
	metricsServer := metrics.NewServer(cfg.Server.MetricsPort)
	go func() {
		if err := metricsServer.Start(); err != nil {
			logger.WithError(err).Error("Metrics server failed")
		}
	}()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutting down worker")
		cancel()
	}()

	// Queue depth gauges for the main queue and the DLQ
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if depth, err := q.GetQueueDepth(); err == nil {
					metrics.QueueDepth.WithLabelValues(queue.MediaEventsQueueName).Set(float64(depth))
				}
				if depth, err := q.GetDLQDepth(); err == nil {
					metrics.QueueDepth.WithLabelValues(queue.DeadLetterQueueName).Set(float64(depth))
				}
			}
		}
	}()

	handler := func(event *queue.Event) error {
		log := logger.WithAssetID(event.AssetID).WithField("event_type", event.Type)

		switch event.Type {
		case queue.EventAssetReady, queue.EventAssetRegenerated:
			if event.Asset == nil {
				log.Warn("event carries no asset payload, dropping")
				return nil
			}
			if err := repo.UpdateAsset(ctx, event.Asset); err != nil {
				if isNotFound(err) {
					return repo.CreateAsset(ctx, event.Asset)
				}
				return err
			}
			// Regenerated media invalidates any cached face tracks.
			if event.Type == queue.EventAssetRegenerated {
				if err := cache.DeleteTracks(ctx, event.AssetID); err != nil {
					log.WithError(err).Warn("failed to invalidate face tracks")
				}
			}
			log.Info("asset updated from pipeline event")
			return nil

		case queue.EventThumbnailReady:
			if event.Asset == nil || event.Asset.ThumbnailURL == "" {
				log.Warn("thumbnail event carries no URL, dropping")
				return nil
			}
			asset, err := repo.GetAsset(ctx, event.AssetID)
			if err != nil {
				return err
			}
			asset.ThumbnailURL = event.Asset.ThumbnailURL
			return repo.UpdateAsset(ctx, asset)

		case queue.EventFaceTracksReady:
			// Drop stale cache entries; the next reframe request refetches.
			if err := cache.DeleteTracks(ctx, event.AssetID); err != nil {
				log.WithError(err).Warn("failed to invalidate face tracks")
			}
			return nil

		default:
			// asset.uploaded and unknown types are the pipeline's concern.
			return nil
		}
	}

	logger.Info("Worker started, waiting for media events")
	if err := q.ConsumeEvents(ctx, handler); err != nil {
		logger.WithError(err).Fatal("Failed to consume events")
	}

	// Wait for shutdown
	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	_ = metricsServer.Shutdown(shutdownCtx)
	logger.Info("Worker stopped")
}
