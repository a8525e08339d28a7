package main

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arjunmalik/editcore/internal/assets"
	"github.com/arjunmalik/editcore/internal/config"
	"github.com/arjunmalik/editcore/internal/facetrack"
	"github.com/arjunmalik/editcore/internal/logging"
	"github.com/arjunmalik/editcore/internal/project"
	"github.com/arjunmalik/editcore/internal/queue"
)

// objectStorage is the slice of assets.Storage the handlers use
type objectStorage interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// eventPublisher is the slice of queue.Queue the handlers use
type eventPublisher interface {
	PublishEvent(ctx context.Context, event *queue.Event) error
}

// API holds the handler dependencies
type API struct {
	cfg             *config.Config
	logger          *logging.Logger
	library         *assets.Library
	storage         objectStorage
	sessions        *sessionManager
	db              *project.DB
	events          eventPublisher
	faces           facetrack.Detector
	invalidateFaces func(ctx context.Context, assetID string)
}

// respondError maps domain errors to HTTP status codes
func (api *API) respondError(c *gin.Context, err error) {
	switch {
	case isNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case isValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		api.logger.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Health check endpoint
func (api *API) healthCheck(c *gin.Context) {
	if api.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := api.db.Health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}
