package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arjunmalik/editcore/internal/assets"
	"github.com/arjunmalik/editcore/internal/queue"
	"github.com/arjunmalik/editcore/internal/timeline"
	"github.com/arjunmalik/editcore/pkg/models"
)

// Upload asset endpoint. The media file streams into object storage; the
// processing pipeline picks the upload event up for metadata extraction,
// thumbnails and face detection.
func (api *API) uploadAsset(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No media file provided"})
		return
	}

	kind := c.PostForm("kind")
	if !models.ValidAssetKind(kind) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asset kind"})
		return
	}

	duration := 0.0
	if v := c.PostForm("duration"); v != "" {
		duration, err = strconv.ParseFloat(v, 64)
		if err != nil || duration < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid duration"})
			return
		}
	}

	asset := &models.Asset{
		ID:       uuid.New().String(),
		Kind:     kind,
		Name:     file.Filename,
		Duration: duration,
		Size:     file.Size,
	}
	asset.StorageKey = assets.ObjectKey(asset.ID, file.Filename)

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer src.Close()

	contentType := assets.ContentType(file.Filename)
	if err := api.storage.Upload(c.Request.Context(), asset.StorageKey, src, file.Size, contentType); err != nil {
		api.respondError(c, err)
		return
	}

	if err := api.library.Create(c.Request.Context(), asset); err != nil {
		api.respondError(c, err)
		return
	}

	if api.events != nil {
		event := &queue.Event{Type: queue.EventAssetUploaded, AssetID: asset.ID, Asset: asset}
		if err := api.events.PublishEvent(c.Request.Context(), event); err != nil {
			// The asset is usable without pipeline processing; don't fail
			// the upload over a queue hiccup.
			api.logger.WithAssetID(asset.ID).WithError(err).Warn("failed to publish upload event")
		}
	}

	c.JSON(http.StatusCreated, asset)
}

// List assets endpoint
func (api *API) listAssets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"assets": api.library.List()})
}

// Get asset endpoint
func (api *API) getAsset(c *gin.Context) {
	asset, ok := api.library.ResolveAsset(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Asset not found"})
		return
	}
	c.JSON(http.StatusOK, asset)
}

// Get asset stream URL endpoint. The preview player streams media straight
// from object storage via a presigned URL.
func (api *API) getAssetURL(c *gin.Context) {
	asset, ok := api.library.ResolveAsset(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Asset not found"})
		return
	}
	if asset.StorageKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Asset has no stored media"})
		return
	}

	url, err := api.storage.PresignedURL(c.Request.Context(), asset.StorageKey, time.Hour)
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Delete asset endpoint. Removal cascades: clips referencing the asset are
// stripped from every open session (one undo step per affected tab) and the
// cached face tracks are invalidated.
func (api *API) deleteAsset(c *gin.Context) {
	assetID := c.Param("id")

	asset, err := api.library.Delete(c.Request.Context(), assetID)
	if err != nil {
		api.respondError(c, err)
		return
	}

	api.sessions.forEach(func(s *timeline.Session) {
		s.RemoveAssetClips(assetID)
	})

	if api.invalidateFaces != nil {
		api.invalidateFaces(c.Request.Context(), assetID)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Asset deleted", "asset_id": asset.ID})
}
