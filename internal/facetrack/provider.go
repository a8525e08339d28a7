package facetrack

import (
	"context"
	"time"

	"github.com/arjunmalik/editcore/internal/logging"
	"github.com/arjunmalik/editcore/internal/metrics"
	"github.com/arjunmalik/editcore/internal/reframe"
)

// Detector produces face tracks for an asset. Implemented by the remote
// media-processing service client; detection runs on demand and may take
// seconds.
type Detector interface {
	DetectFaces(ctx context.Context, assetID string) ([]reframe.FaceTrack, error)
}

// CachedDetector fronts a Detector with the Redis cache so repeated reframe
// setups for the same asset hit the network once.
type CachedDetector struct {
	detector Detector
	cache    *Cache
	ttl      time.Duration
	logger   *logging.Logger
}

// NewCachedDetector wraps detector with cache
func NewCachedDetector(detector Detector, cache *Cache, ttl time.Duration, logger *logging.Logger) *CachedDetector {
	return &CachedDetector{
		detector: detector,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

// DetectFaces returns the asset's face tracks, from cache when available.
// Cache failures degrade to a direct detector call; they are logged, never
// surfaced.
func (d *CachedDetector) DetectFaces(ctx context.Context, assetID string) ([]reframe.FaceTrack, error) {
	tracks, hit, err := d.cache.GetTracks(ctx, assetID)
	if err != nil {
		d.logger.WithAssetID(assetID).WithError(err).Warn("face track cache read failed")
	}
	metrics.RecordCacheAccess("facetracks", hit)
	if hit {
		return tracks, nil
	}

	tracks, err = d.detector.DetectFaces(ctx, assetID)
	if err != nil {
		return nil, err
	}

	if err := d.cache.SetTracks(ctx, assetID, tracks, d.ttl); err != nil {
		d.logger.WithAssetID(assetID).WithError(err).Warn("face track cache write failed")
	}
	return tracks, nil
}

// Invalidate drops the cached tracks for an asset
func (d *CachedDetector) Invalidate(ctx context.Context, assetID string) {
	if err := d.cache.DeleteTracks(ctx, assetID); err != nil {
		d.logger.WithAssetID(assetID).WithError(err).Warn("face track cache invalidation failed")
	}
}
