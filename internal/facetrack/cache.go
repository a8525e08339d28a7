package facetrack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arjunmalik/editcore/internal/reframe"
)

// Cache stores face-tracking results per asset in Redis. Detection is
// expensive, so results are cached once per asset and reused by the
// auto-reframe engine on every frame.
type Cache struct {
	client *redis.Client
}

// NewCache creates a new cache instance
func NewCache(host string, port int, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping checks the Redis connection
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// SetTracks caches the face tracks detected for an asset
func (c *Cache) SetTracks(ctx context.Context, assetID string, tracks []reframe.FaceTrack, ttl time.Duration) error {
	data, err := json.Marshal(tracks)
	if err != nil {
		return fmt.Errorf("failed to marshal face tracks: %w", err)
	}

	key := fmt.Sprintf("facetracks:%s", assetID)
	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetTracks retrieves cached face tracks for an asset. A cache miss returns
// (nil, false, nil).
func (c *Cache) GetTracks(ctx context.Context, assetID string) ([]reframe.FaceTrack, bool, error) {
	key := fmt.Sprintf("facetracks:%s", assetID)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil // Cache miss
		}
		return nil, false, fmt.Errorf("failed to get face tracks from cache: %w", err)
	}

	var tracks []reframe.FaceTrack
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal face tracks: %w", err)
	}

	return tracks, true, nil
}

// DeleteTracks removes an asset's cached face tracks, e.g. after the asset
// is regenerated.
func (c *Cache) DeleteTracks(ctx context.Context, assetID string) error {
	key := fmt.Sprintf("facetracks:%s", assetID)
	return c.client.Del(ctx, key).Err()
}
