package facetrack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/arjunmalik/editcore/internal/reframe"
)

// HTTPDetector calls the media-processing service's face detection
// endpoint. Detection runs server-side against the stored media; this
// client only fetches the resulting keyframe tracks.
type HTTPDetector struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDetector creates a detector client for the given service URL
func NewHTTPDetector(baseURL string) *HTTPDetector {
	return &HTTPDetector{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// DetectFaces fetches face tracks for an asset
func (d *HTTPDetector) DetectFaces(ctx context.Context, assetID string) ([]reframe.FaceTrack, error) {
	url := fmt.Sprintf("%s/assets/%s/facetracks", d.baseURL, assetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build detection request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("face detection request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("face detection service returned %d", resp.StatusCode)
	}

	var payload struct {
		Tracks []reframe.FaceTrack `json:"tracks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode face tracks: %w", err)
	}

	return payload.Tracks, nil
}
