package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjunmalik/editcore/internal/assets"
	"github.com/arjunmalik/editcore/internal/config"
	"github.com/arjunmalik/editcore/internal/logging"
	"github.com/arjunmalik/editcore/internal/reframe"
	"github.com/arjunmalik/editcore/pkg/models"
)

type memAssetStore struct {
	assets map[string]*models.Asset
}

func (s *memAssetStore) CreateAsset(ctx context.Context, asset *models.Asset) error {
	if asset.ID == "" {
		asset.ID = fmt.Sprintf("asset-%d", len(s.assets)+1)
	}
	s.assets[asset.ID] = asset
	return nil
}

func (s *memAssetStore) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	a, ok := s.assets[id]
	if !ok {
		return nil, models.NewNotFoundError("asset", id)
	}
	return a, nil
}

func (s *memAssetStore) UpdateAsset(ctx context.Context, asset *models.Asset) error {
	s.assets[asset.ID] = asset
	return nil
}

func (s *memAssetStore) ListAssets(ctx context.Context, limit, offset int) ([]*models.Asset, error) {
	if offset > 0 {
		return nil, nil
	}
	var out []*models.Asset
	for _, a := range s.assets {
		out = append(out, a)
	}
	return out, nil
}

func (s *memAssetStore) DeleteAsset(ctx context.Context, id string) error {
	if _, ok := s.assets[id]; !ok {
		return models.NewNotFoundError("asset", id)
	}
	delete(s.assets, id)
	return nil
}

type memObjects struct{}

func (memObjects) DeletePrefix(ctx context.Context, prefix string) error { return nil }

type stubDetector struct {
	tracks []reframe.FaceTrack
}

func (d *stubDetector) DetectFaces(ctx context.Context, assetID string) ([]reframe.FaceTrack, error) {
	return d.tracks, nil
}

func newTestAPI(t *testing.T) (*API, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	logger := logging.NewNopLogger()

	library := assets.NewLibrary(&memAssetStore{assets: make(map[string]*models.Asset)}, memObjects{}, logger)
	require.NoError(t, library.Create(context.Background(), &models.Asset{
		ID: "vid-1", Kind: models.AssetKindVideo, Name: "clip.mp4", Duration: 12.5,
	}))

	cfg := &config.Config{}
	cfg.Auth.RateRPS = 1000
	cfg.Auth.RateBurst = 1000

	api := &API{
		cfg:      cfg,
		logger:   logger,
		library:  library,
		sessions: newSessionManager(nil, library, models.DefaultTracks(), time.Second, logger),
		faces: &stubDetector{tracks: []reframe.FaceTrack{
			{ID: "face-1", Keyframes: []reframe.Keyframe{{T: 0, X: 0.5}, {T: 10, X: 0.5}}},
		}},
	}
	return api, setupRouter(api)
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createProject(t *testing.T, router *gin.Engine) string {
	w := doJSON(router, "POST", "/api/v1/projects", gin.H{"id": "proj-1", "name": "Test"})
	require.Equal(t, http.StatusCreated, w.Code)
	return "proj-1"
}

func addTestClip(t *testing.T, router *gin.Engine, projectID string, start float64) models.Clip {
	w := doJSON(router, "POST", fmt.Sprintf("/api/v1/projects/%s/tabs/main/clips", projectID), gin.H{
		"asset_id": "vid-1",
		"track_id": models.BaseVideoTrack(models.DefaultTracks()).ID,
		"start":    start,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var clip models.Clip
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &clip))
	return clip
}

func TestCreateAndGetProject(t *testing.T) {
	_, router := newTestAPI(t)
	id := createProject(t, router)

	w := doJSON(router, "GET", "/api/v1/projects/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ActiveTab string       `json:"active_tab"`
		Tabs      []models.Tab `json:"tabs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.MainTabID, resp.ActiveTab)
	assert.Len(t, resp.Tabs, 1)
}

func TestGetUnknownProject(t *testing.T) {
	_, router := newTestAPI(t)
	w := doJSON(router, "GET", "/api/v1/projects/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClipLifecycle(t *testing.T) {
	_, router := newTestAPI(t)
	id := createProject(t, router)

	clip := addTestClip(t, router, id, 0)
	assert.Equal(t, 12.5, clip.Duration)

	// Update rejects an incoherent patch.
	w := doJSON(router, "PATCH", fmt.Sprintf("/api/v1/projects/%s/tabs/main/clips/%s", id, clip.ID), gin.H{
		"duration": 3.0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Split in the middle produces a second clip.
	w = doJSON(router, "POST", fmt.Sprintf("/api/v1/projects/%s/tabs/main/clips/%s/split", id, clip.ID), gin.H{
		"time": 6.0,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var splitResp struct {
		Split bool         `json:"split"`
		Clip  *models.Clip `json:"clip"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &splitResp))
	assert.True(t, splitResp.Split)
	require.NotNil(t, splitResp.Clip)
	assert.Equal(t, 6.0, splitResp.Clip.Start)

	// Near-edge split is a no-op, not an error.
	w = doJSON(router, "POST", fmt.Sprintf("/api/v1/projects/%s/tabs/main/clips/%s/split", id, clip.ID), gin.H{
		"time": 0.01,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &splitResp))
	assert.False(t, splitResp.Split)

	// Undo reverts the split.
	w = doJSON(router, "POST", fmt.Sprintf("/api/v1/projects/%s/tabs/main/history/undo", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", fmt.Sprintf("/api/v1/projects/%s/tabs/main/clips", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var clipsResp struct {
		Clips []models.Clip `json:"clips"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &clipsResp))
	assert.Len(t, clipsResp.Clips, 1)

	// Redo reapplies it.
	w = doJSON(router, "POST", fmt.Sprintf("/api/v1/projects/%s/tabs/main/history/redo", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", fmt.Sprintf("/api/v1/projects/%s/tabs/main/clips", id), nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &clipsResp))
	assert.Len(t, clipsResp.Clips, 2)
}

func TestRippleDelete(t *testing.T) {
	_, router := newTestAPI(t)
	id := createProject(t, router)

	first := addTestClip(t, router, id, 0)
	second := addTestClip(t, router, id, 12.5)

	w := doJSON(router, "DELETE", fmt.Sprintf("/api/v1/projects/%s/tabs/main/clips/%s?ripple=true", id, first.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", fmt.Sprintf("/api/v1/projects/%s/tabs/main/clips", id), nil)
	var clipsResp struct {
		Clips []models.Clip `json:"clips"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &clipsResp))
	require.Len(t, clipsResp.Clips, 1)
	assert.Equal(t, second.ID, clipsResp.Clips[0].ID)
	assert.Equal(t, 0.0, clipsResp.Clips[0].Start)
}

func TestTabIsolation(t *testing.T) {
	_, router := newTestAPI(t)
	id := createProject(t, router)
	addTestClip(t, router, id, 0)

	w := doJSON(router, "POST", fmt.Sprintf("/api/v1/projects/%s/tabs", id), gin.H{
		"name":     "Scene 2",
		"asset_id": "vid-1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var tab models.Tab
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tab))

	// The new tab starts empty; main keeps its clip.
	w = doJSON(router, "GET", fmt.Sprintf("/api/v1/projects/%s/tabs/%s/clips", id, tab.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var clipsResp struct {
		Clips []models.Clip `json:"clips"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &clipsResp))
	assert.Empty(t, clipsResp.Clips)

	// Closing main is a no-op.
	w = doJSON(router, "DELETE", fmt.Sprintf("/api/v1/projects/%s/tabs/main", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", fmt.Sprintf("/api/v1/projects/%s/tabs", id), nil)
	var tabsResp struct {
		Tabs []models.Tab `json:"tabs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tabsResp))
	assert.Len(t, tabsResp.Tabs, 2)
}

func TestCompositeEndpoint(t *testing.T) {
	_, router := newTestAPI(t)
	id := createProject(t, router)
	addTestClip(t, router, id, 0)

	w := doJSON(router, "GET", fmt.Sprintf("/api/v1/projects/%s/composite?t=1.5", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Layers []struct {
			RenderMode string  `json:"render_mode"`
			ClipTime   float64 `json:"clip_time"`
		} `json:"layers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Layers, 1)
	assert.Equal(t, "full-bleed", resp.Layers[0].RenderMode)
	assert.Equal(t, 1.5, resp.Layers[0].ClipTime)

	// Past the clip's end there is nothing to draw.
	w = doJSON(router, "GET", fmt.Sprintf("/api/v1/projects/%s/composite?t=20", id), nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Layers)
}

func TestPreviewSync(t *testing.T) {
	_, router := newTestAPI(t)
	id := createProject(t, router)
	clip := addTestClip(t, router, id, 0)

	// Paused with drifted position: seek expected.
	w := doJSON(router, "POST", fmt.Sprintf("/api/v1/projects/%s/preview/sync", id), gin.H{
		"t":         2.0,
		"playing":   false,
		"positions": map[string]float64{clip.ID: 5.0},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Seeks []struct {
			ClipID   string  `json:"clip_id"`
			Position float64 `json:"position"`
		} `json:"seeks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Seeks, 1)
	assert.Equal(t, clip.ID, resp.Seeks[0].ClipID)
	assert.Equal(t, 2.0, resp.Seeks[0].Position)

	// Playing: never seek.
	w = doJSON(router, "POST", fmt.Sprintf("/api/v1/projects/%s/preview/sync", id), gin.H{
		"t":         2.0,
		"playing":   true,
		"positions": map[string]float64{clip.ID: 5.0},
	})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Seeks)
}

func TestReframeEndpoint(t *testing.T) {
	_, router := newTestAPI(t)
	id := createProject(t, router)

	w := doJSON(router, "POST", fmt.Sprintf("/api/v1/projects/%s/reframe", id), gin.H{
		"asset_id": "vid-1",
		"mode":     "single",
		"track_id": "face-1",
		"t":        1.0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Active bool    `json:"active"`
		X      float64 `json:"x"`
		Scale  float64 `json:"scale"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Active)
	// Centered subject needs no pan.
	assert.InDelta(t, 0.0, resp.X, 1e-9)
	assert.InDelta(t, reframe.CoverScale, resp.Scale, 1e-9)

	// Unknown track yields an inactive result.
	w = doJSON(router, "POST", fmt.Sprintf("/api/v1/projects/%s/reframe", id), gin.H{
		"asset_id": "vid-1",
		"mode":     "single",
		"track_id": "nope",
		"t":        1.0,
	})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Active)
}

func TestDeleteAssetCascades(t *testing.T) {
	api, router := newTestAPI(t)
	id := createProject(t, router)
	addTestClip(t, router, id, 0)

	w := doJSON(router, "DELETE", "/api/v1/assets/vid-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, ok := api.library.ResolveAsset("vid-1")
	assert.False(t, ok)

	w = doJSON(router, "GET", fmt.Sprintf("/api/v1/projects/%s/tabs/main/clips", id), nil)
	var clipsResp struct {
		Clips []models.Clip `json:"clips"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &clipsResp))
	assert.Empty(t, clipsResp.Clips)
}

func TestUpdateSettingsValidation(t *testing.T) {
	_, router := newTestAPI(t)
	id := createProject(t, router)

	w := doJSON(router, "PUT", fmt.Sprintf("/api/v1/projects/%s/settings", id), gin.H{
		"width": 0, "height": 1920, "fps": 30,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "PUT", fmt.Sprintf("/api/v1/projects/%s/settings", id), gin.H{
		"width": 1920, "height": 1080, "fps": 24,
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCaptionRoundTrip(t *testing.T) {
	_, router := newTestAPI(t)
	id := createProject(t, router)
	clip := addTestClip(t, router, id, 0)

	w := doJSON(router, "PUT", fmt.Sprintf("/api/v1/projects/%s/clips/%s/caption", id, clip.ID), gin.H{
		"words": []gin.H{{"text": "hello", "start": 0.2, "end": 0.6}},
		"style": models.DefaultCaptionStyle(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", fmt.Sprintf("/api/v1/projects/%s/clips/%s/caption", id, clip.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var data models.CaptionData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &data))
	require.Len(t, data.Words, 1)
	assert.Equal(t, "hello", data.Words[0].Text)
}
