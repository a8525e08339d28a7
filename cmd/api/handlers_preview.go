package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arjunmalik/editcore/internal/compositor"
	"github.com/arjunmalik/editcore/internal/metrics"
	"github.com/arjunmalik/editcore/internal/reframe"
	"github.com/arjunmalik/editcore/internal/timeline"
)

func viewportFor(session *timeline.Session) compositor.Viewport {
	settings := session.Settings()
	return compositor.Viewport{
		Width:  float64(settings.Width),
		Height: float64(settings.Height),
	}
}

// reframeOverride computes the reframe transform for the request's query
// parameters, or nil when reframing is off or yields no position.
func (api *API) reframeOverride(c *gin.Context, session *timeline.Session, t float64) (*compositor.ReframeOverride, error) {
	assetID := c.Query("reframe_asset")
	if assetID == "" || api.faces == nil {
		return nil, nil
	}

	tracks, err := api.faces.DetectFaces(c.Request.Context(), assetID)
	if err != nil {
		return nil, err
	}

	mode := reframe.Mode(c.DefaultQuery("reframe_mode", string(reframe.ModeSingle)))
	settings := session.Settings()
	vp := reframe.Viewport{Width: float64(settings.Width), Height: float64(settings.Height)}

	result, ok := reframe.Compute(tracks, mode, c.Query("reframe_track"), t, vp)
	metrics.RecordReframe(string(mode))
	if !ok {
		return nil, nil
	}
	return &compositor.ReframeOverride{X: result.X, Scale: result.Scale}, nil
}

// Composite endpoint resolves the active tab's layer stack at the playhead
// time. Optional reframe_* query parameters apply the auto-reframe
// transform to the base track.
func (api *API) composite(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	t, err := strconv.ParseFloat(c.DefaultQuery("t", "0"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid time"})
		return
	}

	rf, err := api.reframeOverride(c, session, t)
	if err != nil {
		api.respondError(c, err)
		return
	}

	layers := session.Layers(t, viewportFor(session), rf)
	c.JSON(http.StatusOK, gin.H{"t": t, "layers": layers})
}

// Preview sync endpoint. The player reports its element positions; the
// response says which elements to seek. While playing the answer is always
// empty: elements run on their own clocks.
func (api *API) previewSync(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	var req struct {
		T         float64            `json:"t"`
		Playing   bool               `json:"playing"`
		Positions map[string]float64 `json:"positions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	layers := session.Layers(req.T, viewportFor(session), nil)
	seeks := compositor.SyncPlan(layers, req.Positions, req.Playing)
	c.JSON(http.StatusOK, gin.H{"seeks": seeks})
}

// Reframe endpoint computes the pan/scale transform for one frame
func (api *API) computeReframe(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	var req struct {
		AssetID string  `json:"asset_id" binding:"required"`
		Mode    string  `json:"mode"`
		TrackID string  `json:"track_id"`
		T       float64 `json:"t"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if api.faces == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Face tracking unavailable"})
		return
	}

	tracks, err := api.faces.DetectFaces(c.Request.Context(), req.AssetID)
	if err != nil {
		api.respondError(c, err)
		return
	}

	mode := reframe.Mode(req.Mode)
	if mode == "" {
		mode = reframe.ModeSingle
	}
	settings := session.Settings()
	vp := reframe.Viewport{Width: float64(settings.Width), Height: float64(settings.Height)}

	result, ok := reframe.Compute(tracks, mode, req.TrackID, req.T, vp)
	metrics.RecordReframe(string(mode))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": true, "x": result.X, "scale": result.Scale})
}
