package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arjunmalik/editcore/internal/timeline"
)

// transformPatchRequest mirrors timeline.TransformPatch with JSON tags
type transformPatchRequest struct {
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
	Scale      *float64 `json:"scale"`
	Rotation   *float64 `json:"rotation"`
	Opacity    *float64 `json:"opacity"`
	CropTop    *float64 `json:"crop_top"`
	CropBottom *float64 `json:"crop_bottom"`
	CropLeft   *float64 `json:"crop_left"`
	CropRight  *float64 `json:"crop_right"`
}

func (r *transformPatchRequest) toPatch() *timeline.TransformPatch {
	if r == nil {
		return nil
	}
	return &timeline.TransformPatch{
		X: r.X, Y: r.Y, Scale: r.Scale, Rotation: r.Rotation, Opacity: r.Opacity,
		CropTop: r.CropTop, CropBottom: r.CropBottom, CropLeft: r.CropLeft, CropRight: r.CropRight,
	}
}

// List clips endpoint
func (api *API) listClips(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	clips, err := session.Clips(c.Param("tabId"))
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clips": clips})
}

// Add clip endpoint
func (api *API) addClip(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	var req struct {
		AssetID  string   `json:"asset_id"`
		TrackID  string   `json:"track_id" binding:"required"`
		Start    float64  `json:"start"`
		Duration *float64 `json:"duration"`
		InPoint  *float64 `json:"in_point"`
		OutPoint *float64 `json:"out_point"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := timeline.AddOptions{Duration: req.Duration, InPoint: req.InPoint, OutPoint: req.OutPoint}
	clip, err := session.AddClip(c.Param("tabId"), req.AssetID, req.TrackID, req.Start, opts)
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, clip)
}

// Update clip endpoint. Interim updates coalesce into the undo step opened
// by the snapshot endpoint at drag start.
func (api *API) updateClip(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	var req struct {
		AssetID   *string                `json:"asset_id"`
		TrackID   *string                `json:"track_id"`
		Start     *float64               `json:"start"`
		Duration  *float64               `json:"duration"`
		InPoint   *float64               `json:"in_point"`
		OutPoint  *float64               `json:"out_point"`
		Transform *transformPatchRequest `json:"transform"`
		Interim   bool                   `json:"interim"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := timeline.ClipPatch{
		AssetID:   req.AssetID,
		TrackID:   req.TrackID,
		Start:     req.Start,
		Duration:  req.Duration,
		InPoint:   req.InPoint,
		OutPoint:  req.OutPoint,
		Transform: req.Transform.toPatch(),
	}
	if err := session.UpdateClip(c.Param("tabId"), c.Param("clipId"), patch, req.Interim); err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Clip updated", "clip_id": c.Param("clipId")})
}

// Move clip endpoint
func (api *API) moveClip(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	var req struct {
		Start   float64 `json:"start"`
		TrackID string  `json:"track_id"`
		Interim bool    `json:"interim"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := session.MoveClip(c.Param("tabId"), c.Param("clipId"), req.Start, req.TrackID, req.Interim); err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Clip moved", "clip_id": c.Param("clipId")})
}

// Resize clip endpoint
func (api *API) resizeClip(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	var req struct {
		InPoint  float64 `json:"in_point"`
		OutPoint float64 `json:"out_point"`
		Interim  bool    `json:"interim"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := session.ResizeClip(c.Param("tabId"), c.Param("clipId"), req.InPoint, req.OutPoint, req.Interim); err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Clip resized", "clip_id": c.Param("clipId")})
}

// Split clip endpoint. A near-edge split is a no-op, reported as such.
func (api *API) splitClip(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	var req struct {
		Time float64 `json:"time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := session.SplitClip(c.Param("tabId"), c.Param("clipId"), req.Time)
	if err != nil {
		api.respondError(c, err)
		return
	}
	if created == nil {
		c.JSON(http.StatusOK, gin.H{"split": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"split": true, "clip": created})
}

// Delete clip endpoint
func (api *API) deleteClip(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	ripple := c.Query("ripple") == "true"
	if err := session.DeleteClip(c.Param("tabId"), c.Param("clipId"), ripple); err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Clip deleted", "clip_id": c.Param("clipId")})
}

// Snapshot endpoint opens an undo step before a drag's interim updates
func (api *API) snapshotHistory(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	if err := session.Snapshot(c.Param("tabId")); err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Snapshot taken"})
}

// Undo endpoint
func (api *API) undo(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	ok, err := session.Undo(c.Param("tabId"))
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"undone": ok})
}

// Redo endpoint
func (api *API) redo(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	ok, err := session.Redo(c.Param("tabId"))
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redone": ok})
}

// History state endpoint
func (api *API) historyState(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	canUndo, err := session.CanUndo(c.Param("tabId"))
	if err != nil {
		api.respondError(c, err)
		return
	}
	canRedo, err := session.CanRedo(c.Param("tabId"))
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"can_undo": canUndo, "can_redo": canRedo})
}
