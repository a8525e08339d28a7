package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arjunmalik/editcore/pkg/models"
)

// Create project endpoint
func (api *API) createProject(c *gin.Context) {
	var req struct {
		ID   string `json:"id"`
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	session, err := api.sessions.create(c.Request.Context(), req.ID, req.Name)
	if err != nil {
		api.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       req.ID,
		"name":     req.Name,
		"settings": session.Settings(),
		"tracks":   session.Tracks(),
	})
}

// Get project endpoint
func (api *API) getProject(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         c.Param("id"),
		"settings":   session.Settings(),
		"tracks":     session.Tracks(),
		"tabs":       session.Tabs(),
		"active_tab": session.ActiveTab().ID,
	})
}

// Update project settings endpoint
func (api *API) updateSettings(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	var settings models.ProjectSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := session.UpdateSettings(settings); err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// List tabs endpoint
func (api *API) listTabs(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tabs":       session.Tabs(),
		"active_tab": session.ActiveTab().ID,
	})
}

// Create tab endpoint
func (api *API) createTab(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	var req struct {
		Name    string        `json:"name" binding:"required"`
		AssetID string        `json:"asset_id" binding:"required"`
		Clips   []models.Clip `json:"clips"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tab := session.CreateTab(req.Name, req.AssetID, req.Clips)
	c.JSON(http.StatusCreated, tab)
}

// Activate tab endpoint
func (api *API) activateTab(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	if err := session.SwitchTab(c.Param("tabId")); err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session.ActiveTab())
}

// Close tab endpoint
func (api *API) closeTab(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	if err := session.CloseTab(c.Param("tabId")); err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tab closed", "tab_id": c.Param("tabId")})
}

// Update tab asset endpoint. Points the tab's base-track clips at a
// regenerated asset in place.
func (api *API) updateTabAsset(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	var req struct {
		AssetID  string  `json:"asset_id" binding:"required"`
		Duration float64 `json:"duration" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := session.UpdateTabAsset(c.Param("tabId"), req.AssetID, req.Duration); err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tab asset updated", "tab_id": c.Param("tabId")})
}

// Set caption endpoint
func (api *API) setCaption(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	var data models.CaptionData
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session.SetCaption(c.Param("clipId"), data)
	c.JSON(http.StatusOK, gin.H{"message": "Caption saved", "clip_id": c.Param("clipId")})
}

// Get caption endpoint
func (api *API) getCaption(c *gin.Context) {
	session, err := api.sessions.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	data := session.Caption(c.Param("clipId"))
	if data == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No caption for clip"})
		return
	}
	c.JSON(http.StatusOK, data)
}
