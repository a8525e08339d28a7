package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arjunmalik/editcore/internal/middleware"
	"github.com/arjunmalik/editcore/internal/tracing"
)

func setupRouter(api *API) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(api.logger))
	if api.cfg.Tracing.Enabled {
		router.Use(tracing.Middleware())
	}

	// Health check and metrics
	router.GET("/health", api.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	v1 := router.Group("/api/v1")
	if api.cfg.Auth.JWTSecret != "" {
		v1.Use(middleware.JWTAuth())
	}
	v1.Use(middleware.RateLimit(middleware.NewRateLimiter(api.cfg.Auth.RateRPS, api.cfg.Auth.RateBurst)))
	{
		// Assets
		v1.POST("/assets/upload", api.uploadAsset)
		v1.GET("/assets", api.listAssets)
		v1.GET("/assets/:id", api.getAsset)
		v1.GET("/assets/:id/url", api.getAssetURL)
		v1.DELETE("/assets/:id", api.deleteAsset)

		// Projects
		v1.POST("/projects", api.createProject)
		v1.GET("/projects/:id", api.getProject)
		v1.PUT("/projects/:id/settings", api.updateSettings)

		// Tabs
		v1.GET("/projects/:id/tabs", api.listTabs)
		v1.POST("/projects/:id/tabs", api.createTab)
		v1.POST("/projects/:id/tabs/:tabId/activate", api.activateTab)
		v1.DELETE("/projects/:id/tabs/:tabId", api.closeTab)
		v1.PUT("/projects/:id/tabs/:tabId/asset", api.updateTabAsset)

		// Clips
		v1.GET("/projects/:id/tabs/:tabId/clips", api.listClips)
		v1.POST("/projects/:id/tabs/:tabId/clips", api.addClip)
		v1.PATCH("/projects/:id/tabs/:tabId/clips/:clipId", api.updateClip)
		v1.POST("/projects/:id/tabs/:tabId/clips/:clipId/move", api.moveClip)
		v1.POST("/projects/:id/tabs/:tabId/clips/:clipId/resize", api.resizeClip)
		v1.POST("/projects/:id/tabs/:tabId/clips/:clipId/split", api.splitClip)
		v1.DELETE("/projects/:id/tabs/:tabId/clips/:clipId", api.deleteClip)

		// History
		v1.POST("/projects/:id/tabs/:tabId/history/snapshot", api.snapshotHistory)
		v1.POST("/projects/:id/tabs/:tabId/history/undo", api.undo)
		v1.POST("/projects/:id/tabs/:tabId/history/redo", api.redo)
		v1.GET("/projects/:id/tabs/:tabId/history", api.historyState)

		// Captions
		v1.PUT("/projects/:id/clips/:clipId/caption", api.setCaption)
		v1.GET("/projects/:id/clips/:clipId/caption", api.getCaption)

		// Preview
		v1.GET("/projects/:id/composite", api.composite)
		v1.POST("/projects/:id/preview/sync", api.previewSync)
		v1.POST("/projects/:id/reframe", api.computeReframe)
	}

	return router
}
