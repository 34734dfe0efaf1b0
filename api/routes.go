package api

import (
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/sitpractice/sit-api/api/chat"
	"github.com/sitpractice/sit-api/api/flows"
	"github.com/sitpractice/sit-api/api/health"
	"github.com/sitpractice/sit-api/api/practice"
	"github.com/sitpractice/sit-api/api/records"
	"github.com/sitpractice/sit-api/api/types"
	"github.com/sitpractice/sit-api/api/version"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	// Public routes (no auth, no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	// Setup 404 handler
	engine.NoRoute(NotFoundHandler())

	maxUpload := deps.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 25 * 1024 * 1024
	}

	// API v1 routes: everything below requires a bearer token
	v1 := engine.Group("/api/v1")
	v1.Use(RequireAuth(deps))

	// Record routes with general rate limiting (10 req/s, burst of 20).
	// The size limit is generous because check-ins carry voice-note
	// uploads.
	recordGroup := v1.Group("")
	recordGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 10, 20))
	recordGroup.Use(RequestSizeLimitWithSize(maxUpload))
	records.RegisterRoutes(recordGroup, deps)

	// Practice query routes with general rate limiting
	practiceGroup := v1.Group("/practice")
	practiceGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 10, 20))
	practice.RegisterRoutes(practiceGroup, deps)

	// Flow routes with general rate limiting
	flowGroup := v1.Group("/flows")
	flowGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 10, 20))
	flowGroup.Use(RequestSizeLimit())
	flows.RegisterRoutes(flowGroup, deps)

	// Chat routes with tighter rate limiting (2 req/s, burst of 4):
	// each request may cost two model calls
	chatGroup := v1.Group("/chat")
	chatGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 2, 4))
	chatGroup.Use(RequestSizeLimit())
	chat.RegisterRoutes(chatGroup, deps)

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(404, gin.H{
			"status":  "error",
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	}
}
