package chat

import (
	"github.com/gin-gonic/gin"
	"github.com/sitpractice/sit-api/api/types"
)

// RegisterRoutes registers chat routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	// POST /api/v1/chat - One conversational turn
	router.POST("", Post(deps))

	// GET /api/v1/chat/history - Recent messages, oldest first
	router.GET("/history", GetHistory(deps))
}
