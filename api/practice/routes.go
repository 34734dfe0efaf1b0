package practice

import (
	"github.com/gin-gonic/gin"
	"github.com/sitpractice/sit-api/api/types"
)

// RegisterRoutes registers practice query routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	// GET /api/v1/practice - Timezone-aware merged view of sits and check-ins
	router.GET("", Get(deps))
}
