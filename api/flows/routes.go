package flows

import (
	"github.com/gin-gonic/gin"
	"github.com/sitpractice/sit-api/api/types"
)

// RegisterRoutes registers flow definition routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	// GET /api/v1/flows - List the caller's flows
	router.GET("", GetAll(deps))

	// GET /api/v1/flows/:id - Get a single flow definition
	router.GET("/:id", GetByID(deps))

	// POST /api/v1/flows - Create a flow definition
	router.POST("", Post(deps))
}
