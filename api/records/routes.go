package records

import (
	"github.com/gin-gonic/gin"
	"github.com/sitpractice/sit-api/api/types"
)

// RegisterRoutes registers practice record routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	// POST /api/v1/sits - Record a timed sit
	router.POST("/sits", PostSit(deps))

	// GET /api/v1/sits - List recent sits
	router.GET("/sits", GetSits(deps))

	// POST /api/v1/checkins - Record a check-in (multipart, optional voice note)
	router.POST("/checkins", PostCheckin(deps))

	// GET /api/v1/checkins - List recent check-ins
	router.GET("/checkins", GetCheckins(deps))

	// DELETE /api/v1/records/:id - Delete a sit or check-in
	router.DELETE("/records/:id", Delete(deps))
}
