package flows

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/sitpractice/sit-api/api/types"
)

// GetAll lists the caller's flows, seeding the starter flow for
// first-time users.
func GetAll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		flows, err := deps.FlowService.EnsureDefaultFlow(c.Request.Context(), types.UserID(c))
		if err != nil {
			log.Printf("[ERROR] Failed to list flows: %v", err)
			types.SendInternalError(c, "Failed to list flows")
			return
		}

		types.SendSuccess(c, types.FlowsResponse{
			Flows: flows,
			Count: len(flows),
		})
	}
}
