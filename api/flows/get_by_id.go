package flows

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/sitpractice/sit-api/api/types"
	"github.com/sitpractice/sit-api/internal/models"
	flowsvc "github.com/sitpractice/sit-api/internal/services/flows"
)

// GetByID returns a single flow definition
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		flowID := c.Param("id")

		flow, err := deps.FlowService.GetFlow(c.Request.Context(), flowID)
		if err != nil {
			if errors.Is(err, flowsvc.ErrFlowNotFound) {
				types.SendNotFound(c, "Flow not found")
				return
			}
			log.Printf("[ERROR] Failed to fetch flow %s: %v", flowID, err)
			types.SendInternalError(c, "Failed to fetch flow")
			return
		}

		// Private flows are only visible to their owner
		if flow.Visibility != models.FlowVisibilityPublic && flow.UserID != types.UserID(c) {
			types.SendNotFound(c, "Flow not found")
			return
		}

		types.SendSuccess(c, flow)
	}
}
