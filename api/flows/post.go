package flows

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/sitpractice/sit-api/api/types"
	"github.com/sitpractice/sit-api/internal/models"
)

// PostRequest is the JSON body for creating a flow
type PostRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Steps       models.FlowSteps `json:"steps" binding:"required"`
}

// Post creates a new flow definition. Steps are stored opaquely; the
// client interprets them.
func Post(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PostRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		flow := &models.Flow{
			UserID:      types.UserID(c),
			Name:        req.Name,
			Description: req.Description,
			Steps:       req.Steps,
			Visibility:  models.FlowVisibilityPrivate,
		}

		if err := deps.FlowService.CreateFlow(c.Request.Context(), flow); err != nil {
			log.Printf("[ERROR] Failed to create flow: %v", err)
			types.SendBadRequest(c, err.Error())
			return
		}

		types.SendCreated(c, flow)
	}
}
