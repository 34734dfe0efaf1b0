package records

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitpractice/sit-api/api/types"
	"github.com/sitpractice/sit-api/internal/services/records"
)

// PostSitRequest is the JSON body for recording a sit
type PostSitRequest struct {
	OccurredAt      time.Time `json:"occurred_at" binding:"required"`
	DurationSeconds float64   `json:"duration_seconds" binding:"required"`
}

// PostSit records a timed seated-meditation session
func PostSit(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PostSitRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		if req.DurationSeconds <= 0 {
			types.SendBadRequest(c, "duration_seconds must be positive")
			return
		}

		sit, err := deps.RecordService.CreateSit(c.Request.Context(), types.UserID(c), records.CreateSitInput{
			OccurredAt:      req.OccurredAt,
			DurationSeconds: req.DurationSeconds,
		})
		if err != nil {
			log.Printf("[ERROR] Failed to create sit: %v", err)
			types.SendInternalError(c, "Failed to create sit")
			return
		}

		types.SendCreated(c, sit)
	}
}
