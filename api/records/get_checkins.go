package records

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/sitpractice/sit-api/api/types"
)

// GetCheckins lists the user's check-ins, newest first. Clients poll
// this to observe transcription status changes.
func GetCheckins(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseLimit(c, defaultListLimit)

		checkins, err := deps.RecordService.ListCheckins(c.Request.Context(), types.UserID(c), limit)
		if err != nil {
			log.Printf("[ERROR] Failed to list checkins: %v", err)
			types.SendInternalError(c, "Failed to list checkins")
			return
		}

		types.SendSuccess(c, types.CheckinsResponse{
			Checkins: checkins,
			Count:    len(checkins),
		})
	}
}
