package records

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sitpractice/sit-api/api/types"
)

const defaultListLimit = 100

// GetSits lists the user's sits, newest first
func GetSits(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseLimit(c, defaultListLimit)

		sits, err := deps.RecordService.ListSits(c.Request.Context(), types.UserID(c), limit)
		if err != nil {
			log.Printf("[ERROR] Failed to list sits: %v", err)
			types.SendInternalError(c, "Failed to list sits")
			return
		}

		types.SendSuccess(c, types.SitsResponse{
			Sits:  sits,
			Count: len(sits),
		})
	}
}

// parseLimit reads the optional limit query parameter
func parseLimit(c *gin.Context, fallback int) int {
	raw := c.Query("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
