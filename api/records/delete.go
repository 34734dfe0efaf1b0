package records

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sitpractice/sit-api/api/types"
	"github.com/sitpractice/sit-api/internal/services/records"
)

// Delete removes a sit or check-in owned by the caller. A check-in's
// voice-note object is deleted from blob storage before the row.
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		recordID := c.Param("id")
		if recordID == "" {
			types.SendBadRequest(c, "record id is required")
			return
		}

		err := deps.RecordService.DeleteRecord(c.Request.Context(), types.UserID(c), recordID)
		if err != nil {
			if errors.Is(err, records.ErrRecordNotFound) {
				types.SendNotFound(c, "Record not found")
				return
			}
			log.Printf("[ERROR] Failed to delete record %s: %v", recordID, err)
			types.SendInternalError(c, "Failed to delete record")
			return
		}

		c.Status(http.StatusNoContent)
	}
}
