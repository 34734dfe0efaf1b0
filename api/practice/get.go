package practice

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/sitpractice/sit-api/api/types"
	"github.com/sitpractice/sit-api/internal/services/practice"
	apperrors "github.com/sitpractice/sit-api/pkg/errors"
)

// Get runs the practice query engine directly. Query parameters:
// start_date and end_date (local calendar dates, YYYY-MM-DD), timezone
// (IANA name, defaults to UTC) and kind (sits|checkins|all).
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := practice.QueryParams{
			StartDate: c.Query("start_date"),
			EndDate:   c.Query("end_date"),
			Timezone:  c.Query("timezone"),
			Kind:      practice.Kind(c.Query("kind")),
		}

		result, err := deps.PracticeService.Query(c.Request.Context(), types.UserID(c), params)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrCodeInvalidArgument) {
				types.SendError(c, err)
				return
			}
			log.Printf("[ERROR] Practice query failed: %v", err)
			types.SendInternalError(c, "Failed to query practice data")
			return
		}

		types.SendSuccess(c, types.PracticeResponse{
			Flows:   result.Flows,
			Records: result.Records,
			Count:   result.Count,
		})
	}
}
