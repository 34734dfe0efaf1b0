package chat

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/sitpractice/sit-api/api/types"
	apperrors "github.com/sitpractice/sit-api/pkg/errors"
)

// PostRequest is the JSON body for one chat turn
type PostRequest struct {
	Message  string `json:"message" binding:"required"`
	Timezone string `json:"timezone"`
}

// Post handles one chat turn: the assistant may query the user's
// practice data before answering. Blocks on up to two model calls.
func Post(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PostRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		msg, err := deps.ChatService.Converse(c.Request.Context(), types.UserID(c), req.Message, req.Timezone)
		if err != nil {
			code := apperrors.GetCode(err)
			switch code {
			case apperrors.ErrCodeInvalidArgument, apperrors.ErrCodeMissingField:
				types.SendError(c, err)
			case apperrors.ErrCodeUpstreamUnavailable:
				log.Printf("[ERROR] Chat model call failed: %v", err)
				types.SendError(c, err)
			default:
				log.Printf("[ERROR] Chat request failed: %v", err)
				types.SendInternalError(c, "Failed to process chat message")
			}
			return
		}

		types.SendSuccess(c, types.NewChatMessageResponse(msg))
	}
}
