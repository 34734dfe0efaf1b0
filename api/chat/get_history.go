package chat

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sitpractice/sit-api/api/types"
)

const defaultHistoryLimit = 50

// GetHistory returns the user's recent chat messages, oldest first
func GetHistory(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultHistoryLimit
		if raw := c.Query("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		messages, err := deps.ChatService.History(c.Request.Context(), types.UserID(c), limit)
		if err != nil {
			log.Printf("[ERROR] Failed to load chat history: %v", err)
			types.SendInternalError(c, "Failed to load chat history")
			return
		}

		out := make([]types.ChatMessageResponse, 0, len(messages))
		for _, m := range messages {
			out = append(out, types.NewChatMessageResponse(m))
		}

		types.SendSuccess(c, types.ChatHistoryResponse{
			Messages: out,
			Count:    len(out),
		})
	}
}
