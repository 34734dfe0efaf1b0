package types

import (
	"time"

	"github.com/sitpractice/sit-api/internal/models"
	"github.com/sitpractice/sit-api/internal/services/practice"
)

// Status constants for API responses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ErrorResponse is the standard error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SitsResponse for sit lists
type SitsResponse struct {
	Sits  []*models.Sit `json:"sits"`
	Count int           `json:"count"`
}

// CheckinsResponse for check-in lists
type CheckinsResponse struct {
	Checkins []*models.Checkin `json:"checkins"`
	Count    int               `json:"count"`
}

// PracticeResponse wraps the query engine result
type PracticeResponse struct {
	Flows   map[string]*models.Flow `json:"flows"`
	Records []practice.Record       `json:"records"`
	Count   int                     `json:"count"`
}

// ChatMessageResponse for a single chat message
type ChatMessageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatHistoryResponse for chat history
type ChatHistoryResponse struct {
	Messages []ChatMessageResponse `json:"messages"`
	Count    int                   `json:"count"`
}

// FlowsResponse for flow lists
type FlowsResponse struct {
	Flows []*models.Flow `json:"flows"`
	Count int            `json:"count"`
}

// NewChatMessageResponse converts a stored message to its API shape
func NewChatMessageResponse(msg *models.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:        msg.ID,
		Role:      string(msg.Role),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}
