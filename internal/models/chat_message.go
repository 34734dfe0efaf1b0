package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatRole is the message sender role
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of the practice assistant conversation.
// Content may be empty: an empty assistant response is persisted rather
// than omitted.
type ChatMessage struct {
	ID        string    `json:"id" gorm:"primarykey"`
	UserID    string    `json:"user_id" gorm:"not null;index:idx_chat_user_created"`
	Role      ChatRole  `json:"role" gorm:"not null"`
	Content   string    `json:"content" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_chat_user_created"`
}

// BeforeCreate assigns an opaque identity
func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// TableName specifies the table name for GORM
func (ChatMessage) TableName() string {
	return "chat_messages"
}
