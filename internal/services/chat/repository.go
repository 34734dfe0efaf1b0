package chat

import (
	"context"
	"fmt"

	"github.com/sitpractice/sit-api/internal/models"
	"gorm.io/gorm"
)

// Repository defines the interface for chat message persistence
type Repository interface {
	CreateMessage(ctx context.Context, msg *models.ChatMessage) error

	// ListRecent returns the user's most recent messages, oldest first
	ListRecent(ctx context.Context, userID string, limit int) ([]*models.ChatMessage, error)
}

// repository implements Repository interface
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new chat message repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListRecent selects the newest messages then reverses them so the
// conversation reads oldest first.
func (r *repository) ListRecent(ctx context.Context, userID string, limit int) ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("listing chat messages: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
