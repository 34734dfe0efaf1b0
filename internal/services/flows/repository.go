package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/sitpractice/sit-api/internal/models"
	"gorm.io/gorm"
)

// ErrFlowNotFound is returned when a flow does not exist
var ErrFlowNotFound = errors.New("flow not found")

// repository implements Repository interface
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new flow repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) Create(ctx context.Context, flow *models.Flow) error {
	return r.db.WithContext(ctx).Create(flow).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*models.Flow, error) {
	var flow models.Flow
	err := r.db.WithContext(ctx).First(&flow, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFlowNotFound
		}
		return nil, fmt.Errorf("getting flow: %w", err)
	}
	return &flow, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]*models.Flow, error) {
	var result []*models.Flow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("listing flows: %w", err)
	}
	return result, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []string) ([]*models.Flow, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var result []*models.Flow
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("getting flows by ids: %w", err)
	}
	return result, nil
}
