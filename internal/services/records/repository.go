package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sitpractice/sit-api/internal/models"
	"gorm.io/gorm"
)

// ErrRecordNotFound is returned when no sit or check-in matches
var ErrRecordNotFound = errors.New("record not found")

// repository implements Repository interface
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new record repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) CreateSit(ctx context.Context, sit *models.Sit) error {
	return r.db.WithContext(ctx).Create(sit).Error
}

func (r *repository) CreateCheckin(ctx context.Context, checkin *models.Checkin) error {
	return r.db.WithContext(ctx).Create(checkin).Error
}

func (r *repository) GetSitByID(ctx context.Context, id string) (*models.Sit, error) {
	var sit models.Sit
	err := r.db.WithContext(ctx).First(&sit, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("getting sit: %w", err)
	}
	return &sit, nil
}

func (r *repository) GetCheckinByID(ctx context.Context, id string) (*models.Checkin, error) {
	var checkin models.Checkin
	err := r.db.WithContext(ctx).First(&checkin, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("getting checkin: %w", err)
	}
	return &checkin, nil
}

func (r *repository) ListSitsByUser(ctx context.Context, userID string, limit int) ([]*models.Sit, error) {
	var result []*models.Sit
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&result).Error; err != nil {
		return nil, fmt.Errorf("listing sits: %w", err)
	}
	return result, nil
}

func (r *repository) ListCheckinsByUser(ctx context.Context, userID string, limit int) ([]*models.Checkin, error) {
	var result []*models.Checkin
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&result).Error; err != nil {
		return nil, fmt.Errorf("listing checkins: %w", err)
	}
	return result, nil
}

func (r *repository) ListSitsInRange(ctx context.Context, userID string, start, end *time.Time) ([]*models.Sit, error) {
	var result []*models.Sit
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at DESC")
	if start != nil {
		query = query.Where("occurred_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("occurred_at <= ?", *end)
	}
	if err := query.Find(&result).Error; err != nil {
		return nil, fmt.Errorf("listing sits in range: %w", err)
	}
	return result, nil
}

func (r *repository) ListCheckinsInRange(ctx context.Context, userID string, start, end *time.Time) ([]*models.Checkin, error) {
	var result []*models.Checkin
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at DESC")
	if start != nil {
		query = query.Where("occurred_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("occurred_at <= ?", *end)
	}
	if err := query.Find(&result).Error; err != nil {
		return nil, fmt.Errorf("listing checkins in range: %w", err)
	}
	return result, nil
}

func (r *repository) DeleteSit(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Sit{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting sit: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// MarkTranscriptionProcessing moves a pending voice note to processing.
// Terminal statuses and missing records are left untouched.
func (r *repository) MarkTranscriptionProcessing(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Checkin{}).
		Where("id = ? AND transcription_status = ?", id, models.TranscriptionStatusPending).
		Update("transcription_status", models.TranscriptionStatusProcessing).Error
	if err != nil {
		return fmt.Errorf("marking transcription processing: %w", err)
	}
	return nil
}

// MarkTranscriptionFailed records a terminal failure on the voice note
func (r *repository) MarkTranscriptionFailed(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Checkin{}).
		Where("id = ? AND transcription_status IN ?", id, []models.TranscriptionStatus{
			models.TranscriptionStatusPending,
			models.TranscriptionStatusProcessing,
		}).
		Update("transcription_status", models.TranscriptionStatusFailed).Error
	if err != nil {
		return fmt.Errorf("marking transcription failed: %w", err)
	}
	return nil
}

func (r *repository) DeleteCheckin(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Checkin{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting checkin: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
