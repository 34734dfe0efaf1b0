package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sitpractice/sit-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository errors
var (
	ErrJobNotFound     = errors.New("job not found")
	ErrNoJobsAvailable = errors.New("no jobs available")
)

// Repository defines the interface for job persistence
type Repository interface {
	// Create operations
	CreateJob(ctx context.Context, job *models.TranscriptionJob) error

	// Read operations
	GetJob(ctx context.Context, id string) (*models.TranscriptionJob, error)
	GetJobByNameAndRecord(ctx context.Context, name models.JobName, recordID string) (*models.TranscriptionJob, error)

	// Update operations
	ClaimNextJob(ctx context.Context, workerID string, name models.JobName) (*models.TranscriptionJob, error)
	CompleteJob(ctx context.Context, jobID string) error
	FailJob(ctx context.Context, jobID string, errorMsg string) error

	// Delete operations
	DeleteOldJobs(ctx context.Context, olderThan time.Time) (int64, error)
}

// repository implements Repository interface
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new job repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

// CreateJob creates a new job in the created state
func (r *repository) CreateJob(ctx context.Context, job *models.TranscriptionJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetJob retrieves a job by ID
func (r *repository) GetJob(ctx context.Context, id string) (*models.TranscriptionJob, error) {
	var job models.TranscriptionJob
	err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("getting job: %w", err)
	}
	return &job, nil
}

// GetJobByNameAndRecord finds a job by name and the record id in its payload
func (r *repository) GetJobByNameAndRecord(ctx context.Context, name models.JobName, recordID string) (*models.TranscriptionJob, error) {
	var job models.TranscriptionJob

	// Use JSON extract for SQLite
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Where("json_extract(data, ?) = ?", "$.record_id", recordID).
		First(&job).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("getting job by name and record: %w", err)
	}

	return &job, nil
}

// ClaimNextJob atomically claims the oldest created job for a worker.
// The claim is a single conditional update guarded by the row's state:
// if a concurrent worker took the row between the select and the update,
// zero rows are affected and ErrNoJobsAvailable is returned; the caller
// picks up the next candidate on its following poll. Failed jobs are
// terminal and never claimable again.
func (r *repository) ClaimNextJob(ctx context.Context, workerID string, name models.JobName) (*models.TranscriptionJob, error) {
	var claimed models.TranscriptionJob

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.TranscriptionJob

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", name).
			Where("state = ?", models.JobStateCreated).
			Order("created_on ASC").
			First(&job).Error

		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoJobsAvailable
			}
			return fmt.Errorf("finding job to claim: %w", err)
		}

		now := time.Now().UTC()
		res := tx.Model(&models.TranscriptionJob{}).
			Where("id = ? AND state = ?", job.ID, models.JobStateCreated).
			Updates(map[string]interface{}{
				"state":      models.JobStateActive,
				"worker_id":  workerID,
				"started_on": &now,
			})
		if res.Error != nil {
			return fmt.Errorf("marking claimed job: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Claimed concurrently; treat as no job available this pass
			return ErrNoJobsAvailable
		}

		job.State = models.JobStateActive
		job.WorkerID = workerID
		job.StartedOn = &now
		claimed = job

		return nil
	})

	if err != nil {
		return nil, err
	}

	return &claimed, nil
}

// CompleteJob marks an active job as completed
func (r *repository) CompleteJob(ctx context.Context, jobID string) error {
	now := time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&models.TranscriptionJob{}).
		Where("id = ? AND state = ?", jobID, models.JobStateActive).
		Updates(map[string]interface{}{
			"state":        models.JobStateCompleted,
			"completed_on": &now,
		})

	if res.Error != nil {
		return fmt.Errorf("completing job: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrJobNotFound
	}

	return nil
}

// FailJob marks a job as terminally failed with the captured error
func (r *repository) FailJob(ctx context.Context, jobID string, errorMsg string) error {
	now := time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&models.TranscriptionJob{}).
		Where("id = ? AND state IN ?", jobID, []models.JobState{models.JobStateCreated, models.JobStateActive}).
		Updates(map[string]interface{}{
			"state":        models.JobStateFailed,
			"completed_on": &now,
			"error":        errorMsg,
		})

	if res.Error != nil {
		return fmt.Errorf("failing job: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrJobNotFound
	}

	return nil
}

// DeleteOldJobs deletes terminal jobs older than the specified time
func (r *repository) DeleteOldJobs(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_on < ?", olderThan).
		Where("state IN ?", []models.JobState{
			models.JobStateCompleted,
			models.JobStateFailed,
		}).
		Delete(&models.TranscriptionJob{})

	if result.Error != nil {
		return 0, fmt.Errorf("deleting old jobs: %w", result.Error)
	}

	return result.RowsAffected, nil
}
