package jobs

import (
	"context"

	"github.com/sitpractice/sit-api/internal/models"
)

// Service defines the business logic interface for job queue operations
type Service interface {
	// Enqueue creates a job in the created state. Called exactly once per
	// voice-note upload.
	Enqueue(ctx context.Context, name models.JobName, data models.JobData) (*models.TranscriptionJob, error)

	// Status and retrieval
	GetJob(ctx context.Context, jobID string) (*models.TranscriptionJob, error)
	GetJobForRecord(ctx context.Context, name models.JobName, recordID string) (*models.TranscriptionJob, error)

	// Worker operations (used by the worker pool)
	ClaimNextJob(ctx context.Context, workerID string, name models.JobName) (*models.TranscriptionJob, error)
	CompleteJob(ctx context.Context, jobID string) error
	FailJob(ctx context.Context, jobID string, err error) error

	// Maintenance
	CleanupOldJobs(ctx context.Context, retentionDays int) (int64, error)
}
