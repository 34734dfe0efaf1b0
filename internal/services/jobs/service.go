package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sitpractice/sit-api/internal/models"
)

type service struct {
	repo Repository
}

// NewService creates a new job queue service
func NewService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) Enqueue(ctx context.Context, name models.JobName, data models.JobData) (*models.TranscriptionJob, error) {
	job := &models.TranscriptionJob{
		Name:  name,
		State: models.JobStateCreated,
		Data:  data,
	}

	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	log.Printf("[DEBUG] Enqueued %s job %s", name, job.ID)

	return job, nil
}

func (s *service) GetJob(ctx context.Context, jobID string) (*models.TranscriptionJob, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("getting job: %w", err)
	}
	return job, nil
}

func (s *service) GetJobForRecord(ctx context.Context, name models.JobName, recordID string) (*models.TranscriptionJob, error) {
	job, err := s.repo.GetJobByNameAndRecord(ctx, name, recordID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("getting job for record: %w", err)
	}
	return job, nil
}

func (s *service) ClaimNextJob(ctx context.Context, workerID string, name models.JobName) (*models.TranscriptionJob, error) {
	job, err := s.repo.ClaimNextJob(ctx, workerID, name)
	if err != nil {
		if errors.Is(err, ErrNoJobsAvailable) {
			return nil, err
		}
		return nil, fmt.Errorf("claiming job: %w", err)
	}

	log.Printf("[DEBUG] Worker %s claimed %s job %s", workerID, job.Name, job.ID)

	return job, nil
}

func (s *service) CompleteJob(ctx context.Context, jobID string) error {
	if err := s.repo.CompleteJob(ctx, jobID); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return err
		}
		return fmt.Errorf("completing job: %w", err)
	}

	log.Printf("[DEBUG] Job %s completed successfully", jobID)

	return nil
}

func (s *service) FailJob(ctx context.Context, jobID string, err error) error {
	errorMsg := err.Error()

	if err := s.repo.FailJob(ctx, jobID, errorMsg); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return err
		}
		return fmt.Errorf("failing job: %w", err)
	}

	// Failed jobs are terminal; re-transcription requires a new job
	log.Printf("[ERROR] Job %s failed permanently: %s", jobID, errorMsg)

	return nil
}

func (s *service) CleanupOldJobs(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("retention days must be positive")
	}

	cutoffTime := time.Now().UTC().AddDate(0, 0, -retentionDays)

	deleted, err := s.repo.DeleteOldJobs(ctx, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("cleaning up old jobs: %w", err)
	}

	if deleted > 0 {
		log.Printf("[DEBUG] Deleted %d old jobs (older than %d days)", deleted, retentionDays)
	}

	return deleted, nil
}
