package records

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/sitpractice/sit-api/internal/models"
	"github.com/sitpractice/sit-api/internal/services/jobs"
	"github.com/sitpractice/sit-api/internal/services/storage"
)

type service struct {
	repo        Repository
	store       storage.Gateway
	jobQueue    jobs.Service
	transcriber bool // whether a transcriber is configured
}

// NewService creates a new record service. transcriberConfigured controls
// whether voice notes enter the transcription pipeline or are marked
// skipped at ingestion.
func NewService(repo Repository, store storage.Gateway, jobQueue jobs.Service, transcriberConfigured bool) Service {
	return &service{
		repo:        repo,
		store:       store,
		jobQueue:    jobQueue,
		transcriber: transcriberConfigured,
	}
}

func (s *service) CreateSit(ctx context.Context, userID string, input CreateSitInput) (*models.Sit, error) {
	if input.OccurredAt.IsZero() {
		return nil, fmt.Errorf("occurred_at is required")
	}
	if input.DurationSeconds <= 0 {
		return nil, fmt.Errorf("duration_seconds must be positive")
	}

	sit := &models.Sit{
		UserID:          userID,
		OccurredAt:      input.OccurredAt.UTC(),
		DurationSeconds: input.DurationSeconds,
	}

	if err := s.repo.CreateSit(ctx, sit); err != nil {
		return nil, fmt.Errorf("creating sit: %w", err)
	}

	return sit, nil
}

func (s *service) CreateCheckin(ctx context.Context, userID string, input CreateCheckinInput) (*models.Checkin, error) {
	if input.OccurredAt.IsZero() {
		return nil, fmt.Errorf("occurred_at is required")
	}

	checkin := &models.Checkin{
		UserID:     userID,
		OccurredAt: input.OccurredAt.UTC(),
		FlowID:     input.FlowID,
		Steps:      input.Steps,
	}

	if input.VoiceNote != nil {
		if len(input.VoiceNote.Data) == 0 {
			return nil, fmt.Errorf("voice note is empty")
		}

		key := voiceNoteKey(input.VoiceNote.Filename)
		objectURL, err := s.store.Put(ctx, key, input.VoiceNote.Data, input.VoiceNote.ContentType)
		if err != nil {
			return nil, fmt.Errorf("storing voice note: %w", err)
		}

		status := models.TranscriptionStatusPending
		if !s.transcriber {
			// No transcriber configured: terminal at ingestion, no job
			status = models.TranscriptionStatusSkippedNoKey
		}

		checkin.VoiceNoteURL = &objectURL
		checkin.TranscriptionStatus = &status
		if input.VoiceNote.DurationSeconds > 0 {
			checkin.VoiceNoteDurationSeconds = &input.VoiceNote.DurationSeconds
		}
	}

	if err := s.repo.CreateCheckin(ctx, checkin); err != nil {
		return nil, fmt.Errorf("creating checkin: %w", err)
	}

	if checkin.TranscriptionStatus != nil && *checkin.TranscriptionStatus == models.TranscriptionStatusPending {
		_, err := s.jobQueue.Enqueue(ctx, models.JobNameTranscribeVoiceNote, models.JobData{
			"record_id": checkin.ID,
		})
		if err != nil {
			// Undo the ingest: a pending row with no job behind it would
			// never progress. Cleanup failures are logged and swallowed.
			if delErr := s.repo.DeleteCheckin(ctx, checkin.ID); delErr != nil {
				log.Printf("[ERROR] Failed to remove checkin %s after enqueue failure: %v", checkin.ID, delErr)
			}
			if remErr := s.store.Remove(ctx, *checkin.VoiceNoteURL); remErr != nil {
				log.Printf("[ERROR] Failed to remove voice note for checkin %s after enqueue failure: %v", checkin.ID, remErr)
			}
			return nil, fmt.Errorf("enqueueing transcription: %w", err)
		}
	}

	return checkin, nil
}

func (s *service) GetCheckin(ctx context.Context, id string) (*models.Checkin, error) {
	return s.repo.GetCheckinByID(ctx, id)
}

func (s *service) ListSits(ctx context.Context, userID string, limit int) ([]*models.Sit, error) {
	return s.repo.ListSitsByUser(ctx, userID, limit)
}

func (s *service) ListCheckins(ctx context.Context, userID string, limit int) ([]*models.Checkin, error) {
	return s.repo.ListCheckinsByUser(ctx, userID, limit)
}

// DeleteRecord looks the id up in both record tables. Records owned by
// other users are reported as not found.
func (s *service) DeleteRecord(ctx context.Context, userID, recordID string) error {
	sit, err := s.repo.GetSitByID(ctx, recordID)
	if err == nil {
		if sit.UserID != userID {
			return ErrRecordNotFound
		}
		return s.repo.DeleteSit(ctx, recordID)
	}
	if !errors.Is(err, ErrRecordNotFound) {
		return fmt.Errorf("looking up sit: %w", err)
	}

	checkin, err := s.repo.GetCheckinByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("looking up checkin: %w", err)
	}
	if checkin.UserID != userID {
		return ErrRecordNotFound
	}

	// Blob first: a failed object delete leaves the row intact so the
	// delete can be retried
	if checkin.HasVoiceNote() {
		if err := s.store.Remove(ctx, *checkin.VoiceNoteURL); err != nil {
			return fmt.Errorf("removing voice note object: %w", err)
		}
	}

	return s.repo.DeleteCheckin(ctx, recordID)
}

// voiceNoteKey builds the object key for an uploaded voice note.
// A millisecond prefix keeps same-named uploads from colliding.
func voiceNoteKey(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "." || base == "/" || base == "" {
		base = "voice_note"
	}
	base = strings.ReplaceAll(base, " ", "_")
	return fmt.Sprintf("voice_notes/%d_%s", time.Now().UnixMilli(), base)
}
