package workers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/sitpractice/sit-api/internal/models"
	"github.com/sitpractice/sit-api/internal/services/records"
	"github.com/sitpractice/sit-api/internal/services/storage"
	"github.com/sitpractice/sit-api/internal/services/transcriber"
	"github.com/sitpractice/sit-api/pkg/scratch"
	"gorm.io/gorm"
)

// TranscriptionProcessor processes voice-note transcription jobs:
// claim -> download -> transcribe -> persist -> complete.
type TranscriptionProcessor struct {
	db          *gorm.DB
	recordRepo  records.Repository
	store       storage.Gateway
	transcriber transcriber.Transcriber
	scratch     *scratch.Scratch
}

// NewTranscriptionProcessor creates a new transcription processor
func NewTranscriptionProcessor(
	db *gorm.DB,
	recordRepo records.Repository,
	store storage.Gateway,
	stt transcriber.Transcriber,
	scratchStore *scratch.Scratch,
) *TranscriptionProcessor {
	return &TranscriptionProcessor{
		db:          db,
		recordRepo:  recordRepo,
		store:       store,
		transcriber: stt,
		scratch:     scratchStore,
	}
}

// CanProcess returns true if this processor can handle the job name
func (p *TranscriptionProcessor) CanProcess(name models.JobName) bool {
	return name == models.JobNameTranscribeVoiceNote
}

// ProcessJob runs one transcription end to end. On success the record
// mutation and the job completion are committed in a single
// transaction. An error return leaves the record marked failed and
// lets the worker mark the job failed.
func (p *TranscriptionProcessor) ProcessJob(ctx context.Context, job *models.TranscriptionJob) error {
	if !p.CanProcess(job.Name) {
		return fmt.Errorf("unsupported job name: %s", job.Name)
	}

	log.Printf("[DEBUG] Processing transcription job %s", job.ID)

	recordID, ok := job.RecordIDFromData()
	if !ok {
		return fmt.Errorf("job %s has no record_id in payload", job.ID)
	}

	checkin, err := p.recordRepo.GetCheckinByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, records.ErrRecordNotFound) {
			// Record deleted while the job was queued: nothing to do
			log.Printf("[DEBUG] Checkin %s gone before transcription, completing job %s", recordID, job.ID)
			return p.completeJobOnly(ctx, job.ID)
		}
		return p.failRecord(ctx, recordID, fmt.Errorf("loading checkin: %w", err))
	}

	if !checkin.HasVoiceNote() {
		return p.failRecord(ctx, recordID, fmt.Errorf("checkin %s has no stored voice note", recordID))
	}

	if err := p.recordRepo.MarkTranscriptionProcessing(ctx, recordID); err != nil {
		return p.failRecord(ctx, recordID, err)
	}

	data, err := p.store.Fetch(ctx, *checkin.VoiceNoteURL)
	if err != nil {
		return p.failRecord(ctx, recordID, fmt.Errorf("downloading voice note: %w", err))
	}

	_, key, err := storage.ParseObjectURL(*checkin.VoiceNoteURL)
	if err != nil {
		return p.failRecord(ctx, recordID, err)
	}

	audioPath, err := p.scratch.Write(path.Base(key), data)
	if err != nil {
		return p.failRecord(ctx, recordID, fmt.Errorf("writing scratch file: %w", err))
	}
	defer func() {
		if err := p.scratch.Cleanup(audioPath); err != nil {
			log.Printf("[ERROR] Failed to clean up scratch file %s: %v", audioPath, err)
		}
	}()

	text, err := p.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return p.failRecord(ctx, recordID, fmt.Errorf("transcribing: %w", err))
	}

	if err := p.commitResult(ctx, job.ID, recordID, text); err != nil {
		return p.failRecord(ctx, recordID, err)
	}

	log.Printf("[DEBUG] Transcribed checkin %s (%d chars)", recordID, len(text))

	return nil
}

// commitResult writes the transcript and completes the job in one
// transaction, so the two mutations land together. A record deleted
// mid-transcription is a silently-ignored no-op; the job still
// completes.
func (p *TranscriptionProcessor) commitResult(ctx context.Context, jobID, recordID, text string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Checkin{}).
			Where("id = ? AND transcription_status = ?", recordID, models.TranscriptionStatusProcessing).
			Updates(map[string]interface{}{
				"transcription":        text,
				"transcription_status": models.TranscriptionStatusCompleted,
			})
		if res.Error != nil {
			return fmt.Errorf("persisting transcript: %w", res.Error)
		}

		now := time.Now().UTC()
		jobRes := tx.Model(&models.TranscriptionJob{}).
			Where("id = ? AND state = ?", jobID, models.JobStateActive).
			Updates(map[string]interface{}{
				"state":        models.JobStateCompleted,
				"completed_on": &now,
			})
		if jobRes.Error != nil {
			return fmt.Errorf("completing job: %w", jobRes.Error)
		}
		if jobRes.RowsAffected == 0 {
			return fmt.Errorf("job %s no longer active", jobID)
		}

		return nil
	})
}

func (p *TranscriptionProcessor) completeJobOnly(ctx context.Context, jobID string) error {
	now := time.Now().UTC()
	res := p.db.WithContext(ctx).Model(&models.TranscriptionJob{}).
		Where("id = ? AND state = ?", jobID, models.JobStateActive).
		Updates(map[string]interface{}{
			"state":        models.JobStateCompleted,
			"completed_on": &now,
		})
	if res.Error != nil {
		return fmt.Errorf("completing job: %w", res.Error)
	}
	return nil
}

// failRecord marks the voice note terminally failed and surfaces the
// original error so the worker fails the job with it.
func (p *TranscriptionProcessor) failRecord(ctx context.Context, recordID string, cause error) error {
	if err := p.recordRepo.MarkTranscriptionFailed(ctx, recordID); err != nil {
		log.Printf("[ERROR] Failed to mark checkin %s transcription failed: %v", recordID, err)
	}
	return cause
}
