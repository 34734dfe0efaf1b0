package records

import (
	"context"
	"time"

	"github.com/sitpractice/sit-api/internal/models"
)

// VoiceNote carries an uploaded audio attachment through ingestion
type VoiceNote struct {
	Filename        string
	ContentType     string
	Data            []byte
	DurationSeconds float64
}

// CreateSitInput holds the fields for a new sit record
type CreateSitInput struct {
	OccurredAt      time.Time
	DurationSeconds float64
}

// CreateCheckinInput holds the fields for a new check-in record.
// VoiceNote is optional; when present the check-in enters the
// transcription pipeline.
type CreateCheckinInput struct {
	OccurredAt time.Time
	FlowID     *string
	Steps      models.StepPath
	VoiceNote  *VoiceNote
}

// Service defines the business logic interface for practice records
type Service interface {
	CreateSit(ctx context.Context, userID string, input CreateSitInput) (*models.Sit, error)
	CreateCheckin(ctx context.Context, userID string, input CreateCheckinInput) (*models.Checkin, error)

	GetCheckin(ctx context.Context, id string) (*models.Checkin, error)
	ListSits(ctx context.Context, userID string, limit int) ([]*models.Sit, error)
	ListCheckins(ctx context.Context, userID string, limit int) ([]*models.Checkin, error)

	// DeleteRecord removes a sit or check-in owned by the user. For
	// check-ins with a voice note the stored object is removed before
	// the row; a failed object delete aborts the whole operation.
	DeleteRecord(ctx context.Context, userID, recordID string) error
}

// Repository defines the interface for record persistence
type Repository interface {
	CreateSit(ctx context.Context, sit *models.Sit) error
	CreateCheckin(ctx context.Context, checkin *models.Checkin) error

	GetSitByID(ctx context.Context, id string) (*models.Sit, error)
	GetCheckinByID(ctx context.Context, id string) (*models.Checkin, error)

	ListSitsByUser(ctx context.Context, userID string, limit int) ([]*models.Sit, error)
	ListCheckinsByUser(ctx context.Context, userID string, limit int) ([]*models.Checkin, error)

	// Range queries used by the practice query engine. Nil bounds are
	// open; both bounds are inclusive UTC instants.
	ListSitsInRange(ctx context.Context, userID string, start, end *time.Time) ([]*models.Sit, error)
	ListCheckinsInRange(ctx context.Context, userID string, start, end *time.Time) ([]*models.Checkin, error)

	DeleteSit(ctx context.Context, id string) error
	DeleteCheckin(ctx context.Context, id string) error

	// Transcription status transitions used by the pipeline worker.
	// Both are conditional on the current status and treat a missing
	// record as a no-op (the owner may delete it mid-transcription).
	MarkTranscriptionProcessing(ctx context.Context, id string) error
	MarkTranscriptionFailed(ctx context.Context, id string) error
}
