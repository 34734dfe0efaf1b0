package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecordKind distinguishes the two practice record variants
type RecordKind string

const (
	RecordKindSit     RecordKind = "sit"
	RecordKindCheckin RecordKind = "checkin"
)

// TranscriptionStatus tracks a voice note through the pipeline.
// pending -> processing -> completed|failed is monotonic; skipped_no_key
// is assigned at ingestion when no transcriber is configured. Terminal
// states are never left.
type TranscriptionStatus string

const (
	TranscriptionStatusPending      TranscriptionStatus = "pending"
	TranscriptionStatusProcessing   TranscriptionStatus = "processing"
	TranscriptionStatusCompleted    TranscriptionStatus = "completed"
	TranscriptionStatusFailed       TranscriptionStatus = "failed"
	TranscriptionStatusSkippedNoKey TranscriptionStatus = "skipped_no_key"
)

// IsTerminal returns true if no further transition is allowed
func (s TranscriptionStatus) IsTerminal() bool {
	return s == TranscriptionStatusCompleted ||
		s == TranscriptionStatusFailed ||
		s == TranscriptionStatusSkippedNoKey
}

// PracticeRecord is the shared view over the two record variants,
// used by the query engine's merge path.
type PracticeRecord interface {
	RecordID() string
	RecordKind() RecordKind
	// DisplayTime is the instant a record is sorted and displayed by:
	// session start for sits, moment of response for check-ins.
	DisplayTime() time.Time
}

// Sit is a timed seated-meditation session
type Sit struct {
	ID              string    `json:"id" gorm:"primarykey"`
	UserID          string    `json:"user_id" gorm:"not null;index:idx_sits_user_occurred"`
	OccurredAt      time.Time `json:"occurred_at" gorm:"not null;index:idx_sits_user_occurred"` // session start, UTC
	DurationSeconds float64   `json:"duration_seconds" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"`
}

func (s *Sit) RecordID() string { return s.ID }
func (s *Sit) RecordKind() RecordKind { return RecordKindSit }
func (s *Sit) DisplayTime() time.Time { return s.OccurredAt }

// BeforeCreate assigns an opaque identity
func (s *Sit) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// TableName specifies the table name for GORM
func (Sit) TableName() string {
	return "sits"
}

// StepAnswer records one step taken through a flow: which step was shown
// and which answer index was chosen.
type StepAnswer struct {
	StepID      int `json:"step_id"`
	AnswerIndex int `json:"answer_index"`
}

// StepPath is the ordered sequence of steps taken through a flow,
// stored as JSON.
type StepPath []StepAnswer

// Value implements driver.Valuer interface for StepPath
func (p StepPath) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner interface for StepPath
func (p *StepPath) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, p)
}

// Checkin is a flow-guided practice response, optionally carrying a
// voice note. The voice-note columns are only set together: a stored
// object always has a status, and a check-in without an object never
// enters the transcription pipeline.
type Checkin struct {
	ID         string    `json:"id" gorm:"primarykey"`
	UserID     string    `json:"user_id" gorm:"not null;index:idx_checkins_user_occurred"`
	OccurredAt time.Time `json:"occurred_at" gorm:"not null;index:idx_checkins_user_occurred"` // moment of response, UTC
	FlowID     *string   `json:"flow_id" gorm:"index"`                                         // weak reference, no ownership
	Steps      StepPath  `json:"steps,omitempty" gorm:"type:json"`

	// Voice note
	VoiceNoteURL             *string              `json:"voice_note_url,omitempty"`
	VoiceNoteDurationSeconds *float64             `json:"voice_note_duration_seconds,omitempty"`
	Transcription            *string              `json:"transcription,omitempty" gorm:"type:text"`
	TranscriptionStatus      *TranscriptionStatus `json:"transcription_status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (c *Checkin) RecordID() string { return c.ID }
func (c *Checkin) RecordKind() RecordKind { return RecordKindCheckin }
func (c *Checkin) DisplayTime() time.Time { return c.OccurredAt }

// HasVoiceNote returns true if a stored object backs this check-in
func (c *Checkin) HasVoiceNote() bool {
	return c.VoiceNoteURL != nil && *c.VoiceNoteURL != ""
}

// BeforeCreate assigns an opaque identity
func (c *Checkin) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// TableName specifies the table name for GORM
func (Checkin) TableName() string {
	return "checkins"
}
