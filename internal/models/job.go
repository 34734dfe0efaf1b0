package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobState represents the lifecycle state of a queued job
type JobState string

const (
	JobStateCreated   JobState = "created"
	JobStateActive    JobState = "active"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
)

// JobName identifies the kind of work a job carries
type JobName string

const (
	JobNameTranscribeVoiceNote JobName = "transcribe_voice_note"
)

// JobData is the payload attached to a job, stored as JSON
type JobData map[string]interface{}

// Value implements driver.Valuer interface for JobData
func (d JobData) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner interface for JobData
func (d *JobData) Scan(value interface{}) error {
	if value == nil {
		*d = make(JobData)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, d)
}

// TranscriptionJob is a durable unit of deferred work representing one
// pending transcription. Created exactly once per voice-note upload;
// failed jobs are terminal and never retried automatically.
type TranscriptionJob struct {
	ID          string     `json:"id" gorm:"primarykey"`
	Name        JobName    `json:"name" gorm:"not null;index:idx_jobs_name_state"`
	State       JobState   `json:"state" gorm:"default:'created';index:idx_jobs_name_state"`
	Data        JobData    `json:"data" gorm:"type:json"`
	CreatedOn   time.Time  `json:"created_on" gorm:"autoCreateTime;index"`
	StartedOn   *time.Time `json:"started_on"`
	CompletedOn *time.Time `json:"completed_on"`
	Error       string     `json:"error,omitempty"`
	WorkerID    string     `json:"worker_id,omitempty"` // ID of the worker processing this job
}

// RecordIDFromData extracts the record id carried in the job payload
func (j *TranscriptionJob) RecordIDFromData() (string, bool) {
	if j.Data == nil {
		return "", false
	}
	val, ok := j.Data["record_id"]
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	if !ok || str == "" {
		return "", false
	}
	return str, true
}

// IsTerminal returns true if the job is in a terminal state
func (j *TranscriptionJob) IsTerminal() bool {
	return j.State == JobStateCompleted || j.State == JobStateFailed
}

// BeforeCreate assigns an opaque identity
func (j *TranscriptionJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}

// TableName specifies the table name for GORM
func (TranscriptionJob) TableName() string {
	return "jobs"
}
