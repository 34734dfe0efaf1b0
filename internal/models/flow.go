package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Flow visibility values
const (
	FlowVisibilityPrivate = "private"
	FlowVisibilityPublic  = "public"
)

// FlowSteps is the opaque ordered step sequence of a flow, stored as
// JSON. The service never interprets step semantics; traversal runs on
// the client.
type FlowSteps []map[string]interface{}

// Value implements driver.Valuer interface for FlowSteps
func (s FlowSteps) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner interface for FlowSteps
func (s *FlowSteps) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, s)
}

// Flow is a check-in step-graph definition referenced by id from check-ins
type Flow struct {
	ID          string    `json:"id" gorm:"primarykey"`
	UserID      string    `json:"user_id" gorm:"index"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Steps       FlowSteps `json:"steps" gorm:"type:json"`
	Visibility  string    `json:"visibility" gorm:"default:'private'"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate assigns an opaque identity
func (f *Flow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// TableName specifies the table name for GORM
func (Flow) TableName() string {
	return "flows"
}
