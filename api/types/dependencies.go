package types

import (
	"github.com/sitpractice/sit-api/internal/database"
	"github.com/sitpractice/sit-api/internal/services/auth"
	"github.com/sitpractice/sit-api/internal/services/chat"
	"github.com/sitpractice/sit-api/internal/services/flows"
	"github.com/sitpractice/sit-api/internal/services/jobs"
	"github.com/sitpractice/sit-api/internal/services/practice"
	"github.com/sitpractice/sit-api/internal/services/records"
	"github.com/sitpractice/sit-api/internal/services/storage"
	"github.com/sitpractice/sit-api/internal/services/workers"
)

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB              *database.DB
	AuthService     *auth.Service
	RecordService   records.Service
	FlowService     flows.FlowService
	PracticeService practice.Service
	ChatService     chat.Service
	JobService      jobs.Service
	Storage         storage.Gateway
	WorkerPool      *workers.WorkerPool

	// MaxUploadBytes bounds multipart voice-note uploads
	MaxUploadBytes int64
}
