package cmd

import (
	"fmt"

	"github.com/sitpractice/sit-api/api/types"
	"github.com/sitpractice/sit-api/internal/database"
	"github.com/sitpractice/sit-api/internal/llm"
	"github.com/sitpractice/sit-api/internal/models"
	"github.com/sitpractice/sit-api/internal/services/auth"
	"github.com/sitpractice/sit-api/internal/services/chat"
	"github.com/sitpractice/sit-api/internal/services/flows"
	"github.com/sitpractice/sit-api/internal/services/jobs"
	"github.com/sitpractice/sit-api/internal/services/practice"
	"github.com/sitpractice/sit-api/internal/services/records"
	"github.com/sitpractice/sit-api/internal/services/storage"
	"github.com/sitpractice/sit-api/internal/services/transcriber"
	"github.com/sitpractice/sit-api/internal/services/workers"
	"github.com/sitpractice/sit-api/pkg/config"
	"github.com/sitpractice/sit-api/pkg/scratch"
)

// migrationModels lists every model the schema carries
func migrationModels() []any {
	return []any{
		&models.Sit{},
		&models.Checkin{},
		&models.Flow{},
		&models.TranscriptionJob{},
		&models.ChatMessage{},
	}
}

// newStorageGateway builds the configured blob store backend
func newStorageGateway(cfg *config.Config) (storage.Gateway, error) {
	switch cfg.Storage.Backend {
	case "supabase":
		return storage.NewSupabaseGateway(cfg.Storage.SupabaseURL, cfg.Storage.SupabaseKey, cfg.Storage.Bucket), nil
	case "local":
		return storage.NewLocalGateway(cfg.Storage.LocalDir, cfg.Storage.Bucket), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
	}
}

// buildDependencies wires every service from configuration. The worker
// pool is created but not started; callers decide whether to run it.
func buildDependencies(cfg *config.Config, db *database.DB) (*types.Dependencies, error) {
	store, err := newStorageGateway(cfg)
	if err != nil {
		return nil, err
	}

	authService, err := auth.NewService(cfg.Auth.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("creating auth service: %w", err)
	}

	jobService := jobs.NewService(jobs.NewRepository(db.DB))
	recordRepo := records.NewRepository(db.DB)
	flowService := flows.NewService(flows.NewRepository(db.DB))
	practiceService := practice.NewService(recordRepo, flowService)

	transcriberConfigured := cfg.AI.OpenAIAPIKey != ""
	recordService := records.NewService(recordRepo, store, jobService, transcriberConfigured)

	// Without an API key the assistant is offline and voice notes are
	// marked skipped at ingestion
	var provider llm.Provider
	if transcriberConfigured {
		openaiProvider, err := llm.NewOpenAIProvider(llm.OpenAIConfig{
			APIKey: cfg.AI.OpenAIAPIKey,
			Model:  cfg.AI.ChatModel,
		})
		if err != nil {
			return nil, fmt.Errorf("creating model provider: %w", err)
		}
		provider = openaiProvider
	}
	chatService := chat.NewService(chat.NewRepository(db.DB), provider, practiceService, cfg.Chat.HistoryLimit)

	pool := workers.NewWorkerPool(jobService, cfg.Worker.Count, cfg.Worker.PollInterval, cfg.Worker.ErrorBackoff)
	if transcriberConfigured {
		stt := transcriber.NewWhisperTranscriber(cfg.AI.OpenAIAPIKey, cfg.AI.WhisperModel)
		processor := workers.NewTranscriptionProcessor(db.DB, recordRepo, store, stt, scratch.New(cfg.Storage.TempDir))
		pool.RegisterProcessor(processor)
	}

	return &types.Dependencies{
		DB:              db,
		AuthService:     authService,
		RecordService:   recordService,
		FlowService:     flowService,
		PracticeService: practiceService,
		ChatService:     chatService,
		JobService:      jobService,
		Storage:         store,
		WorkerPool:      pool,
		MaxUploadBytes:  cfg.Storage.MaxUploadBytes,
	}, nil
}
