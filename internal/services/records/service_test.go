package records

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sitpractice/sit-api/internal/database"
	"github.com/sitpractice/sit-api/internal/models"
	"github.com/sitpractice/sit-api/internal/services/jobs"
	"github.com/sitpractice/sit-api/internal/services/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway is an in-memory blob store for tests
type fakeGateway struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
	failDel bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{objects: make(map[string][]byte)}
}

func (g *fakeGateway) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failPut {
		return "", fmt.Errorf("put failed")
	}
	g.objects[key] = data
	return storage.ObjectURL("test-bucket", key), nil
}

func (g *fakeGateway) Fetch(_ context.Context, objectURL string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, key, err := storage.ParseObjectURL(objectURL)
	if err != nil {
		return nil, err
	}
	data, ok := g.objects[key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", key)
	}
	return data, nil
}

func (g *fakeGateway) Remove(_ context.Context, objectURL string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failDel {
		return fmt.Errorf("remove failed")
	}
	_, key, err := storage.ParseObjectURL(objectURL)
	if err != nil {
		return err
	}
	delete(g.objects, key)
	return nil
}

func (g *fakeGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.objects)
}

type recordsEnv struct {
	svc     Service
	repo    Repository
	jobs    jobs.Service
	gateway *fakeGateway
}

func setupRecordsEnv(t *testing.T, transcriberConfigured bool) *recordsEnv {
	t.Helper()

	db, err := database.Initialize(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.AutoMigrate(&models.Sit{}, &models.Checkin{}, &models.TranscriptionJob{}))

	repo := NewRepository(db.DB)
	jobService := jobs.NewService(jobs.NewRepository(db.DB))
	gateway := newFakeGateway()

	return &recordsEnv{
		svc:     NewService(repo, gateway, jobService, transcriberConfigured),
		repo:    repo,
		jobs:    jobService,
		gateway: gateway,
	}
}

func TestCreateSit(t *testing.T) {
	env := setupRecordsEnv(t, true)
	ctx := context.Background()

	occurredAt := time.Date(2026, 2, 16, 20, 0, 0, 0, time.UTC)
	sit, err := env.svc.CreateSit(ctx, "user-1", CreateSitInput{
		OccurredAt:      occurredAt,
		DurationSeconds: 1800,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, sit.ID)
	assert.Equal(t, "user-1", sit.UserID)
	assert.True(t, sit.OccurredAt.Equal(occurredAt))
	assert.Equal(t, 1800.0, sit.DurationSeconds)

	t.Run("rejects non-positive duration", func(t *testing.T) {
		_, err := env.svc.CreateSit(ctx, "user-1", CreateSitInput{
			OccurredAt:      occurredAt,
			DurationSeconds: 0,
		})
		assert.Error(t, err)
	})

	t.Run("rejects zero occurred_at", func(t *testing.T) {
		_, err := env.svc.CreateSit(ctx, "user-1", CreateSitInput{DurationSeconds: 60})
		assert.Error(t, err)
	})
}

func TestCreateCheckinWithoutVoiceNote(t *testing.T) {
	env := setupRecordsEnv(t, true)
	ctx := context.Background()

	flowID := "flow-1"
	checkin, err := env.svc.CreateCheckin(ctx, "user-1", CreateCheckinInput{
		OccurredAt: time.Now().UTC(),
		FlowID:     &flowID,
		Steps:      models.StepPath{{StepID: 1, AnswerIndex: 0}},
	})
	require.NoError(t, err)

	assert.False(t, checkin.HasVoiceNote())
	assert.Nil(t, checkin.TranscriptionStatus)

	// No stored object means no job is ever created
	_, err = env.jobs.GetJobForRecord(ctx, models.JobNameTranscribeVoiceNote, checkin.ID)
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)
}

func TestCreateCheckinWithVoiceNote(t *testing.T) {
	env := setupRecordsEnv(t, true)
	ctx := context.Background()

	checkin, err := env.svc.CreateCheckin(ctx, "user-1", CreateCheckinInput{
		OccurredAt: time.Now().UTC(),
		VoiceNote: &VoiceNote{
			Filename:        "morning note.m4a",
			ContentType:     "audio/mp4",
			Data:            []byte("fake audio bytes"),
			DurationSeconds: 12.5,
		},
	})
	require.NoError(t, err)

	require.True(t, checkin.HasVoiceNote())
	require.NotNil(t, checkin.TranscriptionStatus)
	assert.Equal(t, models.TranscriptionStatusPending, *checkin.TranscriptionStatus)
	require.NotNil(t, checkin.VoiceNoteDurationSeconds)
	assert.Equal(t, 12.5, *checkin.VoiceNoteDurationSeconds)

	// Key is timestamp-prefixed under voice_notes/ with spaces cleaned
	_, key, err := storage.ParseObjectURL(*checkin.VoiceNoteURL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "voice_notes/"))
	assert.True(t, strings.HasSuffix(key, "_morning_note.m4a"))

	// Exactly one job was enqueued for the record
	job, err := env.jobs.GetJobForRecord(ctx, models.JobNameTranscribeVoiceNote, checkin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStateCreated, job.State)

	// Object landed in the store
	data, err := env.gateway.Fetch(ctx, *checkin.VoiceNoteURL)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake audio bytes"), data)
}

// Without a configured transcriber the voice note is stored but marked
// terminally skipped, and no job is created.
func TestCreateCheckinSkippedNoKey(t *testing.T) {
	env := setupRecordsEnv(t, false)
	ctx := context.Background()

	checkin, err := env.svc.CreateCheckin(ctx, "user-1", CreateCheckinInput{
		OccurredAt: time.Now().UTC(),
		VoiceNote: &VoiceNote{
			Filename: "note.m4a",
			Data:     []byte("audio"),
		},
	})
	require.NoError(t, err)

	require.NotNil(t, checkin.TranscriptionStatus)
	assert.Equal(t, models.TranscriptionStatusSkippedNoKey, *checkin.TranscriptionStatus)
	assert.True(t, checkin.TranscriptionStatus.IsTerminal())

	_, err = env.jobs.GetJobForRecord(ctx, models.JobNameTranscribeVoiceNote, checkin.ID)
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)

	assert.Equal(t, 1, env.gateway.count())
}

func TestCreateCheckinStorageFailure(t *testing.T) {
	env := setupRecordsEnv(t, true)
	env.gateway.failPut = true
	ctx := context.Background()

	_, err := env.svc.CreateCheckin(ctx, "user-1", CreateCheckinInput{
		OccurredAt: time.Now().UTC(),
		VoiceNote:  &VoiceNote{Filename: "note.m4a", Data: []byte("audio")},
	})
	require.Error(t, err)

	// Nothing persisted
	checkins, err := env.repo.ListCheckinsByUser(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Empty(t, checkins)
}

// failingQueue rejects every enqueue attempt
type failingQueue struct {
	jobs.Service
}

func (failingQueue) Enqueue(context.Context, models.JobName, models.JobData) (*models.TranscriptionJob, error) {
	return nil, fmt.Errorf("enqueue failed")
}

// A checkin whose transcription job cannot be enqueued is rolled back:
// a pending row with no job behind it would never progress.
func TestCreateCheckinEnqueueFailure(t *testing.T) {
	env := setupRecordsEnv(t, true)
	svc := NewService(env.repo, env.gateway, failingQueue{env.jobs}, true)
	ctx := context.Background()

	_, err := svc.CreateCheckin(ctx, "user-1", CreateCheckinInput{
		OccurredAt: time.Now().UTC(),
		VoiceNote:  &VoiceNote{Filename: "note.m4a", Data: []byte("audio")},
	})
	require.Error(t, err)

	// No stranded pending row and no orphaned blob
	checkins, err := env.repo.ListCheckinsByUser(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Empty(t, checkins)
	assert.Equal(t, 0, env.gateway.count())
}

func TestDeleteRecord(t *testing.T) {
	env := setupRecordsEnv(t, true)
	ctx := context.Background()

	t.Run("deletes a sit", func(t *testing.T) {
		sit, err := env.svc.CreateSit(ctx, "user-1", CreateSitInput{
			OccurredAt:      time.Now().UTC(),
			DurationSeconds: 600,
		})
		require.NoError(t, err)

		require.NoError(t, env.svc.DeleteRecord(ctx, "user-1", sit.ID))

		_, err = env.repo.GetSitByID(ctx, sit.ID)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("deletes checkin blob before row", func(t *testing.T) {
		checkin, err := env.svc.CreateCheckin(ctx, "user-1", CreateCheckinInput{
			OccurredAt: time.Now().UTC(),
			VoiceNote:  &VoiceNote{Filename: "note.m4a", Data: []byte("audio")},
		})
		require.NoError(t, err)
		require.Equal(t, 1, env.gateway.count())

		require.NoError(t, env.svc.DeleteRecord(ctx, "user-1", checkin.ID))

		assert.Equal(t, 0, env.gateway.count())
		_, err = env.repo.GetCheckinByID(ctx, checkin.ID)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("failed blob delete leaves the row", func(t *testing.T) {
		checkin, err := env.svc.CreateCheckin(ctx, "user-1", CreateCheckinInput{
			OccurredAt: time.Now().UTC(),
			VoiceNote:  &VoiceNote{Filename: "note.m4a", Data: []byte("audio")},
		})
		require.NoError(t, err)

		env.gateway.failDel = true
		defer func() { env.gateway.failDel = false }()

		require.Error(t, env.svc.DeleteRecord(ctx, "user-1", checkin.ID))

		// Row intact so the delete can be retried
		_, err = env.repo.GetCheckinByID(ctx, checkin.ID)
		assert.NoError(t, err)
	})

	t.Run("other users' records are not found", func(t *testing.T) {
		sit, err := env.svc.CreateSit(ctx, "user-2", CreateSitInput{
			OccurredAt:      time.Now().UTC(),
			DurationSeconds: 600,
		})
		require.NoError(t, err)

		err = env.svc.DeleteRecord(ctx, "user-1", sit.ID)
		assert.ErrorIs(t, err, ErrRecordNotFound)

		// Still there for the owner
		_, err = env.repo.GetSitByID(ctx, sit.ID)
		assert.NoError(t, err)
	})

	t.Run("unknown id", func(t *testing.T) {
		err := env.svc.DeleteRecord(ctx, "user-1", "nope")
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestTranscriptionStatusTransitions(t *testing.T) {
	env := setupRecordsEnv(t, true)
	ctx := context.Background()

	checkin, err := env.svc.CreateCheckin(ctx, "user-1", CreateCheckinInput{
		OccurredAt: time.Now().UTC(),
		VoiceNote:  &VoiceNote{Filename: "note.m4a", Data: []byte("audio")},
	})
	require.NoError(t, err)

	require.NoError(t, env.repo.MarkTranscriptionProcessing(ctx, checkin.ID))
	got, err := env.repo.GetCheckinByID(ctx, checkin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TranscriptionStatusProcessing, *got.TranscriptionStatus)

	require.NoError(t, env.repo.MarkTranscriptionFailed(ctx, checkin.ID))
	got, err = env.repo.GetCheckinByID(ctx, checkin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TranscriptionStatusFailed, *got.TranscriptionStatus)

	// Terminal states are never left
	require.NoError(t, env.repo.MarkTranscriptionProcessing(ctx, checkin.ID))
	got, err = env.repo.GetCheckinByID(ctx, checkin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TranscriptionStatusFailed, *got.TranscriptionStatus)

	// Missing records are a no-op
	assert.NoError(t, env.repo.MarkTranscriptionFailed(ctx, "missing"))
}
