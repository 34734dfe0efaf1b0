package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sitpractice/sit-api/internal/database"
	"github.com/sitpractice/sit-api/internal/llm"
	"github.com/sitpractice/sit-api/internal/models"
	"github.com/sitpractice/sit-api/internal/services/flows"
	"github.com/sitpractice/sit-api/internal/services/practice"
	"github.com/sitpractice/sit-api/internal/services/records"
	apperrors "github.com/sitpractice/sit-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatEnv struct {
	svc      Service
	repo     Repository
	provider *llm.MockProvider
	records  records.Repository
}

func setupChatEnv(t *testing.T, responses ...llm.MockResponse) *chatEnv {
	t.Helper()

	db, err := database.Initialize(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.AutoMigrate(&models.Sit{}, &models.Checkin{}, &models.Flow{}, &models.ChatMessage{}))

	recordRepo := records.NewRepository(db.DB)
	engine := practice.NewService(recordRepo, flows.NewService(flows.NewRepository(db.DB)))
	repo := NewRepository(db.DB)
	provider := llm.NewMockProvider(responses...)

	return &chatEnv{
		svc:      NewService(repo, provider, engine, 0),
		repo:     repo,
		provider: provider,
		records:  recordRepo,
	}
}

func TestConverseDirectAnswer(t *testing.T) {
	env := setupChatEnv(t, llm.MockResponse{Text: "Consistency matters more than duration."})
	ctx := context.Background()

	reply, err := env.svc.Converse(ctx, "user-1", "Any advice?", "UTC")
	require.NoError(t, err)

	assert.Equal(t, models.ChatRoleAssistant, reply.Role)
	assert.Equal(t, "Consistency matters more than duration.", reply.Content)
	assert.NotEmpty(t, reply.ID)

	// No tool calls means exactly one model call
	require.Equal(t, 1, env.provider.CallCount())
	call := env.provider.Calls[0]

	assert.Contains(t, call.System, "meditation practice assistant")
	assert.Contains(t, call.System, "The current date is")
	require.Len(t, call.Tools, 1)
	assert.Equal(t, queryToolName, call.Tools[0].Name)

	// The just-persisted user message is the last history entry
	require.NotEmpty(t, call.Messages)
	last := call.Messages[len(call.Messages)-1]
	assert.Equal(t, llm.RoleUser, last.Role)
	assert.Equal(t, "Any advice?", last.Content)

	// Both turns persisted, oldest first
	history, err := env.svc.History(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.ChatRoleUser, history[0].Role)
	assert.Equal(t, models.ChatRoleAssistant, history[1].Role)
}

func TestConverseValidation(t *testing.T) {
	env := setupChatEnv(t)
	ctx := context.Background()

	t.Run("empty message", func(t *testing.T) {
		_, err := env.svc.Converse(ctx, "user-1", "", "UTC")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeMissingField))
	})

	t.Run("unknown timezone", func(t *testing.T) {
		_, err := env.svc.Converse(ctx, "user-1", "hi", "Mars/Olympus_Mons")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidArgument))
	})

	// Validation failures never reach the model
	assert.Zero(t, env.provider.CallCount())
}

func TestConverseNoProvider(t *testing.T) {
	db, err := database.Initialize(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.AutoMigrate(&models.ChatMessage{}))

	svc := NewService(NewRepository(db.DB), nil, nil, 0)

	_, err = svc.Converse(context.Background(), "user-1", "hi", "UTC")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeUpstreamUnavailable))
}

func TestConverseProviderError(t *testing.T) {
	env := setupChatEnv(t, llm.MockResponse{Err: fmt.Errorf("connection refused")})
	ctx := context.Background()

	_, err := env.svc.Converse(ctx, "user-1", "hi", "UTC")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeUpstreamUnavailable))

	// The user message was already persisted when the provider failed
	history, err := env.svc.History(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.ChatRoleUser, history[0].Role)
}

func TestConverseToolRound(t *testing.T) {
	env := setupChatEnv(t,
		llm.MockResponse{ToolCalls: []llm.ToolCall{{
			ID:        "call-1",
			Name:      queryToolName,
			Arguments: json.RawMessage(`{"kind":"sits"}`),
		}}},
		llm.MockResponse{Text: "You sat once this week, for thirty minutes."},
	)
	ctx := context.Background()

	sit := &models.Sit{UserID: "user-1", OccurredAt: time.Now().UTC(), DurationSeconds: 1800}
	require.NoError(t, env.records.CreateSit(ctx, sit))

	reply, err := env.svc.Converse(ctx, "user-1", "How much did I sit?", "America/Los_Angeles")
	require.NoError(t, err)
	assert.Equal(t, "You sat once this week, for thirty minutes.", reply.Content)

	require.Equal(t, 2, env.provider.CallCount())
	followUp := env.provider.Calls[1]

	// The follow-up carries the assistant tool request and its result
	var toolMsg *llm.Message
	for i := range followUp.Messages {
		if followUp.Messages[i].Role == llm.RoleTool {
			toolMsg = &followUp.Messages[i]
		}
	}
	require.NotNil(t, toolMsg)
	assert.Equal(t, "call-1", toolMsg.ToolCallID)

	// The tool result is the serialized query, evaluated in the caller's
	// timezone
	var result practice.Result
	require.NoError(t, json.Unmarshal([]byte(toolMsg.Content), &result))
	require.Equal(t, 1, result.Count)
	assert.Equal(t, sit.ID, result.Records[0].Sit.ID)
}

// Argument errors go back to the model as a tool result so the request
// still succeeds.
func TestConverseToolArgumentError(t *testing.T) {
	env := setupChatEnv(t,
		llm.MockResponse{ToolCalls: []llm.ToolCall{{
			ID:        "call-1",
			Name:      queryToolName,
			Arguments: json.RawMessage(`{"start_date":"not-a-date"}`),
		}}},
		llm.MockResponse{Text: "I couldn't read that date range."},
	)
	ctx := context.Background()

	reply, err := env.svc.Converse(ctx, "user-1", "Show me last week", "UTC")
	require.NoError(t, err)
	assert.Equal(t, "I couldn't read that date range.", reply.Content)

	require.Equal(t, 2, env.provider.CallCount())
	followUp := env.provider.Calls[1]
	last := followUp.Messages[len(followUp.Messages)-1]
	assert.Equal(t, llm.RoleTool, last.Role)
	assert.True(t, strings.HasPrefix(last.Content, "error:"), "got %q", last.Content)
}

func TestConverseUnknownTool(t *testing.T) {
	env := setupChatEnv(t,
		llm.MockResponse{ToolCalls: []llm.ToolCall{{
			ID:   "call-1",
			Name: "get_weather",
		}}},
		llm.MockResponse{Text: "I can only look at your practice data."},
	)
	ctx := context.Background()

	reply, err := env.svc.Converse(ctx, "user-1", "What's the weather?", "UTC")
	require.NoError(t, err)
	assert.Equal(t, "I can only look at your practice data.", reply.Content)

	followUp := env.provider.Calls[1]
	last := followUp.Messages[len(followUp.Messages)-1]
	assert.Contains(t, last.Content, "unknown tool")
}

// The loop is bounded: if the follow-up response asks for more tools,
// its text is final and no third call is made.
func TestConverseSingleToolRound(t *testing.T) {
	env := setupChatEnv(t,
		llm.MockResponse{ToolCalls: []llm.ToolCall{{
			ID:        "call-1",
			Name:      queryToolName,
			Arguments: json.RawMessage(`{}`),
		}}},
		llm.MockResponse{
			Text: "Here's what I found.",
			ToolCalls: []llm.ToolCall{{
				ID:        "call-2",
				Name:      queryToolName,
				Arguments: json.RawMessage(`{"kind":"checkins"}`),
			}},
		},
	)
	ctx := context.Background()

	reply, err := env.svc.Converse(ctx, "user-1", "Summarize my practice", "UTC")
	require.NoError(t, err)
	assert.Equal(t, "Here's what I found.", reply.Content)
	assert.Equal(t, 2, env.provider.CallCount())
}

// An empty model response is persisted as an empty assistant message
// rather than dropped.
func TestConverseEmptyResponse(t *testing.T) {
	env := setupChatEnv(t, llm.MockResponse{Text: ""})
	ctx := context.Background()

	reply, err := env.svc.Converse(ctx, "user-1", "hi", "UTC")
	require.NoError(t, err)
	assert.Empty(t, reply.Content)

	history, err := env.svc.History(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.ChatRoleAssistant, history[1].Role)
	assert.Empty(t, history[1].Content)
}

func TestHistoryLimit(t *testing.T) {
	env := setupChatEnv(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		msg := &models.ChatMessage{
			UserID:    "user-1",
			Role:      models.ChatRoleUser,
			Content:   fmt.Sprintf("message %d", i),
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, env.repo.CreateMessage(ctx, msg))
	}

	history, err := env.svc.History(ctx, "user-1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// The most recent two, oldest first
	assert.Equal(t, "message 3", history[0].Content)
	assert.Equal(t, "message 4", history[1].Content)
}
