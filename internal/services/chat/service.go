package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/sitpractice/sit-api/internal/llm"
	"github.com/sitpractice/sit-api/internal/models"
	"github.com/sitpractice/sit-api/internal/services/practice"
	apperrors "github.com/sitpractice/sit-api/pkg/errors"
)

const systemPrompt = "You are a meditation practice assistant for the Sit app. " +
	"The user tracks their meditation practice through timed sits and check-in flows. " +
	"You can query their practice data to help them understand patterns and progress. " +
	"Be warm, insightful, and concise."

const queryToolName = "query_practice_data"

// historyLimit is the number of prior messages sent to the model
const defaultHistoryLimit = 20

// Service drives the bounded conversational loop: one model call, an
// optional single tool round, one follow-up call.
type Service interface {
	// Converse handles one user message and returns the persisted
	// assistant reply.
	Converse(ctx context.Context, userID, message, timezone string) (*models.ChatMessage, error)

	// History returns the user's recent messages, oldest first
	History(ctx context.Context, userID string, limit int) ([]*models.ChatMessage, error)
}

type service struct {
	repo         Repository
	provider     llm.Provider
	engine       practice.Service
	historyLimit int
}

// NewService creates a new chat service
func NewService(repo Repository, provider llm.Provider, engine practice.Service, historyLimit int) Service {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &service{
		repo:         repo,
		provider:     provider,
		engine:       engine,
		historyLimit: historyLimit,
	}
}

// queryTool describes the practice query engine to the model
func queryTool() llm.Tool {
	return llm.Tool{
		Name:        queryToolName,
		Description: "Query the user's meditation practice data. Returns sits and check-in responses merged newest-first, with the flow definitions they reference.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"start_date": map[string]any{
					"type":        "string",
					"description": "Start date filter as a local calendar date (YYYY-MM-DD, e.g. 2026-01-01). Optional.",
				},
				"end_date": map[string]any{
					"type":        "string",
					"description": "End date filter as a local calendar date (YYYY-MM-DD). Optional.",
				},
				"kind": map[string]any{
					"type":        "string",
					"enum":        []string{"sits", "checkins", "all"},
					"description": "Which record types to return. Defaults to all.",
				},
			},
		},
	}
}

type queryToolArgs struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Kind      string `json:"kind"`
}

func (s *service) Converse(ctx context.Context, userID, message, timezone string) (*models.ChatMessage, error) {
	if message == "" {
		return nil, apperrors.MissingFieldError("message")
	}
	if s.provider == nil {
		return nil, apperrors.New(apperrors.ErrCodeUpstreamUnavailable, "no model provider configured")
	}

	tzName := timezone
	if tzName == "" {
		tzName = "UTC"
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, apperrors.InvalidArgument("timezone", fmt.Sprintf("unknown timezone %q", tzName))
	}

	userMsg := &models.ChatMessage{
		UserID:  userID,
		Role:    models.ChatRoleUser,
		Content: message,
	}
	if err := s.repo.CreateMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("persisting user message: %w", err)
	}

	history, err := s.repo.ListRecent(ctx, userID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("loading chat history: %w", err)
	}

	messages := make([]llm.Message, 0, len(history)+2)
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == models.ChatRoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Content})
	}

	req := llm.Request{
		System:   s.buildSystemPrompt(loc),
		Messages: messages,
		Tools:    []llm.Tool{queryTool()},
	}

	resp, err := s.provider.SendTurn(ctx, req)
	if err != nil {
		return nil, apperrors.UpstreamUnavailable("llm", err)
	}

	finalText := resp.Text

	// At most one tool round: the follow-up call's text is final even
	// if the model asks for more tools.
	if len(resp.ToolCalls) > 0 {
		req.Messages = append(req.Messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			result, err := s.executeTool(ctx, userID, tzName, call)
			if err != nil {
				return nil, err
			}
			req.Messages = append(req.Messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}

		followUp, err := s.provider.SendTurn(ctx, req)
		if err != nil {
			return nil, apperrors.UpstreamUnavailable("llm", err)
		}
		finalText = followUp.Text
	}

	// Empty model text is still persisted as an empty assistant message
	assistantMsg := &models.ChatMessage{
		UserID:  userID,
		Role:    models.ChatRoleAssistant,
		Content: finalText,
	}
	if err := s.repo.CreateMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("persisting assistant message: %w", err)
	}

	return assistantMsg, nil
}

// executeTool runs one model-requested tool invocation. Argument errors
// are returned to the model as a tool-result string so it can correct
// itself within the same round; anything else aborts the request.
func (s *service) executeTool(ctx context.Context, userID, timezone string, call llm.ToolCall) (string, error) {
	if call.Name != queryToolName {
		return fmt.Sprintf("error: unknown tool %q", call.Name), nil
	}

	var args queryToolArgs
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			return fmt.Sprintf("error: invalid arguments: %v", err), nil
		}
	}

	kind := practice.Kind(args.Kind)
	if kind == "" {
		kind = practice.KindAll
	}

	result, err := s.engine.Query(ctx, userID, practice.QueryParams{
		StartDate: args.StartDate,
		EndDate:   args.EndDate,
		Timezone:  timezone,
		Kind:      kind,
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCodeInvalidArgument) {
			return fmt.Sprintf("error: %v", err), nil
		}
		return "", fmt.Errorf("practice query: %w", err)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("serializing tool result: %w", err)
	}

	log.Printf("[DEBUG] Tool %s returned %d records for user %s", call.Name, result.Count, userID)

	return string(payload), nil
}

func (s *service) buildSystemPrompt(loc *time.Location) string {
	now := time.Now().In(loc)
	return fmt.Sprintf("%s\n\nThe current date is %s (%s).",
		systemPrompt, now.Format("Monday, 2006-01-02"), loc.String())
}

func (s *service) History(ctx context.Context, userID string, limit int) ([]*models.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListRecent(ctx, userID, limit)
}
