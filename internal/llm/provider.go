package llm

import (
	"context"
	"encoding/json"
)

// Provider is the single abstraction over language-model vendors.
// Vendor-specific request/response shaping lives in adapters behind it.
type Provider interface {
	// SendTurn sends one model call: system prompt, conversation history
	// and the available tools. The response carries either assistant
	// text, tool invocation requests, or both.
	SendTurn(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is one tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Message represents a single message in the conversation. Plain turns
// set Role and Content. An assistant turn that requested tools carries
// ToolCalls; the matching results are RoleTool messages whose ToolCallID
// echoes the request id.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// Tool describes one callable capability offered to the model.
// Parameters is a JSON Schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Request describes what to send to the model for one turn.
type Request struct {
	// System is the system prompt. Sets the model's role and constraints.
	System string

	// Messages is the conversation so far, oldest first.
	Messages []Message

	// Tools the model may request. Empty means plain text completion.
	Tools []Tool

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Response holds the model's output for one turn.
type Response struct {
	// Text is the assistant text, possibly empty when the model only
	// requested tools.
	Text string

	// ToolCalls are the tool invocations the model requested, in order.
	ToolCalls []ToolCall

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
