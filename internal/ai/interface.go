package ai

import "context"

// Message is a single turn in a conversation.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a provider request to invoke a named tool.
type ToolCall struct {
	ID   string                 `json:"id"`
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

// Tool describes an invokable capability offered to a provider.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// ChatRequest is a single completion request to a provider.
type ChatRequest struct {
	Messages    []Message `json:"messages"`
	Tools       []Tool    `json:"tools,omitempty"`
	Model       string    `json:"model,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatResponse is what a provider returns for one completion call.
// Content carries the final text when the integration surfaces one
// directly. Raw optionally carries the integration's decoded payload;
// Interpret falls back to it when Content is empty.
type ChatResponse struct {
	Content      string      `json:"content"`
	FinishReason string      `json:"finish_reason"`
	ToolCalls    []ToolCall  `json:"tool_calls,omitempty"`
	Raw          interface{} `json:"-"`
}

// Provider is the completion boundary all integrations implement.
type Provider interface {
	Name() string
	SupportsTools() bool
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
