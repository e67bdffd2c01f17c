package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/contentduet/duet/internal/ai"
	openai "github.com/sashabaranov/go-openai"
)

// Config identifies one provider/model pair plus the credentials to
// reach it. Values are request-scoped: built from user input, passed
// by value, never persisted or logged.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
}

// OpenAICompatible talks to any OpenAI-compatible chat-completion API.
// Groq and Gemini both expose one, so this single client covers the
// reactive and the proactive side.
type OpenAICompatible struct {
	client *openai.Client
	name   string
	model  string
}

// NewOpenAICompatible builds a client for the configured endpoint.
func NewOpenAICompatible(cfg Config) (*OpenAICompatible, error) {
	if cfg.APIKey == "" {
		return nil, &CredentialError{Provider: cfg.Provider, Err: fmt.Errorf("API key required")}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL(cfg.Provider)
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel(cfg.Provider)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = baseURL

	return &OpenAICompatible{
		client: openai.NewClientWithConfig(clientConfig),
		name:   cfg.Provider,
		model:  model,
	}, nil
}

func (p *OpenAICompatible) Name() string {
	return p.name
}

func (p *OpenAICompatible) SupportsTools() bool {
	return true
}

// Chat issues exactly one completion call. No retries at this layer.
func (p *OpenAICompatible) Chat(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		m := openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}

		if msg.Role == "tool" && msg.ToolCallID != "" {
			m.ToolCallID = msg.ToolCallID
		}

		if msg.Role == "assistant" && len(msg.ToolCalls) > 0 {
			calls := make([]openai.ToolCall, 0, len(msg.ToolCalls))
			for _, tc := range msg.ToolCalls {
				argsJSON := "{}"
				if len(tc.Args) > 0 {
					if b, err := json.Marshal(tc.Args); err == nil {
						argsJSON = string(b)
					}
				}
				calls = append(calls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: argsJSON,
					},
				})
			}
			m.ToolCalls = calls
		}

		messages = append(messages, m)
	}

	var tools []openai.Tool
	for _, tool := range req.Tools {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	completionReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
		Tools:    tools,
	}
	if req.Temperature > 0 {
		completionReq.Temperature = float32(req.Temperature)
	}
	if req.MaxTokens > 0 {
		completionReq.MaxTokens = req.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, completionReq)
	if err != nil {
		return nil, &CallError{Provider: p.name, Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &CallError{Provider: p.name, Err: fmt.Errorf("response contained no choices")}
	}

	choice := resp.Choices[0]
	chatResp := &ai.ChatResponse{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
	}

	for _, toolCall := range choice.Message.ToolCalls {
		args := make(map[string]interface{})
		if toolCall.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &args); err != nil {
				// Keep the raw string so the tool can decide what to do.
				args["_raw"] = toolCall.Function.Arguments
			}
		}
		chatResp.ToolCalls = append(chatResp.ToolCalls, ai.ToolCall{
			ID:   toolCall.ID,
			Name: toolCall.Function.Name,
			Args: args,
		})
	}

	return chatResp, nil
}

// Factory builds a provider from a request-scoped config. The runner
// takes one so tests can substitute scripted providers.
type Factory func(Config) (ai.Provider, error)

// New is the default Factory.
func New(cfg Config) (ai.Provider, error) {
	return NewOpenAICompatible(cfg)
}
