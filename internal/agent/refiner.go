package agent

import (
	"context"
	"fmt"

	"github.com/contentduet/duet/internal/ai"
	"github.com/contentduet/duet/internal/logging"
)

const proactiveSystemPrompt = "You are a sophisticated, proactive content strategist. Your task is to analyze " +
	"the 'DRAFT' content provided by another agent and refine it. " +
	"Your refinement must include:\n" +
	"1. **Analysis:** A brief critique of the draft (e.g., 'Good start, but needs data.').\n" +
	"2. **Refinement:** The final, polished content. Use the web_search tool to find supporting facts, " +
	"statistics, or recent trends to enhance the content's credibility, if necessary.\n" +
	"3. **Next Steps:** Proactively suggest 2-3 logical next steps for the user (e.g., 'Next, create a " +
	"diagram for this post,' or 'Run a second agent to translate this content.').\n\n" +
	"Your final response MUST be structured clearly with these three sections."

const defaultMaxSteps = 8

// Refiner is the proactive agent: it critiques and polishes a draft,
// optionally grounding itself through tools the provider may invoke.
type Refiner struct {
	provider    ai.Provider
	model       string
	temperature float64
	tools       map[string]Tool
	maxSteps    int
	onToolCall  func(name string)
	log         *logging.Logger
}

// RefinerConfig configures a Refiner. OnToolCall, when set, is
// invoked once per executed tool call (progress reporting).
type RefinerConfig struct {
	Provider    ai.Provider
	Model       string
	Temperature float64
	Tools       []Tool
	MaxSteps    int
	OnToolCall  func(name string)
	Logger      *logging.Logger
}

func NewRefiner(cfg RefinerConfig) *Refiner {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = defaultMaxSteps
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewNop()
	}

	tools := make(map[string]Tool, len(cfg.Tools))
	for _, tool := range cfg.Tools {
		tools[tool.Name()] = tool
	}

	return &Refiner{
		provider:    cfg.Provider,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		tools:       tools,
		maxSteps:    cfg.MaxSteps,
		onToolCall:  cfg.OnToolCall,
		log:         log,
	}
}

// Refine runs the tool-calling loop: send prompt plus available
// tools, execute whatever tool calls come back, feed results into the
// conversation, and stop at the first non-tool-call response. The
// final payload is normalized through the Outcome union, so shape
// mismatches degrade to text instead of failing.
func (r *Refiner) Refine(ctx context.Context, draft, topic string) (string, error) {
	messages := []ai.Message{
		{Role: "system", Content: proactiveSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("DRAFT to refine: %s\n\nOriginal Topic: %s", draft, topic)},
	}

	defs := Definitions(r.toolList())
	r.log.Info("refining", "provider", r.provider.Name(), "model", r.model, "tools", len(defs))

	for step := 0; step < r.maxSteps; step++ {
		resp, err := r.provider.Chat(ctx, ai.ChatRequest{
			Model:       r.model,
			Temperature: r.temperature,
			Messages:    messages,
			Tools:       defs,
		})
		if err != nil {
			return "", err
		}

		if len(resp.ToolCalls) == 0 {
			return ai.Interpret(resp).Normalize(), nil
		}

		messages = append(messages, ai.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			messages = append(messages, ai.Message{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    r.executeToolCall(ctx, call),
			})
		}
	}

	return "", fmt.Errorf("refinement exceeded %d tool steps", r.maxSteps)
}

// executeToolCall runs one tool call. Failures become result text the
// provider can react to; they never abort the loop.
func (r *Refiner) executeToolCall(ctx context.Context, call ai.ToolCall) string {
	if r.onToolCall != nil {
		r.onToolCall(call.Name)
	}

	tool, ok := r.tools[call.Name]
	if !ok {
		r.log.Warn("unknown tool requested", "tool", call.Name)
		return fmt.Sprintf("Error: tool %q not found", call.Name)
	}

	r.log.Info("tool call", "tool", call.Name)

	result, err := tool.Execute(ctx, call.Args)
	if err != nil {
		r.log.Warn("tool execution failed", "tool", call.Name, "error", err)
		return fmt.Sprintf("Error executing %s: %v", call.Name, err)
	}
	return fmt.Sprintf("%v", result)
}

func (r *Refiner) toolList() []Tool {
	tools := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	return tools
}

// SearchConfig controls whether the refiner gets a web-search tool
// and the key that authorizes it. The key authorizes at most one tool
// instantiation per refinement and is never stored globally.
type SearchConfig struct {
	Enabled bool
	APIKey  string
}

// RefinementTools assembles the proactive agent's tool set. Search
// tool init failure (typically an empty key) is absorbed: the agent
// proceeds without the tool.
func RefinementTools(search SearchConfig, extra []Tool, log *logging.Logger) []Tool {
	if log == nil {
		log = logging.NewNop()
	}

	var tools []Tool
	if search.Enabled {
		searchTool, err := NewSearchTool(search.APIKey)
		if err != nil {
			log.Warn("search tool unavailable, continuing without it", "error", err)
		} else {
			tools = append(tools, searchTool, NewFetchTool())
		}
	}
	return append(tools, extra...)
}
