package agent

import (
	"context"

	"github.com/contentduet/duet/internal/ai"
	"github.com/contentduet/duet/internal/logging"
)

const reactiveSystemPrompt = "You are a fast, reactive content drafting agent. Your sole purpose is to " +
	"generate a concise, direct, and engaging draft in response to the user's request. " +
	"Do not overthink or use external tools. Focus on speed and a clear structure. " +
	"The user will provide a topic or idea. Your output should be a draft of a short " +
	"social media post or a blog outline."

// Drafter is the reactive agent: one prompt, one completion call, no
// tools. Kept deliberately tool-free for latency.
type Drafter struct {
	provider    ai.Provider
	model       string
	temperature float64
	preflight   func(context.Context) error
	log         *logging.Logger
}

// DrafterConfig configures a Drafter. Preflight, when set, runs a
// credential health check before the drafting call and its failure is
// returned as-is (a *providers.CredentialError in the default wiring).
type DrafterConfig struct {
	Provider    ai.Provider
	Model       string
	Temperature float64
	Preflight   func(context.Context) error
	Logger      *logging.Logger
}

func NewDrafter(cfg DrafterConfig) *Drafter {
	log := cfg.Logger
	if log == nil {
		log = logging.NewNop()
	}
	return &Drafter{
		provider:    cfg.Provider,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		preflight:   cfg.Preflight,
		log:         log,
	}
}

// Draft produces a short draft for the topic. Exactly one completion
// call; the response content is returned verbatim.
func (d *Drafter) Draft(ctx context.Context, topic string) (string, error) {
	if d.preflight != nil {
		if err := d.preflight(ctx); err != nil {
			d.log.Warn("draft preflight failed", "provider", d.provider.Name(), "error", err)
			return "", err
		}
	}

	d.log.Info("drafting", "provider", d.provider.Name(), "model", d.model)

	resp, err := d.provider.Chat(ctx, ai.ChatRequest{
		Model:       d.model,
		Temperature: d.temperature,
		Messages: []ai.Message{
			{Role: "system", Content: reactiveSystemPrompt},
			{Role: "user", Content: topic},
		},
	})
	if err != nil {
		return "", err
	}

	return resp.Content, nil
}
