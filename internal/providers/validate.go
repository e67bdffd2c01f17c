package providers

import (
	"context"
	"time"

	"github.com/contentduet/duet/internal/ai"
)

const validateTimeout = 15 * time.Second

// Validate performs a one-shot health check against the configured
// provider/model: one minimal completion whose content is never
// inspected, only call success. Returns nil on success and a
// *CredentialError on any transport, auth, or model failure. Costs
// one unit of the provider's quota.
func Validate(ctx context.Context, cfg Config) error {
	p, err := NewOpenAICompatible(cfg)
	if err != nil {
		return err
	}
	return ValidateProvider(ctx, p, cfg.Model)
}

// ValidateProvider runs the health check against an already-built
// provider.
func ValidateProvider(ctx context.Context, p ai.Provider, model string) error {
	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	req := ai.ChatRequest{
		Model: model,
		Messages: []ai.Message{
			{Role: "system", Content: "You are a health check."},
			{Role: "user", Content: "Reply with OK"},
		},
		MaxTokens: 8,
	}

	if _, err := p.Chat(ctx, req); err != nil {
		return &CredentialError{Provider: p.Name(), Model: model, Err: err}
	}
	return nil
}
