package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/contentduet/duet/internal/ai"
)

// MockProvider replays scripted responses for tests. Each Chat call
// consumes the next step; the last step repeats once the script runs
// out.
type MockProvider struct {
	mu       sync.Mutex
	name     string
	steps    []MockStep
	next     int
	requests []ai.ChatRequest
}

// MockStep is one scripted Chat result.
type MockStep struct {
	Response *ai.ChatResponse
	Err      error
}

// NewMockProvider creates a scripted provider.
func NewMockProvider(name string, steps ...MockStep) *MockProvider {
	return &MockProvider{name: name, steps: steps}
}

// MockText is shorthand for a single plain-text response script.
func MockText(name, text string) *MockProvider {
	return NewMockProvider(name, MockStep{
		Response: &ai.ChatResponse{Content: text, FinishReason: "stop"},
	})
}

// MockError is shorthand for a script that always fails.
func MockError(name string, err error) *MockProvider {
	return NewMockProvider(name, MockStep{Err: err})
}

func (p *MockProvider) Name() string {
	return p.name
}

func (p *MockProvider) SupportsTools() bool {
	return true
}

func (p *MockProvider) Chat(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, req)

	if len(p.steps) == 0 {
		return nil, fmt.Errorf("mock provider %s has no scripted steps", p.name)
	}

	step := p.steps[p.next]
	if p.next < len(p.steps)-1 {
		p.next++
	}

	if step.Err != nil {
		return nil, step.Err
	}
	return step.Response, nil
}

// Calls returns how many Chat calls the mock has served.
func (p *MockProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// Requests returns a copy of every recorded request.
func (p *MockProvider) Requests() []ai.ChatRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ai.ChatRequest, len(p.requests))
	copy(out, p.requests)
	return out
}
