package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/contentduet/duet/internal/ai"
)

func completionServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

const okCompletion = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "OK"}, "finish_reason": "stop"}]
}`

func TestValidateSuccess(t *testing.T) {
	srv := completionServer(t, http.StatusOK, okCompletion)
	defer srv.Close()

	err := Validate(context.Background(), Config{
		Provider: ProviderGroq,
		APIKey:   "gsk_test",
		Model:    "llama-3.1-8b-instant",
		BaseURL:  srv.URL,
	})
	if err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateAuthFailure(t *testing.T) {
	srv := completionServer(t, http.StatusUnauthorized, `{"error": {"message": "invalid api key"}}`)
	defer srv.Close()

	err := Validate(context.Background(), Config{
		Provider: ProviderGroq,
		APIKey:   "gsk_bad",
		BaseURL:  srv.URL,
	})
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}

	var credErr *CredentialError
	if !errors.As(err, &credErr) {
		t.Fatalf("error type = %T, want *CredentialError", err)
	}
	if credErr.Error() == "" {
		t.Error("error message is empty")
	}
}

func TestValidateMissingKey(t *testing.T) {
	err := Validate(context.Background(), Config{Provider: ProviderGemini})
	var credErr *CredentialError
	if !errors.As(err, &credErr) {
		t.Fatalf("error type = %T, want *CredentialError", err)
	}
}

func TestChatSingleCall(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okCompletion))
	}))
	defer srv.Close()

	p, err := NewOpenAICompatible(Config{Provider: ProviderGroq, APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAICompatible: %v", err)
	}

	resp, err := p.Chat(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Content != "OK" {
		t.Errorf("Content = %q, want OK", resp.Content)
	}
	if calls != 1 {
		t.Errorf("server saw %d calls, want 1", calls)
	}
}

func TestChatCallError(t *testing.T) {
	srv := completionServer(t, http.StatusTooManyRequests, `{"error": {"message": "quota exceeded"}}`)
	defer srv.Close()

	p, err := NewOpenAICompatible(Config{Provider: ProviderGemini, APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAICompatible: %v", err)
	}

	_, err = p.Chat(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: "user", Content: "hi"}},
	})
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("error type = %T, want *CallError", err)
	}
}
