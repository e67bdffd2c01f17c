package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewSearchToolEmptyKey(t *testing.T) {
	_, err := NewSearchTool("")
	var initErr *ToolInitError
	if !errors.As(err, &initErr) {
		t.Fatalf("err = %T, want *ToolInitError", err)
	}
}

func TestSearchToolExecute(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"results": [
				{"title": "Serverless in 2026", "url": "https://example.com/a", "content": "adoption is up"},
				{"title": "FaaS trends", "url": "https://example.com/b", "content": "costs are down"}
			]
		}`))
	}))
	defer srv.Close()

	tool, err := NewSearchTool("tvly-test-key")
	if err != nil {
		t.Fatalf("NewSearchTool: %v", err)
	}
	tool.SetEndpoint(srv.URL)

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"query":       "serverless adoption",
		"max_results": float64(3),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if gotBody["api_key"] != "tvly-test-key" {
		t.Errorf("request api_key = %v", gotBody["api_key"])
	}
	if gotBody["max_results"] != float64(3) {
		t.Errorf("request max_results = %v", gotBody["max_results"])
	}

	out := result.(map[string]interface{})
	if out["success"] != true {
		t.Fatalf("result = %v", out)
	}
	if out["count"] != 2 {
		t.Errorf("count = %v, want 2", out["count"])
	}
	results := out["results"].([]map[string]interface{})
	if results[0]["snippet"] != "adoption is up" {
		t.Errorf("first snippet = %v", results[0]["snippet"])
	}
}

func TestSearchToolResultBound(t *testing.T) {
	var gotMax interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotMax = body["max_results"]
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	tool, _ := NewSearchTool("tvly-test-key")
	tool.SetEndpoint(srv.URL)

	if _, err := tool.Execute(context.Background(), map[string]interface{}{
		"query":       "q",
		"max_results": float64(99),
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if gotMax != float64(10) {
		t.Errorf("max_results = %v, want clamped to 10", gotMax)
	}
}

func TestSearchToolServerErrorDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	tool, _ := NewSearchTool("tvly-bad")
	tool.SetEndpoint(srv.URL)

	result, err := tool.Execute(context.Background(), map[string]interface{}{"query": "q"})
	if err != nil {
		t.Fatalf("Execute should degrade, not fail: %v", err)
	}
	out := result.(map[string]interface{})
	if out["success"] != false {
		t.Errorf("result = %v, want success=false", out)
	}
}

func TestSearchToolMissingQuery(t *testing.T) {
	tool, _ := NewSearchTool("tvly-test-key")
	if _, err := tool.Execute(context.Background(), map[string]interface{}{}); err == nil {
		t.Fatal("expected error for missing query")
	}
}

func TestFetchToolHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title>Test Page</title></head>
			<body><script>ignored()</script><article><p>Useful paragraph one.</p><p>Useful paragraph two.</p></article></body></html>`))
	}))
	defer srv.Close()

	tool := NewFetchTool()
	result, err := tool.Execute(context.Background(), map[string]interface{}{"url": srv.URL})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	out := result.(map[string]interface{})
	if out["success"] != true {
		t.Fatalf("result = %v", out)
	}
	content := out["content"].(string)
	if content == "" {
		t.Error("content is empty")
	}
}

func TestFetchToolRejectsNonHTTP(t *testing.T) {
	tool := NewFetchTool()
	result, err := tool.Execute(context.Background(), map[string]interface{}{"url": "file:///etc/passwd"})
	if err != nil {
		t.Fatalf("Execute should degrade, not fail: %v", err)
	}
	if result.(map[string]interface{})["success"] != false {
		t.Errorf("result = %v, want success=false", result)
	}
}

func TestFetchToolTruncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		for i := 0; i < 1000; i++ {
			_, _ = w.Write([]byte("0123456789"))
		}
	}))
	defer srv.Close()

	tool := NewFetchTool()
	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"url":       srv.URL,
		"max_chars": float64(100),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	content := result.(map[string]interface{})["content"].(string)
	if len(content) > 200 {
		t.Errorf("content length = %d, want truncated near 100", len(content))
	}
}
