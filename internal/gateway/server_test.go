package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/contentduet/duet/internal/ai"
	"github.com/contentduet/duet/internal/config"
	"github.com/contentduet/duet/internal/providers"
)

func testServer(t *testing.T, byName map[string]ai.Provider) *httptest.Server {
	t.Helper()
	srv := NewServer(config.Default(), Options{
		Factory: func(cfg providers.Config) (ai.Provider, error) {
			if cfg.APIKey == "" {
				return nil, &providers.CredentialError{Provider: cfg.Provider, Err: errors.New("API key required")}
			}
			p, ok := byName[cfg.Provider]
			if !ok {
				return nil, errors.New("no provider " + cfg.Provider)
			}
			return p, nil
		},
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	ts := testServer(t, nil)
	resp, err := http.Get(ts.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestDefaults(t *testing.T) {
	ts := testServer(t, nil)
	resp, err := http.Get(ts.URL + "/api/v1/defaults")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var body defaultsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Reactive.Model != "llama-3.1-8b-instant" {
		t.Errorf("reactive model = %q", body.Reactive.Model)
	}
	if len(body.Proactive.Models) == 0 {
		t.Error("proactive model catalog is empty")
	}
}

func runBody(groqKey, geminiKey string) map[string]interface{} {
	return map[string]interface{}{
		"topic": "The future of serverless computing",
		"reactive": map[string]interface{}{
			"provider": "groq", "api_key": groqKey, "model": "llama-3.1-8b-instant",
		},
		"proactive": map[string]interface{}{
			"provider": "gemini", "api_key": geminiKey, "model": "gemini-2.5-flash",
		},
		"search": map[string]interface{}{"enabled": false},
	}
}

func TestRunEndpoint(t *testing.T) {
	reactive := providers.NewMockProvider("groq",
		providers.MockStep{Response: &ai.ChatResponse{Content: "OK"}},
		providers.MockStep{Response: &ai.ChatResponse{Content: "Serverless is rising."}},
	)
	proactive := providers.MockText("gemini", "Analysis: ok\nRefinement: ...\nNext Steps: ...")
	ts := testServer(t, map[string]ai.Provider{"groq": reactive, "gemini": proactive})

	resp := postJSON(t, ts.URL+"/api/v1/run", runBody("gsk_x", "gem_y"))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body runResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.RunID == "" {
		t.Error("run_id is empty")
	}
	if body.Draft.Text != "Serverless is rising." || body.Draft.Error != "" {
		t.Errorf("draft = %+v", body.Draft)
	}
	if !strings.HasPrefix(body.Refined.Text, "Analysis:") || body.Refined.Error != "" {
		t.Errorf("refined = %+v", body.Refined)
	}
}

func TestRunEndpointMissingTopic(t *testing.T) {
	ts := testServer(t, nil)
	body := runBody("k1", "k2")
	body["topic"] = "   "
	resp := postJSON(t, ts.URL+"/api/v1/run", body)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRunEndpointKeySanitized(t *testing.T) {
	var seenKey string
	srv := NewServer(config.Default(), Options{
		Factory: func(cfg providers.Config) (ai.Provider, error) {
			if cfg.Provider == "groq" {
				seenKey = cfg.APIKey
			}
			return providers.MockText(cfg.Provider, "text"), nil
		},
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/v1/run", runBody(`  "gsk_padded"  `, "k2"))
	defer resp.Body.Close()

	if seenKey != "gsk_padded" {
		t.Errorf("factory saw key %q, want sanitized", seenKey)
	}
}

func TestRunEndpointDraftErrorStillRefines(t *testing.T) {
	proactive := providers.MockText("gemini", "refined despite draft failure")
	ts := testServer(t, map[string]ai.Provider{"gemini": proactive})

	// Empty groq key makes the factory fail the reactive side.
	resp := postJSON(t, ts.URL+"/api/v1/run", runBody("", "gem_y"))
	defer resp.Body.Close()

	var body runResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(body.Draft.Text, "Reactive Agent Error:") {
		t.Errorf("draft text = %q", body.Draft.Text)
	}
	if body.Draft.Error == "" {
		t.Error("draft error field should be populated")
	}
	if body.Refined.Text != "refined despite draft failure" {
		t.Errorf("refined = %+v", body.Refined)
	}
}

func TestValidateEndpoint(t *testing.T) {
	ts := testServer(t, nil)

	// The validate endpoint builds a real client, so exercise the
	// missing-key path, which fails before any network call.
	resp := postJSON(t, ts.URL+"/api/v1/validate", map[string]interface{}{
		"provider": "groq", "api_key": "",
	})
	defer resp.Body.Close()

	var body validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Valid {
		t.Error("empty key should not validate")
	}
	if body.Error == "" {
		t.Error("error message missing")
	}
}

func TestIndexServed(t *testing.T) {
	ts := testServer(t, nil)
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
}
