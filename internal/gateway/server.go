package gateway

import (
	"context"
	"embed"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/contentduet/duet/internal/agent"
	"github.com/contentduet/duet/internal/config"
	"github.com/contentduet/duet/internal/logging"
	"github.com/contentduet/duet/internal/providers"
)

//go:embed web/index.html
var webFS embed.FS

// Server exposes the dual-agent pipeline to a browser: an embedded
// single-page UI, a run endpoint, a credential check, and a websocket
// event feed. Keys arrive per request and live only for that request.
type Server struct {
	cfg        *config.Config
	factory    providers.Factory
	extraTools []agent.Tool
	hub        *eventHub
	log        *logging.Logger
	mux        *http.ServeMux
}

// Options configures a Server. Factory defaults to the real provider
// client; tests inject scripted ones.
type Options struct {
	Factory    providers.Factory
	ExtraTools []agent.Tool
	Logger     *logging.Logger
}

func NewServer(cfg *config.Config, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}

	s := &Server{
		cfg:        cfg,
		factory:    opts.Factory,
		extraTools: opts.ExtraTools,
		hub:        newEventHub(log.Named("events")),
		log:        log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/defaults", s.handleDefaults)
	mux.HandleFunc("POST /api/v1/validate", s.handleValidate)
	mux.HandleFunc("POST /api/v1/run", s.handleRun)
	mux.HandleFunc("GET /api/v1/events", s.hub.handleSubscribe)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux = mux

	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start runs the server until the listener fails or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("gateway listening", "addr", s.cfg.Server.Addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		http.Error(w, "ui unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type defaultsResponse struct {
	Reactive  providerDefaults `json:"reactive"`
	Proactive providerDefaults `json:"proactive"`
	Search    struct {
		Enabled bool `json:"enabled"`
	} `json:"search"`
}

type providerDefaults struct {
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Models      []string `json:"models"`
	Temperature float64  `json:"temperature"`
}

func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	resp := defaultsResponse{
		Reactive: providerDefaults{
			Provider:    providers.ProviderGroq,
			Model:       s.cfg.Reactive.Model,
			Models:      providers.KnownModels(providers.ProviderGroq),
			Temperature: s.cfg.Reactive.Temperature,
		},
		Proactive: providerDefaults{
			Provider:    providers.ProviderGemini,
			Model:       s.cfg.Proactive.Model,
			Models:      providers.KnownModels(providers.ProviderGemini),
			Temperature: s.cfg.Proactive.Temperature,
		},
	}
	resp.Search.Enabled = s.cfg.Search.Enabled
	writeJSON(w, http.StatusOK, resp)
}

type providerRequest struct {
	Provider    string  `json:"provider"`
	APIKey      string  `json:"api_key"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

func (p providerRequest) toConfig(fallbackProvider string) providers.Config {
	provider := p.Provider
	if provider == "" {
		provider = fallbackProvider
	}
	return providers.Config{
		Provider:    provider,
		APIKey:      sanitizeKey(p.APIKey),
		Model:       p.Model,
		Temperature: p.Temperature,
	}
}

type validateRequest struct {
	providerRequest
}

type validateResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cfg := req.toConfig(providers.ProviderGroq)
	if err := providers.Validate(r.Context(), cfg); err != nil {
		writeJSON(w, http.StatusOK, validateResponse{Valid: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: true})
}

type runRequest struct {
	Topic     string          `json:"topic"`
	Reactive  providerRequest `json:"reactive"`
	Proactive providerRequest `json:"proactive"`
	Search    struct {
		Enabled bool   `json:"enabled"`
		APIKey  string `json:"api_key"`
	} `json:"search"`
}

type sideResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

type runResponse struct {
	RunID   string       `json:"run_id"`
	Topic   string       `json:"topic"`
	Draft   sideResponse `json:"draft"`
	Refined sideResponse `json:"refined"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		http.Error(w, "topic is required", http.StatusBadRequest)
		return
	}

	runID := uuid.NewString()
	s.log.Info("run started", "run_id", runID,
		"reactive_key", logging.Redact(req.Reactive.APIKey),
		"proactive_key", logging.Redact(req.Proactive.APIKey))

	runner := agent.NewRunner(agent.RunnerConfig{
		Factory:    s.factory,
		ExtraTools: s.extraTools,
		Logger:     s.log.Named("runner"),
		Events: func(e agent.Event) {
			s.hub.broadcast(runEvent{RunID: runID, Event: e})
		},
	})

	result := runner.Run(r.Context(), agent.RunRequest{
		Topic:     topic,
		Reactive:  req.Reactive.toConfig(providers.ProviderGroq),
		Proactive: req.Proactive.toConfig(providers.ProviderGemini),
		Search: agent.SearchConfig{
			Enabled: req.Search.Enabled,
			APIKey:  sanitizeKey(req.Search.APIKey),
		},
	})

	resp := runResponse{
		RunID:   runID,
		Topic:   topic,
		Draft:   renderSide(result.Draft, agent.ReactiveErrorPrefix),
		Refined: renderSide(result.Refined, agent.ProactiveErrorPrefix),
	}
	writeJSON(w, http.StatusOK, resp)
}

func renderSide(r agent.SideResult, prefix string) sideResponse {
	side := sideResponse{Text: r.Render(prefix)}
	if r.Err != nil {
		side.Error = r.Err.Error()
	}
	return side
}

// sanitizeKey strips whitespace and stray quotes users copy along
// with their keys.
func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	key = strings.Trim(key, `"'`)
	return strings.TrimSpace(key)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
