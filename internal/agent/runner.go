package agent

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/contentduet/duet/internal/logging"
	"github.com/contentduet/duet/internal/providers"
)

// Error prefixes the presentation layer uses when rendering a failed
// side. The runner itself keeps errors as values; only rendering
// bakes them into text.
const (
	ReactiveErrorPrefix  = "Reactive Agent Error"
	ProactiveErrorPrefix = "Proactive Agent Error"
)

// RunRequest carries everything one pipeline run needs. All fields
// are request-scoped; credentials inside are never persisted.
type RunRequest struct {
	Topic     string
	Reactive  providers.Config
	Proactive providers.Config
	Search    SearchConfig
}

// SideResult is one agent's outcome: either text or an error, never
// both meaningful at once.
type SideResult struct {
	Text string
	Err  error
}

// Render flattens a SideResult for display, prefixing failures so
// they are recognizable in the content channel.
func (r SideResult) Render(prefix string) string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %v", prefix, r.Err)
	}
	return r.Text
}

// RunResult is the pair the runner always returns; the run as a whole
// never fails.
type RunResult struct {
	Draft   SideResult
	Refined SideResult
}

// Event is a progress notification emitted during a run.
type Event struct {
	Stage  string    `json:"stage"`
	Detail string    `json:"detail,omitempty"`
	Time   time.Time `json:"time"`
}

const (
	StageDraftStarted   = "draft_started"
	StageDraftFinished  = "draft_finished"
	StageRefineStarted  = "refine_started"
	StageToolCall       = "tool_call"
	StageRefineFinished = "refine_finished"
)

// Runner coordinates the two agents. A two-worker pool is kept even
// though the draft must finish before refinement starts; it would
// allow overlap if the data dependency were ever removed.
type Runner struct {
	factory    providers.Factory
	extraTools []Tool
	maxSteps   int
	log        *logging.Logger
	events     func(Event)
}

// RunnerConfig configures a Runner. Factory defaults to the real
// OpenAI-compatible client; tests substitute scripted providers.
// ExtraTools (e.g. MCP-contributed) are offered to the refiner in
// addition to the built-in web tools.
type RunnerConfig struct {
	Factory    providers.Factory
	ExtraTools []Tool
	MaxSteps   int
	Logger     *logging.Logger
	Events     func(Event)
}

func NewRunner(cfg RunnerConfig) *Runner {
	factory := cfg.Factory
	if factory == nil {
		factory = providers.New
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewNop()
	}
	return &Runner{
		factory:    factory,
		extraTools: cfg.ExtraTools,
		maxSteps:   cfg.MaxSteps,
		log:        log,
		events:     cfg.Events,
	}
}

// Run executes the pipeline: draft fully completes, then refinement
// consumes the draft's rendered text, error text included. Failures
// are captured per side; Run itself never fails.
func (r *Runner) Run(ctx context.Context, req RunRequest) RunResult {
	var result RunResult

	jobs := make(chan func())
	var g errgroup.Group
	for i := 0; i < 2; i++ {
		g.Go(func() error {
			for job := range jobs {
				job()
			}
			return nil
		})
	}

	submit := func(job func()) {
		done := make(chan struct{})
		jobs <- func() {
			defer close(done)
			job()
		}
		<-done
	}

	submit(func() {
		r.emit(StageDraftStarted, req.Topic)
		result.Draft = r.runDraft(ctx, req)
		r.emit(StageDraftFinished, "")
	})

	// The refiner consumes whatever the draft side produced, so it
	// always runs, even on a failed draft.
	draftInput := result.Draft.Render(ReactiveErrorPrefix)

	submit(func() {
		r.emit(StageRefineStarted, "")
		result.Refined = r.runRefine(ctx, req, draftInput)
		r.emit(StageRefineFinished, "")
	})

	close(jobs)
	_ = g.Wait()

	return result
}

func (r *Runner) runDraft(ctx context.Context, req RunRequest) SideResult {
	provider, err := r.factory(req.Reactive)
	if err != nil {
		return SideResult{Err: err}
	}

	drafter := NewDrafter(DrafterConfig{
		Provider:    provider,
		Model:       req.Reactive.Model,
		Temperature: req.Reactive.Temperature,
		Preflight: func(ctx context.Context) error {
			return providers.ValidateProvider(ctx, provider, req.Reactive.Model)
		},
		Logger: r.log.Named("reactive"),
	})

	text, err := drafter.Draft(ctx, req.Topic)
	if err != nil {
		return SideResult{Err: err}
	}
	return SideResult{Text: text}
}

func (r *Runner) runRefine(ctx context.Context, req RunRequest, draft string) SideResult {
	provider, err := r.factory(req.Proactive)
	if err != nil {
		return SideResult{Err: err}
	}

	refiner := NewRefiner(RefinerConfig{
		Provider:    provider,
		Model:       req.Proactive.Model,
		Temperature: req.Proactive.Temperature,
		Tools:       RefinementTools(req.Search, r.extraTools, r.log),
		MaxSteps:    r.maxSteps,
		OnToolCall: func(name string) {
			r.emit(StageToolCall, name)
		},
		Logger: r.log.Named("proactive"),
	})

	text, err := refiner.Refine(ctx, draft, req.Topic)
	if err != nil {
		return SideResult{Err: err}
	}
	return SideResult{Text: text}
}

func (r *Runner) emit(stage, detail string) {
	if r.events != nil {
		r.events(Event{Stage: stage, Detail: detail, Time: time.Now()})
	}
}
