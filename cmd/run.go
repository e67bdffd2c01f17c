package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/contentduet/duet/internal/agent"
	"github.com/contentduet/duet/internal/config"
	"github.com/contentduet/duet/internal/logging"
	"github.com/contentduet/duet/internal/providers"
)

func newRunCmd() *cobra.Command {
	var (
		reactiveModel  string
		proactiveModel string
		reactiveTemp   float64
		proactiveTemp  float64
		search         bool
		interactive    bool
	)

	cmd := &cobra.Command{
		Use:   "run [topic]",
		Short: "Run the dual-agent pipeline once (or interactively with -i)",
		Long: `Runs the reactive draft and proactive refinement for a topic.
API keys come from GROQ_API_KEY, GEMINI_API_KEY, and TAVILY_API_KEY.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			log := logging.New("duet", cfg.Logging.Level)
			defer log.Sync()

			groqKey := config.EnvAPIKey(providers.ProviderGroq)
			geminiKey := config.EnvAPIKey(providers.ProviderGemini)
			if groqKey == "" || geminiKey == "" {
				return fmt.Errorf("GROQ_API_KEY and GEMINI_API_KEY must be set")
			}

			if reactiveModel == "" {
				reactiveModel = cfg.Reactive.Model
			}
			if proactiveModel == "" {
				proactiveModel = cfg.Proactive.Model
			}
			if !cmd.Flags().Changed("reactive-temp") {
				reactiveTemp = cfg.Reactive.Temperature
			}
			if !cmd.Flags().Changed("proactive-temp") {
				proactiveTemp = cfg.Proactive.Temperature
			}
			if !cmd.Flags().Changed("search") {
				search = cfg.Search.Enabled
			}

			runner := agent.NewRunner(agent.RunnerConfig{Logger: log.Named("runner")})
			runOnce := func(topic string) {
				result := runner.Run(cmd.Context(), agent.RunRequest{
					Topic: topic,
					Reactive: providers.Config{
						Provider:    providers.ProviderGroq,
						APIKey:      groqKey,
						Model:       reactiveModel,
						Temperature: reactiveTemp,
					},
					Proactive: providers.Config{
						Provider:    providers.ProviderGemini,
						APIKey:      geminiKey,
						Model:       proactiveModel,
						Temperature: proactiveTemp,
					},
					Search: agent.SearchConfig{
						Enabled: search,
						APIKey:  config.EnvAPIKey("tavily"),
					},
				})

				fmt.Println("=== Reactive Draft ===")
				fmt.Println(result.Draft.Render(agent.ReactiveErrorPrefix))
				fmt.Println()
				fmt.Println("=== Proactive Refinement ===")
				fmt.Println(result.Refined.Render(agent.ProactiveErrorPrefix))
			}

			if interactive {
				return runInteractive(cmd.Context(), runOnce)
			}

			topic := strings.TrimSpace(strings.Join(args, " "))
			if topic == "" {
				return fmt.Errorf("topic is required (or use -i for interactive mode)")
			}
			runOnce(topic)
			return nil
		},
	}

	cmd.Flags().StringVar(&reactiveModel, "reactive-model", "", "reactive agent model")
	cmd.Flags().StringVar(&proactiveModel, "proactive-model", "", "proactive agent model")
	cmd.Flags().Float64Var(&reactiveTemp, "reactive-temp", 0.3, "reactive agent temperature")
	cmd.Flags().Float64Var(&proactiveTemp, "proactive-temp", 0.7, "proactive agent temperature")
	cmd.Flags().BoolVar(&search, "search", true, "enable the web search tool")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read topics interactively")
	return cmd
}

// runInteractive reads topics line by line until EOF or "exit".
func runInteractive(ctx context.Context, runOnce func(topic string)) error {
	rl, err := readline.New("topic> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := rl.Readline()
		if err == readline.ErrInterrupt || err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		topic := strings.TrimSpace(line)
		if topic == "" {
			continue
		}
		if topic == "exit" || topic == "quit" {
			return nil
		}
		runOnce(topic)
		fmt.Println()
	}
}
