package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contentduet/duet/internal/config"
	"github.com/contentduet/duet/internal/providers"
)

func newValidateCmd() *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "validate <provider>",
		Short: "Health-check a provider's API key and model access",
		Long: `Issues one minimal completion against the provider to confirm the
key and model are usable. The key comes from <PROVIDER>_API_KEY.
Costs one unit of the provider's quota.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]
			apiKey := config.EnvAPIKey(provider)
			if apiKey == "" {
				return fmt.Errorf("no API key found for %s", provider)
			}

			if model == "" {
				model = providers.DefaultModel(provider)
			}

			err := providers.Validate(cmd.Context(), providers.Config{
				Provider: provider,
				APIKey:   apiKey,
				Model:    model,
			})
			if err != nil {
				return err
			}

			fmt.Printf("%s credentials OK (model %s)\n", provider, model)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "model to check (defaults per provider)")
	return cmd
}
