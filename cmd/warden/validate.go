package main

import (
	"errors"
	"fmt"

	ai "github.com/spetersoncode/warden"
	"github.com/spetersoncode/warden/model"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and compile the workflow",
	Long:  `Validates the configuration, checks that an API key (or Vertex AI project) is set for the configured model's provider, and compiles the workflow graph.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		errs := []error{cfg.Validate()}
		if m, err := model.Parse(cfg.Model); err == nil {
			errs = append(errs, checkAPIKey(m.Provider()))
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg, logger, false)
		if err != nil {
			return err
		}
		defer a.Close()

		g := a.runner.Graph()
		fmt.Fprintf(cmd.OutOrStdout(), "ok: workflow %q with steps %v\n", g.Name(), g.Steps())
		return nil
	},
}

// checkAPIKey reports a missing key for provider p. Vertex AI needs a
// project and location instead.
func checkAPIKey(p ai.Provider) error {
	keys := apiKeys()
	var key, env string
	switch p {
	case ai.ProviderAnthropic:
		key, env = keys.Anthropic, "ANTHROPIC_API_KEY"
	case ai.ProviderOpenAI:
		key, env = keys.OpenAI, "OPENAI_API_KEY"
	case ai.ProviderGoogle:
		key, env = keys.Google, "GOOGLE_API_KEY"
	case ai.ProviderVertex:
		if vp := vertexProject(); vp.Project == "" || vp.Location == "" {
			return fmt.Errorf("VERTEX_PROJECT and VERTEX_LOCATION are required for %s models", p)
		}
		return nil
	default:
		return fmt.Errorf("unsupported provider %q", p)
	}
	if key == "" {
		return fmt.Errorf("%s is required for %s models", env, p)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
