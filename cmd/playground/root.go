package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mercator-hq/playground/pkg/cli"
	"mercator-hq/playground/pkg/config"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "playground",
		Short: "Playground relay - one streaming chat API for many LLM providers",
		Long: `Playground relay accepts a provider-independent chat request, calls the
selected hosted LLM provider and streams the answer back as start, content,
end and error events over Server-Sent Events or NDJSON.

Supported providers: openai, anthropic, google, cohere, xai, deepseek,
mistral and perplexity. Credentials are read from each provider's
environment variable (for example OPENAI_API_KEY) or from the config file.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(opts.envFile)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file path (defaults are used when empty)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the config; ignored when missing")

	cmd.AddCommand(
		newServeCmd(opts),
		newProvidersCmd(opts),
		newEvidenceCmd(opts),
		newVersionCmd(),
		newCompletionCmd(),
	)
	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// loadEnvFile loads path into the process environment. Variables that are
// already set keep their values.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return cli.NewConfigError(path, err)
	}
	return nil
}

// loadConfig reads the configuration with environment overrides applied.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, cli.NewConfigError(path, err)
	}
	return cfg, nil
}
