package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"mercator-hq/playground/pkg/cli"
	"mercator-hq/playground/pkg/providerfactory"
	"mercator-hq/playground/pkg/providers"
	"mercator-hq/playground/pkg/security/credentials"
)

// providerStatus is one row of the providers listing.
type providerStatus struct {
	Provider   string `json:"provider"`
	Configured bool   `json:"configured"`
	Credential string `json:"credential_env"`
	BaseURL    string `json:"base_url"`
}

func newProvidersCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List supported providers and their credential status",
		Long: `List the supported providers in display order and report whether a
credential is available for each one, from the environment or the
configured credentials directory. No provider is contacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := cli.NewFormatter(cli.OutputFormat(format))
			if err != nil {
				return err
			}

			cfg, err := loadConfig(root.configFile)
			if err != nil {
				return err
			}

			chain, err := credentials.FromConfig(cfg.Credentials, slog.Default())
			if err != nil {
				return cli.NewConfigError(root.configFile, err)
			}
			defer chain.Close()

			settings := cfg.ProviderSettings()
			registry := providerfactory.NewRegistry(settings, providerfactory.WithLookupEnv(chain.Lookup))
			defer registry.Close()

			statuses := make([]providerStatus, 0, len(registry.Providers()))
			for _, id := range registry.Providers() {
				resolved := defaultsFor(settings, id)
				statuses = append(statuses, providerStatus{
					Provider:   string(id),
					Configured: registry.Configured(id),
					Credential: resolved.CredentialEnv,
					BaseURL:    resolved.BaseURL,
				})
			}

			if cli.OutputFormat(format) == cli.FormatJSON {
				return formatter.FormatTo(cmd.OutOrStdout(), statuses)
			}
			return formatter.FormatTo(cmd.OutOrStdout(), providersTable(statuses))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json")
	return cmd
}

func providersTable(statuses []providerStatus) cli.Table {
	table := cli.Table{Headers: []string{"PROVIDER", "CONFIGURED", "CREDENTIAL", "BASE URL"}}
	for _, s := range statuses {
		configured := "no"
		if s.Configured {
			configured = "yes"
		}
		table.Append(s.Provider, configured, s.Credential, s.BaseURL)
	}
	return table
}

// defaultsFor returns the settings for id with provider defaults filled in.
func defaultsFor(settings map[providers.ProviderID]providers.AdapterConfig, id providers.ProviderID) providers.AdapterConfig {
	c := settings[id]
	c.ID = id
	return c.WithDefaults()
}
