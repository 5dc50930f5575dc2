package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"mercator-hq/playground/pkg/cli"
	"mercator-hq/playground/pkg/config"
	"mercator-hq/playground/pkg/server"
	"mercator-hq/playground/pkg/telemetry/logging"
)

type serveOptions struct {
	listenAddress string
	logLevel      string
	watch         bool
	dryRun        bool
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the relay server",
		Long: `Start the relay server with the specified configuration.

The server exposes POST /api/chat, GET /api/chat/providers and
GET /api/health, plus the Prometheus metrics endpoint when enabled.

Examples:
  # Start with defaults on :3001
  playground serve

  # Start with custom config and reload the log level on change
  playground serve --config /etc/playground/config.yaml --watch

  # Override listen address
  playground serve --listen 0.0.0.0:8080

  # Validate config without starting server
  playground serve --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.listenAddress, "listen", "l", "", "override listen address")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload the log level when the config file changes")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "validate config without starting server")
	return cmd
}

func runServe(cmd *cobra.Command, root *rootOptions, opts *serveOptions) error {
	cfg, err := loadConfig(root.configFile)
	if err != nil {
		return err
	}

	if opts.listenAddress != "" {
		cfg.Server.ListenAddress = opts.listenAddress
	}
	if opts.logLevel != "" {
		cfg.Telemetry.Logging.Level = opts.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError(root.configFile, err)
	}

	out := cmd.OutOrStdout()
	if opts.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	logger, err := logging.New(cfg.LoggerConfig())
	if err != nil {
		return cli.NewConfigError(root.configFile, err)
	}
	defer logger.Close()
	slog.SetDefault(logger.Logger)

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	if opts.watch {
		stopWatch := watchConfig(ctx, root.configFile, logger)
		defer stopWatch()
	}

	srv, err := server.New(cfg, server.WithLogger(logger.Logger))
	if err != nil {
		return cli.NewCommandError("serve", err)
	}

	printBanner(cmd, root, cfg)

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

// watchConfig applies log level changes from path until ctx is done. It
// returns a function that stops the watcher.
func watchConfig(ctx context.Context, path string, logger *logging.Logger) func() {
	if path == "" {
		logger.Warn("--watch needs --config; configuration will not be reloaded")
		return func() {}
	}

	watcher, err := config.NewWatcher(path, 0, logger.Logger)
	if err != nil {
		logger.Warn("configuration will not be reloaded", "error", err)
		return func() {}
	}

	go func() {
		if err := watcher.Watch(ctx, config.ApplyLogLevel(logger)); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("config watcher stopped", "error", err)
		}
	}()

	return func() {
		if err := watcher.Stop(); err != nil {
			logger.Debug("config watcher stop", "error", err)
		}
	}
}

func printBanner(cmd *cobra.Command, root *rootOptions, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Playground relay v%s\n", Version)
	if root.configFile != "" {
		fmt.Fprintf(out, "Loading configuration from: %s\n", root.configFile)
	}
	fmt.Fprintln(out, "✓ Configuration loaded")
	fmt.Fprintf(out, "✓ Listening on %s\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(out, "✓ Metrics endpoint: %s\n", cfg.Telemetry.Metrics.Path)
	}
	if cfg.Evidence.Enabled {
		fmt.Fprintf(out, "✓ Evidence store: %s\n", cfg.Evidence.Backend)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")
}
