// Package config provides configuration management for the playground relay.
//
// This package handles loading, validating, and watching configuration from
// an optional YAML file with environment variable overrides.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfigWithEnvOverrides("playground.yaml")
//
// An empty path skips the file and yields the defaults.
//
// # Environment Variable Overrides
//
//   - PLAYGROUND_LISTEN_ADDRESS overrides server.listen_address
//   - PLAYGROUND_LOG_LEVEL and PLAYGROUND_LOG_FORMAT override telemetry.logging
//   - PLAYGROUND_PROVIDERS_<ID>_BASE_URL and PLAYGROUND_PROVIDERS_<ID>_API_KEY
//     override providers.<id>
//   - PORT replaces the port of the listen address
//   - FRONTEND_URL replaces the first CORS origin
//
// Provider credentials are not read here. When providers.<id>.api_key is
// empty, the adapter registry reads the variable named by api_key_env
// (default <ID>_API_KEY) the first time the provider is used.
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	server:
//	  listen_address: ":3001"
//	  request_timeout: "2m"
//
//	providers:
//	  openai:
//	    api_key_env: "OPENAI_API_KEY"
//	  mistral:
//	    base_url: "https://api.mistral.ai/v1"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
//	evidence:
//	  enabled: true
//	  backend: "sqlite"
//	  retention_days: 30
//
// # Live Reload
//
// Watcher reloads the file after it changes. Only the log level is applied
// to a running server (see ApplyLogLevel).
package config
