package config

import (
	"strings"
	"time"

	"mercator-hq/playground/pkg/providers"
	"mercator-hq/playground/pkg/telemetry/logging"
)

// Config is the root configuration structure for the playground relay.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and the CORS allow-list.
	Server ServerConfig `yaml:"server"`

	// Providers contains per-provider adapter settings.
	// Keys are provider identifiers (e.g., "openai", "anthropic").
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Credentials configures where provider API keys are read from besides
	// the environment.
	Credentials CredentialsConfig `yaml:"credentials"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Evidence contains configuration for per-relay evidence records.
	Evidence EvidenceConfig `yaml:"evidence"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: ":3001"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight relays
	// during graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout is the wall-clock limit of one relay. Zero disables it.
	// Default: 2m
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`

	// TLS enables HTTPS on the listener.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains the server certificate settings.
type TLSConfig struct {
	// Enabled serves HTTPS instead of plain HTTP.
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the PEM-encoded certificate chain.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded private key.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the lowest accepted protocol version, "1.2" or "1.3".
	// Default: "1.2"
	MinVersion string `yaml:"min_version"`

	// ReloadInterval is how often the certificate files are checked for
	// changes. Zero disables reloading.
	// Default: 5m
	ReloadInterval time.Duration `yaml:"reload_interval"`
}

// CORSConfig contains the CORS allow-list.
type CORSConfig struct {
	// AllowedOrigins is the list of origins allowed to call the API with
	// credentials.
	// Default: ["http://localhost:3000", "http://localhost:5173", "http://127.0.0.1:5173"]
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ProviderConfig contains configuration for a single provider adapter.
type ProviderConfig struct {
	// BaseURL overrides the provider's public API root.
	BaseURL string `yaml:"base_url"`

	// APIKey is the credential. When empty, the key is read from APIKeyEnv
	// the first time the adapter is used.
	APIKey string `yaml:"api_key"`

	// APIKeyEnv names the environment variable holding the credential.
	// Default: "<ID>_API_KEY"
	APIKeyEnv string `yaml:"api_key_env"`

	// Timeout bounds connection setup and the wait for response headers.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns is the connection pool size.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`
}

// CredentialsConfig configures secret-file credentials.
type CredentialsConfig struct {
	// Dir is a directory holding one file per credential, named like the
	// variable (OPENAI_API_KEY) or in lower case. Environment variables take
	// precedence. Empty disables file credentials.
	Dir string `yaml:"dir"`

	// Watch drops cached file values when files in Dir change.
	Watch bool `yaml:"watch"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit. It is reloaded live when the
	// configuration file changes.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	AddSource bool `yaml:"add_source"`

	// Redact masks credentials in log output.
	// Default: true
	Redact bool `yaml:"redact"`

	// File enables a rotating log file next to stdout.
	File LogFileConfig `yaml:"file"`
}

// LogFileConfig configures the rotating log file.
type LogFileConfig struct {
	// Path is the log file. Empty disables file output.
	Path string `yaml:"path"`

	// Default: 100
	MaxSizeMB int `yaml:"max_size_mb"`

	// Default: 3
	MaxBackups int `yaml:"max_backups"`

	// Default: 28
	MaxAgeDays int `yaml:"max_age_days"`

	Compress bool `yaml:"compress"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "playground"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "relay"
	Subsystem string `yaml:"subsystem"`
}

// EvidenceConfig contains configuration for evidence recording.
type EvidenceConfig struct {
	// Enabled controls whether a record is written per relay.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend specifies the record store.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// AsyncBuffer is the size of the recorder's write channel.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// RetentionDays is how long records are kept. 0 keeps them forever.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for the retention pruner.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords caps the number of stored records; the oldest are pruned
	// first. 0 means unlimited.
	MaxRecords int64 `yaml:"max_records"`

	// ArchivePath, when set, is a directory where pruned records are
	// written as JSON before deletion.
	ArchivePath string `yaml:"archive_path"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/evidence.db"
	Path string `yaml:"path"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`
}

// ProviderSettings converts the providers section into adapter
// configurations keyed by provider. Entries with unknown identifiers are
// skipped; Validate reports them.
func (c *Config) ProviderSettings() map[providers.ProviderID]providers.AdapterConfig {
	settings := make(map[providers.ProviderID]providers.AdapterConfig, len(c.Providers))
	for name, p := range c.Providers {
		id, err := providers.ParseProviderID(name)
		if err != nil {
			continue
		}
		settings[id] = providers.AdapterConfig{
			ID:            id,
			BaseURL:       strings.TrimSuffix(p.BaseURL, "/"),
			APIKey:        p.APIKey,
			CredentialEnv: p.APIKeyEnv,
			Timeout:       p.Timeout,
			MaxIdleConns:  p.MaxIdleConns,
		}
	}
	return settings
}

// LoggerConfig converts the logging section into a logging.Config.
func (c *Config) LoggerConfig() logging.Config {
	l := c.Telemetry.Logging
	return logging.Config{
		Level:     l.Level,
		Format:    l.Format,
		AddSource: l.AddSource,
		Redact:    l.Redact,
		File: logging.FileConfig{
			Path:       l.File.Path,
			MaxSizeMB:  l.File.MaxSizeMB,
			MaxBackups: l.File.MaxBackups,
			MaxAgeDays: l.File.MaxAgeDays,
			Compress:   l.File.Compress,
		},
	}
}
