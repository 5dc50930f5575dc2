package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = ":3001"
	DefaultReadTimeout     = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 2 * time.Minute

	// TLS defaults
	DefaultTLSMinVersion     = "1.2"
	DefaultTLSReloadInterval = 5 * time.Minute

	// Provider defaults
	DefaultProviderTimeout      = 60 * time.Second
	DefaultProviderMaxIdleConns = 100

	// Logging defaults
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "json"
	DefaultLogRedact         = true
	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	// Metrics defaults
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "playground"
	DefaultMetricsSubsystem = "relay"

	// Evidence defaults
	DefaultEvidenceEnabled           = false
	DefaultEvidenceBackend           = "sqlite"
	DefaultEvidenceSQLitePath        = "data/evidence.db"
	DefaultEvidenceSQLiteBusyTimeout = 5 * time.Second
	DefaultEvidenceSQLiteWALMode     = true
	DefaultEvidenceAsyncBuffer       = 1000
	DefaultEvidenceRetentionDays     = 30
	DefaultEvidencePruneSchedule     = "0 3 * * *"
)

// DefaultAllowedOrigins are the development front-end origins.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// Default returns a configuration with every default applied, including the
// defaults that ApplyDefaults cannot tell apart from an explicit zero
// (booleans and retention_days). Files are decoded on top of it.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			TLS: TLSConfig{ReloadInterval: DefaultTLSReloadInterval},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{Redact: DefaultLogRedact},
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
		},
		Evidence: EvidenceConfig{
			Enabled:       DefaultEvidenceEnabled,
			RetentionDays: DefaultEvidenceRetentionDays,
			SQLite:        SQLiteConfig{WALMode: DefaultEvidenceSQLiteWALMode},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if len(cfg.Server.CORS.AllowedOrigins) == 0 {
		cfg.Server.CORS.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}
	if cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = DefaultTLSMinVersion
	}

	// Provider defaults - applied to each provider
	for name, provider := range cfg.Providers {
		if provider.Timeout == 0 {
			provider.Timeout = DefaultProviderTimeout
		}
		if provider.MaxIdleConns == 0 {
			provider.MaxIdleConns = DefaultProviderMaxIdleConns
		}
		cfg.Providers[name] = provider
	}

	// Logging defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Logging.File.MaxSizeMB == 0 {
		cfg.Telemetry.Logging.File.MaxSizeMB = DefaultLogFileMaxSizeMB
	}
	if cfg.Telemetry.Logging.File.MaxBackups == 0 {
		cfg.Telemetry.Logging.File.MaxBackups = DefaultLogFileMaxBackups
	}
	if cfg.Telemetry.Logging.File.MaxAgeDays == 0 {
		cfg.Telemetry.Logging.File.MaxAgeDays = DefaultLogFileMaxAgeDays
	}

	// Metrics defaults
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}

	// Evidence defaults
	if cfg.Evidence.Backend == "" {
		cfg.Evidence.Backend = DefaultEvidenceBackend
	}
	if cfg.Evidence.SQLite.Path == "" {
		cfg.Evidence.SQLite.Path = DefaultEvidenceSQLitePath
	}
	if cfg.Evidence.SQLite.BusyTimeout == 0 {
		cfg.Evidence.SQLite.BusyTimeout = DefaultEvidenceSQLiteBusyTimeout
	}
	if cfg.Evidence.AsyncBuffer == 0 {
		cfg.Evidence.AsyncBuffer = DefaultEvidenceAsyncBuffer
	}
	if cfg.Evidence.PruneSchedule == "" {
		cfg.Evidence.PruneSchedule = DefaultEvidencePruneSchedule
	}
}
