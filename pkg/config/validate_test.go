package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default configuration is invalid: %v", err)
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{
			name:   "empty listen address",
			modify: func(c *Config) { c.Server.ListenAddress = "" },
			field:  "server.listen_address",
		},
		{
			name:   "negative request timeout",
			modify: func(c *Config) { c.Server.RequestTimeout = -time.Second },
			field:  "server.request_timeout",
		},
		{
			name:   "origin without scheme",
			modify: func(c *Config) { c.Server.CORS.AllowedOrigins = []string{"localhost:3000"} },
			field:  "server.cors.allowed_origins[0]",
		},
		{
			name: "tls without certificate",
			modify: func(c *Config) {
				c.Server.TLS.Enabled = true
				c.Server.TLS.KeyFile = "server.key"
			},
			field: "server.tls.cert_file",
		},
		{
			name: "tls version",
			modify: func(c *Config) {
				c.Server.TLS = TLSConfig{Enabled: true, CertFile: "a", KeyFile: "b", MinVersion: "1.1"}
			},
			field: "server.tls.min_version",
		},
		{
			name:   "credentials watch without dir",
			modify: func(c *Config) { c.Credentials.Watch = true },
			field:  "credentials.watch",
		},
		{
			name:   "unknown provider",
			modify: func(c *Config) { c.Providers = map[string]ProviderConfig{"meta": {}} },
			field:  "providers.meta",
		},
		{
			name: "bad base url",
			modify: func(c *Config) {
				c.Providers = map[string]ProviderConfig{"openai": {BaseURL: "ftp://api.openai.com"}}
			},
			field: "providers.openai.base_url",
		},
		{
			name: "negative provider timeout",
			modify: func(c *Config) {
				c.Providers = map[string]ProviderConfig{"cohere": {Timeout: -time.Second}}
			},
			field: "providers.cohere.timeout",
		},
		{
			name:   "unknown log level",
			modify: func(c *Config) { c.Telemetry.Logging.Level = "trace" },
			field:  "telemetry.logging.level",
		},
		{
			name:   "unknown log format",
			modify: func(c *Config) { c.Telemetry.Logging.Format = "console" },
			field:  "telemetry.logging.format",
		},
		{
			name:   "relative metrics path",
			modify: func(c *Config) { c.Telemetry.Metrics.Path = "metrics" },
			field:  "telemetry.metrics.path",
		},
		{
			name: "unknown evidence backend",
			modify: func(c *Config) {
				c.Evidence.Enabled = true
				c.Evidence.Backend = "postgres"
			},
			field: "evidence.backend",
		},
		{
			name: "bad cron expression",
			modify: func(c *Config) {
				c.Evidence.Enabled = true
				c.Evidence.PruneSchedule = "every night"
			},
			field: "evidence.prune_schedule",
		},
		{
			name: "negative retention",
			modify: func(c *Config) {
				c.Evidence.Enabled = true
				c.Evidence.RetentionDays = -1
			},
			field: "evidence.retention_days",
		},
		{
			name: "negative max records",
			modify: func(c *Config) {
				c.Evidence.Enabled = true
				c.Evidence.MaxRecords = -10
			},
			field: "evidence.max_records",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}

			var validationErr ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			found := false
			for _, fe := range validationErr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error for field %q, got %v", tt.field, validationErr.Errors)
			}
		})
	}
}

func TestValidate_DisabledEvidenceSkipsChecks(t *testing.T) {
	cfg := Default()
	cfg.Evidence.Enabled = false
	cfg.Evidence.Backend = "postgres"
	cfg.Evidence.PruneSchedule = "nonsense"

	if err := Validate(cfg); err != nil {
		t.Errorf("expected disabled evidence to be ignored, got %v", err)
	}
}

func TestValidationError_Format(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if got := single.Error(); got != "configuration validation failed: a: bad" {
		t.Errorf("single error = %q", got)
	}

	multi := ValidationError{Errors: []FieldError{
		{Field: "a", Message: "bad"},
		{Field: "b", Message: "worse"},
	}}
	got := multi.Error()
	if !strings.HasPrefix(got, "configuration validation failed with 2 errors:") {
		t.Errorf("multi error header = %q", got)
	}
	if !strings.Contains(got, "  - b: worse") {
		t.Errorf("multi error missing entry: %q", got)
	}
}
