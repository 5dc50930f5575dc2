package config

import (
	"testing"
	"time"

	"mercator-hq/playground/pkg/providers"
)

func TestProviderSettings(t *testing.T) {
	cfg := &Config{Providers: map[string]ProviderConfig{
		"openai": {
			BaseURL:      "https://proxy.internal/v1/",
			APIKey:       "sk-test",
			Timeout:      10 * time.Second,
			MaxIdleConns: 4,
		},
		"anthropic": {APIKeyEnv: "CLAUDE_KEY"},
		"meta":      {APIKey: "ignored"},
	}}

	settings := cfg.ProviderSettings()

	if len(settings) != 2 {
		t.Fatalf("expected 2 settings, got %d", len(settings))
	}

	openai := settings[providers.OpenAI]
	if openai.ID != providers.OpenAI {
		t.Errorf("ID = %q, want openai", openai.ID)
	}
	if openai.BaseURL != "https://proxy.internal/v1" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", openai.BaseURL)
	}
	if openai.APIKey != "sk-test" || openai.Timeout != 10*time.Second || openai.MaxIdleConns != 4 {
		t.Errorf("unexpected openai settings: %+v", openai)
	}

	if got := settings[providers.Anthropic].CredentialEnv; got != "CLAUDE_KEY" {
		t.Errorf("CredentialEnv = %q, want CLAUDE_KEY", got)
	}
}

func TestLoggerConfig(t *testing.T) {
	cfg := Default()
	cfg.Telemetry.Logging.Level = "debug"
	cfg.Telemetry.Logging.File.Path = "/var/log/playground.log"

	lc := cfg.LoggerConfig()

	if lc.Level != "debug" || lc.Format != DefaultLogFormat {
		t.Errorf("unexpected level/format: %q/%q", lc.Level, lc.Format)
	}
	if !lc.Redact {
		t.Error("expected redaction carried over")
	}
	if lc.File.Path != "/var/log/playground.log" || lc.File.MaxSizeMB != DefaultLogFileMaxSizeMB {
		t.Errorf("unexpected file config: %+v", lc.File)
	}
}
