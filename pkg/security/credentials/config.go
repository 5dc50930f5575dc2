package credentials

import (
	"fmt"
	"log/slog"

	"mercator-hq/playground/pkg/config"
)

// FromConfig builds the source chain for cfg: the environment first, then
// the secret directory when one is configured.
func FromConfig(cfg config.CredentialsConfig, logger *slog.Logger) (Chain, error) {
	chain := Chain{NewEnvSource()}
	if cfg.Dir == "" {
		return chain, nil
	}

	files, err := NewFileSource(cfg.Dir, cfg.Watch, logger)
	if err != nil {
		return nil, fmt.Errorf("credentials directory: %w", err)
	}
	return append(chain, files), nil
}
