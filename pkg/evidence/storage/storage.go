package storage

import (
	"fmt"

	"mercator-hq/playground/pkg/config"
	"mercator-hq/playground/pkg/evidence"
)

// Backend names accepted in the evidence configuration.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// New opens the backend named by cfg.Backend.
func New(cfg config.EvidenceConfig) (evidence.Storage, error) {
	switch cfg.Backend {
	case BackendSQLite, "":
		return NewSQLiteStorage(&SQLiteConfig{
			Path:        cfg.SQLite.Path,
			WALMode:     cfg.SQLite.WALMode,
			BusyTimeout: cfg.SQLite.BusyTimeout,
		})
	case BackendMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, evidence.NewStorageError(cfg.Backend, "open",
			fmt.Errorf("unknown evidence backend %q", cfg.Backend))
	}
}
