package retention

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/playground/pkg/config"
	"mercator-hq/playground/pkg/evidence"
	"mercator-hq/playground/pkg/evidence/storage"
)

var now = time.Date(2026, 6, 30, 3, 0, 0, 0, time.UTC)

// storeAged stores one record per age, in days before now.
func storeAged(t *testing.T, store evidence.Storage, ages ...int) {
	t.Helper()
	for i, age := range ages {
		record := &evidence.Record{
			ID:         fmt.Sprintf("rec-%02d", i),
			RequestID:  fmt.Sprintf("req-%02d", i),
			Provider:   "openai",
			Model:      "gpt-4o-mini",
			Outcome:    "end",
			StartedAt:  now.AddDate(0, 0, -age),
			RecordedAt: now.AddDate(0, 0, -age),
		}
		if err := store.Store(context.Background(), record); err != nil {
			t.Fatalf("failed to store record: %v", err)
		}
	}
}

func newTestPruner(store evidence.Storage, cfg *Config) *Pruner {
	p := NewPruner(store, cfg)
	p.now = func() time.Time { return now }
	return p
}

func TestPruner_Prune(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		ages        []int
		wantDeleted int64
		wantLeft    []string
	}{
		{
			name:        "age based",
			config:      Config{RetentionDays: 30},
			ages:        []int{1, 29, 31, 100},
			wantDeleted: 2,
			wantLeft:    []string{"rec-00", "rec-01"},
		},
		{
			name:        "retention disabled",
			config:      Config{RetentionDays: 0},
			ages:        []int{1, 400},
			wantDeleted: 0,
			wantLeft:    []string{"rec-00", "rec-01"},
		},
		{
			name:        "nothing old enough",
			config:      Config{RetentionDays: 90},
			ages:        []int{1, 2, 3},
			wantDeleted: 0,
			wantLeft:    []string{"rec-00", "rec-01", "rec-02"},
		},
		{
			name:        "count based keeps newest",
			config:      Config{MaxRecords: 2},
			ages:        []int{5, 1, 9, 3},
			wantDeleted: 2,
			wantLeft:    []string{"rec-01", "rec-03"},
		},
		{
			name:        "count within limit",
			config:      Config{MaxRecords: 10},
			ages:        []int{5, 1},
			wantDeleted: 0,
			wantLeft:    []string{"rec-00", "rec-01"},
		},
		{
			name:        "age then count",
			config:      Config{RetentionDays: 30, MaxRecords: 1},
			ages:        []int{2, 40, 10},
			wantDeleted: 2,
			wantLeft:    []string{"rec-00"},
		},
		{
			name:        "empty storage",
			config:      Config{RetentionDays: 30, MaxRecords: 5},
			wantDeleted: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStorage()
			storeAged(t, store, tt.ages...)
			cfg := tt.config

			deleted, err := newTestPruner(store, &cfg).Prune(context.Background())
			if err != nil {
				t.Fatalf("Prune() failed: %v", err)
			}
			if deleted != tt.wantDeleted {
				t.Errorf("Prune() deleted %d, want %d", deleted, tt.wantDeleted)
			}

			if store.Size() != len(tt.wantLeft) {
				t.Fatalf("%d records left, want %d", store.Size(), len(tt.wantLeft))
			}
			for _, id := range tt.wantLeft {
				if store.GetByID(id) == nil {
					t.Errorf("record %s was pruned", id)
				}
			}
		})
	}
}

func TestPruner_Archive(t *testing.T) {
	archiveDir := filepath.Join(t.TempDir(), "archives", "evidence")
	store := storage.NewMemoryStorage()
	storeAged(t, store, 1, 45, 60)

	p := newTestPruner(store, &Config{RetentionDays: 30, ArchivePath: archiveDir})
	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("Prune() deleted %d, want 2", deleted)
	}

	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		t.Fatalf("archive directory not created: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d archive files, want 1", len(entries))
	}

	data, err := os.ReadFile(filepath.Join(archiveDir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	var archived []evidence.Record
	if err := json.Unmarshal(data, &archived); err != nil {
		t.Fatalf("archive is not a JSON array: %v", err)
	}
	if len(archived) != 2 || archived[0].ID != "rec-02" || archived[1].ID != "rec-01" {
		t.Errorf("unexpected archive contents: %+v", archived)
	}
}

func TestPruner_NoArchiveWhenNothingPruned(t *testing.T) {
	archiveDir := filepath.Join(t.TempDir(), "archives")
	store := storage.NewMemoryStorage()
	storeAged(t, store, 1)

	if _, err := newTestPruner(store, &Config{RetentionDays: 30, ArchivePath: archiveDir}).Prune(context.Background()); err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if _, err := os.Stat(archiveDir); !os.IsNotExist(err) {
		t.Errorf("archive directory should not exist, stat err = %v", err)
	}
}

func TestPruner_SQLite(t *testing.T) {
	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
		Path:    filepath.Join(t.TempDir(), "evidence.db"),
		WALMode: true,
	})
	if err != nil {
		t.Fatalf("NewSQLiteStorage() failed: %v", err)
	}
	defer store.Close()

	storeAged(t, store, 1, 10, 40, 50)

	deleted, err := newTestPruner(store, &Config{RetentionDays: 30, MaxRecords: 1}).Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Prune() deleted %d, want 3", deleted)
	}

	left, err := store.Query(context.Background(), &evidence.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 1 || left[0].ID != "rec-00" {
		t.Errorf("unexpected records left: %+v", left)
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.EvidenceConfig{
		RetentionDays: 7,
		PruneSchedule: "@daily",
		MaxRecords:    500,
		ArchivePath:   "data/archive",
	})
	if cfg.RetentionDays != 7 || cfg.PruneSchedule != "@daily" || cfg.MaxRecords != 500 || cfg.ArchivePath != "data/archive" {
		t.Errorf("unexpected config: %+v", cfg)
	}

	def := DefaultConfig()
	if def.RetentionDays != config.DefaultEvidenceRetentionDays || def.PruneSchedule != config.DefaultEvidencePruneSchedule {
		t.Errorf("unexpected defaults: %+v", def)
	}
}

// failingStorage fails every delete.
type failingStorage struct {
	evidence.Storage
}

func (failingStorage) Delete(context.Context, *evidence.Query) (int64, error) {
	return 0, errors.New("disk I/O error")
}

func TestPruner_PruneError(t *testing.T) {
	store := storage.NewMemoryStorage()
	storeAged(t, store, 100)

	_, err := newTestPruner(failingStorage{store}, &Config{RetentionDays: 30}).Prune(context.Background())

	var pe *evidence.PruneError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PruneError, got %v", err)
	}
	if pe.Step != evidence.PruneByAge {
		t.Errorf("step = %q, want %q", pe.Step, evidence.PruneByAge)
	}
}
