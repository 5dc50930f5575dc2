package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/playground/pkg/config"
	"mercator-hq/playground/pkg/evidence"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// backends returns a fresh instance of every backend.
func backends(t *testing.T) map[string]evidence.Storage {
	t.Helper()

	sqlite, err := NewSQLiteStorage(&SQLiteConfig{
		Path:        filepath.Join(t.TempDir(), "evidence.db"),
		WALMode:     true,
		BusyTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewSQLiteStorage() failed: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]evidence.Storage{
		"sqlite": sqlite,
		"memory": NewMemoryStorage(),
	}
}

func testRecord(i int, provider, outcome string) *evidence.Record {
	r := &evidence.Record{
		ID:                 fmt.Sprintf("rec-%02d", i),
		RequestID:          fmt.Sprintf("req-%02d", i),
		Provider:           provider,
		Model:              "model-" + provider,
		MessageCount:       2,
		Outcome:            outcome,
		ContentEvents:      i,
		ContentBytes:       i * 10,
		StartedAt:          baseTime.Add(time.Duration(i) * time.Minute),
		TimeToFirstContent: time.Duration(100*i) * time.Millisecond,
		Duration:           time.Duration(10-i) * time.Second,
		RecordedAt:         baseTime.Add(time.Duration(i)*time.Minute + time.Second),
	}
	if outcome == "error" {
		r.ErrorKind = "transport"
		r.ErrorMessage = "connection reset"
	}
	return r
}

func seed(t *testing.T, store evidence.Storage) {
	t.Helper()
	records := []*evidence.Record{
		testRecord(1, "openai", "end"),
		testRecord(2, "anthropic", "end"),
		testRecord(3, "openai", "error"),
		testRecord(4, "google", "canceled"),
		testRecord(5, "openai", "end"),
	}
	for _, r := range records {
		if err := store.Store(context.Background(), r); err != nil {
			t.Fatalf("Store(%s) failed: %v", r.ID, err)
		}
	}
}

func ids(records []*evidence.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestStorage_StoreAndQueryRoundTrip(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := testRecord(3, "openai", "error")
			if err := store.Store(ctx, want); err != nil {
				t.Fatalf("Store() failed: %v", err)
			}

			got, err := store.Query(ctx, &evidence.Query{RequestID: want.RequestID})
			if err != nil {
				t.Fatalf("Query() failed: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("got %d records, want 1", len(got))
			}

			r := got[0]
			if r.ID != want.ID || r.Provider != want.Provider || r.Model != want.Model ||
				r.MessageCount != want.MessageCount || r.Outcome != want.Outcome ||
				r.ErrorKind != want.ErrorKind || r.ErrorMessage != want.ErrorMessage ||
				r.ContentEvents != want.ContentEvents || r.ContentBytes != want.ContentBytes {
				t.Errorf("record mismatch:\n got %+v\nwant %+v", r, want)
			}
			if !r.StartedAt.Equal(want.StartedAt) || !r.RecordedAt.Equal(want.RecordedAt) {
				t.Errorf("timestamps = %v/%v, want %v/%v", r.StartedAt, r.RecordedAt, want.StartedAt, want.RecordedAt)
			}
			if r.Duration != want.Duration || r.TimeToFirstContent != want.TimeToFirstContent {
				t.Errorf("durations = %v/%v, want %v/%v", r.Duration, r.TimeToFirstContent, want.Duration, want.TimeToFirstContent)
			}
		})
	}
}

func TestStorage_Query(t *testing.T) {
	start := baseTime.Add(2 * time.Minute)
	end := baseTime.Add(4 * time.Minute)

	tests := []struct {
		name  string
		query evidence.Query
		want  []string
	}{
		{
			name:  "all newest first",
			query: evidence.Query{},
			want:  []string{"rec-05", "rec-04", "rec-03", "rec-02", "rec-01"},
		},
		{
			name:  "by provider",
			query: evidence.Query{Provider: "openai"},
			want:  []string{"rec-05", "rec-03", "rec-01"},
		},
		{
			name:  "by outcome",
			query: evidence.Query{Outcome: "end"},
			want:  []string{"rec-05", "rec-02", "rec-01"},
		},
		{
			name:  "provider and outcome",
			query: evidence.Query{Provider: "openai", Outcome: "error"},
			want:  []string{"rec-03"},
		},
		{
			name:  "by model",
			query: evidence.Query{Model: "model-google"},
			want:  []string{"rec-04"},
		},
		{
			name:  "time range end exclusive",
			query: evidence.Query{StartTime: &start, EndTime: &end},
			want:  []string{"rec-03", "rec-02"},
		},
		{
			name:  "ascending",
			query: evidence.Query{SortOrder: "asc", Limit: 2},
			want:  []string{"rec-01", "rec-02"},
		},
		{
			name:  "offset and limit",
			query: evidence.Query{Offset: 1, Limit: 2},
			want:  []string{"rec-04", "rec-03"},
		},
		{
			name:  "offset without limit",
			query: evidence.Query{Offset: 3},
			want:  []string{"rec-02", "rec-01"},
		},
		{
			name:  "offset past end",
			query: evidence.Query{Offset: 10},
			want:  []string{},
		},
		{
			name:  "sort by duration",
			query: evidence.Query{SortBy: "duration", SortOrder: "desc"},
			want:  []string{"rec-01", "rec-02", "rec-03", "rec-04", "rec-05"},
		},
		{
			name:  "sort by first content",
			query: evidence.Query{SortBy: "time_to_first_content", SortOrder: "asc", Limit: 1},
			want:  []string{"rec-01"},
		},
	}

	for name, store := range backends(t) {
		seed(t, store)
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				q := tt.query
				got, err := store.Query(context.Background(), &q)
				if err != nil {
					t.Fatalf("Query() failed: %v", err)
				}
				gotIDs := ids(got)
				if fmt.Sprint(gotIDs) != fmt.Sprint(tt.want) {
					t.Errorf("Query() = %v, want %v", gotIDs, tt.want)
				}
			})
		}
	}
}

func TestStorage_QueryRejectsInvalid(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Query(context.Background(), &evidence.Query{SortBy: "error_message; DROP TABLE relay_evidence"})
			var qe *evidence.QueryError
			if !errors.As(err, &qe) {
				t.Fatalf("expected *evidence.QueryError, got %v", err)
			}
		})
	}
}

func TestStorage_CountAndDelete(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, store)

			count, err := store.Count(ctx, &evidence.Query{Provider: "openai", Limit: 1})
			if err != nil {
				t.Fatalf("Count() failed: %v", err)
			}
			if count != 3 {
				t.Errorf("Count(openai) = %d, want 3 (pagination ignored)", count)
			}

			cutoff := baseTime.Add(3 * time.Minute)
			deleted, err := store.Delete(ctx, &evidence.Query{EndTime: &cutoff})
			if err != nil {
				t.Fatalf("Delete() failed: %v", err)
			}
			if deleted != 2 {
				t.Errorf("Delete() = %d, want 2", deleted)
			}

			count, err = store.Count(ctx, &evidence.Query{})
			if err != nil {
				t.Fatalf("Count() failed: %v", err)
			}
			if count != 3 {
				t.Errorf("Count() after delete = %d, want 3", count)
			}
		})
	}
}

func TestStorage_Ping(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Ping(context.Background()); err != nil {
				t.Errorf("Ping() failed: %v", err)
			}
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EvidenceConfig
		want    string
		wantErr bool
	}{
		{
			name: "memory",
			cfg:  config.EvidenceConfig{Backend: BackendMemory},
			want: "*storage.MemoryStorage",
		},
		{
			name: "sqlite",
			cfg: config.EvidenceConfig{
				Backend: BackendSQLite,
				SQLite:  config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "nested", "e.db"), WALMode: true},
			},
			want: "*storage.SQLiteStorage",
		},
		{
			name:    "unknown",
			cfg:     config.EvidenceConfig{Backend: "postgres"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := New(tt.cfg)
			if tt.wantErr {
				var se *evidence.StorageError
				if !errors.As(err, &se) {
					t.Fatalf("expected *evidence.StorageError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}
			defer store.Close()
			if got := fmt.Sprintf("%T", store); got != tt.want {
				t.Errorf("New() = %s, want %s", got, tt.want)
			}
		})
	}
}
