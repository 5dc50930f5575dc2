package storage

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"mercator-hq/playground/pkg/evidence"
	"mercator-hq/playground/pkg/evidence/query"
)

// MemoryStorage implements evidence.Storage using an in-memory map.
// Records do not survive a restart, which suits tests and local runs.
type MemoryStorage struct {
	records map[string]*evidence.Record
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*evidence.Record),
	}
}

// Store persists an evidence record to memory.
func (s *MemoryStorage) Store(ctx context.Context, record *evidence.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Create a copy to avoid mutation
	recordCopy := *record
	s.records[record.ID] = &recordCopy

	return nil
}

// Query retrieves evidence records matching the query filters.
func (s *MemoryStorage) Query(ctx context.Context, q *evidence.Query) ([]*evidence.Record, error) {
	if err := query.Validate(q); err != nil {
		return nil, err
	}
	query.ApplyDefaults(q)

	s.mu.RLock()
	results := []*evidence.Record{}
	for _, record := range s.records {
		if matchesQuery(record, q) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}
	s.mu.RUnlock()

	sortRecords(results, q.SortBy, q.SortOrder)

	start := min(q.Offset, len(results))
	results = results[start:]
	if q.Limit > 0 && q.Limit < len(results) {
		results = results[:q.Limit]
	}

	return results, nil
}

// Count returns the number of evidence records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, q *evidence.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, q) {
			count++
		}
	}

	return count, nil
}

// Delete removes evidence records matching the query filters.
func (s *MemoryStorage) Delete(ctx context.Context, q *evidence.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if matchesQuery(record, q) {
			delete(s.records, id)
			deleted++
		}
	}

	return deleted, nil
}

// Ping always succeeds.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.Clear()
	return nil
}

// Clear removes all records from storage.
func (s *MemoryStorage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*evidence.Record)
}

// GetByID retrieves a single evidence record by ID.
func (s *MemoryStorage) GetByID(id string) *evidence.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil
	}
	recordCopy := *record
	return &recordCopy
}

// Size returns the number of records in storage.
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// matchesQuery checks if a record matches the query filters. It mirrors
// buildWhereClause: StartTime is inclusive, EndTime exclusive.
func matchesQuery(record *evidence.Record, q *evidence.Query) bool {
	if q.StartTime != nil && record.StartedAt.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && !record.StartedAt.Before(*q.EndTime) {
		return false
	}
	if q.Provider != "" && record.Provider != q.Provider {
		return false
	}
	if q.Model != "" && record.Model != q.Model {
		return false
	}
	if q.Outcome != "" && record.Outcome != q.Outcome {
		return false
	}
	if q.RequestID != "" && record.RequestID != q.RequestID {
		return false
	}
	return true
}

func sortRecords(records []*evidence.Record, sortBy, order string) {
	key := func(r *evidence.Record) int64 {
		switch sortBy {
		case query.SortDuration:
			return r.Duration.Milliseconds()
		case query.SortTimeToFirstContent:
			return r.TimeToFirstContent.Milliseconds()
		default:
			return r.StartedAt.UnixNano()
		}
	}

	slices.SortFunc(records, func(a, b *evidence.Record) int {
		c := cmp.Or(cmp.Compare(key(a), key(b)), strings.Compare(a.ID, b.ID))
		if order == "desc" {
			return -c
		}
		return c
	})
}
