// Package storage provides storage backends for relay evidence records.
//
// # Storage Backends
//
//   - SQLite: embedded database through the pure-Go modernc.org/sqlite driver
//   - Memory: in-memory map for tests and local runs
//
// New selects a backend from the evidence configuration.
//
// # SQLite Backend
//
// The SQLite backend opens a single connection with busy_timeout and, when
// enabled, WAL journaling set through DSN pragmas. Timestamps are stored as
// Unix nanoseconds and durations as milliseconds, so records read back lose
// sub-millisecond duration precision.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path:        "data/evidence.db",
//	    WALMode:     true,
//	    BusyTimeout: 5 * time.Second,
//	})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	records, err := store.Query(ctx, &evidence.Query{Outcome: "error", Limit: 20})
package storage
