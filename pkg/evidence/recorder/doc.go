// Package recorder turns finished relays into evidence records and writes
// them to storage asynchronously.
//
// Record builds the record (with a fresh UUID, redacted and truncated error
// message) and places it on a buffered channel. A single worker drains the
// channel into the storage backend. Close stops intake, drains what is
// buffered and waits for the worker.
//
//	rec := recorder.NewRecorder(store, &recorder.Config{
//	    Enabled:      true,
//	    AsyncBuffer:  1000,
//	    WriteTimeout: 5 * time.Second,
//	    RedactErrors: true,
//	})
//	defer rec.Close()
//
//	if _, err := rec.Record(ctx, requestID, summary); err != nil {
//	    logger.Warn("evidence dropped", "error", err)
//	}
package recorder
