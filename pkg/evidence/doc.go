// Package evidence records how each relay ended.
//
// Every relay the server runs produces one immutable Record: which provider
// and model were asked, how many messages the conversation had, whether the
// stream ended, failed or was canceled, how much content was relayed and
// how long it took. Message text is never stored.
//
// # Architecture
//
//  1. recorder: buffers records and writes them from a background worker
//  2. storage: persists records (SQLite or in-memory)
//  3. query: validates filters before a backend runs them
//  4. retention: prunes old records on a cron schedule
//  5. export: writes records as JSON or CSV
//
// # Recording Flow
//
//	relay finished (stream.Summary)
//	     ↓
//	Recorder.Record (returns immediately)
//	     ↓
//	buffered channel
//	     ↓
//	Storage.Store (SQLite, WAL mode)
//
// # Basic Usage
//
//	store, err := storage.New(cfg.Evidence)
//	if err != nil {
//	    return err
//	}
//	rec := recorder.NewRecorder(store, recorder.ConfigFrom(cfg.Evidence))
//	defer rec.Close()
//
//	summary := mux.Run(ctx, registry, req)
//	rec.Record(ctx, requestID, summary)
package evidence
