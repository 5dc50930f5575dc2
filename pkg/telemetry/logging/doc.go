// Package logging builds the relay's slog logger.
//
// # Overview
//
//   - JSON or text output, optionally teed into a rotating file
//   - Context fields (request_id, provider, model) added to every record
//   - Credential redaction (sk- keys, bearer tokens, Google API keys, and
//     attributes whose key names look sensitive)
//   - A level that can be changed at runtime through SetLevel
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Redact: true,
//	})
//	slog.SetDefault(logger.Logger)
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	slog.InfoContext(ctx, "relay finished")  // includes request_id
package logging
