package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"mercator-hq/playground/pkg/evidence"
)

// CSVExporter exports evidence records to CSV format.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{
		IncludeHeader: includeHeader,
	}
}

// Header is the CSV column order.
var Header = []string{
	"id", "request_id",
	"provider", "model", "message_count",
	"outcome", "error_kind", "error_message",
	"content_events", "content_bytes",
	"started_at", "time_to_first_content_ms", "duration_ms", "recorded_at",
}

// Export writes evidence records to the provided writer in CSV format.
// Timestamps are RFC 3339 with nanoseconds and durations are milliseconds.
func (e *CSVExporter) Export(ctx context.Context, records []*evidence.Record, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(Header); err != nil {
			return evidence.NewExportError("csv", err)
		}
	}

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return evidence.NewExportError("csv", err)
		}
		if err := writer.Write(recordToRow(record)); err != nil {
			return evidence.NewExportError("csv", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return evidence.NewExportError("csv", err)
	}
	return nil
}

func recordToRow(r *evidence.Record) []string {
	return []string{
		r.ID, r.RequestID,
		r.Provider, r.Model, strconv.Itoa(r.MessageCount),
		r.Outcome, r.ErrorKind, r.ErrorMessage,
		strconv.Itoa(r.ContentEvents), strconv.Itoa(r.ContentBytes),
		formatTime(r.StartedAt),
		strconv.FormatInt(r.TimeToFirstContent.Milliseconds(), 10),
		strconv.FormatInt(r.Duration.Milliseconds(), 10),
		formatTime(r.RecordedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
