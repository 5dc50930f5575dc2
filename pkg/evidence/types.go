package evidence

import (
	"context"
	"io"
	"time"

	"mercator-hq/playground/pkg/providers"
	"mercator-hq/playground/pkg/stream"

	"github.com/google/uuid"
)

// Record is the evidence kept for one relay.
//
// A record describes how a relay ended. It never carries message text or
// content: only counts, sizes and timings.
type Record struct {
	// Identification
	ID        string `json:"id"`
	RequestID string `json:"request_id"`

	// Request
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	MessageCount int    `json:"message_count"`

	// Outcome
	Outcome      string `json:"outcome"`
	ErrorKind    string `json:"error_kind,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	// Content volume
	ContentEvents int `json:"content_events"`
	ContentBytes  int `json:"content_bytes"`

	// Timing
	StartedAt          time.Time     `json:"started_at"`
	TimeToFirstContent time.Duration `json:"time_to_first_content"`
	Duration           time.Duration `json:"duration"`
	RecordedAt         time.Time     `json:"recorded_at"`
}

// NewRecord builds a record with a fresh identifier from a relay summary.
func NewRecord(requestID string, s stream.Summary) *Record {
	return &Record{
		ID:                 uuid.New().String(),
		RequestID:          requestID,
		Provider:           string(s.Provider),
		Model:              s.Model,
		MessageCount:       s.MessageCount,
		Outcome:            s.Outcome,
		ErrorKind:          s.ErrorKind,
		ErrorMessage:       s.ErrorMessage,
		ContentEvents:      s.ContentEvents,
		ContentBytes:       s.ContentBytes,
		StartedAt:          s.StartedAt,
		TimeToFirstContent: s.TimeToFirstContent,
		Duration:           s.Duration,
	}
}

// Failed reports whether the relay ended with an error event.
func (r *Record) Failed() bool {
	return r.Outcome == stream.OutcomeError
}

// KnownProvider reports whether the record's provider is one of the
// supported identifiers. Records for rejected providers are still kept.
func (r *Record) KnownProvider() bool {
	_, err := providers.ParseProviderID(r.Provider)
	return err == nil
}

// Query represents filters for retrieving evidence records.
// Zero values mean "no filter"; a zero Limit returns every match.
type Query struct {
	// Time range filters on StartedAt. StartTime is inclusive and EndTime
	// is exclusive.
	StartTime *time.Time
	EndTime   *time.Time

	Provider  string
	Model     string
	Outcome   string
	RequestID string

	// Pagination
	Limit  int
	Offset int

	// Sorting: "started_at" (default), "duration" or
	// "time_to_first_content"; "asc" or "desc" (default).
	SortBy    string
	SortOrder string
}

// Storage is implemented by evidence backends.
type Storage interface {
	// Store persists a record. Records are immutable once stored.
	Store(ctx context.Context, record *Record) error

	// Query returns the records that match q, newest first unless q says
	// otherwise.
	Query(ctx context.Context, q *Query) ([]*Record, error)

	// Count returns the number of records that match q, ignoring
	// pagination.
	Count(ctx context.Context, q *Query) (int64, error)

	// Delete removes the records that match q and returns how many were
	// removed.
	Delete(ctx context.Context, q *Query) (int64, error)

	// Ping reports whether the backend can serve requests.
	Ping(ctx context.Context) error

	// Close releases the backend's resources.
	Close() error
}

// Exporter writes evidence records to w in one output format.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
}
