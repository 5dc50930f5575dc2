package evidence

import (
	"errors"
	"testing"
	"time"

	"mercator-hq/playground/pkg/providers"
	"mercator-hq/playground/pkg/stream"

	"github.com/google/uuid"
)

func TestNewRecord(t *testing.T) {
	s := stream.Summary{
		Provider:           providers.Google,
		Model:              "gemini-2.0-flash",
		MessageCount:       4,
		Outcome:            stream.OutcomeError,
		ErrorKind:          providers.KindTransport,
		ErrorMessage:       "blocked: SAFETY",
		ContentEvents:      2,
		ContentBytes:       33,
		StartedAt:          time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		TimeToFirstContent: time.Second,
		Duration:           3 * time.Second,
	}

	r := NewRecord("req-9", s)
	if _, err := uuid.Parse(r.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", r.ID, err)
	}
	if r.RequestID != "req-9" || r.Provider != "google" || r.Model != s.Model || r.MessageCount != 4 {
		t.Errorf("unexpected identity fields: %+v", r)
	}
	if r.ErrorKind != s.ErrorKind || r.ErrorMessage != s.ErrorMessage || !r.Failed() {
		t.Errorf("unexpected error fields: %+v", r)
	}
	if r.ContentEvents != 2 || r.ContentBytes != 33 || r.Duration != s.Duration || !r.StartedAt.Equal(s.StartedAt) {
		t.Errorf("unexpected volume or timing: %+v", r)
	}
	if !r.KnownProvider() {
		t.Error("google should be a known provider")
	}

	if NewRecord("req-9", s).ID == r.ID {
		t.Error("record ids must be unique")
	}
}

func TestRecord_UnknownProvider(t *testing.T) {
	r := NewRecord("req", stream.Summary{Provider: "meta", Outcome: stream.OutcomeError})
	if r.KnownProvider() {
		t.Error("meta should not be a known provider")
	}
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name string
		err  error
	}{
		{"storage", NewStorageError("sqlite", "store", cause)},
		{"query", NewQueryError("limit", cause)},
		{"recorder", NewRecorderError("rec-1", cause)},
		{"prune", NewPruneError(PruneByAge, cause)},
		{"export", NewExportError("csv", cause)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, cause) {
				t.Errorf("%v does not unwrap to cause", tt.err)
			}
		})
	}

	if got := NewRecorderError("", ErrBufferFull).Error(); got != "recording evidence: "+ErrBufferFull.Error() {
		t.Errorf("unexpected message %q", got)
	}
	if got := NewQueryError("limit", cause).Error(); got != "invalid evidence query: limit: "+cause.Error() {
		t.Errorf("unexpected message %q", got)
	}
}
