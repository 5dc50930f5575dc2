package evidence

import (
	"errors"
	"fmt"
)

var (
	// ErrRecorderClosed is returned when a record arrives after Close.
	ErrRecorderClosed = errors.New("recorder closed")

	// ErrBufferFull is returned when the async buffer stays full for the
	// whole write timeout and the record is dropped.
	ErrBufferFull = errors.New("evidence buffer full, record dropped")
)

// StorageError is a failed backend operation such as "store" or "query".
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("evidence %s backend: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err as a failure of op on backend.
func NewStorageError(backend, op string, err error) *StorageError {
	return &StorageError{Backend: backend, Op: op, Err: err}
}

// QueryError rejects a query because of the named field.
type QueryError struct {
	Field string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid evidence query: %s: %v", e.Field, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// NewQueryError reports err against field.
func NewQueryError(field string, err error) *QueryError {
	return &QueryError{Field: field, Err: err}
}

// RecorderError is returned when a record could not be queued.
type RecorderError struct {
	RecordID string
	Err      error
}

func (e *RecorderError) Error() string {
	if e.RecordID == "" {
		return "recording evidence: " + e.Err.Error()
	}
	return fmt.Sprintf("recording evidence %s: %v", e.RecordID, e.Err)
}

func (e *RecorderError) Unwrap() error { return e.Err }

// NewRecorderError wraps err for the record with the given id.
func NewRecorderError(recordID string, err error) *RecorderError {
	return &RecorderError{RecordID: recordID, Err: err}
}

// Prune steps reported by PruneError.
const (
	PruneByAge   = "age"
	PruneByCount = "count"
	PruneArchive = "archive"
)

// PruneError is a failed retention step.
type PruneError struct {
	Step string
	Err  error
}

func (e *PruneError) Error() string {
	return fmt.Sprintf("evidence pruning (%s): %v", e.Step, e.Err)
}

func (e *PruneError) Unwrap() error { return e.Err }

// NewPruneError wraps err as a failure of step.
func NewPruneError(step string, err error) *PruneError {
	return &PruneError{Step: step, Err: err}
}

// ExportError is a failure to write records in an export format.
type ExportError struct {
	Format string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("evidence export (%s): %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// NewExportError wraps err for format.
func NewExportError(format string, err error) *ExportError {
	return &ExportError{Format: format, Err: err}
}
