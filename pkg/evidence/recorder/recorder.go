package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/playground/pkg/config"
	"mercator-hq/playground/pkg/evidence"
	"mercator-hq/playground/pkg/stream"
	"mercator-hq/playground/pkg/telemetry/logging"
)

// Config contains configuration for the evidence recorder.
type Config struct {
	// Enabled enables evidence recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout bounds both the wait for buffer space and each storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// RedactErrors masks credentials in provider error messages.
	// Default: true
	RedactErrors bool

	// MaxFieldLength is the maximum length of the error message before truncation.
	// Default: 500
	MaxFieldLength int
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		AsyncBuffer:    config.DefaultEvidenceAsyncBuffer,
		WriteTimeout:   5 * time.Second,
		RedactErrors:   true,
		MaxFieldLength: 500,
	}
}

// ConfigFrom builds a recorder configuration from the evidence section.
func ConfigFrom(cfg config.EvidenceConfig) *Config {
	c := DefaultConfig()
	c.Enabled = cfg.Enabled
	if cfg.AsyncBuffer > 0 {
		c.AsyncBuffer = cfg.AsyncBuffer
	}
	return c
}

// Recorder writes relay evidence to storage from a background worker so
// that finishing a relay never waits on the database.
type Recorder struct {
	storage    evidence.Storage
	config     *Config
	redactor   *logging.Redactor
	now        func() time.Time
	recordChan chan *evidence.Record
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger

	// mu guards closed. Record holds it shared while enqueueing so that
	// no send can race with Close.
	mu     sync.RWMutex
	closed bool
}

// NewRecorder creates a new evidence recorder with the provided storage backend and configuration.
func NewRecorder(storage evidence.Storage, cfg *Config) *Recorder {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.AsyncBuffer <= 0 {
		cfg.AsyncBuffer = config.DefaultEvidenceAsyncBuffer
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		storage:    storage,
		config:     cfg,
		redactor:   logging.NewRedactor(),
		now:        time.Now,
		recordChan: make(chan *evidence.Record, cfg.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "evidence.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("evidence recorder initialized",
		"enabled", cfg.Enabled,
		"async_buffer", cfg.AsyncBuffer,
		"write_timeout", cfg.WriteTimeout,
	)

	return r
}

// Record builds an evidence record from a finished relay and enqueues it
// for writing. It returns the record id.
//
// Record returns as soon as the record is buffered. If the buffer stays
// full for WriteTimeout the record is dropped and a RecorderError wrapping
// evidence.ErrBufferFull is returned.
func (r *Recorder) Record(ctx context.Context, requestID string, s stream.Summary) (string, error) {
	if !r.config.Enabled {
		return "", nil
	}

	record := r.buildRecord(requestID, s)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return "", evidence.NewRecorderError(record.ID, evidence.ErrRecorderClosed)
	}

	timer := time.NewTimer(r.config.WriteTimeout)
	defer timer.Stop()

	select {
	case r.recordChan <- record:
		r.logger.DebugContext(ctx, "evidence record enqueued for writing",
			"record_id", record.ID,
			"request_id", record.RequestID,
		)
		return record.ID, nil
	case <-timer.C:
		r.logger.ErrorContext(ctx, "evidence record channel full, dropping record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return "", evidence.NewRecorderError(record.ID, evidence.ErrBufferFull)
	case <-ctx.Done():
		return "", evidence.NewRecorderError(record.ID, ctx.Err())
	}
}

// Close stops accepting records, drains the buffer and waits for all
// pending writes to complete. It is safe to call more than once.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.done)
	r.mu.Unlock()

	r.logger.Info("shutting down evidence recorder")
	r.wg.Wait()
	r.logger.Info("evidence recorder shut down complete")
	return nil
}

// worker is the background goroutine that drains the evidence channel and
// writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			r.logger.Info("draining evidence channel before shutdown",
				"pending_count", len(r.recordChan),
			)

			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					r.logger.Info("evidence channel drained")
					return
				}
			}
		}
	}
}

// writeRecord writes a single evidence record to storage.
func (r *Recorder) writeRecord(record *evidence.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store evidence record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"error", err,
		)
		return
	}

	duration := time.Since(start)

	r.logger.Debug("evidence recorded",
		"record_id", record.ID,
		"request_id", record.RequestID,
		"outcome", record.Outcome,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow evidence write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}

func (r *Recorder) buildRecord(requestID string, s stream.Summary) *evidence.Record {
	record := evidence.NewRecord(requestID, s)
	record.RecordedAt = r.now().UTC()

	if r.config.RedactErrors {
		record.ErrorMessage = r.redactor.RedactString(record.ErrorMessage)
	}
	record.ErrorMessage = truncate(record.ErrorMessage, r.config.MaxFieldLength)

	return record
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	// Back off to a rune boundary.
	cut := max
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut] + "...[truncated]"
}
