package handlers

import (
	"context"

	"mercator-hq/playground/pkg/stream"
)

// RelayObserver receives stream lifecycle notifications. It is implemented
// by *metrics.Collector.
type RelayObserver interface {
	StreamStarted()
	StreamFinished()
	ObserveRelay(summary stream.Summary)
}

// EvidenceRecorder persists relay summaries. It is implemented by
// *recorder.Recorder.
type EvidenceRecorder interface {
	Record(ctx context.Context, requestID string, summary stream.Summary) (string, error)
}

type noopObserver struct{}

func (noopObserver) StreamStarted()              {}
func (noopObserver) StreamFinished()             {}
func (noopObserver) ObserveRelay(stream.Summary) {}
