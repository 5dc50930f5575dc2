package query

import (
	"errors"
	"fmt"

	"mercator-hq/playground/pkg/evidence"
	"mercator-hq/playground/pkg/stream"
)

const (
	// DefaultLimit is the default number of records to return if not specified.
	DefaultLimit = 100

	// MaxLimit is the maximum number of records that can be returned in a single query.
	MaxLimit = 10000
)

// Sort fields accepted in evidence.Query.SortBy.
const (
	SortStartedAt          = "started_at"
	SortDuration           = "duration"
	SortTimeToFirstContent = "time_to_first_content"
)

// ValidSortFields maps sort fields to their storage column names.
var ValidSortFields = map[string]string{
	SortStartedAt:          "started_at",
	SortDuration:           "duration_ms",
	SortTimeToFirstContent: "first_content_ms",
}

// ValidSortOrders contains the valid sort orders.
var ValidSortOrders = map[string]bool{
	"asc":  true,
	"desc": true,
}

var validOutcomes = map[string]bool{
	stream.OutcomeEnd:      true,
	stream.OutcomeError:    true,
	stream.OutcomeCanceled: true,
}

// Validate validates a query and returns an error if any parameters are invalid.
func Validate(q *evidence.Query) error {
	if q.Limit < 0 {
		return evidence.NewQueryError("limit", fmt.Errorf("limit must be >= 0, got %d", q.Limit))
	}
	if q.Limit > MaxLimit {
		return evidence.NewQueryError("limit", fmt.Errorf("limit must be <= %d, got %d", MaxLimit, q.Limit))
	}

	if q.Offset < 0 {
		return evidence.NewQueryError("offset", fmt.Errorf("offset must be >= 0, got %d", q.Offset))
	}

	if q.SortBy != "" {
		if _, ok := ValidSortFields[q.SortBy]; !ok {
			return evidence.NewQueryError("sort_by", fmt.Errorf("invalid sort field: %s", q.SortBy))
		}
	}

	if q.SortOrder != "" && !ValidSortOrders[q.SortOrder] {
		return evidence.NewQueryError("sort_order", fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", q.SortOrder))
	}

	if q.StartTime != nil && q.EndTime != nil && q.StartTime.After(*q.EndTime) {
		return evidence.NewQueryError("start_time", errors.New("start_time must be before end_time"))
	}

	if q.Outcome != "" && !validOutcomes[q.Outcome] {
		return evidence.NewQueryError("outcome", fmt.Errorf("invalid outcome: %s (must be 'end', 'error', or 'canceled')", q.Outcome))
	}

	return nil
}

// ApplyDefaults fills the sort field and order. The limit is left alone:
// a zero limit means every match.
func ApplyDefaults(q *evidence.Query) {
	if q.SortBy == "" {
		q.SortBy = SortStartedAt
	}
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
}
