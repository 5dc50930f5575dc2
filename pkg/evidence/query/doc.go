// Package query validates evidence queries before a backend executes them.
//
// A query may filter on time range, provider, model, outcome and request
// id, and may page and sort the results:
//
//	q := &evidence.Query{
//	    Provider:  "anthropic",
//	    Outcome:   "error",
//	    Limit:     20,
//	    SortBy:    query.SortDuration,
//	    SortOrder: "desc",
//	}
//	if err := query.Validate(q); err != nil {
//	    return err
//	}
//	records, err := store.Query(ctx, q)
//
// Both storage backends call Validate and ApplyDefaults themselves, so
// callers only need Validate to reject bad input early.
package query
