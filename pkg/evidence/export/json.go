package export

import (
	"context"
	"encoding/json"
	"io"

	"mercator-hq/playground/pkg/evidence"
)

// JSONExporter exports evidence records to JSON format.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{
		Pretty: pretty,
	}
}

// Export writes records to w as a JSON array. An empty slice is written
// as "[]".
func (e *JSONExporter) Export(ctx context.Context, records []*evidence.Record, w io.Writer) error {
	if records == nil {
		records = []*evidence.Record{}
	}

	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}

	if err := ctx.Err(); err != nil {
		return evidence.NewExportError("json", err)
	}
	if err := enc.Encode(records); err != nil {
		return evidence.NewExportError("json", err)
	}

	return nil
}
