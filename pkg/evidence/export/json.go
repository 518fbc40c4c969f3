package export

import (
	"context"
	"encoding/json"
	"io"

	"guardrail-hq/meridian/pkg/evidence"
)

// JSONExporter writes decision records as a JSON array.
type JSONExporter struct {
	pretty bool
}

// NewJSONExporter creates a JSON exporter. When pretty is true the
// output is indented for human readers.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{pretty: pretty}
}

// Export writes records to w as a single JSON array.
func (e *JSONExporter) Export(ctx context.Context, records []*evidence.DecisionRecord, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return evidence.NewExportError("json", len(records), err)
	}

	enc := json.NewEncoder(w)
	if e.pretty {
		enc.SetIndent("", "  ")
	}

	if records == nil {
		records = []*evidence.DecisionRecord{}
	}
	if err := enc.Encode(records); err != nil {
		return evidence.NewExportError("json", len(records), err)
	}
	return nil
}
