package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"guardrail-hq/meridian/pkg/evidence"
)

// csvHeader is the fixed column order for CSV exports.
var csvHeader = []string{
	"id", "request_id", "evaluated_time", "recorded_time",
	"tool", "policy_id", "policy_name",
	"order_value", "quantity", "customer_segment", "product_margin",
	"proposed_discount", "calculated_margin", "approved",
	"violations", "applied_rules",
	"max_allowed", "limiting_factor", "evaluation_duration_ms",
}

// CSVExporter writes decision records as CSV with a header row.
// Violations and applied rules are semicolon-joined within their
// cells.
type CSVExporter struct{}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Export writes records to w in CSV format.
func (e *CSVExporter) Export(ctx context.Context, records []*evidence.DecisionRecord, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return evidence.NewExportError("csv", len(records), err)
	}

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return evidence.NewExportError("csv", len(records), err)
		}
		if err := cw.Write(recordRow(record)); err != nil {
			return evidence.NewExportError("csv", len(records), err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return evidence.NewExportError("csv", len(records), err)
	}
	return nil
}

func recordRow(r *evidence.DecisionRecord) []string {
	return []string{
		r.ID,
		r.RequestID,
		r.EvaluatedTime.Format(time.RFC3339Nano),
		r.RecordedTime.Format(time.RFC3339Nano),
		r.Tool,
		r.PolicyID,
		r.PolicyName,
		formatFloat(r.OrderValue),
		strconv.Itoa(r.Quantity),
		r.CustomerSegment,
		formatFloat(r.ProductMargin),
		formatFloat(r.ProposedDiscount),
		formatFloat(r.CalculatedMargin),
		strconv.FormatBool(r.Approved),
		strings.Join(r.Violations, ";"),
		strings.Join(r.AppliedRules, ";"),
		formatFloat(r.MaxAllowed),
		r.LimitingFactor,
		strconv.FormatInt(r.EvaluationDuration.Milliseconds(), 10),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
