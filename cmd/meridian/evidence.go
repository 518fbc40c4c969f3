package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"guardrail-hq/meridian/pkg/cli"
	"guardrail-hq/meridian/pkg/config"
	"guardrail-hq/meridian/pkg/evidence"
	"guardrail-hq/meridian/pkg/evidence/export"
	"guardrail-hq/meridian/pkg/evidence/storage"
)

var evidenceFlags struct {
	backend   string
	timeRange string
	tool      string
	policy    string
	segment   string
	approved  string
	limit     int
	offset    int
	format    string
	output    string
}

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Query the decision audit trail",
	Long: `Query and export decision records for audit and compliance.

The evidence command provides access to the decision store for
querying, exporting, and analyzing discount evaluation audit trails.

Examples:
  # Query a time range
  meridian evidence query --time-range "2026-08-01T00:00:00Z/2026-08-29T00:00:00Z"

  # Filter by tool
  meridian evidence query --tool validate_discount_code

  # Export to CSV file
  meridian evidence query --format csv --output decisions.csv`,
}

var evidenceQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query decision records",
	Long: `Query decision records with various filters.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-08-01T00:00:00Z/2026-08-29T00:00:00Z"

Examples:
  # Query a specific time range
  meridian evidence query --time-range "2026-08-01T00:00:00Z/2026-08-29T00:00:00Z"

  # Rejected decisions for a policy
  meridian evidence query --policy default --approved false

  # Export to JSON
  meridian evidence query --format json --output decisions.json`,
	RunE: queryEvidence,
}

func init() {
	rootCmd.AddCommand(evidenceCmd)
	evidenceCmd.AddCommand(evidenceQueryCmd)

	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.tool, "tool", "", "filter by tool name")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.policy, "policy", "", "filter by policy id")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.segment, "segment", "", "filter by customer segment")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.approved, "approved", "", "filter by decision (true, false)")
	evidenceQueryCmd.Flags().IntVar(&evidenceFlags.limit, "limit", 100, "max results")
	evidenceQueryCmd.Flags().IntVar(&evidenceFlags.offset, "offset", 0, "pagination offset")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.format, "format", "text", "output format: text, json, csv")
	evidenceQueryCmd.Flags().StringVarP(&evidenceFlags.output, "output", "o", "", "output file (default: stdout)")
}

func queryEvidence(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	backendType := evidenceFlags.backend
	if backendType == "" {
		backendType = cfg.Evidence.Backend
	}

	var store evidence.Storage
	switch backendType {
	case "sqlite":
		sqliteConfig := storage.DefaultSQLiteConfig()
		sqliteConfig.Path = cfg.Evidence.SQLite.Path
		store, err = storage.NewSQLiteStorage(sqliteConfig, nil)
		if err != nil {
			return cli.NewCommandError("evidence", fmt.Errorf("failed to open SQLite storage: %w", err))
		}
	case "memory":
		store = storage.NewMemoryStorage()
	default:
		return fmt.Errorf("unsupported backend: %s (supported: sqlite, memory)", backendType)
	}
	defer store.Close()

	query, err := buildEvidenceQuery()
	if err != nil {
		return err
	}

	ctx := context.Background()
	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("evidence", fmt.Errorf("query failed: %w", err))
	}

	var output io.Writer = os.Stdout
	if evidenceFlags.output != "" {
		f, err := os.Create(evidenceFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	switch evidenceFlags.format {
	case "json":
		return export.NewJSONExporter(true).Export(ctx, records, output)
	case "csv":
		return export.NewCSVExporter().Export(ctx, records, output)
	default:
		return outputEvidenceText(output, records, query)
	}
}

// buildEvidenceQuery assembles the storage query from the flags.
func buildEvidenceQuery() (*evidence.Query, error) {
	query := &evidence.Query{
		PolicyID:        evidenceFlags.policy,
		Tool:            evidenceFlags.tool,
		CustomerSegment: evidenceFlags.segment,
		Limit:           evidenceFlags.limit,
		Offset:          evidenceFlags.offset,
	}

	if evidenceFlags.timeRange != "" {
		parts := strings.Split(evidenceFlags.timeRange, "/")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid time range format (expected: start/end)")
		}

		startTime, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid start time: %w", err)
		}
		query.StartTime = &startTime

		endTime, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid end time: %w", err)
		}
		query.EndTime = &endTime
	}

	switch evidenceFlags.approved {
	case "":
	case "true":
		approved := true
		query.Approved = &approved
	case "false":
		approved := false
		query.Approved = &approved
	default:
		return nil, fmt.Errorf("invalid --approved value %q (expected: true, false)", evidenceFlags.approved)
	}

	return query, nil
}

func outputEvidenceText(output io.Writer, records []*evidence.DecisionRecord, query *evidence.Query) error {
	if query.StartTime != nil && query.EndTime != nil {
		fmt.Fprintf(output, "Time range: %s to %s\n",
			query.StartTime.Format(time.RFC3339),
			query.EndTime.Format(time.RFC3339))
	}
	fmt.Fprintf(output, "Total records: %d\n\n", len(records))

	if len(records) == 0 {
		fmt.Fprintln(output, "No records found.")
		return nil
	}

	for i, record := range records {
		if i > 0 {
			fmt.Fprintln(output)
		}

		fmt.Fprintf(output, "Record ID: %s\n", record.ID)
		fmt.Fprintf(output, "Evaluated: %s\n", record.EvaluatedTime.Format(time.RFC3339))
		fmt.Fprintf(output, "Tool: %s\n", record.Tool)
		fmt.Fprintf(output, "Policy: %s\n", record.PolicyID)
		fmt.Fprintf(output, "Order: $%.2f x%d (%s, %.0f%% margin)\n",
			record.OrderValue, record.Quantity, record.CustomerSegment, record.ProductMargin*100)
		fmt.Fprintf(output, "Proposed Discount: %.1f%%\n", record.ProposedDiscount*100)
		if record.Approved {
			fmt.Fprintln(output, "Decision: approved")
		} else {
			fmt.Fprintf(output, "Decision: rejected (%s)\n", strings.Join(record.Violations, ", "))
		}
		if record.LimitingFactor != "" {
			fmt.Fprintf(output, "Max Allowed: %.0f (limited by %s)\n", record.MaxAllowed, record.LimitingFactor)
		}

		// Show limited output for large result sets
		if i >= 9 && len(records) > 10 {
			fmt.Fprintf(output, "\n... and %d more records\n", len(records)-10)
			fmt.Fprintln(output, "Use --limit and --offset for pagination.")
			break
		}
	}

	return nil
}
