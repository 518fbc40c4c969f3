package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"guardrail-hq/meridian/pkg/evidence"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/decisions.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a SQLite storage backend, initializing the
// schema and enabling WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "evidence.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the schema and database pragmas.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return evidence.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return evidence.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return evidence.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return evidence.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return evidence.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return evidence.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store persists a decision record.
func (s *SQLiteStorage) Store(ctx context.Context, record *evidence.DecisionRecord) error {
	violations, _ := json.Marshal(record.Violations)
	appliedRules, _ := json.Marshal(record.AppliedRules)

	const query = `
		INSERT INTO decisions (
			id, request_id,
			evaluated_time, recorded_time,
			tool, policy_id, policy_name,
			order_value, quantity, customer_segment, product_margin,
			proposed_discount, calculated_margin, approved, violations, applied_rules,
			max_allowed, limiting_factor,
			evaluation_duration
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.RequestID,
		record.EvaluatedTime, record.RecordedTime,
		record.Tool, record.PolicyID, record.PolicyName,
		record.OrderValue, record.Quantity, record.CustomerSegment, record.ProductMargin,
		record.ProposedDiscount, record.CalculatedMargin, record.Approved, string(violations), string(appliedRules),
		record.MaxAllowed, record.LimitingFactor,
		record.EvaluationDuration.Nanoseconds(),
	)
	if err != nil {
		return evidence.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query retrieves matching records, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, query *evidence.Query) ([]*evidence.DecisionRecord, error) {
	where, args := buildWhere(query)

	sqlQuery := `
		SELECT id, request_id,
			evaluated_time, recorded_time,
			tool, policy_id, policy_name,
			order_value, quantity, customer_segment, product_margin,
			proposed_discount, calculated_margin, approved, violations, applied_rules,
			max_allowed, limiting_factor,
			evaluation_duration
		FROM decisions` + where + ` ORDER BY evaluated_time DESC`

	if query != nil && query.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", query.Limit)
		if query.Offset > 0 {
			sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := make([]*evidence.DecisionRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, evidence.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, evidence.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Count returns the number of matching records.
func (s *SQLiteStorage) Count(ctx context.Context, query *evidence.Query) (int64, error) {
	where, args := buildWhere(query)

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM decisions"+where, args...).Scan(&count)
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Delete removes matching records and returns how many were removed.
func (s *SQLiteStorage) Delete(ctx context.Context, query *evidence.Query) (int64, error) {
	where, args := buildWhere(query)

	result, err := s.db.ExecContext(ctx, "DELETE FROM decisions"+where, args...)
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete", err)
	}
	return deleted, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return evidence.NewStorageError("sqlite", "close", err)
	}
	return nil
}

// buildWhere translates query filters into a WHERE clause and args.
func buildWhere(query *evidence.Query) (string, []any) {
	if query == nil {
		return "", nil
	}

	var clauses []string
	var args []any

	if query.StartTime != nil {
		clauses = append(clauses, "evaluated_time >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		clauses = append(clauses, "evaluated_time <= ?")
		args = append(args, *query.EndTime)
	}
	if query.PolicyID != "" {
		clauses = append(clauses, "policy_id = ?")
		args = append(args, query.PolicyID)
	}
	if query.Tool != "" {
		clauses = append(clauses, "tool = ?")
		args = append(args, query.Tool)
	}
	if query.CustomerSegment != "" {
		clauses = append(clauses, "customer_segment = ?")
		args = append(args, query.CustomerSegment)
	}
	if query.Approved != nil {
		clauses = append(clauses, "approved = ?")
		args = append(args, *query.Approved)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// scanRecord reads one row into a DecisionRecord.
func scanRecord(rows *sql.Rows) (*evidence.DecisionRecord, error) {
	var record evidence.DecisionRecord
	var violations, appliedRules string
	var durationNs int64

	err := rows.Scan(
		&record.ID, &record.RequestID,
		&record.EvaluatedTime, &record.RecordedTime,
		&record.Tool, &record.PolicyID, &record.PolicyName,
		&record.OrderValue, &record.Quantity, &record.CustomerSegment, &record.ProductMargin,
		&record.ProposedDiscount, &record.CalculatedMargin, &record.Approved, &violations, &appliedRules,
		&record.MaxAllowed, &record.LimitingFactor,
		&durationNs,
	)
	if err != nil {
		return nil, err
	}

	if violations != "" {
		if err := json.Unmarshal([]byte(violations), &record.Violations); err != nil {
			return nil, err
		}
	}
	if appliedRules != "" {
		if err := json.Unmarshal([]byte(appliedRules), &record.AppliedRules); err != nil {
			return nil, err
		}
	}
	record.EvaluationDuration = time.Duration(durationNs)

	return &record, nil
}
