package evidence

import (
	"context"
	"io"
	"time"
)

// DecisionRecord is the complete audit trail for a single policy
// decision.
type DecisionRecord struct {
	// Identity
	ID        string `json:"id"`         // UUID v4
	RequestID string `json:"request_id"` // From the tool server

	// Timestamps
	EvaluatedTime time.Time `json:"evaluated_time"`
	RecordedTime  time.Time `json:"recorded_time"`

	// Context
	Tool       string `json:"tool"`        // Tool or endpoint that triggered the evaluation
	PolicyID   string `json:"policy_id"`   // Active policy
	PolicyName string `json:"policy_name"` //

	// Order facts
	OrderValue      float64 `json:"order_value"`
	Quantity        int     `json:"quantity"`
	CustomerSegment string  `json:"customer_segment"`
	ProductMargin   float64 `json:"product_margin"`

	// Decision
	ProposedDiscount float64  `json:"proposed_discount"`
	CalculatedMargin float64  `json:"calculated_margin"`
	Approved         bool     `json:"approved"`
	Violations       []string `json:"violations"`    // Rule names that fired
	AppliedRules     []string `json:"applied_rules"` //

	// Solver context, populated when the caller also ran the solver
	MaxAllowed     float64 `json:"max_allowed,omitempty"`
	LimitingFactor string  `json:"limiting_factor,omitempty"`

	// EvaluationDuration is how long the policy evaluation took.
	EvaluationDuration time.Duration `json:"evaluation_duration"`
}

// Query defines filter parameters for querying decision records.
type Query struct {
	// Time range on EvaluatedTime, both inclusive.
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Filters
	PolicyID        string `json:"policy_id,omitempty"`
	Tool            string `json:"tool,omitempty"`
	CustomerSegment string `json:"customer_segment,omitempty"`
	Approved        *bool  `json:"approved,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Storage is the interface for decision record persistence.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a decision record.
	Store(ctx context.Context, record *DecisionRecord) error

	// Query retrieves records matching the filters, newest first.
	// Returns an empty slice when nothing matches.
	Query(ctx context.Context, query *Query) ([]*DecisionRecord, error)

	// Count returns the number of records matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the filters and returns how
	// many were removed. Used for retention enforcement.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases resources held by the backend.
	Close() error
}

// Exporter writes decision records to an output stream in a specific
// format.
type Exporter interface {
	Export(ctx context.Context, records []*DecisionRecord, w io.Writer) error
}
