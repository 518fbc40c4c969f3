package insights

// Severity ranks findings for prioritization.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Finding is a single policy health observation.
type Finding struct {
	// ID identifies the check that produced the finding.
	ID string `json:"id"`

	Severity Severity `json:"severity"`
	Title    string   `json:"title"`

	// Message explains the finding in the context of this policy.
	Message string `json:"message"`

	// Suggestion describes how to resolve the finding, when known.
	Suggestion string `json:"suggestion,omitempty"`
}

// PolicySummary is the introspected shape of a policy that checks
// operate on.
type PolicySummary struct {
	ID        string
	Name      string
	RuleCount int
	Rules     []RuleSummary

	HasMarginFloor   bool
	MarginFloorValue float64

	HasMaxDiscountCap   bool
	MaxDiscountCapValue float64

	// HasVolumeRules is true when any rule conditions on quantity.
	HasVolumeRules bool

	// HasSegmentRules is true when any rule conditions on the
	// customer segment.
	HasSegmentRules bool
}

// RuleSummary describes one rule for analysis.
type RuleSummary struct {
	Name           string
	Priority       int
	ConditionCount int
	Facts          []string
}
