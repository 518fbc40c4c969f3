package engine

// Fact names the engine computes for every evaluation. Condition leaves may
// only reference these; anything else is a policy-authoring error.
const (
	// FactOrderValue is the total order value in dollars.
	FactOrderValue = "order_value"

	// FactQuantity is the total number of units in the order.
	FactQuantity = "quantity"

	// FactCustomerSegment is the customer tier tag ("unknown" when absent).
	FactCustomerSegment = "customer_segment"

	// FactProductMargin is the base margin as a decimal fraction.
	FactProductMargin = "product_margin"

	// FactProposedDiscount is the proposed discount as a decimal fraction.
	FactProposedDiscount = "proposed_discount"

	// FactCalculatedMargin is the derived post-discount margin
	// (product_margin - proposed_discount).
	FactCalculatedMargin = "calculated_margin"
)

// SegmentUnknown is the sentinel customer segment used when an order does
// not carry one, so that conditions can match against it directly instead
// of dealing with an absent fact.
const SegmentUnknown = "unknown"

// Order is a B2B order submitted for policy evaluation. It is an immutable
// input; the engine never mutates it.
type Order struct {
	// OrderValue is the total order value in dollars.
	OrderValue float64 `json:"order_value" yaml:"order_value"`

	// Quantity is the total number of units in the order.
	Quantity int `json:"quantity" yaml:"quantity"`

	// CustomerSegment is an optional tier tag (e.g. "gold", "new").
	// The core does not validate it against an enum.
	CustomerSegment string `json:"customer_segment,omitempty" yaml:"customer_segment,omitempty"`

	// ProductMargin is the base margin as a decimal fraction (0.40 = 40%).
	ProductMargin float64 `json:"product_margin" yaml:"product_margin"`
}

// Facts is the fixed fact snapshot a condition tree is evaluated against.
// Values are float64 for numeric facts and string for customer_segment.
type Facts map[string]any

// Condition is a node in a rule's condition tree. Exactly one of the three
// forms must be populated:
//
//   - a leaf fact comparison (Fact, Operator, Value)
//   - a conjunction (All, every child must hold)
//   - a disjunction (Any, at least one child must hold)
//
// Mixed or empty nodes are configuration errors caught by Policy.Validate.
type Condition struct {
	// Fact is the fact name for a leaf comparison.
	Fact string `json:"fact,omitempty" yaml:"fact,omitempty"`

	// Operator is the comparison operator for a leaf.
	Operator Operator `json:"operator,omitempty" yaml:"operator,omitempty"`

	// Value is the comparison value for a leaf (number or string).
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	// All holds child conditions that must all hold (logical AND).
	All []*Condition `json:"all,omitempty" yaml:"all,omitempty"`

	// Any holds child conditions of which at least one must hold (logical OR).
	Any []*Condition `json:"any,omitempty" yaml:"any,omitempty"`
}

// ConditionKind identifies the form of a condition node.
type ConditionKind string

const (
	// KindFact is a leaf fact comparison.
	KindFact ConditionKind = "fact"

	// KindAll is a conjunction over child conditions.
	KindAll ConditionKind = "all"

	// KindAny is a disjunction over child conditions.
	KindAny ConditionKind = "any"

	// KindInvalid marks a node that is none or more than one of the above.
	KindInvalid ConditionKind = "invalid"
)

// Kind returns the form of the condition node, or KindInvalid if the node
// is ambiguous (leaf fields mixed with combinators, or both combinators set).
func (c *Condition) Kind() ConditionKind {
	isFact := c.Fact != ""
	hasAll := c.All != nil
	hasAny := c.Any != nil

	switch {
	case isFact && !hasAll && !hasAny:
		return KindFact
	case !isFact && hasAll && !hasAny:
		return KindAll
	case !isFact && !hasAll && hasAny:
		return KindAny
	default:
		return KindInvalid
	}
}

// Event is the payload emitted verbatim when a rule's conditions hold.
type Event struct {
	// Type is the machine-stable event type. Every event type shipped
	// today is a violation type.
	Type string `json:"type" yaml:"type"`

	// Params carries the rule identifier and human-readable message.
	Params EventParams `json:"params" yaml:"params"`
}

// EventParams are the event payload fields consumed by adapters.
type EventParams struct {
	// Rule is the machine-stable rule identifier.
	Rule string `json:"rule" yaml:"rule"`

	// Message is the human-readable violation message.
	Message string `json:"message" yaml:"message"`
}

// PolicyRule is a single named rule: a condition tree plus the event emitted
// when the tree is satisfied. Priority is informational metadata (higher
// conventionally means more critical); it never gates or reorders
// evaluation - all rules always run in declaration order.
type PolicyRule struct {
	// Name uniquely identifies the rule within its policy and keys the
	// violation and applied-rule entries it produces.
	Name string `json:"name" yaml:"name"`

	// Conditions is the rule's condition tree. The top-level node must be
	// a combinator (all or any).
	Conditions *Condition `json:"conditions" yaml:"conditions"`

	// Event is emitted verbatim when the conditions hold.
	Event Event `json:"event" yaml:"event"`

	// Priority is display/advisory metadata only.
	Priority int `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// Policy is a named, ordered collection of rules. Policies are constructed
// once and treated as immutable; replacing the active policy means
// constructing a new Engine.
type Policy struct {
	// ID is the machine-stable policy identifier.
	ID string `json:"id" yaml:"id"`

	// Name is the human-readable policy name.
	Name string `json:"name" yaml:"name"`

	// Rules are evaluated in declaration order.
	Rules []*PolicyRule `json:"rules" yaml:"rules"`
}

// Violation is produced for every rule whose condition tree evaluated true.
type Violation struct {
	// Rule is the machine-stable rule identifier from the event payload.
	Rule string `json:"rule"`

	// Message is the human-readable violation message.
	Message string `json:"message"`
}

// EvaluationResult is the output record of a single Evaluate call. It is
// produced fresh per call and never cached or mutated afterward.
type EvaluationResult struct {
	// Approved is true iff no rule fired.
	Approved bool `json:"approved"`

	// Violations holds one entry per fired rule, in declaration order.
	Violations []Violation `json:"violations"`

	// AppliedRules names every rule whose conditions held.
	AppliedRules []string `json:"applied_rules"`

	// CalculatedMargin is product_margin - proposed_discount, exactly.
	CalculatedMargin float64 `json:"calculated_margin"`
}
