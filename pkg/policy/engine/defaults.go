package engine

// Default policy rule names. These key the violations emitted by the
// built-in pricing policy and the limiting factors named by the solver.
const (
	RuleMarginFloor = "margin_floor"
	RuleMaxDiscount = "max_discount"
	RuleVolumeTier  = "volume_tier"
)

// DefaultPolicy returns the built-in pricing policy:
//
//   - margin_floor: post-discount margin may not fall below 15%
//   - max_discount: no discount may exceed 25%
//   - volume_tier: discounts above 10% require 100+ units, and even then
//     may not exceed 15%
//
// The thresholds here are intentionally the same numbers encoded in
// DefaultConstraints; the two are independent encodings of one rule set
// and must be changed together.
func DefaultPolicy() *Policy {
	return &Policy{
		ID:   "default",
		Name: "Default Pricing Policy",
		Rules: []*PolicyRule{
			{
				Name: RuleMarginFloor,
				Conditions: &Condition{
					All: []*Condition{
						{Fact: FactCalculatedMargin, Operator: OperatorLessThan, Value: 0.15},
					},
				},
				Event: Event{
					Type: "violation",
					Params: EventParams{
						Rule:    RuleMarginFloor,
						Message: "Calculated margin falls below 15% floor",
					},
				},
				Priority: 10,
			},
			{
				Name: RuleMaxDiscount,
				Conditions: &Condition{
					All: []*Condition{
						{Fact: FactProposedDiscount, Operator: OperatorGreaterThan, Value: 0.25},
					},
				},
				Event: Event{
					Type: "violation",
					Params: EventParams{
						Rule:    RuleMaxDiscount,
						Message: "Discount exceeds maximum allowed 25%",
					},
				},
				Priority: 10,
			},
			{
				Name: RuleVolumeTier,
				Conditions: &Condition{
					All: []*Condition{
						{Fact: FactProposedDiscount, Operator: OperatorGreaterThan, Value: 0.10},
						{
							Any: []*Condition{
								{Fact: FactQuantity, Operator: OperatorLessThan, Value: 100},
								{Fact: FactProposedDiscount, Operator: OperatorGreaterThan, Value: 0.15},
							},
						},
					},
				},
				Event: Event{
					Type: "violation",
					Params: EventParams{
						Rule:    RuleVolumeTier,
						Message: "Discount exceeds tier limit (10% base, 15% for qty >= 100)",
					},
				},
				Priority: 5,
			},
		},
	}
}
