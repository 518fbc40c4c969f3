package insights

import (
	"sort"

	"guardrail-hq/meridian/pkg/policy/engine"
)

// Summarize introspects a policy into the shape checks operate on.
// Threshold extraction is heuristic: the margin floor value comes from
// the first calculated_margin lessThan leaf, the cap from the first
// proposed_discount greaterThan leaf in a rule that does not also
// condition on quantity (those are volume tiers, not caps).
func Summarize(policy *engine.Policy) *PolicySummary {
	summary := &PolicySummary{
		ID:        policy.ID,
		Name:      policy.Name,
		RuleCount: len(policy.Rules),
	}

	for _, rule := range policy.Rules {
		var leaves []*engine.Condition
		collectLeaves(rule.Conditions, &leaves)

		factSet := make(map[string]bool)
		for _, leaf := range leaves {
			factSet[leaf.Fact] = true
		}

		if factSet[engine.FactQuantity] {
			summary.HasVolumeRules = true
		}
		if factSet[engine.FactCustomerSegment] {
			summary.HasSegmentRules = true
		}

		for _, leaf := range leaves {
			switch leaf.Fact {
			case engine.FactCalculatedMargin:
				if !summary.HasMarginFloor && isLessThan(leaf.Operator) {
					if v, ok := numericValue(leaf.Value); ok {
						summary.HasMarginFloor = true
						summary.MarginFloorValue = v
					}
				}
			case engine.FactProposedDiscount:
				if !summary.HasMaxDiscountCap && isGreaterThan(leaf.Operator) && !factSet[engine.FactQuantity] {
					if v, ok := numericValue(leaf.Value); ok {
						summary.HasMaxDiscountCap = true
						summary.MaxDiscountCapValue = v
					}
				}
			}
		}

		facts := make([]string, 0, len(factSet))
		for fact := range factSet {
			facts = append(facts, fact)
		}
		sort.Strings(facts)

		summary.Rules = append(summary.Rules, RuleSummary{
			Name:           rule.Name,
			Priority:       rule.Priority,
			ConditionCount: len(leaves),
			Facts:          facts,
		})
	}

	return summary
}

// collectLeaves walks a condition tree appending fact leaves in order.
func collectLeaves(cond *engine.Condition, out *[]*engine.Condition) {
	if cond == nil {
		return
	}
	switch cond.Kind() {
	case engine.KindFact:
		*out = append(*out, cond)
	case engine.KindAll:
		for _, child := range cond.All {
			collectLeaves(child, out)
		}
	case engine.KindAny:
		for _, child := range cond.Any {
			collectLeaves(child, out)
		}
	}
}

func isLessThan(op engine.Operator) bool {
	return op == engine.OperatorLessThan || op == engine.OperatorLessInclusive
}

func isGreaterThan(op engine.Operator) bool {
	return op == engine.OperatorGreaterThan || op == engine.OperatorGreaterInclusive
}

func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
