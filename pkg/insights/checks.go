package insights

import (
	"fmt"

	"guardrail-hq/meridian/pkg/policy/engine"
)

// Check inspects a policy summary and reports zero or more findings.
type Check func(*PolicySummary) []Finding

// defaultChecks run in registration order so findings come out in a
// stable severity-first sequence.
var defaultChecks = []Check{
	checkNoMarginFloor,
	checkNoMaxDiscountCap,
	checkMarginFloorThreshold,
	checkMaxDiscountCapThreshold,
	checkTooFewRules,
	checkDuplicateRuleNames,
	checkMissingPriorities,
	checkNoVolumeRules,
}

// Analyze runs all policy health checks against a policy.
func Analyze(policy *engine.Policy) []Finding {
	summary := Summarize(policy)

	var findings []Finding
	for _, check := range defaultChecks {
		findings = append(findings, check(summary)...)
	}
	return findings
}

func checkNoMarginFloor(s *PolicySummary) []Finding {
	if s.HasMarginFloor {
		return nil
	}
	return []Finding{{
		ID:         "policy-health-001",
		Severity:   SeverityCritical,
		Title:      "No margin floor configured",
		Message:    "The policy has no minimum margin constraint, so discounts that result in losses would be approved.",
		Suggestion: "Add a rule that violates when calculated_margin drops below a floor, typically 10-20%.",
	}}
}

func checkNoMaxDiscountCap(s *PolicySummary) []Finding {
	if s.HasMaxDiscountCap {
		return nil
	}
	return []Finding{{
		ID:         "policy-health-002",
		Severity:   SeverityWarning,
		Title:      "No maximum discount cap configured",
		Message:    "The policy has no hard ceiling on discounts. A cap provides a safety layer independent of margin calculations.",
		Suggestion: "Add a rule that violates when proposed_discount exceeds a cap, typically 25-35% for B2B.",
	}}
}

func checkMarginFloorThreshold(s *PolicySummary) []Finding {
	if !s.HasMarginFloor {
		return nil
	}

	if s.MarginFloorValue > 0.25 {
		return []Finding{{
			ID:       "policy-health-006",
			Severity: SeverityWarning,
			Title:    "Margin floor may be too high",
			Message: fmt.Sprintf("The margin floor is set to %.0f%%, which may reject many legitimate discounts.",
				s.MarginFloorValue*100),
			Suggestion: "Typical B2B floors run 5-20%. Review cost structure before keeping a floor above 25%.",
		}}
	}
	if s.MarginFloorValue > 0 && s.MarginFloorValue < 0.05 {
		return []Finding{{
			ID:       "policy-health-007",
			Severity: SeverityWarning,
			Title:    "Margin floor may be too low",
			Message: fmt.Sprintf("The margin floor is set to %.0f%%, providing minimal protection against unprofitable deals.",
				s.MarginFloorValue*100),
			Suggestion: "Confirm a sub-5% floor is a deliberate strategy rather than an oversight.",
		}}
	}
	return nil
}

func checkMaxDiscountCapThreshold(s *PolicySummary) []Finding {
	if !s.HasMaxDiscountCap || s.MaxDiscountCapValue <= 0.5 {
		return nil
	}
	return []Finding{{
		ID:       "policy-health-009",
		Severity: SeverityWarning,
		Title:    "Discount cap is unusually high",
		Message: fmt.Sprintf("The maximum discount cap is set to %.0f%%. Caps above 50%% offer little practical protection.",
			s.MaxDiscountCapValue*100),
		Suggestion: "Lower the cap or rely on the margin floor as the binding constraint.",
	}}
}

func checkTooFewRules(s *PolicySummary) []Finding {
	const minRules = 3
	if s.RuleCount >= minRules {
		return nil
	}
	return []Finding{{
		ID:       "policy-health-003",
		Severity: SeverityInfo,
		Title:    "Policy has very few rules",
		Message: fmt.Sprintf("The policy has %d rule(s); a baseline B2B policy typically carries at least %d (margin floor, discount cap, volume tiers).",
			s.RuleCount, minRules),
	}}
}

func checkDuplicateRuleNames(s *PolicySummary) []Finding {
	seen := make(map[string]bool, len(s.Rules))
	var dupes []string
	for _, rule := range s.Rules {
		if seen[rule.Name] {
			dupes = append(dupes, rule.Name)
			continue
		}
		seen[rule.Name] = true
	}
	if len(dupes) == 0 {
		return nil
	}
	return []Finding{{
		ID:       "policy-health-004",
		Severity: SeverityWarning,
		Title:    "Duplicate rule names",
		Message: fmt.Sprintf("Rule name(s) %v appear more than once. Violations report the rule name, so duplicates make decisions ambiguous to audit.",
			dupes),
		Suggestion: "Give every rule a unique name.",
	}}
}

func checkMissingPriorities(s *PolicySummary) []Finding {
	var unprioritized []string
	for _, rule := range s.Rules {
		if rule.Priority == 0 {
			unprioritized = append(unprioritized, rule.Name)
		}
	}
	if len(unprioritized) == 0 {
		return nil
	}
	return []Finding{{
		ID:       "policy-health-005",
		Severity: SeverityInfo,
		Title:    "Rule priorities not configured",
		Message: fmt.Sprintf("%d rule(s) have no explicit priority: %v. Evaluation order then depends on declaration position alone.",
			len(unprioritized), unprioritized),
		Suggestion: "Set high priorities for safety rules and lower ones for business rules.",
	}}
}

func checkNoVolumeRules(s *PolicySummary) []Finding {
	if s.HasVolumeRules {
		return nil
	}
	return []Finding{{
		ID:         "policy-health-008",
		Severity:   SeverityInfo,
		Title:      "No volume-based discount rules",
		Message:    "The policy does not consider order quantity. Volume tiering is standard in B2B pricing.",
		Suggestion: "Add quantity-conditioned rules so larger orders can earn larger discounts.",
	}}
}
