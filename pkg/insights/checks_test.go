package insights

import (
	"testing"

	"guardrail-hq/meridian/pkg/policy/engine"
)

func findingIDs(findings []Finding) []string {
	ids := make([]string, 0, len(findings))
	for _, f := range findings {
		ids = append(ids, f.ID)
	}
	return ids
}

func hasFinding(findings []Finding, id string) bool {
	for _, f := range findings {
		if f.ID == id {
			return true
		}
	}
	return false
}

func TestAnalyze_DefaultPolicyIsHealthy(t *testing.T) {
	findings := Analyze(engine.DefaultPolicy())

	for _, id := range []string{"policy-health-001", "policy-health-002", "policy-health-003", "policy-health-004", "policy-health-005", "policy-health-008"} {
		if hasFinding(findings, id) {
			t.Errorf("default policy triggered %s: %v", id, findingIDs(findings))
		}
	}
}

func TestAnalyze_EmptyishPolicy(t *testing.T) {
	policy := &engine.Policy{
		ID:   "bare",
		Name: "Bare",
		Rules: []*engine.PolicyRule{
			{
				Name: "cap",
				Conditions: &engine.Condition{
					All: []*engine.Condition{
						{Fact: engine.FactProposedDiscount, Operator: engine.OperatorGreaterThan, Value: 0.30},
					},
				},
				Event: engine.Event{Type: "violation", Params: engine.EventParams{Rule: "cap", Message: "over cap"}},
			},
		},
	}

	findings := Analyze(policy)

	if !hasFinding(findings, "policy-health-001") {
		t.Errorf("missing no-margin-floor finding, got %v", findingIDs(findings))
	}
	if hasFinding(findings, "policy-health-002") {
		t.Errorf("cap rule present but no-cap finding triggered: %v", findingIDs(findings))
	}
	if !hasFinding(findings, "policy-health-003") {
		t.Errorf("missing too-few-rules finding, got %v", findingIDs(findings))
	}
	if !hasFinding(findings, "policy-health-005") {
		t.Errorf("missing unprioritized-rules finding, got %v", findingIDs(findings))
	}
	if !hasFinding(findings, "policy-health-008") {
		t.Errorf("missing no-volume-rules finding, got %v", findingIDs(findings))
	}
}

func TestAnalyze_MarginFloorThresholds(t *testing.T) {
	build := func(floor float64) *engine.Policy {
		return &engine.Policy{
			ID:   "floors",
			Name: "Floors",
			Rules: []*engine.PolicyRule{
				{
					Name:     "margin_floor",
					Priority: 10,
					Conditions: &engine.Condition{
						All: []*engine.Condition{
							{Fact: engine.FactCalculatedMargin, Operator: engine.OperatorLessThan, Value: floor},
						},
					},
					Event: engine.Event{Type: "violation", Params: engine.EventParams{Rule: "margin_floor", Message: "below floor"}},
				},
			},
		}
	}

	if findings := Analyze(build(0.40)); !hasFinding(findings, "policy-health-006") {
		t.Errorf("40%% floor should flag too-high, got %v", findingIDs(findings))
	}
	if findings := Analyze(build(0.02)); !hasFinding(findings, "policy-health-007") {
		t.Errorf("2%% floor should flag too-low, got %v", findingIDs(findings))
	}
	if findings := Analyze(build(0.15)); hasFinding(findings, "policy-health-006") || hasFinding(findings, "policy-health-007") {
		t.Errorf("15%% floor should pass threshold checks, got %v", findingIDs(findings))
	}
}

func TestAnalyze_DuplicateRuleNames(t *testing.T) {
	rule := func(name string) *engine.PolicyRule {
		return &engine.PolicyRule{
			Name:     name,
			Priority: 10,
			Conditions: &engine.Condition{
				All: []*engine.Condition{
					{Fact: engine.FactProposedDiscount, Operator: engine.OperatorGreaterThan, Value: 0.25},
				},
			},
			Event: engine.Event{Type: "violation", Params: engine.EventParams{Rule: name, Message: "over cap"}},
		}
	}

	policy := &engine.Policy{
		ID:    "dupes",
		Name:  "Dupes",
		Rules: []*engine.PolicyRule{rule("max_discount"), rule("max_discount")},
	}

	findings := Analyze(policy)
	if !hasFinding(findings, "policy-health-004") {
		t.Errorf("missing duplicate-rule-names finding, got %v", findingIDs(findings))
	}
}

func TestSummarize_DefaultPolicy(t *testing.T) {
	summary := Summarize(engine.DefaultPolicy())

	if !summary.HasMarginFloor || summary.MarginFloorValue != 0.15 {
		t.Errorf("margin floor = (%v, %v), want (true, 0.15)", summary.HasMarginFloor, summary.MarginFloorValue)
	}
	if !summary.HasMaxDiscountCap || summary.MaxDiscountCapValue != 0.25 {
		t.Errorf("discount cap = (%v, %v), want (true, 0.25)", summary.HasMaxDiscountCap, summary.MaxDiscountCapValue)
	}
	if !summary.HasVolumeRules {
		t.Error("HasVolumeRules = false, want true (volume tier rule conditions on quantity)")
	}
	if summary.HasSegmentRules {
		t.Error("HasSegmentRules = true, want false")
	}
	if summary.RuleCount != 3 || len(summary.Rules) != 3 {
		t.Errorf("RuleCount = %d, len(Rules) = %d, want 3 each", summary.RuleCount, len(summary.Rules))
	}
}

func TestSummarize_VolumeRuleIsNotACap(t *testing.T) {
	policy := &engine.Policy{
		ID:   "tiers-only",
		Name: "Tiers Only",
		Rules: []*engine.PolicyRule{
			{
				Name:     "volume_tier",
				Priority: 5,
				Conditions: &engine.Condition{
					All: []*engine.Condition{
						{Fact: engine.FactProposedDiscount, Operator: engine.OperatorGreaterThan, Value: 0.10},
						{Fact: engine.FactQuantity, Operator: engine.OperatorLessThan, Value: 100},
					},
				},
				Event: engine.Event{Type: "violation", Params: engine.EventParams{Rule: "volume_tier", Message: "tier exceeded"}},
			},
		},
	}

	summary := Summarize(policy)
	if summary.HasMaxDiscountCap {
		t.Error("a quantity-conditioned rule must not register as a discount cap")
	}
	if !summary.HasVolumeRules {
		t.Error("HasVolumeRules = false, want true")
	}
}
