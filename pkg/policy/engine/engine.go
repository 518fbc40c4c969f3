package engine

import (
	"log/slog"
)

// Engine evaluates orders against a single loaded policy. It is constructed
// once per policy and safe for concurrent use; replacing the active policy
// means constructing a new Engine.
type Engine struct {
	policy  *Policy
	matcher *Matcher
	logger  *slog.Logger
}

// New creates an engine bound to the given policy. The policy is validated
// statically; a malformed policy (unknown fact, unknown operator, empty
// combinator, type-mismatched comparison) fails here rather than at first
// evaluation.
func New(policy *Policy, logger *slog.Logger) (*Engine, error) {
	if policy == nil {
		return nil, ErrNilPolicy
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := policy.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		policy:  policy,
		matcher: NewMatcher(),
		logger:  logger.With("component", "policy.engine", "policy_id", policy.ID),
	}, nil
}

// Policy returns the policy this engine is bound to.
func (e *Engine) Policy() *Policy {
	return e.policy
}

// Evaluate checks a proposed discount for an order against every rule in
// the policy and assembles the result.
//
// All rules are evaluated unconditionally in declaration order; priority
// never gates or short-circuits which rules run. The only derived fact is
// calculated_margin = product_margin - proposedDiscount. No sign or range
// validation is performed on inputs: out-of-range margins and discounts
// flow through the arithmetic and are caught, if at all, by rule
// conditions.
//
// Evaluate is deterministic and side-effect-free; identical inputs yield
// structurally equal results across calls and process restarts.
func (e *Engine) Evaluate(order Order, proposedDiscount float64) (*EvaluationResult, error) {
	calculatedMargin := order.ProductMargin - proposedDiscount

	segment := order.CustomerSegment
	if segment == "" {
		segment = SegmentUnknown
	}

	facts := Facts{
		FactOrderValue:       order.OrderValue,
		FactQuantity:         float64(order.Quantity),
		FactCustomerSegment:  segment,
		FactProductMargin:    order.ProductMargin,
		FactProposedDiscount: proposedDiscount,
		FactCalculatedMargin: calculatedMargin,
	}

	result := &EvaluationResult{
		Violations:       []Violation{},
		AppliedRules:     []string{},
		CalculatedMargin: calculatedMargin,
	}

	for _, rule := range e.policy.Rules {
		fired, err := e.matcher.Match(rule.Conditions, facts)
		if err != nil {
			// Configuration error: propagate, never swallow as a miss.
			return nil, &ConditionError{
				PolicyID: e.policy.ID,
				Rule:     rule.Name,
				Cause:    err,
			}
		}

		if !fired {
			continue
		}

		result.Violations = append(result.Violations, violationFromRule(rule))
		result.AppliedRules = append(result.AppliedRules, rule.Name)
	}

	result.Approved = len(result.Violations) == 0

	e.logger.Debug("order evaluated",
		"proposed_discount", proposedDiscount,
		"approved", result.Approved,
		"violation_count", len(result.Violations),
		"calculated_margin", calculatedMargin,
	)

	return result, nil
}

// violationFromRule builds a violation from a fired rule's event payload.
// Missing payload fields fall back to the rule name and a generic message.
func violationFromRule(rule *PolicyRule) Violation {
	v := Violation{
		Rule:    rule.Event.Params.Rule,
		Message: rule.Event.Params.Message,
	}
	if v.Rule == "" {
		v.Rule = rule.Name
	}
	if v.Message == "" {
		v.Message = "Policy violation"
	}
	return v
}
