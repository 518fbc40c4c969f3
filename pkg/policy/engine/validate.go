package engine

import "fmt"

// factType describes the value type of an engine-computed fact.
type factType int

const (
	factNumeric factType = iota
	factString
)

// knownFacts maps every fact the engine computes to its type. Static
// validation uses this to reject ordering operators on string facts.
var knownFacts = map[string]factType{
	FactOrderValue:       factNumeric,
	FactQuantity:         factNumeric,
	FactCustomerSegment:  factString,
	FactProductMargin:    factNumeric,
	FactProposedDiscount: factNumeric,
	FactCalculatedMargin: factNumeric,
}

// Validate statically checks the policy for authoring errors: missing
// identifiers, duplicate rule names, malformed condition nodes, empty
// combinators, unknown facts or operators, and statically detectable type
// mismatches. All problems are accumulated into a single ValidationError.
func (p *Policy) Validate() error {
	var problems []string

	if p.ID == "" {
		problems = append(problems, "policy id is required")
	}
	if p.Name == "" {
		problems = append(problems, "policy name is required")
	}
	if len(p.Rules) == 0 {
		problems = append(problems, ErrNoRules.Error())
	}

	seen := make(map[string]bool, len(p.Rules))
	for i, rule := range p.Rules {
		if rule.Name == "" {
			problems = append(problems, fmt.Sprintf("rule %d: name is required", i))
			continue
		}
		if seen[rule.Name] {
			problems = append(problems, fmt.Sprintf("rule %q: duplicate rule name", rule.Name))
		}
		seen[rule.Name] = true

		if rule.Conditions == nil {
			problems = append(problems, fmt.Sprintf("rule %q: conditions are required", rule.Name))
			continue
		}

		// The top-level node must be a combinator.
		kind := rule.Conditions.Kind()
		if kind != KindAll && kind != KindAny {
			problems = append(problems, fmt.Sprintf("rule %q: top-level condition must be an all or any combinator", rule.Name))
			continue
		}

		problems = append(problems, validateCondition(rule.Name, rule.Conditions)...)
	}

	if len(problems) > 0 {
		return &ValidationError{PolicyID: p.ID, Errors: problems}
	}

	return nil
}

// validateCondition recursively checks one condition subtree.
func validateCondition(ruleName string, c *Condition) []string {
	var problems []string

	switch c.Kind() {
	case KindFact:
		ft, ok := knownFacts[c.Fact]
		if !ok {
			problems = append(problems, fmt.Sprintf("rule %q: %v", ruleName, &UnknownFactError{Fact: c.Fact}))
			return problems
		}

		if !knownOperators[c.Operator] {
			problems = append(problems, fmt.Sprintf("rule %q: %v", ruleName, &UnknownOperatorError{Operator: c.Operator}))
			return problems
		}

		problems = append(problems, validateLeafTypes(ruleName, c, ft)...)

	case KindAll:
		if len(c.All) == 0 {
			problems = append(problems, (&EmptyConditionError{Rule: ruleName}).Error())
		}
		for _, child := range c.All {
			problems = append(problems, validateCondition(ruleName, child)...)
		}

	case KindAny:
		if len(c.Any) == 0 {
			problems = append(problems, (&EmptyConditionError{Rule: ruleName}).Error())
		}
		for _, child := range c.Any {
			problems = append(problems, validateCondition(ruleName, child)...)
		}

	default:
		problems = append(problems, (&MalformedConditionError{Rule: ruleName}).Error())
	}

	return problems
}

// validateLeafTypes checks that a leaf's operator and comparison value are
// compatible with the declared type of the referenced fact.
func validateLeafTypes(ruleName string, c *Condition, ft factType) []string {
	var problems []string

	mismatch := func() {
		problems = append(problems, fmt.Sprintf("rule %q: %v", ruleName, &TypeMismatchError{
			Fact:     c.Fact,
			Operator: c.Operator,
			Value:    c.Value,
		}))
	}

	switch c.Operator {
	case OperatorLessThan, OperatorLessInclusive, OperatorGreaterThan, OperatorGreaterInclusive:
		// Ordering requires a numeric fact and a numeric value.
		if ft != factNumeric || !isNumericValue(c.Value) {
			mismatch()
		}

	case OperatorIn:
		if ft != factString {
			mismatch()
			break
		}
		switch list := c.Value.(type) {
		case []string:
		case []any:
			for _, elem := range list {
				if _, ok := elem.(string); !ok {
					mismatch()
					break
				}
			}
		default:
			mismatch()
		}

	case OperatorEqual, OperatorNotEqual:
		if ft == factNumeric && !isNumericValue(c.Value) {
			mismatch()
		}
		if ft == factString {
			if _, ok := c.Value.(string); !ok {
				mismatch()
			}
		}
	}

	return problems
}
