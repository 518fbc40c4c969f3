package engine

// Matcher evaluates a condition tree against a fixed fact snapshot.
// The zero value is ready to use; Engine holds one per instance.
type Matcher struct{}

// NewMatcher creates a condition matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match evaluates a condition node against the facts. Facts do not change
// within a call, so no memoization is needed; conditions are cheap boolean
// comparisons.
func (m *Matcher) Match(condition *Condition, facts Facts) (bool, error) {
	switch condition.Kind() {
	case KindFact:
		return m.matchFact(condition, facts)

	case KindAll:
		return m.matchAll(condition.All, facts)

	case KindAny:
		return m.matchAny(condition.Any, facts)

	default:
		return false, &MalformedConditionError{}
	}
}

// matchFact evaluates a leaf fact comparison. An undefined fact name is a
// configuration error, not "condition false".
func (m *Matcher) matchFact(condition *Condition, facts Facts) (bool, error) {
	actual, ok := facts[condition.Fact]
	if !ok {
		return false, &UnknownFactError{Fact: condition.Fact}
	}

	return evaluateOperator(condition.Operator, condition.Fact, actual, condition.Value)
}

// matchAll is true iff every child matches. Short-circuits on the first
// false child.
func (m *Matcher) matchAll(children []*Condition, facts Facts) (bool, error) {
	if len(children) == 0 {
		return false, &EmptyConditionError{}
	}

	for _, child := range children {
		matched, err := m.Match(child, facts)
		if err != nil {
			return false, err
		}
		if !matched {
			return false, nil
		}
	}

	return true, nil
}

// matchAny is true iff at least one child matches. Short-circuits on the
// first true child.
func (m *Matcher) matchAny(children []*Condition, facts Facts) (bool, error) {
	if len(children) == 0 {
		return false, &EmptyConditionError{}
	}

	for _, child := range children {
		matched, err := m.Match(child, facts)
		if err != nil {
			return false, err
		}
		if matched {
			return true, nil
		}
	}

	return false, nil
}
