package engine

import "fmt"

// Operator is a leaf comparison operator. Names follow the rules-engine
// convention used by the policy authoring format.
type Operator string

const (
	OperatorEqual            Operator = "equal"
	OperatorNotEqual         Operator = "notEqual"
	OperatorLessThan         Operator = "lessThan"
	OperatorLessInclusive    Operator = "lessThanInclusive"
	OperatorGreaterThan      Operator = "greaterThan"
	OperatorGreaterInclusive Operator = "greaterThanInclusive"
	OperatorIn               Operator = "in"
)

// knownOperators is the closed set accepted by validation and evaluation.
var knownOperators = map[Operator]bool{
	OperatorEqual:            true,
	OperatorNotEqual:         true,
	OperatorLessThan:         true,
	OperatorLessInclusive:    true,
	OperatorGreaterThan:      true,
	OperatorGreaterInclusive: true,
	OperatorIn:               true,
}

// evaluateOperator applies an operator to a fact value and a comparison
// value. Ordering operators require both sides numeric; equality compares
// numbers numerically and everything else as strings; "in" checks string
// membership in a list.
func evaluateOperator(op Operator, fact string, actual, expected any) (bool, error) {
	switch op {
	case OperatorEqual:
		return evaluateEqual(fact, actual, expected)

	case OperatorNotEqual:
		equal, err := evaluateEqual(fact, actual, expected)
		return !equal, err

	case OperatorLessThan:
		a, b, err := toNumeric(fact, actual, expected)
		return a < b, err

	case OperatorLessInclusive:
		a, b, err := toNumeric(fact, actual, expected)
		return a <= b, err

	case OperatorGreaterThan:
		a, b, err := toNumeric(fact, actual, expected)
		return a > b, err

	case OperatorGreaterInclusive:
		a, b, err := toNumeric(fact, actual, expected)
		return a >= b, err

	case OperatorIn:
		return evaluateIn(fact, actual, expected)

	default:
		return false, &UnknownOperatorError{Operator: op}
	}
}

// evaluateEqual compares numerically when both sides convert to float64
// (so an int comparison value matches a float64 fact), otherwise by string
// equality when both sides are strings.
func evaluateEqual(fact string, actual, expected any) (bool, error) {
	actualNum, actualErr := convertToFloat64(actual)
	expectedNum, expectedErr := convertToFloat64(expected)
	if actualErr == nil && expectedErr == nil {
		return actualNum == expectedNum, nil
	}

	actualStr, aOK := actual.(string)
	expectedStr, eOK := expected.(string)
	if aOK && eOK {
		return actualStr == expectedStr, nil
	}

	return false, &TypeMismatchError{
		Fact:     fact,
		Operator: OperatorEqual,
		Value:    expected,
	}
}

// evaluateIn checks membership of a string fact in a list comparison value.
func evaluateIn(fact string, actual, expected any) (bool, error) {
	actualStr, ok := actual.(string)
	if !ok {
		return false, &TypeMismatchError{Fact: fact, Operator: OperatorIn, Value: expected}
	}

	switch list := expected.(type) {
	case []string:
		for _, elem := range list {
			if elem == actualStr {
				return true, nil
			}
		}
		return false, nil

	case []any:
		for _, elem := range list {
			if s, ok := elem.(string); ok && s == actualStr {
				return true, nil
			}
		}
		return false, nil

	default:
		return false, &TypeMismatchError{Fact: fact, Operator: OperatorIn, Value: expected}
	}
}

// toNumeric converts both sides for an ordering comparison.
func toNumeric(fact string, actual, expected any) (float64, float64, error) {
	actualNum, err := convertToFloat64(actual)
	if err != nil {
		return 0, 0, &TypeMismatchError{Fact: fact, Operator: "", Value: actual}
	}

	expectedNum, err := convertToFloat64(expected)
	if err != nil {
		return 0, 0, &TypeMismatchError{Fact: fact, Operator: "", Value: expected}
	}

	return actualNum, expectedNum, nil
}

// convertToFloat64 converts a value to float64. Condition values arrive as
// float64 or int from Go literals and as float64/int/int64 from the YAML
// policy loader.
func convertToFloat64(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to float64", v)
	}
}

// isNumericValue reports whether a comparison value is usable with ordering
// operators. Used by static validation.
func isNumericValue(v any) bool {
	_, err := convertToFloat64(v)
	return err == nil
}
