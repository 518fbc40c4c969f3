package engine

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNilPolicy indicates an engine was constructed without a policy.
	ErrNilPolicy = errors.New("policy cannot be nil")

	// ErrNoRules indicates a policy contains no rules.
	ErrNoRules = errors.New("policy has no rules")
)

// UnknownFactError indicates a condition leaf references a fact the engine
// does not compute. This is a policy-authoring error, not an input error.
type UnknownFactError struct {
	Fact string
}

// Error returns the error message.
func (e *UnknownFactError) Error() string {
	return fmt.Sprintf("unknown fact: %q", e.Fact)
}

// UnknownOperatorError indicates a condition leaf uses an operator outside
// the supported set.
type UnknownOperatorError struct {
	Operator Operator
}

// Error returns the error message.
func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown operator: %q", e.Operator)
}

// TypeMismatchError indicates a comparison between incompatible types, such
// as an ordering operator applied to a string fact.
type TypeMismatchError struct {
	Fact     string
	Operator Operator
	Value    any
}

// Error returns the error message.
func (e *TypeMismatchError) Error() string {
	if e.Operator != "" {
		return fmt.Sprintf("type mismatch for fact %q: operator %q cannot compare against %T", e.Fact, e.Operator, e.Value)
	}
	return fmt.Sprintf("type mismatch for fact %q: cannot compare %T numerically", e.Fact, e.Value)
}

// EmptyConditionError indicates an all/any combinator with no children.
// Empty combinators are disallowed by policy-authoring convention.
type EmptyConditionError struct {
	Rule string
}

// Error returns the error message.
func (e *EmptyConditionError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("rule %q: empty condition combinator", e.Rule)
	}
	return "empty condition combinator"
}

// MalformedConditionError indicates a condition node that is not exactly one
// of leaf, all, or any.
type MalformedConditionError struct {
	Rule string
}

// Error returns the error message.
func (e *MalformedConditionError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("rule %q: condition node must be exactly one of fact, all, or any", e.Rule)
	}
	return "condition node must be exactly one of fact, all, or any"
}

// ConditionError wraps a condition evaluation failure with the policy and
// rule it occurred in. Configuration errors surface through this type at
// evaluation time; they are never treated as "rule did not trigger".
type ConditionError struct {
	PolicyID string
	Rule     string
	Cause    error
}

// Error returns the error message.
func (e *ConditionError) Error() string {
	return fmt.Sprintf("policy %s rule %s: condition error: %v", e.PolicyID, e.Rule, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ConditionError) Unwrap() error {
	return e.Cause
}

// ValidationError indicates a policy failed static validation. It
// accumulates every problem found rather than stopping at the first.
type ValidationError struct {
	PolicyID string
	Errors   []string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("policy %s: validation error: %s", e.PolicyID, e.Errors[0])
	}
	return fmt.Sprintf("policy %s: %d validation errors: %v", e.PolicyID, len(e.Errors), e.Errors)
}
