// Package engine implements the deterministic policy evaluation core for
// B2B discount governance.
//
// An Engine owns a single immutable Policy and maps (order, proposed
// discount) pairs to a structured EvaluationResult: an approval boolean,
// the list of rule violations, the names of all rules that fired, and the
// post-discount margin. Rule logic is expressed as declarative condition
// trees (nested all/any combinators over leaf fact comparisons) that are
// interpreted at evaluation time by a recursive Matcher.
//
// The package also provides the maximum-discount solver: given an order and
// a Constraints configuration it computes the highest discount that would
// not violate any constraint and names the single constraint that binds.
// The solver and the default policy are two independent encodings of the
// same business rules and are kept in lockstep by shared test fixtures.
//
// Evaluation is a pure function of (policy, order, discount). There is no
// I/O, no wall-clock access, and no shared mutable state, so a single
// Engine may be used concurrently from any number of goroutines.
//
// Basic usage:
//
//	eng, err := engine.New(engine.DefaultPolicy(), nil)
//	if err != nil {
//		// malformed policy: unknown fact, empty combinator, ...
//	}
//	result, err := eng.Evaluate(order, 0.12)
//
// Configuration errors (unknown fact names, unknown operators, empty
// combinators, type-mismatched comparisons) are author-time mistakes. New
// rejects the ones that are statically detectable; the remainder surface
// as typed errors from Evaluate and are never silently treated as "rule
// did not trigger".
package engine
