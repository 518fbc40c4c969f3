// Package insights analyzes policy configuration for common issues
// before they impact pricing decisions.
//
// Checks operate on a PolicySummary built by introspecting a policy's
// rules and condition trees, and produce Findings ranked by severity.
// A finding flags a gap (no margin floor, no discount cap) or a
// questionable threshold (margin floor above 25%), not a validation
// error; structurally invalid policies are rejected earlier by the
// engine.
package insights
