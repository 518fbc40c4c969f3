// Package evidence defines the audit trail for discount policy
// decisions.
//
// Every evaluation that flows through the tool server can be captured
// as a DecisionRecord: the order facts, the proposed discount, the
// outcome, and which rules fired. Records are persisted through the
// Storage interface (in-memory and SQLite backends live in the storage
// subpackage), written asynchronously by the recorder subpackage, and
// aged out by the retention subpackage.
package evidence
