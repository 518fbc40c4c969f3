// Package recorder writes decision records to storage asynchronously
// so evaluations never block on the audit trail.
package recorder
