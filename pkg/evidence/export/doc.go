// Package export writes decision records to JSON or CSV for audits
// and offline analysis.
package export
