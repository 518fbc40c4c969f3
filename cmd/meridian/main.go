// Meridian is a discount governance service for B2B commerce.
//
// It evaluates proposed discounts against a pricing policy, exposing:
//   - Agent-facing HTTP tools for evaluation and negotiation
//   - A maximum-discount solver for negotiation ceilings
//   - UCP-compatible discount code validation and checkout simulation
//   - A decision audit trail with retention
//
// Usage:
//
//	# Start server with default configuration
//	meridian run
//
//	# Start with custom configuration file
//	meridian run --config /path/to/config.yaml
//
//	# Show version information
//	meridian version
//
//	# Validate policy files
//	meridian lint --file policies.yaml
//
//	# Query the decision audit trail
//	meridian evidence query --time-range "2026-08-01T00:00:00Z/2026-08-29T00:00:00Z"
package main

func main() {
	Execute()
}
