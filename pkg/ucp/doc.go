// Package ucp defines Universal Commerce Protocol discount extension
// types and the converters that bridge them with the policy engine.
//
// The engine's Violation and EvaluationResult types know nothing about
// wire formats; this package maps them into UCP error codes, discount
// messages, and applied-discount allocations so the tool server can
// speak the protocol directly. Amounts are in minor currency units
// throughout, matching the UCP checkout capability.
package ucp
