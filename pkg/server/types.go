package server

import (
	"guardrail-hq/meridian/pkg/policy/engine"
	"guardrail-hq/meridian/pkg/ucp"
)

// toolError is the structured error payload returned by tool endpoints.
// Tool failures are reported in-band; the server itself never crashes
// on a bad request.
type toolError struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Tool error codes.
const (
	errCodeInvalidRequest   = "INVALID_REQUEST"
	errCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	errCodeToolError        = "TOOL_ERROR"
	errCodeInternal         = "INTERNAL_ERROR"
)

type evaluatePolicyRequest struct {
	Order            engine.Order `json:"order"`
	ProposedDiscount float64      `json:"proposed_discount"`
}

// evaluatePolicyResponse is the evaluation result annotated with the
// active policy's identity. The metadata is attached here, not by the
// engine.
type evaluatePolicyResponse struct {
	engine.EvaluationResult

	PolicyID   string `json:"policy_id"`
	PolicyName string `json:"policy_name"`
}

type ruleDescription struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type policySummaryResponse struct {
	PolicyID   string            `json:"policy_id"`
	PolicyName string            `json:"policy_name"`
	Rules      []ruleDescription `json:"rules"`
	Summary    string            `json:"summary"`
}

type maxDiscountRequest struct {
	Order engine.Order `json:"order"`
}

type maxDiscountResponse struct {
	MaxDiscount    float64 `json:"max_discount"`
	MaxDiscountPct string  `json:"max_discount_pct"`
	LimitingFactor string  `json:"limiting_factor"`
	Details        string  `json:"details"`
}

type validateDiscountCodeRequest struct {
	Code string `json:"code"`

	// DiscountAmount is in minor currency units (cents).
	DiscountAmount int64 `json:"discount_amount"`

	Order engine.Order `json:"order"`
}

type validateDiscountCodeResponse struct {
	ucp.DiscountValidationResult

	Code string `json:"code"`
}

type simulateCheckoutRequest struct {
	Codes     []string       `json:"codes"`
	LineItems []ucp.LineItem `json:"line_items"`
	Currency  string         `json:"currency"`

	// DiscountPercentage is a decimal fraction (0.15 = 15%).
	DiscountPercentage float64 `json:"discount_percentage"`

	// ProductMargin is optional; zero falls back to the converter default.
	ProductMargin float64 `json:"product_margin,omitempty"`
}

type simulateCheckoutResponse struct {
	ucp.DiscountExtensionResponse

	Currency    string                   `json:"currency"`
	Allocations []ucp.DiscountAllocation `json:"allocations,omitempty"`
}

type healthResponse struct {
	Status    string `json:"status"`
	PolicyID  string `json:"policy_id"`
	Timestamp int64  `json:"timestamp"`
}
