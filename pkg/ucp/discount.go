package ucp

// DiscountMethod describes how an applied discount is distributed.
type DiscountMethod string

const (
	// MethodEach applies the discount per item.
	MethodEach DiscountMethod = "each"

	// MethodAcross distributes the discount proportionally across items.
	MethodAcross DiscountMethod = "across"
)

// DiscountErrorCode is a standard UCP error code used when discount
// codes are rejected during checkout.
type DiscountErrorCode string

const (
	ErrCodeExpired                DiscountErrorCode = "discount_code_expired"
	ErrCodeInvalid                DiscountErrorCode = "discount_code_invalid"
	ErrCodeAlreadyApplied         DiscountErrorCode = "discount_code_already_applied"
	ErrCodeCombinationDisallowed  DiscountErrorCode = "discount_code_combination_disallowed"
	ErrCodeUserNotLoggedIn        DiscountErrorCode = "discount_code_user_not_logged_in"
	ErrCodeUserIneligible         DiscountErrorCode = "discount_code_user_ineligible"
)

// DiscountAllocation assigns part of a discount to a specific target.
// Target uses JSONPath format, e.g. $.line_items[0] or $.totals.
type DiscountAllocation struct {
	Target string `json:"target"`
	Amount int64  `json:"amount"`
}

// AppliedDiscount is a successfully applied discount.
type AppliedDiscount struct {
	// Code is absent for automatic discounts.
	Code string `json:"code,omitempty"`

	// Automatic is true when the discount was applied without a code.
	Automatic bool `json:"automatic,omitempty"`

	// Title is a human-readable description.
	Title string `json:"title"`

	// Amount is the total discount in minor currency units.
	Amount int64 `json:"amount"`

	// Method describes how the discount is distributed.
	Method DiscountMethod `json:"method"`

	// Priority is the stacking priority (lower applies first).
	Priority int `json:"priority"`

	// Allocations breaks the discount down by target.
	Allocations []DiscountAllocation `json:"allocations"`
}

// RejectedDiscount is a discount code that was rejected, with reason.
type RejectedDiscount struct {
	Code      string            `json:"code"`
	ErrorCode DiscountErrorCode `json:"error_code"`
	Message   string            `json:"message"`
}

// DiscountRequest is the discount extension payload on checkout
// requests. Codes are case-insensitive.
type DiscountRequest struct {
	Codes []string `json:"codes"`
}

// DiscountMessageType classifies discount-related messages.
type DiscountMessageType string

const (
	MessageWarning DiscountMessageType = "warning"
	MessageError   DiscountMessageType = "error"
	MessageInfo    DiscountMessageType = "info"
)

// DiscountMessage reports a rejected code or warning in a UCP response.
type DiscountMessage struct {
	Type    DiscountMessageType `json:"type"`
	Code    DiscountErrorCode   `json:"code"`
	Message string              `json:"message"`

	// Field is the path to the request field that caused the error.
	Field string `json:"field,omitempty"`
}

// DiscountExtensionResponse is the complete discount extension payload
// on checkout responses.
type DiscountExtensionResponse struct {
	Codes    []string          `json:"codes"`
	Applied  []AppliedDiscount `json:"applied"`
	Messages []DiscountMessage `json:"messages,omitempty"`
}

// DiscountValidationResult reports whether a discount passed policy
// evaluation, and if not, why and how much would have been allowed.
type DiscountValidationResult struct {
	Valid          bool              `json:"valid"`
	ErrorCode      DiscountErrorCode `json:"error_code,omitempty"`
	Message        string            `json:"message,omitempty"`
	MaxAllowed     float64           `json:"max_allowed,omitempty"`
	LimitingFactor string            `json:"limiting_factor,omitempty"`
}
