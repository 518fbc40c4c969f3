package ucp

import (
	"strings"

	"guardrail-hq/meridian/pkg/policy/engine"
)

// DiscountCodesField is the request field reported on rejected codes.
const DiscountCodesField = "dev.ucp.shopping.discount.codes"

// violationErrorCodes maps known violation rule fragments to UCP error
// codes. Rule names are normalized before matching, so "Margin Floor"
// and "margin-floor" both hit the margin_floor entry.
var violationErrorCodes = []struct {
	pattern string
	code    DiscountErrorCode
}{
	{"max_discount", ErrCodeInvalid},
	{"margin_floor", ErrCodeInvalid},
	{"volume_tier", ErrCodeUserIneligible},
	{"discount_expired", ErrCodeExpired},
	{"discount_stacking", ErrCodeCombinationDisallowed},
	{"user_not_authenticated", ErrCodeUserNotLoggedIn},
	{"user_ineligible", ErrCodeUserIneligible},
	{"code_already_used", ErrCodeAlreadyApplied},
}

// ErrorCodeForViolation maps a policy violation to a UCP error code.
// Unknown violations map to discount_code_invalid.
func ErrorCodeForViolation(v engine.Violation) DiscountErrorCode {
	normalized := strings.ToLower(v.Rule)
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)

	for _, entry := range violationErrorCodes {
		if strings.Contains(normalized, entry.pattern) {
			return entry.code
		}
	}
	return ErrCodeInvalid
}

// MessageForViolation converts a policy violation to a UCP message.
func MessageForViolation(v engine.Violation) DiscountMessage {
	return DiscountMessage{
		Type:    MessageWarning,
		Code:    ErrorCodeForViolation(v),
		Message: v.Message,
	}
}

// MessagesForEvaluation converts every violation in an evaluation to a
// UCP message.
func MessagesForEvaluation(result *engine.EvaluationResult) []DiscountMessage {
	messages := make([]DiscountMessage, 0, len(result.Violations))
	for _, v := range result.Violations {
		messages = append(messages, MessageForViolation(v))
	}
	return messages
}

// ToValidationResult converts a policy evaluation into a UCP discount
// validation result. The first violation drives the error code.
func ToValidationResult(result *engine.EvaluationResult) DiscountValidationResult {
	if result.Approved {
		return DiscountValidationResult{
			Valid:   true,
			Message: "Discount approved by policy",
		}
	}

	if len(result.Violations) == 0 {
		return DiscountValidationResult{
			Valid:     false,
			ErrorCode: ErrCodeInvalid,
			Message:   "Discount rejected by policy",
		}
	}

	primary := result.Violations[0]
	return DiscountValidationResult{
		Valid:          false,
		ErrorCode:      ErrorCodeForViolation(primary),
		Message:        primary.Message,
		LimitingFactor: primary.Rule,
	}
}

// RejectedFromViolation builds a rejected discount entry for a code.
func RejectedFromViolation(code string, v engine.Violation) RejectedDiscount {
	return RejectedDiscount{
		Code:      code,
		ErrorCode: ErrorCodeForViolation(v),
		Message:   v.Message,
	}
}

// AppliedDiscountOptions tunes NewAppliedDiscount. The zero value
// yields an across-method discount with priority 1 allocated to the
// order totals.
type AppliedDiscountOptions struct {
	Method      DiscountMethod
	Priority    int
	Automatic   bool
	Allocations []DiscountAllocation
}

// NewAppliedDiscount builds an applied discount entry. Automatic
// discounts drop the code per the UCP discount extension.
func NewAppliedDiscount(code string, amount int64, title string, opts AppliedDiscountOptions) AppliedDiscount {
	if opts.Method == "" {
		opts.Method = MethodAcross
	}
	if opts.Priority == 0 {
		opts.Priority = 1
	}
	if len(opts.Allocations) == 0 {
		opts.Allocations = []DiscountAllocation{{Target: "$.totals", Amount: amount}}
	}
	if opts.Automatic {
		code = ""
	}

	return AppliedDiscount{
		Code:        code,
		Automatic:   opts.Automatic,
		Title:       title,
		Amount:      amount,
		Method:      opts.Method,
		Priority:    opts.Priority,
		Allocations: opts.Allocations,
	}
}

// OrderOptions supplies the order context that line items alone cannot
// provide.
type OrderOptions struct {
	CustomerSegment string
	ProductMargin   float64
}

// defaultProductMargin stands in when the caller has no margin data.
const defaultProductMargin = 0.3

// FromLineItems converts UCP line items to a policy engine order.
// Order value comes from line item subtotals; margin and segment come
// from the options since the protocol does not carry them.
func FromLineItems(items []LineItem, opts OrderOptions) engine.Order {
	var orderValue int64
	var quantity int
	for _, item := range items {
		orderValue += item.Subtotal()
		quantity += item.Quantity
	}

	margin := opts.ProductMargin
	if margin == 0 {
		margin = defaultProductMargin
	}

	return engine.Order{
		OrderValue:      float64(orderValue),
		Quantity:        quantity,
		CustomerSegment: opts.CustomerSegment,
		ProductMargin:   margin,
	}
}

// BuildExtensionResponse assembles the full discount extension payload
// from a policy evaluation. Approved evaluations yield one applied
// discount per code carrying the full amount; rejections yield warning
// messages pointing at the codes field.
func BuildExtensionResponse(codes []string, result *engine.EvaluationResult, amount int64, title string) DiscountExtensionResponse {
	if title == "" {
		title = "Discount"
	}

	if result.Approved {
		applied := make([]AppliedDiscount, 0, len(codes))
		for i, code := range codes {
			applied = append(applied, NewAppliedDiscount(code, amount, title, AppliedDiscountOptions{
				Priority: i + 1,
			}))
		}
		return DiscountExtensionResponse{Codes: codes, Applied: applied}
	}

	messages := make([]DiscountMessage, 0, len(result.Violations))
	for _, v := range result.Violations {
		msg := MessageForViolation(v)
		msg.Field = DiscountCodesField
		messages = append(messages, msg)
	}

	return DiscountExtensionResponse{
		Codes:    codes,
		Applied:  []AppliedDiscount{},
		Messages: messages,
	}
}
