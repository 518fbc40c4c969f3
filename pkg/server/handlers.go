package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"guardrail-hq/meridian/pkg/evidence/recorder"
	"guardrail-hq/meridian/pkg/insights"
	"guardrail-hq/meridian/pkg/policy/engine"
	"guardrail-hq/meridian/pkg/policy/manager"
	"guardrail-hq/meridian/pkg/telemetry/logging"
	"guardrail-hq/meridian/pkg/telemetry/metrics"
	"guardrail-hq/meridian/pkg/ucp"
)

// ToolHandler serves the agent-facing tool endpoints. Every tool reads
// the active engine through the manager, so policy reloads take effect
// without touching the handler.
type ToolHandler struct {
	manager     *manager.Manager
	recorder    *recorder.Recorder
	collector   *metrics.Collector
	constraints engine.Constraints
	logger      *slog.Logger
}

// ToolHandlerOptions carries the optional collaborators for a
// ToolHandler.
type ToolHandlerOptions struct {
	Recorder    *recorder.Recorder
	Collector   *metrics.Collector
	Constraints *engine.Constraints
	Logger      *slog.Logger
}

// NewToolHandler creates a handler bound to the given policy manager.
func NewToolHandler(mgr *manager.Manager, opts ToolHandlerOptions) *ToolHandler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	constraints := engine.DefaultConstraints()
	if opts.Constraints != nil {
		constraints = *opts.Constraints
	}

	return &ToolHandler{
		manager:     mgr,
		recorder:    opts.Recorder,
		collector:   opts.Collector,
		constraints: constraints,
		logger:      logger.With("component", "server.tools"),
	}
}

// EvaluatePolicy checks a proposed discount against the active policy.
func (h *ToolHandler) EvaluatePolicy(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req evaluatePolicyRequest
	if !h.decode(w, r, &req) {
		return
	}

	policy := h.manager.Policy()

	start := time.Now()
	result, err := h.manager.Engine().Evaluate(req.Order, req.ProposedDiscount)
	duration := time.Since(start)
	if err != nil {
		h.toolFailure(w, r, "evaluate_policy", err)
		return
	}

	h.record(r, recorder.Decision{
		Tool:     "evaluate_policy",
		Policy:   policy,
		Order:    req.Order,
		Proposed: req.ProposedDiscount,
		Result:   result,
		Duration: duration,
	})
	if h.collector != nil {
		h.collector.RecordEvaluation(policy.ID, result.Approved, violationRules(result), duration)
	}

	writeJSON(w, http.StatusOK, evaluatePolicyResponse{
		EvaluationResult: *result,
		PolicyID:         policy.ID,
		PolicyName:       policy.Name,
	})
}

// GetPolicySummary returns a human-readable summary of the active
// policy rules.
func (h *ToolHandler) GetPolicySummary(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	policy := h.manager.Policy()
	summary := insights.Summarize(policy)

	rules := make([]ruleDescription, 0, len(policy.Rules))
	for _, rule := range policy.Rules {
		rules = append(rules, ruleDescription{
			Name:        rule.Name,
			Description: describeRule(rule.Name, summary),
		})
	}

	writeJSON(w, http.StatusOK, policySummaryResponse{
		PolicyID:   policy.ID,
		PolicyName: policy.Name,
		Rules:      rules,
		Summary:    summaryText(policy.Name, rules, summary),
	})
}

// GetMaxDiscount calculates the maximum allowed discount for an order.
func (h *ToolHandler) GetMaxDiscount(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req maxDiscountRequest
	if !h.decode(w, r, &req) {
		return
	}

	result := h.constraints.MaxDiscount(req.Order)
	if h.collector != nil {
		h.collector.RecordSolverCall(result.LimitingFactor)
	}

	writeJSON(w, http.StatusOK, maxDiscountResponse{
		MaxDiscount:    result.MaxDiscount,
		MaxDiscountPct: fmt.Sprintf("%.1f%%", result.MaxDiscount*100),
		LimitingFactor: result.LimitingFactor,
		Details:        h.limitDetails(req.Order, result),
	})
}

// ValidateDiscountCode validates a discount code against the active
// policy and returns standard UCP error codes.
func (h *ToolHandler) ValidateDiscountCode(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req validateDiscountCodeRequest
	if !h.decode(w, r, &req) {
		return
	}

	// The discount amount arrives in minor units while order value is
	// in dollars; a zero order value yields a zero fraction rather
	// than a division by zero.
	orderValueCents := req.Order.OrderValue * 100
	fraction := 0.0
	if orderValueCents > 0 {
		fraction = float64(req.DiscountAmount) / orderValueCents
	}

	policy := h.manager.Policy()

	start := time.Now()
	result, err := h.manager.Engine().Evaluate(req.Order, fraction)
	duration := time.Since(start)
	if err != nil {
		h.toolFailure(w, r, "validate_discount_code", err)
		return
	}

	validation := ucp.ToValidationResult(result)

	decision := recorder.Decision{
		Tool:     "validate_discount_code",
		Policy:   policy,
		Order:    req.Order,
		Proposed: fraction,
		Result:   result,
		Duration: duration,
	}

	if !validation.Valid {
		max := h.constraints.MaxDiscount(req.Order)
		validation.MaxAllowed = math.Round(req.Order.OrderValue * max.MaxDiscount * 100)
		validation.LimitingFactor = max.LimitingFactor
		decision.MaxAllowed = validation.MaxAllowed
		decision.LimitingFactor = max.LimitingFactor
		if h.collector != nil {
			h.collector.RecordSolverCall(max.LimitingFactor)
		}
	}

	h.record(r, decision)
	if h.collector != nil {
		h.collector.RecordEvaluation(policy.ID, result.Approved, violationRules(result), duration)
	}

	writeJSON(w, http.StatusOK, validateDiscountCodeResponse{
		DiscountValidationResult: validation,
		Code:                     req.Code,
	})
}

// SimulateCheckoutDiscount simulates a UCP checkout with discount
// codes applied and returns the discount extension response with
// allocations.
func (h *ToolHandler) SimulateCheckoutDiscount(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req simulateCheckoutRequest
	if !h.decode(w, r, &req) {
		return
	}

	order := ucp.FromLineItems(req.LineItems, ucp.OrderOptions{
		ProductMargin: req.ProductMargin,
	})

	policy := h.manager.Policy()

	start := time.Now()
	result, err := h.manager.Engine().Evaluate(order, req.DiscountPercentage)
	duration := time.Since(start)
	if err != nil {
		h.toolFailure(w, r, "simulate_checkout_discount", err)
		return
	}

	// Order value is already in minor units here.
	amount := int64(math.Round(order.OrderValue * req.DiscountPercentage))
	title := fmt.Sprintf("%.0f%% Discount", req.DiscountPercentage*100)

	resp := simulateCheckoutResponse{
		DiscountExtensionResponse: ucp.BuildExtensionResponse(req.Codes, result, amount, title),
		Currency:                  req.Currency,
	}

	if result.Approved && len(req.LineItems) > 0 {
		allocations := ucp.Allocate(amount, req.LineItems, ucp.MethodAcross)
		if len(resp.Applied) > 0 {
			resp.Applied[0].Allocations = allocations
		}
		resp.Allocations = allocations
	}

	h.record(r, recorder.Decision{
		Tool:     "simulate_checkout_discount",
		Policy:   policy,
		Order:    order,
		Proposed: req.DiscountPercentage,
		Result:   result,
		Duration: duration,
	})
	if h.collector != nil {
		h.collector.RecordEvaluation(policy.ID, result.Approved, violationRules(result), duration)
	}

	writeJSON(w, http.StatusOK, resp)
}

// ActivePolicy serves the active policy document.
func (h *ToolHandler) ActivePolicy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeToolError(w, http.StatusMethodNotAllowed, errCodeMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, h.manager.Policy())
}

// Health serves the liveness probe.
func (h *ToolHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeToolError(w, http.StatusMethodNotAllowed, errCodeMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		PolicyID:  h.manager.Policy().ID,
		Timestamp: time.Now().Unix(),
	})
}

// record enqueues a decision record, stamping the request ID from the
// request context. Recording is best-effort; a full channel never
// blocks or fails the request.
func (h *ToolHandler) record(r *http.Request, d recorder.Decision) {
	if h.recorder == nil {
		return
	}
	d.RequestID = logging.GetRequestID(r.Context())
	if err := h.recorder.Record(d); err != nil {
		h.logger.Debug("decision not recorded", "tool", d.Tool, "error", err)
	}
}

// toolFailure reports an evaluation error as a structured tool error.
// Evaluation errors indicate a malformed policy, not a bad request.
func (h *ToolHandler) toolFailure(w http.ResponseWriter, r *http.Request, tool string, err error) {
	h.logger.Error("tool call failed",
		"tool", tool,
		"request_id", logging.GetRequestID(r.Context()),
		"error", err,
	)
	writeToolError(w, http.StatusInternalServerError, errCodeToolError, err.Error())
}

// limitDetails explains the binding constraint in negotiation terms.
func (h *ToolHandler) limitDetails(order engine.Order, result engine.MaxDiscountResult) string {
	switch result.LimitingFactor {
	case engine.LimitMarginFloor:
		return fmt.Sprintf("Limited by margin floor: %.0f%% margin - %.0f%% floor = %.0f%% max discount",
			order.ProductMargin*100, h.constraints.MarginFloor*100, (order.ProductMargin-h.constraints.MarginFloor)*100)
	case engine.LimitMaxDiscount:
		return fmt.Sprintf("Limited by absolute discount cap of %.0f%%", h.constraints.MaxDiscountCap*100)
	default:
		return fmt.Sprintf("Volume tier at quantity %d allows up to %.0f%% discount",
			order.Quantity, result.MaxDiscount*100)
	}
}

// decode parses the request body, reporting failures as structured
// tool errors.
func (h *ToolHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeToolError(w, http.StatusBadRequest, errCodeInvalidRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// describeRule explains a rule using the thresholds extracted from its
// conditions, falling back to a generic description for custom rules.
func describeRule(name string, s *insights.PolicySummary) string {
	switch name {
	case engine.RuleMarginFloor:
		if s.HasMarginFloor {
			return fmt.Sprintf("Ensures minimum margin of %.0f%% is maintained after discount", s.MarginFloorValue*100)
		}
		return "Ensures a minimum margin is maintained after discount"
	case engine.RuleMaxDiscount:
		if s.HasMaxDiscountCap {
			return fmt.Sprintf("Maximum discount cap of %.0f%% regardless of other factors", s.MaxDiscountCapValue*100)
		}
		return "Caps the maximum discount regardless of other factors"
	case engine.RuleVolumeTier:
		return "Limits the discount available below the volume quantity threshold"
	default:
		return fmt.Sprintf("Rule: %s", name)
	}
}

// summaryText renders the policy as negotiation guidance.
func summaryText(policyName string, rules []ruleDescription, s *insights.PolicySummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Policy: %s\n", policyName)
	b.WriteString("Rules:\n")
	for i, rule := range rules {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, rule.Name, rule.Description)
	}

	b.WriteString("\nTo maximize discount approval:\n")
	if s.HasVolumeRules {
		b.WriteString("- Increase order quantity to qualify for volume tier benefits\n")
	}
	b.WriteString("- Consider products with higher base margins\n")
	if s.HasMaxDiscountCap {
		fmt.Fprintf(&b, "- Stay within the %.0f%% maximum cap\n", s.MaxDiscountCapValue*100)
	}

	return strings.TrimSpace(b.String())
}

// violationRules flattens violations to their rule names for metrics.
func violationRules(result *engine.EvaluationResult) []string {
	rules := make([]string, 0, len(result.Violations))
	for _, v := range result.Violations {
		rules = append(rules, v.Rule)
	}
	return rules
}

// requirePost rejects non-POST methods with a structured error.
func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeToolError(w, http.StatusMethodNotAllowed, errCodeMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeToolError writes a structured tool error response.
func writeToolError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, toolError{
		Error:   true,
		Code:    code,
		Message: message,
	})
}
