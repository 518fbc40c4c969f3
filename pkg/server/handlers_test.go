package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"guardrail-hq/meridian/pkg/evidence"
	"guardrail-hq/meridian/pkg/evidence/recorder"
	"guardrail-hq/meridian/pkg/evidence/storage"
	"guardrail-hq/meridian/pkg/policy/engine"
	"guardrail-hq/meridian/pkg/policy/manager"
	"guardrail-hq/meridian/pkg/policy/source"
	"guardrail-hq/meridian/pkg/ucp"
)

func newTestHandler(t *testing.T, opts ToolHandlerOptions) *ToolHandler {
	t.Helper()

	m, err := manager.New(source.NewDefaultSource(), "", nil)
	if err != nil {
		t.Fatalf("manager.New() error = %v", err)
	}

	return NewToolHandler(m, opts)
}

func postJSON(t *testing.T, fn http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data))
	rr := httptest.NewRecorder()
	fn(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rr.Body.String(), err)
	}
}

func TestEvaluatePolicy_Approved(t *testing.T) {
	h := newTestHandler(t, ToolHandlerOptions{})

	rr := postJSON(t, h.EvaluatePolicy, evaluatePolicyRequest{
		Order: engine.Order{
			OrderValue:      10000,
			Quantity:        150,
			CustomerSegment: "gold",
			ProductMargin:   0.40,
		},
		ProposedDiscount: 0.08,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp evaluatePolicyResponse
	decodeBody(t, rr, &resp)

	if !resp.Approved {
		t.Errorf("Approved = false, want true: %+v", resp.Violations)
	}
	if resp.PolicyID != "default" {
		t.Errorf("PolicyID = %q, want %q", resp.PolicyID, "default")
	}
	if resp.PolicyName == "" {
		t.Error("PolicyName is empty")
	}
	if math.Abs(resp.CalculatedMargin-0.32) > 1e-9 {
		t.Errorf("CalculatedMargin = %v, want 0.32", resp.CalculatedMargin)
	}
}

func TestEvaluatePolicy_Rejected(t *testing.T) {
	h := newTestHandler(t, ToolHandlerOptions{})

	rr := postJSON(t, h.EvaluatePolicy, evaluatePolicyRequest{
		Order: engine.Order{
			OrderValue:    10000,
			Quantity:      150,
			ProductMargin: 0.40,
		},
		ProposedDiscount: 0.30,
	})

	var resp evaluatePolicyResponse
	decodeBody(t, rr, &resp)

	if resp.Approved {
		t.Fatal("Approved = true, want false for a 30% discount")
	}
	if len(resp.Violations) == 0 {
		t.Fatal("Violations is empty")
	}

	found := false
	for _, v := range resp.Violations {
		if v.Rule == engine.RuleMaxDiscount {
			found = true
		}
	}
	if !found {
		t.Errorf("Violations = %+v, want a %q entry", resp.Violations, engine.RuleMaxDiscount)
	}
}

func TestEvaluatePolicy_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, ToolHandlerOptions{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.EvaluatePolicy(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}

	var resp toolError
	decodeBody(t, rr, &resp)
	if !resp.Error || resp.Code != errCodeMethodNotAllowed {
		t.Errorf("error = %+v, want code %q", resp, errCodeMethodNotAllowed)
	}
}

func TestEvaluatePolicy_BadJSON(t *testing.T) {
	h := newTestHandler(t, ToolHandlerOptions{})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	h.EvaluatePolicy(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	var resp toolError
	decodeBody(t, rr, &resp)
	if resp.Code != errCodeInvalidRequest {
		t.Errorf("code = %q, want %q", resp.Code, errCodeInvalidRequest)
	}
}

func TestGetPolicySummary(t *testing.T) {
	h := newTestHandler(t, ToolHandlerOptions{})

	rr := postJSON(t, h.GetPolicySummary, struct{}{})

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp policySummaryResponse
	decodeBody(t, rr, &resp)

	if resp.PolicyID != "default" {
		t.Errorf("PolicyID = %q, want %q", resp.PolicyID, "default")
	}
	if len(resp.Rules) != 3 {
		t.Fatalf("got %d rules, want 3: %+v", len(resp.Rules), resp.Rules)
	}
	if !strings.Contains(resp.Summary, "Policy: Default Pricing Policy") {
		t.Errorf("Summary missing policy name:\n%s", resp.Summary)
	}
	if !strings.Contains(resp.Summary, "25% maximum cap") {
		t.Errorf("Summary missing cap guidance:\n%s", resp.Summary)
	}

	for _, rule := range resp.Rules {
		if rule.Description == "" {
			t.Errorf("rule %q has no description", rule.Name)
		}
	}
}

func TestGetMaxDiscount(t *testing.T) {
	tests := []struct {
		name          string
		order         engine.Order
		wantMax       float64
		wantLimiting  string
		wantInDetails string
	}{
		{
			name:          "volume tier binds at high margin",
			order:         engine.Order{OrderValue: 10000, Quantity: 150, ProductMargin: 0.40},
			wantMax:       0.15,
			wantLimiting:  engine.LimitVolumeTier,
			wantInDetails: "Volume tier",
		},
		{
			name:          "margin floor binds at thin margin",
			order:         engine.Order{OrderValue: 5000, Quantity: 50, ProductMargin: 0.20},
			wantMax:       0.05,
			wantLimiting:  engine.LimitMarginFloor,
			wantInDetails: "margin floor",
		},
		{
			name:          "below-floor margin clamps to zero",
			order:         engine.Order{OrderValue: 5000, Quantity: 50, ProductMargin: 0.10},
			wantMax:       0,
			wantLimiting:  engine.LimitMarginFloor,
			wantInDetails: "margin floor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, ToolHandlerOptions{})

			rr := postJSON(t, h.GetMaxDiscount, maxDiscountRequest{Order: tt.order})
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
			}

			var resp maxDiscountResponse
			decodeBody(t, rr, &resp)

			if math.Abs(resp.MaxDiscount-tt.wantMax) > 1e-9 {
				t.Errorf("MaxDiscount = %v, want %v", resp.MaxDiscount, tt.wantMax)
			}
			if resp.LimitingFactor != tt.wantLimiting {
				t.Errorf("LimitingFactor = %q, want %q", resp.LimitingFactor, tt.wantLimiting)
			}
			if !strings.Contains(resp.Details, tt.wantInDetails) {
				t.Errorf("Details = %q, want mention of %q", resp.Details, tt.wantInDetails)
			}
		})
	}
}

func TestValidateDiscountCode_Valid(t *testing.T) {
	h := newTestHandler(t, ToolHandlerOptions{})

	// 8% of a $10000 order, expressed in cents.
	rr := postJSON(t, h.ValidateDiscountCode, validateDiscountCodeRequest{
		Code:           "SPRING8",
		DiscountAmount: 80000,
		Order:          engine.Order{OrderValue: 10000, Quantity: 150, ProductMargin: 0.40},
	})

	var resp validateDiscountCodeResponse
	decodeBody(t, rr, &resp)

	if !resp.Valid {
		t.Fatalf("Valid = false, want true: %+v", resp)
	}
	if resp.Code != "SPRING8" {
		t.Errorf("Code = %q, want %q", resp.Code, "SPRING8")
	}
}

func TestValidateDiscountCode_Rejected(t *testing.T) {
	h := newTestHandler(t, ToolHandlerOptions{})

	// 30% of a $10000 order exceeds the cap.
	rr := postJSON(t, h.ValidateDiscountCode, validateDiscountCodeRequest{
		Code:           "BIGDEAL",
		DiscountAmount: 300000,
		Order:          engine.Order{OrderValue: 10000, Quantity: 150, ProductMargin: 0.40},
	})

	var resp validateDiscountCodeResponse
	decodeBody(t, rr, &resp)

	if resp.Valid {
		t.Fatal("Valid = true, want false for a 30% discount")
	}
	if resp.ErrorCode == "" {
		t.Error("ErrorCode is empty")
	}

	// Volume tier allows 15% at 150 units: $1500 in cents.
	if resp.MaxAllowed != 150000 {
		t.Errorf("MaxAllowed = %v, want 150000", resp.MaxAllowed)
	}
	if resp.LimitingFactor != engine.LimitVolumeTier {
		t.Errorf("LimitingFactor = %q, want %q", resp.LimitingFactor, engine.LimitVolumeTier)
	}
}

func TestValidateDiscountCode_ZeroOrderValue(t *testing.T) {
	h := newTestHandler(t, ToolHandlerOptions{})

	rr := postJSON(t, h.ValidateDiscountCode, validateDiscountCodeRequest{
		Code:           "FREEBIE",
		DiscountAmount: 5000,
		Order:          engine.Order{OrderValue: 0, Quantity: 10, ProductMargin: 0.40},
	})

	var resp validateDiscountCodeResponse
	decodeBody(t, rr, &resp)

	// Zero order value normalizes to a zero discount fraction, which
	// violates nothing.
	if !resp.Valid {
		t.Errorf("Valid = false, want true: %+v", resp)
	}
}

func TestSimulateCheckoutDiscount_Approved(t *testing.T) {
	h := newTestHandler(t, ToolHandlerOptions{})

	rr := postJSON(t, h.SimulateCheckoutDiscount, simulateCheckoutRequest{
		Codes:    []string{"VOLUME10"},
		Currency: "USD",
		LineItems: []ucp.LineItem{
			{
				Item:     ucp.Item{ID: "widget"},
				Quantity: 100,
				Totals:   []ucp.Total{{Type: ucp.TotalSubtotal, Amount: 3000}},
			},
			{
				Item:     ucp.Item{ID: "gadget"},
				Quantity: 50,
				Totals:   []ucp.Total{{Type: ucp.TotalSubtotal, Amount: 7000}},
			},
		},
		DiscountPercentage: 0.10,
		ProductMargin:      0.40,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp simulateCheckoutResponse
	decodeBody(t, rr, &resp)

	if resp.Currency != "USD" {
		t.Errorf("Currency = %q, want %q", resp.Currency, "USD")
	}
	if len(resp.Applied) != 1 {
		t.Fatalf("got %d applied discounts, want 1: %+v", len(resp.Applied), resp)
	}
	if resp.Applied[0].Code != "VOLUME10" {
		t.Errorf("Applied[0].Code = %q, want %q", resp.Applied[0].Code, "VOLUME10")
	}

	// 10% of 10000 minor units, spread proportionally.
	if resp.Applied[0].Amount != 1000 {
		t.Errorf("Applied[0].Amount = %d, want 1000", resp.Applied[0].Amount)
	}

	want := []ucp.DiscountAllocation{
		{Target: "$.line_items[0]", Amount: 300},
		{Target: "$.line_items[1]", Amount: 700},
	}
	if len(resp.Allocations) != len(want) {
		t.Fatalf("got %d allocations, want %d: %+v", len(resp.Allocations), len(want), resp.Allocations)
	}
	for i, alloc := range resp.Allocations {
		if alloc != want[i] {
			t.Errorf("Allocations[%d] = %+v, want %+v", i, alloc, want[i])
		}
	}
	if len(resp.Applied[0].Allocations) != len(want) {
		t.Errorf("Applied[0].Allocations = %+v, want the same breakdown", resp.Applied[0].Allocations)
	}
}

func TestSimulateCheckoutDiscount_Rejected(t *testing.T) {
	h := newTestHandler(t, ToolHandlerOptions{})

	rr := postJSON(t, h.SimulateCheckoutDiscount, simulateCheckoutRequest{
		Codes:    []string{"TOOMUCH"},
		Currency: "USD",
		LineItems: []ucp.LineItem{
			{
				Item:     ucp.Item{ID: "widget"},
				Quantity: 10,
				Totals:   []ucp.Total{{Type: ucp.TotalSubtotal, Amount: 10000}},
			},
		},
		DiscountPercentage: 0.30,
		ProductMargin:      0.40,
	})

	var resp simulateCheckoutResponse
	decodeBody(t, rr, &resp)

	if len(resp.Applied) != 0 {
		t.Errorf("Applied = %+v, want empty for a rejected discount", resp.Applied)
	}
	if len(resp.Messages) == 0 {
		t.Error("Messages is empty, want rejection messages")
	}
	if len(resp.Allocations) != 0 {
		t.Errorf("Allocations = %+v, want none", resp.Allocations)
	}
}

func TestActivePolicy(t *testing.T) {
	h := newTestHandler(t, ToolHandlerOptions{})

	req := httptest.NewRequest(http.MethodGet, "/policies/active", nil)
	rr := httptest.NewRecorder()
	h.ActivePolicy(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var policy engine.Policy
	decodeBody(t, rr, &policy)

	if policy.ID != "default" {
		t.Errorf("policy ID = %q, want %q", policy.ID, "default")
	}
	if len(policy.Rules) != 3 {
		t.Errorf("got %d rules, want 3", len(policy.Rules))
	}

	// Writes are not accepted on the resource.
	rr = httptest.NewRecorder()
	h.ActivePolicy(rr, httptest.NewRequest(http.MethodPost, "/policies/active", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, ToolHandlerOptions{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.Health(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp healthResponse
	decodeBody(t, rr, &resp)

	if resp.Status != "ok" {
		t.Errorf("Status = %q, want %q", resp.Status, "ok")
	}
	if resp.PolicyID != "default" {
		t.Errorf("PolicyID = %q, want %q", resp.PolicyID, "default")
	}
}

func TestEvaluatePolicy_RecordsEvidence(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := recorder.NewRecorder(store, nil, nil)

	h := newTestHandler(t, ToolHandlerOptions{Recorder: rec})

	postJSON(t, h.EvaluatePolicy, evaluatePolicyRequest{
		Order:            engine.Order{OrderValue: 10000, Quantity: 150, ProductMargin: 0.40},
		ProposedDiscount: 0.08,
	})

	// Close drains the async channel before we query.
	if err := rec.Close(); err != nil {
		t.Fatalf("recorder.Close() error = %v", err)
	}

	records, err := store.Query(context.Background(), &evidence.Query{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	record := records[0]
	if record.Tool != "evaluate_policy" {
		t.Errorf("Tool = %q, want %q", record.Tool, "evaluate_policy")
	}
	if !record.Approved {
		t.Error("Approved = false, want true")
	}
	if record.PolicyID != "default" {
		t.Errorf("PolicyID = %q, want %q", record.PolicyID, "default")
	}
}
