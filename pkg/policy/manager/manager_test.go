package manager

import (
	"testing"

	"guardrail-hq/meridian/pkg/policy/engine"
	"guardrail-hq/meridian/pkg/policy/source"
)

func TestManager_InitialLoad(t *testing.T) {
	m, err := New(source.NewDefaultSource(), "", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer m.Close()

	if got := m.Policy().ID; got != "default" {
		t.Errorf("active policy = %q, want %q", got, "default")
	}

	result, err := m.Engine().Evaluate(engine.Order{OrderValue: 1000, Quantity: 50, ProductMargin: 0.4}, 0.08)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !result.Approved {
		t.Errorf("expected approval, got violations %v", result.Violations)
	}
}

func TestManager_SelectsByPolicyID(t *testing.T) {
	other := &engine.Policy{
		ID:   "lenient",
		Name: "Lenient",
		Rules: []*engine.PolicyRule{
			{
				Name: "max_discount",
				Conditions: &engine.Condition{
					All: []*engine.Condition{
						{Fact: engine.FactProposedDiscount, Operator: engine.OperatorGreaterThan, Value: 0.5},
					},
				},
				Event: engine.Event{Type: "violation", Params: engine.EventParams{Rule: "max_discount", Message: "m"}},
			},
		},
	}

	m, err := New(source.NewMemorySource(engine.DefaultPolicy(), other), "lenient", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer m.Close()

	if got := m.Policy().ID; got != "lenient" {
		t.Errorf("active policy = %q, want %q", got, "lenient")
	}
}

func TestManager_UnknownPolicyID(t *testing.T) {
	if _, err := New(source.NewDefaultSource(), "nonexistent", nil); err == nil {
		t.Fatal("New() succeeded with an unknown policy id")
	}
}

func TestManager_ReloadSwapsEngine(t *testing.T) {
	m, err := New(source.NewDefaultSource(), "", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer m.Close()

	before := m.Engine()
	if err := m.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	after := m.Engine()

	if before == after {
		t.Error("Reload() must construct a fresh engine, not mutate the active one")
	}
	if before.Policy().ID != after.Policy().ID {
		t.Errorf("reload changed policy from %q to %q unexpectedly", before.Policy().ID, after.Policy().ID)
	}
}

// failingSource loads successfully once, then fails.
type failingSource struct {
	loads int
}

func (s *failingSource) LoadPolicies() ([]*engine.Policy, error) {
	s.loads++
	if s.loads > 1 {
		return nil, errBoom
	}
	return []*engine.Policy{engine.DefaultPolicy()}, nil
}

var errBoom = &engine.ValidationError{PolicyID: "boom", Errors: []string{"synthetic failure"}}

func TestManager_FailedReloadKeepsEngine(t *testing.T) {
	m, err := New(&failingSource{}, "", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer m.Close()

	before := m.Engine()
	if err := m.Reload(); err == nil {
		t.Fatal("Reload() should have failed")
	}
	if m.Engine() != before {
		t.Error("failed reload must keep the previous engine active")
	}
}
