package engine

import (
	"errors"
	"testing"
)

// testFacts returns the fact snapshot for a typical mid-size order.
func testFacts() Facts {
	return Facts{
		FactOrderValue:       float64(5000),
		FactQuantity:         float64(120),
		FactCustomerSegment:  "gold",
		FactProductMargin:    0.40,
		FactProposedDiscount: 0.12,
		FactCalculatedMargin: 0.28,
	}
}

func TestMatcher_Leaf(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		name      string
		condition *Condition
		wantMatch bool
	}{
		{
			name:      "numeric greater than matches",
			condition: &Condition{Fact: FactQuantity, Operator: OperatorGreaterThan, Value: 100},
			wantMatch: true,
		},
		{
			name:      "numeric less than does not match",
			condition: &Condition{Fact: FactCalculatedMargin, Operator: OperatorLessThan, Value: 0.15},
			wantMatch: false,
		},
		{
			name:      "segment equality matches",
			condition: &Condition{Fact: FactCustomerSegment, Operator: OperatorEqual, Value: "gold"},
			wantMatch: true,
		},
		{
			name:      "segment membership matches",
			condition: &Condition{Fact: FactCustomerSegment, Operator: OperatorIn, Value: []string{"gold", "platinum"}},
			wantMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, err := m.Match(tt.condition, testFacts())
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}
			if matched != tt.wantMatch {
				t.Errorf("Match() = %v, want %v", matched, tt.wantMatch)
			}
		})
	}
}

func TestMatcher_Combinators(t *testing.T) {
	m := NewMatcher()

	trueLeaf := &Condition{Fact: FactQuantity, Operator: OperatorGreaterThan, Value: 100}
	falseLeaf := &Condition{Fact: FactProposedDiscount, Operator: OperatorGreaterThan, Value: 0.25}

	tests := []struct {
		name      string
		condition *Condition
		wantMatch bool
	}{
		{
			name:      "all - every child true",
			condition: &Condition{All: []*Condition{trueLeaf, trueLeaf}},
			wantMatch: true,
		},
		{
			name:      "all - one child false",
			condition: &Condition{All: []*Condition{trueLeaf, falseLeaf}},
			wantMatch: false,
		},
		{
			name:      "any - one child true",
			condition: &Condition{Any: []*Condition{falseLeaf, trueLeaf}},
			wantMatch: true,
		},
		{
			name:      "any - no child true",
			condition: &Condition{Any: []*Condition{falseLeaf, falseLeaf}},
			wantMatch: false,
		},
		{
			name: "nested any inside all",
			condition: &Condition{
				All: []*Condition{
					trueLeaf,
					{Any: []*Condition{falseLeaf, trueLeaf}},
				},
			},
			wantMatch: true,
		},
		{
			name: "three levels deep",
			condition: &Condition{
				All: []*Condition{
					{Any: []*Condition{
						{All: []*Condition{trueLeaf, trueLeaf}},
						falseLeaf,
					}},
				},
			},
			wantMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, err := m.Match(tt.condition, testFacts())
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}
			if matched != tt.wantMatch {
				t.Errorf("Match() = %v, want %v", matched, tt.wantMatch)
			}
		})
	}
}

func TestMatcher_ConfigurationErrors(t *testing.T) {
	m := NewMatcher()

	t.Run("unknown fact", func(t *testing.T) {
		_, err := m.Match(&Condition{Fact: "order_total", Operator: OperatorGreaterThan, Value: 100}, testFacts())
		var unknownFact *UnknownFactError
		if !errors.As(err, &unknownFact) {
			t.Fatalf("expected UnknownFactError, got %v", err)
		}
		if unknownFact.Fact != "order_total" {
			t.Errorf("UnknownFactError.Fact = %q, want %q", unknownFact.Fact, "order_total")
		}
	})

	t.Run("empty all combinator", func(t *testing.T) {
		_, err := m.Match(&Condition{All: []*Condition{}}, testFacts())
		var empty *EmptyConditionError
		if !errors.As(err, &empty) {
			t.Fatalf("expected EmptyConditionError, got %v", err)
		}
	})

	t.Run("malformed node", func(t *testing.T) {
		cond := &Condition{
			Fact: FactQuantity,
			All:  []*Condition{{Fact: FactQuantity, Operator: OperatorEqual, Value: 1}},
		}
		_, err := m.Match(cond, testFacts())
		var malformed *MalformedConditionError
		if !errors.As(err, &malformed) {
			t.Fatalf("expected MalformedConditionError, got %v", err)
		}
	})

	t.Run("error in nested child propagates", func(t *testing.T) {
		cond := &Condition{
			All: []*Condition{
				{Fact: FactQuantity, Operator: OperatorGreaterThan, Value: 1},
				{Any: []*Condition{
					{Fact: "nonexistent", Operator: OperatorEqual, Value: 1},
				}},
			},
		}
		_, err := m.Match(cond, testFacts())
		var unknownFact *UnknownFactError
		if !errors.As(err, &unknownFact) {
			t.Fatalf("expected UnknownFactError from nested child, got %v", err)
		}
	})
}
