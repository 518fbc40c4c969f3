package storage

import (
	"context"
	"testing"
	"time"

	"guardrail-hq/meridian/pkg/evidence"
)

func testRecord(id string, evaluated time.Time, approved bool) *evidence.DecisionRecord {
	return &evidence.DecisionRecord{
		ID:               id,
		RequestID:        "req-" + id,
		EvaluatedTime:    evaluated,
		RecordedTime:     evaluated,
		Tool:             "evaluate_policy",
		PolicyID:         "default",
		PolicyName:       "Default",
		OrderValue:       1000,
		Quantity:         50,
		CustomerSegment:  "enterprise",
		ProductMargin:    0.4,
		ProposedDiscount: 0.1,
		CalculatedMargin: 0.3,
		Approved:         approved,
		Violations:       []string{},
		AppliedRules:     []string{},
	}
}

func TestMemoryStorage_StoreAndQuery(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	defer s.Close()

	base := time.Now().Add(-time.Hour)
	for i, approved := range []bool{true, false, true} {
		record := testRecord(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute), approved)
		if err := s.Store(ctx, record); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	all, err := s.Query(ctx, nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d records, want 3", len(all))
	}
	// Newest first.
	if all[0].ID != "c" || all[2].ID != "a" {
		t.Errorf("order = [%s %s %s], want [c b a]", all[0].ID, all[1].ID, all[2].ID)
	}

	rejected := false
	onlyRejected, err := s.Query(ctx, &evidence.Query{Approved: &rejected})
	if err != nil {
		t.Fatalf("Query(approved=false) error = %v", err)
	}
	if len(onlyRejected) != 1 || onlyRejected[0].ID != "b" {
		t.Errorf("rejected query returned %d records, want just b", len(onlyRejected))
	}
}

func TestMemoryStorage_QueryTimeRange(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	defer s.Close()

	base := time.Now().Add(-3 * time.Hour)
	for i := 0; i < 3; i++ {
		if err := s.Store(ctx, testRecord(string(rune('a'+i)), base.Add(time.Duration(i)*time.Hour), true)); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	start := base.Add(30 * time.Minute)
	end := base.Add(90 * time.Minute)
	got, err := s.Query(ctx, &evidence.Query{StartTime: &start, EndTime: &end})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("time-range query returned %d records, want just b", len(got))
	}
}

func TestMemoryStorage_Pagination(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	defer s.Close()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		if err := s.Store(ctx, testRecord(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute), true)); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	page, err := s.Query(ctx, &evidence.Query{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(page) != 2 || page[0].ID != "d" || page[1].ID != "c" {
		t.Errorf("page = %v, want [d c]", page)
	}

	empty, err := s.Query(ctx, &evidence.Query{Offset: 10})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("out-of-range offset returned %d records, want 0", len(empty))
	}
}

func TestMemoryStorage_CountAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	defer s.Close()

	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now().Add(-time.Hour)
	if err := s.Store(ctx, testRecord("old", old, true)); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := s.Store(ctx, testRecord("recent", recent, true)); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	count, err := s.Count(ctx, nil)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	deleted, err := s.Delete(ctx, &evidence.Query{EndTime: &cutoff})
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("Delete() = %d, want 1", deleted)
	}

	remaining, _ := s.Query(ctx, nil)
	if len(remaining) != 1 || remaining[0].ID != "recent" {
		t.Errorf("remaining = %v, want just the recent record", remaining)
	}
}

func TestMemoryStorage_StoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	defer s.Close()

	record := testRecord("x", time.Now(), true)
	if err := s.Store(ctx, record); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	record.PolicyID = "mutated"

	got, _ := s.Query(ctx, nil)
	if got[0].PolicyID != "default" {
		t.Error("Store() must copy the record, caller mutation leaked in")
	}
}
