package storage

import (
	"context"
	"sort"
	"sync"

	"guardrail-hq/meridian/pkg/evidence"
)

// MemoryStorage is an in-memory Storage implementation. Records are
// lost on process exit; use it for tests and ephemeral runs.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*evidence.DecisionRecord
}

// NewMemoryStorage creates an empty in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store appends a copy of the record.
func (s *MemoryStorage) Store(_ context.Context, record *evidence.DecisionRecord) error {
	cp := *record

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, &cp)
	return nil
}

// Query returns matching records, newest first.
func (s *MemoryStorage) Query(_ context.Context, query *evidence.Query) ([]*evidence.DecisionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*evidence.DecisionRecord, 0)
	for _, record := range s.records {
		if matches(record, query) {
			matched = append(matched, record)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].EvaluatedTime.After(matched[j].EvaluatedTime)
	})

	return paginate(matched, query), nil
}

// Count returns the number of matching records.
func (s *MemoryStorage) Count(_ context.Context, query *evidence.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matches(record, query) {
			count++
		}
	}
	return count, nil
}

// Delete removes matching records and returns how many were removed.
func (s *MemoryStorage) Delete(_ context.Context, query *evidence.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var deleted int64
	for _, record := range s.records {
		if matches(record, query) {
			deleted++
			continue
		}
		kept = append(kept, record)
	}
	s.records = kept
	return deleted, nil
}

// Close is a no-op for the in-memory backend.
func (s *MemoryStorage) Close() error {
	return nil
}

func matches(record *evidence.DecisionRecord, query *evidence.Query) bool {
	if query == nil {
		return true
	}
	if query.StartTime != nil && record.EvaluatedTime.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.EvaluatedTime.After(*query.EndTime) {
		return false
	}
	if query.PolicyID != "" && record.PolicyID != query.PolicyID {
		return false
	}
	if query.Tool != "" && record.Tool != query.Tool {
		return false
	}
	if query.CustomerSegment != "" && record.CustomerSegment != query.CustomerSegment {
		return false
	}
	if query.Approved != nil && record.Approved != *query.Approved {
		return false
	}
	return true
}

func paginate(records []*evidence.DecisionRecord, query *evidence.Query) []*evidence.DecisionRecord {
	if query == nil {
		return records
	}
	if query.Offset > 0 {
		if query.Offset >= len(records) {
			return []*evidence.DecisionRecord{}
		}
		records = records[query.Offset:]
	}
	if query.Limit > 0 && query.Limit < len(records) {
		records = records[:query.Limit]
	}
	return records
}
