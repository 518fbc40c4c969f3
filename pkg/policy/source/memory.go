package source

import "guardrail-hq/meridian/pkg/policy/engine"

// MemorySource serves policies constructed in code. Used for the built-in
// default policy and in tests.
type MemorySource struct {
	policies []*engine.Policy
}

// NewMemorySource creates a source over the given policies.
func NewMemorySource(policies ...*engine.Policy) *MemorySource {
	return &MemorySource{policies: policies}
}

// NewDefaultSource creates a source serving only the built-in pricing policy.
func NewDefaultSource() *MemorySource {
	return NewMemorySource(engine.DefaultPolicy())
}

// LoadPolicies validates and returns the configured policies.
func (s *MemorySource) LoadPolicies() ([]*engine.Policy, error) {
	for _, policy := range s.policies {
		if err := policy.Validate(); err != nil {
			return nil, err
		}
	}
	return s.policies, nil
}
