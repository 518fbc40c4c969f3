package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"guardrail-hq/meridian/pkg/policy/engine"
	"guardrail-hq/meridian/pkg/policy/source"
)

// Manager holds the active policy engine and replaces it wholesale on
// reload. Safe for concurrent use: readers get a consistent engine for the
// duration of a call even while a reload swaps the active one.
type Manager struct {
	source   source.Source
	policyID string
	logger   *slog.Logger

	mu     sync.RWMutex
	engine *engine.Engine

	watcher *FileWatcher
	wg      sync.WaitGroup
}

// New creates a manager and performs the initial policy load. policyID
// selects which of the source's policies becomes active; when empty, the
// first policy wins.
func New(src source.Source, policyID string, logger *slog.Logger) (*Manager, error) {
	if src == nil {
		return nil, fmt.Errorf("policy source cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		source:   src,
		policyID: policyID,
		logger:   logger.With("component", "policy.manager"),
	}

	if err := m.Reload(); err != nil {
		return nil, fmt.Errorf("initial policy load failed: %w", err)
	}

	return m, nil
}

// Engine returns the active engine. The returned engine stays valid after
// a reload; callers should not cache it across requests.
func (m *Manager) Engine() *engine.Engine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.engine
}

// Policy returns the active policy.
func (m *Manager) Policy() *engine.Policy {
	return m.Engine().Policy()
}

// Reload loads policies from the source, constructs a fresh engine for the
// selected policy, and swaps it in atomically. On failure the previously
// active engine is kept.
func (m *Manager) Reload() error {
	policies, err := m.source.LoadPolicies()
	if err != nil {
		return err
	}

	policy, err := m.selectPolicy(policies)
	if err != nil {
		return err
	}

	eng, err := engine.New(policy, m.logger)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.engine = eng
	m.mu.Unlock()

	m.logger.Info("policy activated",
		"policy_id", policy.ID,
		"policy_name", policy.Name,
		"rule_count", len(policy.Rules),
	)

	return nil
}

// selectPolicy picks the active policy from the loaded set.
func (m *Manager) selectPolicy(policies []*engine.Policy) (*engine.Policy, error) {
	if len(policies) == 0 {
		return nil, fmt.Errorf("source returned no policies")
	}

	if m.policyID == "" {
		return policies[0], nil
	}

	for _, policy := range policies {
		if policy.ID == m.policyID {
			return policy, nil
		}
	}

	return nil, fmt.Errorf("policy %q not found in source", m.policyID)
}

// WatchFiles starts watching the given path for policy file changes and
// reloads on each change. Returns immediately; watching stops when the
// context is cancelled or Close is called.
func (m *Manager) WatchFiles(ctx context.Context, path string) error {
	watcher, err := NewFileWatcher(&FileWatcherConfig{Path: path}, m.logger)
	if err != nil {
		return err
	}
	m.watcher = watcher

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := watcher.Watch(ctx, m.Reload); err != nil {
			m.logger.Error("policy file watcher stopped", "error", err)
		}
	}()

	return nil
}

// Close stops the file watcher, if any, and waits for it to finish.
func (m *Manager) Close() error {
	if m.watcher != nil {
		if err := m.watcher.Stop(); err != nil {
			return err
		}
	}
	m.wg.Wait()
	return nil
}
