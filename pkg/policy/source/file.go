package source

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"guardrail-hq/meridian/pkg/policy/engine"
)

// Source provides policies to the policy manager.
type Source interface {
	// LoadPolicies loads all policies from the source. Every returned
	// policy has passed static validation.
	LoadPolicies() ([]*engine.Policy, error)
}

// FileSource loads policies from YAML files on disk. The path may be a
// single file or a directory; for a directory, every .yaml and .yml file
// is loaded. A malformed policy file fails the whole load: silently
// skipping a governance policy is worse than refusing to start.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a file-based policy source.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		logger: logger.With("component", "policy.source"),
	}
}

// LoadPolicies loads all policies from the configured path.
func (s *FileSource) LoadPolicies() ([]*engine.Policy, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %q: %w", s.path, err)
	}

	var policies []*engine.Policy

	if info.IsDir() {
		policies, err = s.loadDirectory()
	} else {
		var policy *engine.Policy
		policy, err = s.loadFile(s.path)
		policies = []*engine.Policy{policy}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("loaded policies from source",
		"path", s.path,
		"policy_count", len(policies),
	)

	return policies, nil
}

// loadDirectory loads every policy file in a directory tree.
func (s *FileSource) loadDirectory() ([]*engine.Policy, error) {
	var policies []*engine.Policy

	err := filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		policy, err := s.loadFile(path)
		if err != nil {
			return err
		}

		policies = append(policies, policy)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to load policy directory %q: %w", s.path, err)
	}

	if len(policies) == 0 {
		return nil, fmt.Errorf("no policy files found in %q", s.path)
	}

	return policies, nil
}

// loadFile parses and validates a single policy file.
func (s *FileSource) loadFile(path string) (*engine.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %q: %w", path, err)
	}

	var policy engine.Policy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("failed to parse policy file %q: %w", path, err)
	}

	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("policy file %q: %w", path, err)
	}

	s.logger.Debug("loaded policy file",
		"path", path,
		"policy_id", policy.ID,
		"rule_count", len(policy.Rules),
	)

	return &policy, nil
}
