package main

import (
	"os"
	"path/filepath"
	"testing"
)

const validPolicyYAML = `
id: test
name: Test Policy
rules:
  - name: margin_floor
    priority: 10
    conditions:
      all:
        - fact: calculated_margin
          operator: lessThan
          value: 0.15
    event:
      type: violation
      params:
        rule: margin_floor
        message: Margin below 15% floor
  - name: max_discount
    priority: 9
    conditions:
      all:
        - fact: proposed_discount
          operator: greaterThan
          value: 0.25
    event:
      type: violation
      params:
        rule: max_discount
        message: Discount exceeds 25% cap
  - name: volume_tier
    priority: 8
    conditions:
      all:
        - fact: proposed_discount
          operator: greaterThan
          value: 0.10
        - fact: quantity
          operator: lessThan
          value: 100
    event:
      type: violation
      params:
        rule: volume_tier
        message: Volume tier limit exceeded
`

const invalidPolicyYAML = `
id: broken
name: Broken Policy
rules:
  - name: bad_rule
    conditions:
      all:
        - fact: calculated_margin
          operator: approximately
          value: 0.15
    event:
      type: violation
      params:
        rule: bad_rule
        message: Bad
`

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write policy file: %v", err)
	}
	return path
}

func TestLintPolicies_ValidFile(t *testing.T) {
	lintFlags.file = writePolicy(t, validPolicyYAML)
	lintFlags.dir = ""
	lintFlags.strict = false
	lintFlags.format = "text"

	if err := lintPolicies(nil, nil); err != nil {
		t.Errorf("lintPolicies() with valid file returned error: %v", err)
	}
}

func TestLintPolicies_InvalidOperator(t *testing.T) {
	lintFlags.file = writePolicy(t, invalidPolicyYAML)
	lintFlags.dir = ""
	lintFlags.strict = false
	lintFlags.format = "text"

	if err := lintPolicies(nil, nil); err == nil {
		t.Error("lintPolicies() with an unknown operator should return error")
	}
}

func TestLintPolicies_NonexistentFile(t *testing.T) {
	lintFlags.file = filepath.Join(t.TempDir(), "nonexistent.yaml")
	lintFlags.dir = ""
	lintFlags.strict = false
	lintFlags.format = "text"

	if err := lintPolicies(nil, nil); err == nil {
		t.Error("lintPolicies() with nonexistent file should return error")
	}
}

func TestLintPolicies_NoFileOrDir(t *testing.T) {
	lintFlags.file = ""
	lintFlags.dir = ""
	lintFlags.strict = false
	lintFlags.format = "text"

	if err := lintPolicies(nil, nil); err == nil {
		t.Error("lintPolicies() without --file or --dir should return error")
	}
}

func TestLintPolicyFile_ReportsFindings(t *testing.T) {
	// A policy with only a cap rule misses the margin floor and more.
	path := writePolicy(t, `
id: sparse
name: Sparse Policy
rules:
  - name: max_discount
    conditions:
      all:
        - fact: proposed_discount
          operator: greaterThan
          value: 0.25
    event:
      type: violation
      params:
        rule: max_discount
        message: Discount exceeds cap
`)

	result := lintPolicyFile(path)

	if result.Valid {
		t.Error("Valid = true, want false for a policy without a margin floor")
	}
	if len(result.Findings) == 0 {
		t.Fatal("Findings is empty, want health findings")
	}
}
