package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"guardrail-hq/meridian/pkg/cli"
	"guardrail-hq/meridian/pkg/insights"
	"guardrail-hq/meridian/pkg/policy/source"
	"guardrail-hq/meridian/pkg/telemetry/logging"
)

var lintFlags struct {
	file   string
	dir    string
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate policy files",
	Long: `Validate policy files for structural and health problems.

The lint command parses policy files and performs comprehensive validation:
  - YAML syntax validation
  - Policy structure validation (facts, operators, condition trees)
  - Policy health checks (missing margin floor, cap sanity, priorities)

Examples:
  # Lint single file
  meridian lint --file policies.yaml

  # Lint directory
  meridian lint --dir policies/

  # Strict mode (warnings as errors)
  meridian lint --file policies.yaml --strict

  # JSON output for CI/CD
  meridian lint --file policies.yaml --format json`,
	RunE: lintPolicies,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "policy file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of policy files")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// LintResult is the validation outcome for a single policy file.
type LintResult struct {
	File     string             `json:"file"`
	Valid    bool               `json:"valid"`
	Errors   []string           `json:"errors,omitempty"`
	Findings []insights.Finding `json:"findings,omitempty"`
}

func lintPolicies(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string

	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}

	if lintFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list policy files: %w", err)
			}
			files = append(files, matches...)
		}
	}

	if len(files) == 0 {
		return fmt.Errorf("no policy files found")
	}

	results := make([]LintResult, 0, len(files))
	for _, file := range files {
		results = append(results, lintPolicyFile(file))
	}

	if lintFlags.format == "json" {
		return outputLintJSON(results)
	}
	return outputLintText(results, lintFlags.strict)
}

// lintPolicyFile validates one policy file and runs the health checks
// over every policy it defines.
func lintPolicyFile(path string) LintResult {
	result := LintResult{
		File:  path,
		Valid: true,
	}

	quiet, _ := logging.New(logging.Config{Level: "error", Format: "text", Writer: os.Stderr})

	policies, err := source.NewFileSource(path, quiet).LoadPolicies()
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	for _, policy := range policies {
		result.Findings = append(result.Findings, insights.Analyze(policy)...)
	}

	for _, finding := range result.Findings {
		if finding.Severity == insights.SeverityCritical {
			result.Valid = false
		}
	}

	return result
}

func outputLintText(results []LintResult, strict bool) error {
	totalErrors := 0
	totalWarnings := 0

	for _, result := range results {
		fmt.Printf("Validating %s...\n", result.File)

		if len(result.Errors) == 0 {
			fmt.Println("✓ Syntax valid")
			fmt.Println("✓ All rules have valid conditions")
		}

		for _, msg := range result.Errors {
			fmt.Printf("✗ Error: %s\n", msg)
			totalErrors++
		}

		for _, finding := range result.Findings {
			switch finding.Severity {
			case insights.SeverityCritical:
				fmt.Printf("✗ Error: %s [%s]\n", finding.Message, finding.ID)
				totalErrors++
			case insights.SeverityWarning:
				fmt.Printf("⚠  Warning: %s [%s]\n", finding.Message, finding.ID)
				totalWarnings++
			default:
				fmt.Printf("   Info: %s [%s]\n", finding.Message, finding.ID)
			}
			if finding.Suggestion != "" {
				fmt.Printf("   Suggestion: %s\n", finding.Suggestion)
			}
		}

		fmt.Println()
	}

	fmt.Println("Summary:")
	fmt.Printf("  %d error(s), %d warning(s)\n", totalErrors, totalWarnings)

	if strict && totalWarnings > 0 {
		fmt.Println("  Strict mode enabled: treating warnings as errors")
		return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
	}

	if totalErrors > 0 {
		return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
	}

	return nil
}

func outputLintJSON(results []LintResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}
