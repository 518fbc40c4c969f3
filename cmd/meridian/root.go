package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "meridian",
	Short: "Meridian - discount governance for B2B commerce",
	Long: `Meridian is a discount governance service for B2B commerce.

It evaluates proposed discounts against a pricing policy, providing:
  - Policy-based discount approval with margin and volume rules
  - A maximum-discount solver for negotiation ceilings
  - UCP-compatible discount code validation and checkout simulation
  - A decision audit trail for compliance review`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
