// Package main provides the entry point for the patternqa CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for patternqa.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patternqa",
		Short: "Quality evaluation for CMS fingerprinting patterns",
		Long: `patternqa evaluates the quality of CMS fingerprinting patterns extracted
by automated analysis runs. It scores four dimensions:

- Consistency: does the same signal keep the same name across runs?
- Completeness: how much of the curated reference set was discovered?
- Verification: do claimed patterns actually occur in the raw evidence?
- Phases: how does discovery-phase performance compare to standardization?

Point it at a directory of analysis result JSON files and it produces a
verdict per dimension plus an overall acceptance band.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewEvaluateCmd())
	cmd.AddCommand(NewConsistencyCmd())
	cmd.AddCommand(NewCompletenessCmd())
	cmd.AddCommand(NewVerifyCmd())
	cmd.AddCommand(NewPhasesCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
