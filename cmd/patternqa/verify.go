package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/patternqa/patternqa/internal/verifier"
)

// NewVerifyCmd creates the verify command.
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [results-dir]",
		Short: "Verify claimed patterns against raw evidence",
		Long: `Verify re-checks every claimed pattern against the raw evidence bundle
of its own run: HTML, scripts, stylesheets, URLs, and response headers.
A pattern that cannot be found in the evidence it was supposedly
extracted from is counted as a false positive.

Runs without an evidence bundle are skipped; they cannot be checked
either way.

Examples:
  # Verify all runs in a results directory
  patternqa verify ./results

  # List every false positive in the output
  patternqa verify ./results --verbose`,
		Args: cobra.ExactArgs(1),
		RunE: runVerifyCmd,
	}

	addEvaluationFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runVerifyCmd executes the verify command.
func runVerifyCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	result, err := loadRuns(ctx, cfg, logger)
	if err != nil {
		return err
	}

	evalReport := newEvaluationReport(cfg, result)
	v := verifier.New(verifier.WithLogger(logger))
	evalReport.Verification = v.Verify(evalReport.Runs)

	if err := outputReport(cfg, evalReport); err != nil {
		return err
	}
	return verdictError(evalReport.Verdict())
}
