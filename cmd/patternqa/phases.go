package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/patternqa/patternqa/internal/evaluator"
)

// NewPhasesCmd creates the phases command.
func NewPhasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phases [results-dir]",
		Short: "Compare discovery and standardization phase performance",
		Long: `Phases compares the two analysis phases across the result corpus:
latency and token distributions per phase, the reduction achieved by
standardization, and how many standardization-phase patterns carry a
standardized confidence value.

Runs that executed both phases in a single pass declare the "combined"
phase and are excluded from the comparison.

Examples:
  # Compare phases over a results directory
  patternqa phases ./results

  # JSON output for dashboards
  patternqa phases ./results --json`,
		Args: cobra.ExactArgs(1),
		RunE: runPhasesCmd,
	}

	addEvaluationFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runPhasesCmd executes the phases command.
func runPhasesCmd(cmd *cobra.Command, args []string) error {
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
	analyzer := evaluator.NewPhaseAnalyzer(
		evaluator.WithPhaseLogger(logger),
	)
	evalReport.Phases = analyzer.Analyze(evalReport.Runs)

	if err := outputReport(cfg, evalReport); err != nil {
		return err
	}
	return verdictError(evalReport.Verdict())
}
