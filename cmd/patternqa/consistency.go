package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/patternqa/patternqa/internal/evaluator"
)

// NewConsistencyCmd creates the consistency command.
func NewConsistencyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consistency [results-dir]",
		Short: "Score naming stability across repeated runs",
		Long: `Consistency checks whether the same underlying signal receives the same
name every time a site is re-analyzed. Signals are matched by a
content-derived identity (type, location, value prefix, selector and
attribute), so a renamed pattern is detected even though both names
point at the same thing.

Only sites with at least two runs in the scored phase contribute; a site
analyzed once has undefined consistency and is excluded, not scored zero.

Examples:
  # Score the standardization phase (default)
  patternqa consistency ./results

  # Score the discovery phase instead
  patternqa consistency ./results --phase phase1

  # JSON output for tooling
  patternqa consistency ./results --json`,
		Args: cobra.ExactArgs(1),
		RunE: runConsistencyCmd,
	}

	addEvaluationFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runConsistencyCmd executes the consistency command.
func runConsistencyCmd(cmd *cobra.Command, args []string) error {
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
	eval := evaluator.NewConsistencyEvaluator(
		evaluator.WithConsistencyPhase(cfg.Phase),
		evaluator.WithConsistencyLogger(logger),
	)
	evalReport.Consistency = eval.Evaluate(evalReport.Runs)

	if err := outputReport(cfg, evalReport); err != nil {
		return err
	}
	return verdictError(evalReport.Verdict())
}
