package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/patternqa/patternqa/internal/config"
	"github.com/patternqa/patternqa/internal/evaluator"
)

// NewCompletenessCmd creates the completeness command.
func NewCompletenessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completeness [results-dir]",
		Short: "Score coverage against a reference pattern set",
		Long: `Completeness measures how much of a technology's curated reference set
the analysis runs actually discovered. It scores each site individually
and the union of all sites together, so broad corpus coverage counts
even when no single site exhibits every pattern.

A reference is required: pass one with --reference, or name the
technology in the .patternqa config file.

Examples:
  # Score against an explicit reference file
  patternqa completeness ./results -t wordpress -r wordpress.json

  # Resolve the reference from the config file
  patternqa completeness ./results -t wordpress -c .patternqa`,
		Args: cobra.ExactArgs(1),
		RunE: runCompletenessCmd,
	}

	addEvaluationFlags(cmd)
	addReportFlags(cmd)
	cmd.Flags().StringP("reference", "r", "",
		"Reference pattern set JSON file (overrides the config file)")

	return cmd
}

// runCompletenessCmd executes the completeness command.
func runCompletenessCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ref, err := resolveReference(cfg)
	if err != nil {
		return err
	}
	if ref == nil {
		return config.ErrNoReference
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
	evalReport.Reference = ref
	if evalReport.Technology == "" {
		evalReport.Technology = ref.Technology
	}

	eval := evaluator.NewCompletenessEvaluator(
		evaluator.WithCompletenessLogger(logger),
	)
	evalReport.Completeness = eval.Evaluate(evalReport.Runs, ref)

	if err := outputReport(cfg, evalReport); err != nil {
		return err
	}
	return verdictError(evalReport.Verdict())
}
