package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/patternqa/patternqa/internal/config"
	"github.com/patternqa/patternqa/internal/database"
	"github.com/patternqa/patternqa/internal/loader"
	"github.com/patternqa/patternqa/internal/log"
	"github.com/patternqa/patternqa/internal/model"
	"github.com/patternqa/patternqa/internal/pipeline"
	"github.com/patternqa/patternqa/internal/report"
)

// NewEvaluateCmd creates the evaluate command.
func NewEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate [results-dir]",
		Short: "Run the full pattern quality evaluation",
		Long: `Evaluate runs every quality dimension over a directory of analysis
result JSON files:

- Naming consistency across repeated runs of the same sites
- Coverage of the technology's reference pattern set
- Verification of claimed patterns against raw evidence
- Performance comparison between the discovery and standardization phases

The finished report is saved to the history database for later comparison
with 'patternqa history'.

Examples:
  # Evaluate everything with a reference file
  patternqa evaluate ./results --technology wordpress --reference wordpress.json

  # Resolve the reference from the .patternqa config file
  patternqa evaluate ./results --technology wordpress -c .patternqa

  # Output a Markdown report to a file
  patternqa evaluate ./results -t wordpress -r wordpress.json -m -o report.md

Configuration file (.patternqa) example:
  technologies:
    wordpress:
      reference: references/wordpress.json
      aliases:
        - "WordPress.org"
    drupal:
      reference: references/drupal.json`,
		Args: cobra.ExactArgs(1),
		RunE: runEvaluateCmd,
	}

	addEvaluationFlags(cmd)
	addReportFlags(cmd)
	cmd.Flags().StringP("reference", "r", "",
		"Reference pattern set JSON file (overrides the config file)")
	cmd.Flags().String("db-dir", "",
		"Directory for the history database (default: XDG data directory)")
	cmd.Flags().Bool("no-save", false,
		"Skip saving the report to the history database")

	return cmd
}

// addEvaluationFlags registers the flags shared by every evaluation command.
func addEvaluationFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("technology", "t", "",
		"Technology under evaluation (e.g. wordpress)")
	cmd.Flags().StringP("phase", "p", string(config.DefaultPhase),
		"Phase scored for naming consistency (phase1, phase2, combined)")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of record files decoded concurrently")
	cmd.Flags().IntP("limit", "n", 0,
		"Maximum number of record files to process (0 = no limit)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .patternqa in current or home directory)")
}

// addReportFlags registers the report output flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// runEvaluateCmd executes the evaluate command.
func runEvaluateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return err
	}
	cfg.SaveToDB = !noSave
	if cfg.SaveToDB && cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runEvaluate(ctx, cfg, logger)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
// The first positional argument is the results directory.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	if len(args) > 0 {
		cfg.ResultsDir = args[0]
	}

	var err error

	if flag := cmd.Flags().Lookup("technology"); flag != nil {
		technology, err := cmd.Flags().GetString("technology")
		if err != nil {
			return nil, err
		}
		cfg.Technology = strings.ToLower(strings.TrimSpace(technology))
	}

	if flag := cmd.Flags().Lookup("phase"); flag != nil {
		phaseStr, err := cmd.Flags().GetString("phase")
		if err != nil {
			return nil, err
		}
		cfg.Phase = model.ParsePhase(phaseStr)
		if cfg.Phase == model.PhaseUnknown && phaseStr != "" {
			return nil, fmt.Errorf("unknown phase %q (expected phase1, phase2, or combined)", phaseStr)
		}
	}

	if flag := cmd.Flags().Lookup("workers"); flag != nil {
		cfg.Workers, err = cmd.Flags().GetInt("workers")
		if err != nil {
			return nil, err
		}
	}

	if flag := cmd.Flags().Lookup("limit"); flag != nil {
		cfg.Limit, err = cmd.Flags().GetInt("limit")
		if err != nil {
			return nil, err
		}
	}

	if flag := cmd.Flags().Lookup("reference"); flag != nil {
		cfg.ReferenceFile, err = cmd.Flags().GetString("reference")
		if err != nil {
			return nil, err
		}
	}

	if flag := cmd.Flags().Lookup("config"); flag != nil {
		cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
		if err != nil {
			return nil, err
		}
	}

	// Load technology settings from the config file.
	// If the user explicitly specified a config path, error if not found.
	// If no path was specified, silently use an empty config.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Technologies, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.Technologies = &config.File{
			Technologies: make(map[string]config.TechnologyConfig),
		}
	}

	if flag := cmd.Flags().Lookup("json"); flag != nil {
		cfg.JSONReport, err = cmd.Flags().GetBool("json")
		if err != nil {
			return nil, err
		}
	}

	if flag := cmd.Flags().Lookup("markdown"); flag != nil {
		cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
		if err != nil {
			return nil, err
		}
	}

	if flag := cmd.Flags().Lookup("output"); flag != nil {
		cfg.ReportFile, err = cmd.Flags().GetString("output")
		if err != nil {
			return nil, err
		}
	}

	if flag := cmd.Flags().Lookup("db-dir"); flag != nil {
		cfg.DBDir, err = cmd.Flags().GetString("db-dir")
		if err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// The secure handler masks credential-like values that can surface in
// collected evidence.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// loadRuns loads and normalizes the record files from the results directory.
func loadRuns(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*loader.Result, error) {
	opts := []loader.Option{
		loader.WithWorkers(cfg.Workers),
		loader.WithLogger(logger),
	}
	if cfg.Limit > 0 {
		opts = append(opts, loader.WithLimit(cfg.Limit))
	}
	if aliases := cfg.Aliases(); len(aliases) > 0 {
		opts = append(opts, loader.WithAliases(aliases))
	}

	result, err := loader.New(opts...).LoadDirectory(ctx, cfg.ResultsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load results from %s: %w", cfg.ResultsDir, err)
	}

	logger.Info("records loaded",
		"dir", cfg.ResultsDir,
		"loaded", result.Loaded,
		"skipped", result.Skipped,
	)
	return result, nil
}

// newEvaluationReport builds the shared report from loaded runs.
func newEvaluationReport(cfg *config.Config, result *loader.Result) *model.EvaluationReport {
	return &model.EvaluationReport{
		Technology:     cfg.Technology,
		GeneratedAt:    time.Now(),
		RecordsLoaded:  result.Loaded,
		RecordsSkipped: result.Skipped,
		Runs:           result.Runs,
	}
}

// resolveReference loads the reference pattern set for the configured
// technology. Returns nil when neither flag nor config file provides one.
func resolveReference(cfg *config.Config) (*model.ReferencePatternSet, error) {
	path := cfg.Reference()
	if path == "" {
		return nil, nil
	}

	ref, err := loader.LoadReference(path)
	if err != nil {
		// An empty reference still evaluates: completeness reports it as a
		// configuration error instead of silently scoring 100%.
		if errors.Is(err, loader.ErrEmptyReference) {
			return ref, nil
		}
		return nil, fmt.Errorf("failed to load reference %s: %w", path, err)
	}
	return ref, nil
}

// runEvaluate executes the full evaluation pipeline.
func runEvaluate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	result, err := loadRuns(ctx, cfg, logger)
	if err != nil {
		return err
	}

	evalReport := newEvaluationReport(cfg, result)
	evalReport.Reference, err = resolveReference(cfg)
	if err != nil {
		return err
	}

	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)
	p.AddSteps(
		pipeline.NewConsistencyStep(
			pipeline.WithConsistencyStepPhase(cfg.Phase),
			pipeline.WithConsistencyStepLogger(logger),
		),
	)
	if evalReport.Reference != nil {
		p.AddStep(pipeline.NewCompletenessStep(
			pipeline.WithCompletenessStepLogger(logger),
		))
	} else {
		logger.Warn("no reference pattern set resolved, skipping completeness")
	}
	p.AddSteps(
		pipeline.NewVerificationStep(
			pipeline.WithVerificationStepLogger(logger),
		),
		pipeline.NewPhaseAnalysisStep(
			pipeline.WithPhaseAnalysisStepLogger(logger),
		),
	)

	var db *database.EvalDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		p.AddStep(pipeline.NewSaveStep(db, pipeline.WithSaveStepLogger(logger)))
	}

	if err := p.Execute(ctx, evalReport); err != nil {
		return err
	}

	if err := outputReport(cfg, evalReport); err != nil {
		return err
	}

	return verdictError(evalReport.Verdict())
}

// outputReport outputs the evaluation report in the requested format.
func outputReport(cfg *config.Config, evalReport *model.EvaluationReport) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports can embed evidence excerpts; keep them owner-readable only.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(evalReport)
	return err
}

// verdictError maps a failed acceptance gate to a non-zero process exit.
// Missing data is reported but never fails the command: absence of runs is
// not evidence of a quality problem.
func verdictError(v model.Verdict) error {
	if v == model.VerdictNeedsImprovement {
		return fmt.Errorf("evaluation verdict: %s", v.String())
	}
	return nil
}
