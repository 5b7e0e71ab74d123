package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/patternqa/patternqa/internal/database"
	"github.com/patternqa/patternqa/internal/evaluator"
	"github.com/patternqa/patternqa/internal/model"
	"github.com/patternqa/patternqa/internal/verifier"
)

// ConsistencyStep scores naming stability across repeated runs of the
// same sites. The resulting sub-report is attached to the evaluation
// report.
type ConsistencyStep struct {
	// phase restricts scoring to runs of one pipeline phase.
	phase model.Phase

	// logger for structured logging.
	logger *slog.Logger
}

// ConsistencyStepOption configures a ConsistencyStep.
type ConsistencyStepOption func(*ConsistencyStep)

// WithConsistencyStepPhase sets the phase the step scores.
func WithConsistencyStepPhase(phase model.Phase) ConsistencyStepOption {
	return func(s *ConsistencyStep) {
		s.phase = phase
	}
}

// WithConsistencyStepLogger sets a custom logger for the step.
func WithConsistencyStepLogger(logger *slog.Logger) ConsistencyStepOption {
	return func(s *ConsistencyStep) {
		s.logger = logger
	}
}

// NewConsistencyStep creates a new consistency evaluation step.
func NewConsistencyStep(opts ...ConsistencyStepOption) *ConsistencyStep {
	s := &ConsistencyStep{
		phase:  model.PhaseStandardization,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ConsistencyStep) Name() string {
	return "consistency"
}

// Do executes the consistency evaluation step.
func (s *ConsistencyStep) Do(_ context.Context, report *model.EvaluationReport) error {
	eval := evaluator.NewConsistencyEvaluator(
		evaluator.WithConsistencyPhase(s.phase),
		evaluator.WithConsistencyLogger(s.logger),
	)
	report.Consistency = eval.Evaluate(report.Runs)
	return nil
}

// CompletenessStep scores corpus coverage against the reference pattern
// set carried on the report.
type CompletenessStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// CompletenessStepOption configures a CompletenessStep.
type CompletenessStepOption func(*CompletenessStep)

// WithCompletenessStepLogger sets a custom logger for the step.
func WithCompletenessStepLogger(logger *slog.Logger) CompletenessStepOption {
	return func(s *CompletenessStep) {
		s.logger = logger
	}
}

// NewCompletenessStep creates a new completeness evaluation step.
func NewCompletenessStep(opts ...CompletenessStepOption) *CompletenessStep {
	s := &CompletenessStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CompletenessStep) Name() string {
	return "completeness"
}

// Do executes the completeness evaluation step.
// A missing reference set is a critical error: without it there is
// nothing to measure coverage against.
func (s *CompletenessStep) Do(_ context.Context, report *model.EvaluationReport) error {
	if report.Reference == nil {
		return fmt.Errorf("completeness step requires a reference pattern set")
	}

	eval := evaluator.NewCompletenessEvaluator(
		evaluator.WithCompletenessLogger(s.logger),
	)
	report.Completeness = eval.Evaluate(report.Runs, report.Reference)
	return nil
}

// VerificationStep re-checks every claimed pattern against the raw
// evidence bundle of its own run.
type VerificationStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// VerificationStepOption configures a VerificationStep.
type VerificationStepOption func(*VerificationStep)

// WithVerificationStepLogger sets a custom logger for the step.
func WithVerificationStepLogger(logger *slog.Logger) VerificationStepOption {
	return func(s *VerificationStep) {
		s.logger = logger
	}
}

// NewVerificationStep creates a new evidence verification step.
func NewVerificationStep(opts ...VerificationStepOption) *VerificationStep {
	s := &VerificationStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *VerificationStep) Name() string {
	return "verification"
}

// Do executes the evidence verification step.
func (s *VerificationStep) Do(_ context.Context, report *model.EvaluationReport) error {
	v := verifier.New(verifier.WithLogger(s.logger))
	report.Verification = v.Verify(report.Runs)
	return nil
}

// PhaseAnalysisStep compares discovery-phase performance against
// standardization-phase performance across the corpus.
type PhaseAnalysisStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// PhaseAnalysisStepOption configures a PhaseAnalysisStep.
type PhaseAnalysisStepOption func(*PhaseAnalysisStep)

// WithPhaseAnalysisStepLogger sets a custom logger for the step.
func WithPhaseAnalysisStepLogger(logger *slog.Logger) PhaseAnalysisStepOption {
	return func(s *PhaseAnalysisStep) {
		s.logger = logger
	}
}

// NewPhaseAnalysisStep creates a new phase comparison step.
func NewPhaseAnalysisStep(opts ...PhaseAnalysisStepOption) *PhaseAnalysisStep {
	s := &PhaseAnalysisStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PhaseAnalysisStep) Name() string {
	return "phase_analysis"
}

// Do executes the phase comparison step.
func (s *PhaseAnalysisStep) Do(_ context.Context, report *model.EvaluationReport) error {
	analyzer := evaluator.NewPhaseAnalyzer(
		evaluator.WithPhaseLogger(s.logger),
	)
	report.Phases = analyzer.Analyze(report.Runs)
	return nil
}

// SaveStep persists the finished evaluation report to the history
// database. It should be the last step in the pipeline so that every
// sub-report produced by preceding steps is included.
type SaveStep struct {
	// db is the history database the report is saved to.
	db *database.EvalDB

	// logger for structured logging.
	logger *slog.Logger
}

// SaveStepOption configures a SaveStep.
type SaveStepOption func(*SaveStep)

// WithSaveStepLogger sets a custom logger for the step.
func WithSaveStepLogger(logger *slog.Logger) SaveStepOption {
	return func(s *SaveStep) {
		s.logger = logger
	}
}

// NewSaveStep creates a step that saves the report to the given database.
func NewSaveStep(db *database.EvalDB, opts ...SaveStepOption) *SaveStep {
	s := &SaveStep{
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do persists the report and logs the assigned history ID.
func (s *SaveStep) Do(ctx context.Context, report *model.EvaluationReport) error {
	id, err := s.db.SaveReport(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to save report to history: %w", err)
	}

	s.logger.Info("report saved to history",
		"id", id,
		"technology", report.Technology,
		"verdict", report.Verdict().String(),
	)
	return nil
}
