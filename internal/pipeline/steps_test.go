package pipeline

import (
	"context"
	"testing"

	"github.com/patternqa/patternqa/internal/database"
	"github.com/patternqa/patternqa/internal/model"
)

func sampleRuns() []*model.AnalysisRun {
	occ := []model.PatternOccurrence{
		{
			Name:       "wp_generator_meta",
			Type:       model.PatternTypeMeta,
			Location:   "head > meta[name=generator]",
			Value:      "WordPress",
			Confidence: 0.95,
		},
	}
	evidence := &model.EvidenceBundle{
		HTML: `<html><head><meta name="generator" content="WordPress 6.4.2"></head></html>`,
	}
	return []*model.AnalysisRun{
		{
			SiteURL:     "https://site-a.example.com",
			Technology:  "wordpress",
			Phase:       model.PhaseStandardization,
			Occurrences: occ,
			Performance: model.RunPerformance{DurationMS: 6000, Tokens: 1200},
			Evidence:    evidence,
		},
		{
			SiteURL:     "https://site-a.example.com",
			Technology:  "wordpress",
			Phase:       model.PhaseStandardization,
			Occurrences: occ,
			Performance: model.RunPerformance{DurationMS: 6500, Tokens: 1300},
			Evidence:    evidence,
		},
	}
}

func TestConsistencyStepFillsReport(t *testing.T) {
	t.Parallel()

	report := &model.EvaluationReport{Runs: sampleRuns()}
	step := NewConsistencyStep(WithConsistencyStepLogger(testLogger()))

	if got := step.Name(); got != "consistency" {
		t.Errorf("Name() = %q, want %q", got, "consistency")
	}
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if report.Consistency == nil {
		t.Fatal("consistency sub-report not attached")
	}
	if report.Consistency.Verdict != model.VerdictExcellent {
		t.Errorf("Verdict = %v, want EXCELLENT for identical runs", report.Consistency.Verdict)
	}
}

func TestConsistencyStepPhaseOption(t *testing.T) {
	t.Parallel()

	report := &model.EvaluationReport{Runs: sampleRuns()}
	step := NewConsistencyStep(
		WithConsistencyStepLogger(testLogger()),
		WithConsistencyStepPhase(model.PhaseDiscovery),
	)

	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if report.Consistency.Verdict != model.VerdictInsufficientData {
		t.Errorf("Verdict = %v, want INSUFFICIENT_DATA when no run matches the phase", report.Consistency.Verdict)
	}
}

func TestCompletenessStepRequiresReference(t *testing.T) {
	t.Parallel()

	step := NewCompletenessStep(WithCompletenessStepLogger(testLogger()))

	if got := step.Name(); got != "completeness" {
		t.Errorf("Name() = %q, want %q", got, "completeness")
	}
	if err := step.Do(context.Background(), &model.EvaluationReport{Runs: sampleRuns()}); err == nil {
		t.Fatal("Do() should fail without a reference pattern set")
	}
}

func TestCompletenessStepFillsReport(t *testing.T) {
	t.Parallel()

	report := &model.EvaluationReport{
		Runs: sampleRuns(),
		Reference: &model.ReferencePatternSet{
			Technology:       "wordpress",
			RequiredPatterns: []string{"wp_generator_meta", "wp_content_path"},
		},
	}
	step := NewCompletenessStep(WithCompletenessStepLogger(testLogger()))

	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if report.Completeness == nil {
		t.Fatal("completeness sub-report not attached")
	}
	if report.Completeness.Metrics == nil || report.Completeness.Metrics.AggregateScore != 50.0 {
		t.Errorf("AggregateScore = %+v, want 50.0", report.Completeness.Metrics)
	}
}

func TestVerificationStepFillsReport(t *testing.T) {
	t.Parallel()

	report := &model.EvaluationReport{Runs: sampleRuns()}
	step := NewVerificationStep(WithVerificationStepLogger(testLogger()))

	if got := step.Name(); got != "verification" {
		t.Errorf("Name() = %q, want %q", got, "verification")
	}
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if report.Verification == nil {
		t.Fatal("verification sub-report not attached")
	}
	if report.Verification.VerifiedPatterns != 2 {
		t.Errorf("VerifiedPatterns = %d, want 2", report.Verification.VerifiedPatterns)
	}
}

func TestPhaseAnalysisStepFillsReport(t *testing.T) {
	t.Parallel()

	report := &model.EvaluationReport{Runs: sampleRuns()}
	step := NewPhaseAnalysisStep(WithPhaseAnalysisStepLogger(testLogger()))

	if got := step.Name(); got != "phase_analysis" {
		t.Errorf("Name() = %q, want %q", got, "phase_analysis")
	}
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if report.Phases == nil {
		t.Fatal("phase sub-report not attached")
	}
	if report.Phases.Standardization == nil || report.Phases.Standardization.SampleCount != 2 {
		t.Errorf("Standardization = %+v, want 2 samples", report.Phases.Standardization)
	}
}

func TestSaveStepPersistsReport(t *testing.T) {
	t.Parallel()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	report := &model.EvaluationReport{
		Technology: "wordpress",
		Runs:       sampleRuns(),
	}
	step := NewSaveStep(db, WithSaveStepLogger(testLogger()))

	if got := step.Name(); got != "save" {
		t.Errorf("Name() = %q, want %q", got, "save")
	}
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	saved, err := db.GetLatestReport(context.Background(), "wordpress")
	if err != nil {
		t.Fatalf("GetLatestReport() error = %v", err)
	}
	if saved == nil {
		t.Fatal("report was not persisted")
	}
}

func TestFullEvaluationPipeline(t *testing.T) {
	t.Parallel()

	report := &model.EvaluationReport{
		Technology: "wordpress",
		Runs:       sampleRuns(),
		Reference: &model.ReferencePatternSet{
			Technology:       "wordpress",
			RequiredPatterns: []string{"wp_generator_meta"},
		},
	}

	p := New(WithLogger(testLogger()))
	p.AddSteps(
		NewConsistencyStep(WithConsistencyStepLogger(testLogger())),
		NewCompletenessStep(WithCompletenessStepLogger(testLogger())),
		NewVerificationStep(WithVerificationStepLogger(testLogger())),
		NewPhaseAnalysisStep(WithPhaseAnalysisStepLogger(testLogger())),
	)

	if err := p.Execute(context.Background(), report); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if report.Consistency == nil || report.Completeness == nil ||
		report.Verification == nil || report.Phases == nil {
		t.Fatal("all sub-reports should be attached after a full pipeline run")
	}
	if got := report.Verdict(); got != model.VerdictExcellent {
		t.Errorf("overall Verdict() = %v, want EXCELLENT", got)
	}
}
