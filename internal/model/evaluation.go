package model

import "time"

// EvaluationReport is the aggregate result of one evaluation invocation.
// The pipeline steps fill in the sub-reports; the report is then serialized
// for output and optionally persisted for historical comparison.
//
// Design decision: The input runs and the reference set travel on the report
// itself (excluded from JSON) so pipeline steps share one argument instead of
// threading loader state through every step signature.
type EvaluationReport struct {
	// Technology is the technology under evaluation.
	Technology string `json:"technology"`

	// GeneratedAt is when the evaluation ran.
	GeneratedAt time.Time `json:"generated_at"`

	// RecordsLoaded is the number of input records successfully normalized.
	RecordsLoaded int `json:"records_loaded"`

	// RecordsSkipped is the number of records that matched neither
	// recognized input shape. Skipped records never abort the batch.
	RecordsSkipped int `json:"records_skipped"`

	// Consistency is the naming-stability sub-report, nil if not run.
	Consistency *ConsistencyReport `json:"consistency,omitempty"`

	// Completeness is the coverage sub-report, nil if not run.
	Completeness *CompletenessReport `json:"completeness,omitempty"`

	// Verification is the evidence-verification sub-report, nil if not run.
	Verification *VerificationReport `json:"verification,omitempty"`

	// Phases is the phase-comparison sub-report, nil if not run.
	Phases *PhaseReport `json:"phases,omitempty"`

	// Runs is the normalized input corpus. Excluded from JSON: it can carry
	// whole HTML documents and would dwarf the report itself.
	Runs []*AnalysisRun `json:"-"`

	// Reference is the loaded reference pattern set, nil when the
	// evaluation does not need one.
	Reference *ReferencePatternSet `json:"-"`
}

// Verdict rolls the sub-report verdicts up into one overall band.
// Missing sub-reports are ignored; a report with no sub-reports at all is
// NOT_EVALUATED.
func (r *EvaluationReport) Verdict() Verdict {
	overall := VerdictNotEvaluated
	if r.Consistency != nil {
		overall = WorseOf(overall, r.Consistency.Verdict)
	}
	if r.Completeness != nil {
		overall = WorseOf(overall, r.Completeness.Verdict)
	}
	if r.Verification != nil {
		overall = WorseOf(overall, r.Verification.Verdict)
	}
	if r.Phases != nil {
		overall = WorseOf(overall, r.Phases.DiscoveryVerdict)
		overall = WorseOf(overall, r.Phases.StandardizationVerdict)
		overall = WorseOf(overall, r.Phases.ComplianceVerdict)
	}
	return overall
}

// RunsBySite groups the loaded runs by site URL, preserving input order
// within each site.
func (r *EvaluationReport) RunsBySite() map[string][]*AnalysisRun {
	sites := make(map[string][]*AnalysisRun)
	for _, run := range r.Runs {
		sites[run.SiteURL] = append(sites[run.SiteURL], run)
	}
	return sites
}
