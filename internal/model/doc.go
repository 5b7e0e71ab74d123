// Package model defines the core data structures used throughout patternqa.
//
// This package contains the following main types:
//   - PatternOccurrence: One detected fingerprinting signal tied to a run
//   - AnalysisRun: A single analysis execution for one site
//   - EvidenceBundle: The raw collected material a pattern was derived from
//   - ReferencePatternSet: The curated required/discriminator pattern names
//   - EvaluationReport: The aggregate of all evaluator reports
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (loader, evaluator, verifier, report) need
// to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
