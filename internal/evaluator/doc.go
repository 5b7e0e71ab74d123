// Package evaluator implements the pattern quality evaluators: naming
// consistency across repeated runs, completeness against a reference
// pattern set, and phase performance analysis.
//
// Each evaluator is a pure computation over normalized model.AnalysisRun
// values. Evaluators never read files, never mutate their inputs, and
// never fail: degenerate inputs degrade to a reported verdict such as
// INSUFFICIENT_DATA instead of an error.
package evaluator
