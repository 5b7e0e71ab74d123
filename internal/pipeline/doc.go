// Package pipeline orchestrates evaluation steps over a shared report.
//
// A Pipeline executes Steps in order, each step filling in one sub-report
// of the evaluation report: consistency, completeness, verification, phase
// analysis, and finally persistence to the history database. Steps never
// treat a poor quality score as an error; errors are reserved for
// operational failures such as a missing reference set.
package pipeline
