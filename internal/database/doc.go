// Package database provides SQLite-based persistence for evaluation reports.
//
// Each evaluation run can be saved as a row holding the full report JSON
// plus denormalized metadata (technology, verdict, headline scores) so that
// history listings and run-over-run comparisons never need to unmarshal the
// complete report. The database uses modernc.org/sqlite, a pure Go driver,
// so no cgo toolchain is required to build.
package database
