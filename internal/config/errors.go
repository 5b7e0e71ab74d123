package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoResultsDir is returned when no results directory is specified.
	ErrNoResultsDir = errors.New("no results directory specified: use --results")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	// Zero workers would mean no files are ever decoded.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidLimit is returned when the file limit is negative.
	// Use 0 to process every record file.
	ErrInvalidLimit = errors.New("invalid limit: must be non-negative")

	// ErrInvalidPhase is returned when the phase is not a recognized
	// pipeline stage ("phase1", "phase2", or "combined").
	ErrInvalidPhase = errors.New("invalid phase: must be phase1, phase2, or combined")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNoReference is returned when completeness evaluation is requested
	// without a reference file, either via --reference or the config file.
	ErrNoReference = errors.New("no reference file: use --reference or configure the technology in .patternqa")

	// ErrNoTechnology is returned when completeness evaluation is requested
	// without naming a technology.
	ErrNoTechnology = errors.New("no technology specified: use --technology")
)
