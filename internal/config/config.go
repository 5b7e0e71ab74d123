package config

import (
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/patternqa/patternqa/internal/model"
)

// Default configuration values.
const (
	// DefaultWorkers is the number of record files decoded concurrently.
	// Decode is CPU and allocation bound, so a moderate limit keeps memory
	// stable even for result directories with large evidence bundles.
	DefaultWorkers = 8

	// DefaultPhase is the phase evaluated for naming consistency.
	// Stable naming is a promise of the standardization phase; the
	// discovery phase is expected to drift.
	DefaultPhase = model.PhaseStandardization

	// AppName is the application name used for XDG directory paths.
	AppName = "patternqa"
)

// Config holds all configuration options for an evaluation run.
// It is populated from CLI flags plus the optional config file and passed
// through the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., LoaderConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// ResultsDir is the directory containing run record JSON files.
	// Required for every evaluation command.
	ResultsDir string

	// ReferenceFile is the path to the reference pattern set JSON file.
	// Required for completeness evaluation; when empty, the config file's
	// technology section may supply it.
	ReferenceFile string

	// Technology is the technology to evaluate completeness against
	// (e.g. "wordpress"). Compared case-insensitively.
	Technology string

	// Phase restricts consistency evaluation to one pipeline stage.
	Phase model.Phase

	// Workers is the number of record files decoded concurrently.
	Workers int

	// Limit caps how many record files are processed. Zero means no cap.
	Limit int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only info and above are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .patternqa in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Technologies holds the per-technology settings loaded from the
	// config file. Populated by LoadConfigFile.
	Technologies *File

	// JSONReport enables JSON report output instead of the human-readable
	// format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// DBDir is the directory path for storing the SQLite database.
	// When set, evaluation reports are saved for historical comparison.
	// Defaults to the XDG data directory when saving is requested.
	DBDir string

	// SaveToDB indicates whether to persist the evaluation report.
	// Automatically set to true when DBDir is configured.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero (workers, phase).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Phase:   DefaultPhase,
		Workers: DefaultWorkers,
	}
}

// XDGDataDir returns the XDG data directory for patternqa.
// On Linux: ~/.local/share/patternqa
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for patternqa.
// On Linux: ~/.config/patternqa
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any records are read.
// The first error found is returned rather than collecting all errors,
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.ResultsDir == "" {
		return ErrNoResultsDir
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.Limit < 0 {
		return ErrInvalidLimit
	}

	if c.Phase != model.PhaseUnknown && !c.Phase.IsValid() {
		return ErrInvalidPhase
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

// Reference resolves the reference file path for the configured technology.
// An explicit --reference flag wins; otherwise the config file's technology
// section is consulted. Empty when neither provides one.
func (c *Config) Reference() string {
	if c.ReferenceFile != "" {
		return c.ReferenceFile
	}
	if c.Technologies != nil {
		return c.Technologies.ReferenceFor(c.Technology)
	}
	return ""
}

// Aliases returns the technology alias table from the config file,
// nil when no config file was loaded.
func (c *Config) Aliases() map[string]string {
	if c.Technologies == nil {
		return nil
	}
	return c.Technologies.AliasMap()
}
