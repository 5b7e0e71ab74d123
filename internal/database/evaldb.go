package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/patternqa/patternqa/internal/model"
)

// EvalDB provides SQLite-based storage for evaluation reports.
// It manages connection pooling and provides methods for saving and
// querying historical evaluation results.
//
// Design decision: We use a single database file for all technologies
// rather than one file per technology. This keeps cross-technology
// history queries cheap and simplifies backup/restore operations.
type EvalDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures EvalDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an EvalDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*EvalDB, error) {
	dbPath := filepath.Join(dbDir, "patternqa.db")

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// but multiple readers can improve performance
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	edb := &EvalDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := edb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return edb, nil
}

// Close closes the database connection.
func (edb *EvalDB) Close() error {
	return edb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (edb *EvalDB) createTables() error {
	schema := `
	-- Evaluation reports store complete evaluation results as JSON
	CREATE TABLE IF NOT EXISTS evaluation_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		technology TEXT NOT NULL,
		verdict TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		score_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_technology ON evaluation_reports(technology);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON evaluation_reports(timestamp);
	`

	_, err := edb.db.ExecContext(context.Background(), schema)
	return err
}

// scoreSummary extracts the headline scores from a report for the
// score_summary column. History listings read these without unmarshaling
// the full report.
func scoreSummary(report *model.EvaluationReport) map[string]float64 {
	summary := make(map[string]float64)
	if report.Consistency != nil && report.Consistency.Metrics != nil {
		summary["consistency"] = report.Consistency.Metrics.AverageScore
	}
	if report.Completeness != nil && report.Completeness.Metrics != nil {
		summary["completeness"] = report.Completeness.Metrics.AggregateScore
	}
	if report.Verification != nil {
		summary["accuracy"] = report.Verification.Accuracy
	}
	return summary
}

// SaveReport persists a complete evaluation report as JSON and returns the
// assigned database ID.
func (edb *EvalDB) SaveReport(ctx context.Context, report *model.EvaluationReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	summaryJSON, _ := json.Marshal(scoreSummary(report)) //nolint:errcheck,errchkjson // summary is a simple map; Marshal won't fail

	query := `
	INSERT INTO evaluation_reports (technology, verdict, timestamp, report_json, score_summary)
	VALUES (?, ?, ?, ?, ?)
	`

	result, err := edb.db.ExecContext(ctx, query,
		report.Technology,
		string(report.Verdict()),
		report.GeneratedAt.UTC().Format("2006-01-02 15:04:05"),
		string(reportJSON),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save evaluation report: %w", err)
	}

	return result.LastInsertId()
}

// GetLatestReport retrieves the most recent evaluation report for a technology.
// Returns nil without error when no report exists.
func (edb *EvalDB) GetLatestReport(ctx context.Context, technology string) (*model.EvaluationReport, error) {
	query := `
	SELECT report_json FROM evaluation_reports
	WHERE technology = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := edb.db.QueryRowContext(ctx, query, technology).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation report: %w", err)
	}

	var report model.EvaluationReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// GetReportByID retrieves an evaluation report by its database ID.
// Returns nil without error when the ID does not exist.
func (edb *EvalDB) GetReportByID(ctx context.Context, id int64) (*model.EvaluationReport, error) {
	query := `
	SELECT report_json FROM evaluation_reports
	WHERE id = ?
	`

	var reportJSON string
	err := edb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation report: %w", err)
	}

	var report model.EvaluationReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListTechnologies returns all technologies with at least one stored report.
func (edb *EvalDB) ListTechnologies(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT technology FROM evaluation_reports
	ORDER BY technology
	`

	rows, err := edb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list technologies: %w", err)
	}
	defer rows.Close()

	var technologies []string
	for rows.Next() {
		var technology string
		if err := rows.Scan(&technology); err != nil {
			return nil, fmt.Errorf("failed to scan technology: %w", err)
		}
		technologies = append(technologies, technology)
	}

	return technologies, rows.Err()
}

// ReportMetadata contains summary information about a stored report.
// This is used for displaying evaluation history without loading
// the full report JSON.
type ReportMetadata struct {
	// ID is the unique identifier of the report in the database.
	ID int64

	// Technology is the technology that was evaluated.
	Technology string

	// Verdict is the overall verdict band of the report.
	Verdict string

	// Timestamp is when the evaluation ran.
	Timestamp time.Time

	// Scores maps dimension name to headline score, e.g.
	// "consistency" to the average consistency score.
	Scores map[string]float64
}

// GetHistory retrieves report metadata for a technology, most recent first.
// This is cheaper than fetching full reports when only the summary is needed.
func (edb *EvalDB) GetHistory(ctx context.Context, technology string) ([]ReportMetadata, error) {
	query := `
	SELECT id, technology, verdict, timestamp, score_summary
	FROM evaluation_reports
	WHERE technology = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := edb.db.QueryContext(ctx, query, technology)
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation history: %w", err)
	}
	defer rows.Close()

	var results []ReportMetadata
	for rows.Next() {
		var meta ReportMetadata
		var timestamp string
		var scoresJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Technology, &meta.Verdict, &timestamp, &scoresJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)

		if scoresJSON.Valid && scoresJSON.String != "" {
			if err := json.Unmarshal([]byte(scoresJSON.String), &meta.Scores); err != nil {
				meta.Scores = make(map[string]float64)
			}
		} else {
			meta.Scores = make(map[string]float64)
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
