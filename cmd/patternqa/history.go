package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/patternqa/patternqa/internal/config"
	"github.com/patternqa/patternqa/internal/database"
	"github.com/patternqa/patternqa/internal/model"
)

// Constants for score direction labels.
const (
	directionImproved  = "improved"
	directionWorsened  = "worsened"
	directionUnchanged = "unchanged"
)

// NewHistoryCmd creates the history command.
// This command inspects evaluation reports stored in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [technology]",
		Short: "Compare evaluation results with historical data",
		Long: `History displays differences between the current and previous evaluation
results for a technology.

This command retrieves stored evaluation reports from the database and
shows how each quality dimension moved: consistency, completeness, and
verification accuracy.

The comparison requires at least two saved evaluations for the specified
technology. Use 'patternqa evaluate' to run evaluations and save results.

Examples:
  # Compare the latest two evaluations for a technology
  patternqa history wordpress

  # List the evaluation history for a technology
  patternqa history --list wordpress

  # Compare the latest evaluation with a specific report by ID
  patternqa history --with-id 5 wordpress

  # Output the comparison in JSON format
  patternqa history --json wordpress

  # List all technologies in the database
  patternqa history --list-technologies`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List evaluation history for the specified technology")
	cmd.Flags().BoolP("list-technologies", "L", false,
		"List all technologies in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-id", "i", 0,
		"Compare with a specific report by ID (use --list to see available IDs)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	// Database location
	cmd.Flags().String("db-dir", "",
		"Directory of the history database (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listTechnologies, err := cmd.Flags().GetBool("list-technologies")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database so validation
	// failures never leave a stale lock behind.
	var technology string
	if !listTechnologies {
		if len(args) == 0 {
			return errors.New("technology is required (use --list-technologies to see available technologies)")
		}
		technology = strings.ToLower(strings.TrimSpace(args[0]))
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listTechnologies {
		return listStoredTechnologies(ctx, db)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listEvaluationHistory(ctx, db, technology)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	withID, err := cmd.Flags().GetInt64("with-id")
	if err != nil {
		return err
	}

	return runHistoryComparison(ctx, db, technology, withID, jsonOutput)
}

// listStoredTechnologies lists all technologies with stored reports.
func listStoredTechnologies(ctx context.Context, db *database.EvalDB) error {
	technologies, err := db.ListTechnologies(ctx)
	if err != nil {
		return fmt.Errorf("failed to list technologies: %w", err)
	}

	if len(technologies) == 0 {
		fmt.Println("No evaluations found in the database.")
		fmt.Println("\nUse 'patternqa evaluate <results-dir>' to run an evaluation.")
		return nil
	}

	fmt.Printf("Evaluated technologies (%d):\n\n", len(technologies))
	for _, technology := range technologies {
		fmt.Printf("  • %s\n", technology)
	}
	fmt.Println("\nUse 'patternqa history --list <technology>' to see its evaluation history.")

	return nil
}

// listEvaluationHistory lists all stored reports for a technology.
func listEvaluationHistory(ctx context.Context, db *database.EvalDB, technology string) error {
	history, err := db.GetHistory(ctx, technology)
	if err != nil {
		return fmt.Errorf("failed to get evaluation history: %w", err)
	}

	if len(history) == 0 {
		fmt.Printf("No evaluation history found for %s\n", technology)
		fmt.Println("\nUse 'patternqa evaluate' to evaluate this technology.")
		return nil
	}

	fmt.Printf("Evaluation history for %s (%d reports):\n\n", technology, len(history))
	fmt.Printf("  %-6s  %-20s  %-18s  %s\n", "ID", "Date", "Verdict", "Scores")
	fmt.Println("  " + strings.Repeat("-", 70))

	for _, meta := range history {
		fmt.Printf("  %-6d  %-20s  %-18s  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.Verdict,
			formatScores(meta.Scores),
		)
	}

	fmt.Println("\nUse 'patternqa history <technology>' to compare the latest two reports.")
	fmt.Println("Use 'patternqa history --with-id <id> <technology>' to compare with a specific report.")

	return nil
}

// formatScores formats the score summary map into a compact string.
func formatScores(scores map[string]float64) string {
	if len(scores) == 0 {
		return "N/A"
	}

	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%.1f", k, scores[k]))
	}
	return strings.Join(parts, " ")
}

// HistoryComparison holds the result of comparing two evaluation reports.
type HistoryComparison struct {
	// Technology is the evaluated technology.
	Technology string `json:"technology"`

	// Previous contains the summary of the older report.
	Previous ReportSummary `json:"previous"`

	// Current contains the summary of the newer report.
	Current ReportSummary `json:"current"`

	// Deltas maps each score dimension to current minus previous.
	// Scores are higher-is-better, so a positive delta is an improvement.
	Deltas map[string]float64 `json:"deltas"`

	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`
}

// ReportSummary contains the headline data of one stored report.
type ReportSummary struct {
	// GeneratedAt is when the evaluation ran.
	GeneratedAt time.Time `json:"generated_at"`

	// Verdict is the overall verdict band.
	Verdict string `json:"verdict"`

	// Scores maps dimension name to headline score.
	Scores map[string]float64 `json:"scores"`
}

// summarizeReport extracts the headline data from a full report.
func summarizeReport(r *model.EvaluationReport) ReportSummary {
	summary := ReportSummary{
		GeneratedAt: r.GeneratedAt,
		Verdict:     r.Verdict().String(),
		Scores:      make(map[string]float64),
	}
	if r.Consistency != nil && r.Consistency.Metrics != nil {
		summary.Scores["consistency"] = r.Consistency.Metrics.AverageScore
	}
	if r.Completeness != nil && r.Completeness.Metrics != nil {
		summary.Scores["completeness"] = r.Completeness.Metrics.AggregateScore
	}
	if r.Verification != nil {
		summary.Scores["accuracy"] = r.Verification.Accuracy
	}
	return summary
}

// compareReports compares two evaluation reports and generates the result.
func compareReports(previous, current *model.EvaluationReport) *HistoryComparison {
	result := &HistoryComparison{
		Technology: current.Technology,
		Previous:   summarizeReport(previous),
		Current:    summarizeReport(current),
		Deltas:     make(map[string]float64),
	}

	// Compare only the dimensions both reports scored; a dimension that
	// appeared or disappeared has no meaningful delta.
	var total float64
	for dim, currentScore := range result.Current.Scores {
		previousScore, ok := result.Previous.Scores[dim]
		if !ok {
			continue
		}
		delta := currentScore - previousScore
		result.Deltas[dim] = delta
		total += delta
	}

	switch {
	case total > 0:
		result.Direction = directionImproved
	case total < 0:
		result.Direction = directionWorsened
	default:
		result.Direction = directionUnchanged
	}

	return result
}

// runHistoryComparison performs the comparison between stored reports.
func runHistoryComparison(ctx context.Context, db *database.EvalDB, technology string, withID int64, jsonOutput bool) error {
	history, err := db.GetHistory(ctx, technology)
	if err != nil {
		return fmt.Errorf("failed to get evaluation history: %w", err)
	}

	if len(history) == 0 {
		return fmt.Errorf("no evaluation history found for %s", technology)
	}
	if len(history) < 2 && withID == 0 {
		return fmt.Errorf("at least 2 evaluations are required for comparison (found %d)", len(history))
	}

	current, err := db.GetReportByID(ctx, history[0].ID)
	if err != nil {
		return fmt.Errorf("failed to load latest report: %w", err)
	}
	if current == nil {
		return fmt.Errorf("latest report %d disappeared from the database", history[0].ID)
	}

	var previous *model.EvaluationReport
	if withID > 0 {
		previous, err = db.GetReportByID(ctx, withID)
		if err != nil {
			return fmt.Errorf("failed to get report with ID %d: %w", withID, err)
		}
		if previous == nil {
			return fmt.Errorf("report with ID %d not found", withID)
		}
		if previous.Technology != technology {
			return fmt.Errorf("report ID %d belongs to %s, not %s", withID, previous.Technology, technology)
		}
	} else {
		previous, err = db.GetReportByID(ctx, history[1].ID)
		if err != nil {
			return fmt.Errorf("failed to load previous report: %w", err)
		}
		if previous == nil {
			return fmt.Errorf("previous report %d disappeared from the database", history[1].ID)
		}
	}

	comparison := compareReports(previous, current)
	if comparison.Technology == "" {
		comparison.Technology = technology
	}

	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	return outputComparisonText(comparison)
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *HistoryComparison) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonText outputs the comparison result in human-readable format.
func outputComparisonText(result *HistoryComparison) error {
	fmt.Printf("Evaluation Comparison: %s\n", result.Technology)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nQuality: %s\n", formatDirection(result.Direction))

	fmt.Printf("\nPrevious: %s (%s)\n",
		result.Previous.GeneratedAt.Format("2006-01-02 15:04:05"), result.Previous.Verdict)
	fmt.Printf("Current:  %s (%s)\n",
		result.Current.GeneratedAt.Format("2006-01-02 15:04:05"), result.Current.Verdict)

	fmt.Println("\nScore Summary:")
	fmt.Printf("  %-14s  %-10s  %-10s  %-10s\n", "Dimension", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 48))

	dims := make([]string, 0, len(result.Current.Scores))
	for dim := range result.Current.Scores {
		dims = append(dims, dim)
	}
	sort.Strings(dims)

	for _, dim := range dims {
		previousStr := "-"
		if v, ok := result.Previous.Scores[dim]; ok {
			previousStr = fmt.Sprintf("%.1f", v)
		}
		deltaStr := "-"
		if v, ok := result.Deltas[dim]; ok {
			deltaStr = formatDelta(v)
		}
		fmt.Printf("  %-14s  %-10s  %-10.1f  %-10s\n",
			dim, previousStr, result.Current.Scores[dim], deltaStr)
	}

	return nil
}

// formatDirection formats the score direction for display.
func formatDirection(direction string) string {
	switch direction {
	case directionImproved:
		return "IMPROVED (scores increased)"
	case directionWorsened:
		return "WORSENED (scores decreased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a score delta with sign for display.
func formatDelta(delta float64) string {
	s := strconv.FormatFloat(delta, 'f', 1, 64)
	if delta > 0 {
		return "+" + s
	}
	return s
}
