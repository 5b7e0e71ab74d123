package database

import (
	"context"
	"testing"
	"time"

	"github.com/patternqa/patternqa/internal/model"
)

func openTestDB(t *testing.T) *EvalDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func sampleReport(technology string, score float64) *model.EvaluationReport {
	return &model.EvaluationReport{
		Technology:    technology,
		GeneratedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		RecordsLoaded: 10,
		Consistency: &model.ConsistencyReport{
			Phase:      model.PhaseStandardization,
			TotalSites: 3,
			Metrics: &model.ConsistencyMetrics{
				SitesAnalyzed: 3,
				AverageScore:  score,
			},
			Verdict: model.VerdictExcellent,
		},
	}
}

func TestOpenRequiresExistingDatabase(t *testing.T) {
	t.Parallel()

	_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
	if err == nil {
		t.Fatal("Open() with CreateIfNotExists=false should fail for missing database")
	}
}

func TestSaveAndGetReportByID(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	id, err := db.SaveReport(ctx, sampleReport("wordpress", 99.0))
	if err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}
	if id <= 0 {
		t.Errorf("SaveReport() id = %d, want positive", id)
	}

	got, err := db.GetReportByID(ctx, id)
	if err != nil {
		t.Fatalf("GetReportByID() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetReportByID() returned nil for existing report")
	}
	if got.Technology != "wordpress" {
		t.Errorf("Technology = %q, want %q", got.Technology, "wordpress")
	}
	if got.Consistency == nil || got.Consistency.Metrics == nil {
		t.Fatal("consistency sub-report not round-tripped")
	}
	if got.Consistency.Metrics.AverageScore != 99.0 {
		t.Errorf("AverageScore = %v, want 99.0", got.Consistency.Metrics.AverageScore)
	}
}

func TestGetReportByIDNotFound(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)

	got, err := db.GetReportByID(context.Background(), 12345)
	if err != nil {
		t.Fatalf("GetReportByID() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetReportByID() = %+v, want nil for missing ID", got)
	}
}

func TestGetLatestReport(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	first := sampleReport("wordpress", 90.0)
	first.GeneratedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if _, err := db.SaveReport(ctx, first); err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	second := sampleReport("wordpress", 99.0)
	second.GeneratedAt = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	if _, err := db.SaveReport(ctx, second); err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	got, err := db.GetLatestReport(ctx, "wordpress")
	if err != nil {
		t.Fatalf("GetLatestReport() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetLatestReport() returned nil")
	}
	if got.Consistency.Metrics.AverageScore != 99.0 {
		t.Errorf("latest AverageScore = %v, want 99.0 (most recent report)", got.Consistency.Metrics.AverageScore)
	}
}

func TestGetLatestReportMissingTechnology(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)

	got, err := db.GetLatestReport(context.Background(), "drupal")
	if err != nil {
		t.Fatalf("GetLatestReport() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetLatestReport() = %+v, want nil for unknown technology", got)
	}
}

func TestListTechnologies(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	for _, tech := range []string{"wordpress", "drupal", "wordpress"} {
		if _, err := db.SaveReport(ctx, sampleReport(tech, 95.0)); err != nil {
			t.Fatalf("SaveReport(%q) error = %v", tech, err)
		}
	}

	got, err := db.ListTechnologies(ctx)
	if err != nil {
		t.Fatalf("ListTechnologies() error = %v", err)
	}
	want := []string{"drupal", "wordpress"}
	if len(got) != len(want) {
		t.Fatalf("ListTechnologies() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListTechnologies()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGetHistory(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	first := sampleReport("wordpress", 90.0)
	first.GeneratedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if _, err := db.SaveReport(ctx, first); err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}
	second := sampleReport("wordpress", 99.0)
	second.GeneratedAt = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	if _, err := db.SaveReport(ctx, second); err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}
	if _, err := db.SaveReport(ctx, sampleReport("drupal", 80.0)); err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	history, err := db.GetHistory(ctx, "wordpress")
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("GetHistory() len = %d, want 2", len(history))
	}

	// Most recent first.
	if history[0].Scores["consistency"] != 99.0 {
		t.Errorf("history[0] consistency = %v, want 99.0", history[0].Scores["consistency"])
	}
	if history[1].Scores["consistency"] != 90.0 {
		t.Errorf("history[1] consistency = %v, want 90.0", history[1].Scores["consistency"])
	}
	for _, meta := range history {
		if meta.Technology != "wordpress" {
			t.Errorf("Technology = %q, want %q", meta.Technology, "wordpress")
		}
		if meta.Verdict != string(model.VerdictExcellent) {
			t.Errorf("Verdict = %q, want %q", meta.Verdict, model.VerdictExcellent)
		}
		if meta.Timestamp.IsZero() {
			t.Error("Timestamp should be parsed, got zero time")
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{name: "sqlite default", input: "2025-06-01 12:00:00", zero: false},
		{name: "iso8601 with Z", input: "2025-06-01T12:00:00Z", zero: false},
		{name: "rfc3339", input: "2025-06-01T12:00:00+09:00", zero: false},
		{name: "garbage", input: "not a timestamp", zero: true},
		{name: "empty", input: "", zero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseTimestamp(tt.input)
			if got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q).IsZero() = %v, want %v", tt.input, got.IsZero(), tt.zero)
			}
		})
	}
}
