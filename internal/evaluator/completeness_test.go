package evaluator

import (
	"testing"

	"github.com/patternqa/patternqa/internal/model"
)

func wordpressReference() *model.ReferencePatternSet {
	return &model.ReferencePatternSet{
		Technology: "wordpress",
		RequiredPatterns: []string{
			"meta_generator_wordpress",
			"wp_content_path",
			"wp_json_api",
			"wp_emoji_script",
		},
		DiscriminatorPatterns: []string{"wp_json_api", "wp_content_path"},
	}
}

func TestCompletenessAggregateUnion(t *testing.T) {
	t.Parallel()

	// No single site covers the reference, but the union covers 3 of 4.
	runs := []*model.AnalysisRun{
		run("https://a.example", "wordpress",
			occ("meta_generator_wordpress", "meta", "head", "WordPress 6.4"),
			occ("wp_content_path", "structure", "/wp-content/", "")),
		run("https://b.example", "wordpress",
			occ("wp_json_api", "structure", "/wp-json/", ""),
			occ("wp_content_path", "structure", "/wp-content/", "")),
	}

	report := NewCompletenessEvaluator(WithCompletenessLogger(testLogger())).
		Evaluate(runs, wordpressReference())

	if report.SitesAnalyzed != 2 {
		t.Fatalf("SitesAnalyzed = %d, want 2", report.SitesAnalyzed)
	}

	if got, want := report.Sites[0].Score, 50.0; got != want {
		t.Errorf("Sites[0].Score = %v, want %v", got, want)
	}
	if got, want := report.Sites[1].Score, 50.0; got != want {
		t.Errorf("Sites[1].Score = %v, want %v", got, want)
	}
	if got, want := report.Metrics.AggregateScore, 75.0; got != want {
		t.Errorf("AggregateScore = %v, want %v", got, want)
	}
	if got := report.Metrics.RequiredMissing; len(got) != 1 || got[0] != "wp_emoji_script" {
		t.Errorf("RequiredMissing = %v, want [wp_emoji_script]", got)
	}
	if got, want := report.Metrics.DiscriminatorScore, 100.0; got != want {
		t.Errorf("DiscriminatorScore = %v, want %v", got, want)
	}
	if report.Verdict != model.VerdictNeedsImprovement {
		t.Errorf("Verdict = %q, want NEEDS_IMPROVEMENT", report.Verdict)
	}
}

func TestCompletenessVerdictBands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		patterns []string
		want     model.Verdict
	}{
		{
			name: "full coverage",
			patterns: []string{
				"meta_generator_wordpress", "wp_content_path",
				"wp_json_api", "wp_emoji_script",
			},
			want: model.VerdictExcellent,
		},
		{
			name: "three quarters",
			patterns: []string{
				"meta_generator_wordpress", "wp_content_path", "wp_json_api",
			},
			want: model.VerdictNeedsImprovement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			occurrences := make([]model.PatternOccurrence, 0, len(tt.patterns))
			for _, name := range tt.patterns {
				occurrences = append(occurrences, occ(name, "structure", "", ""))
			}
			runs := []*model.AnalysisRun{run("https://a.example", "wordpress", occurrences...)}

			report := NewCompletenessEvaluator(WithCompletenessLogger(testLogger())).
				Evaluate(runs, wordpressReference())
			if report.Verdict != tt.want {
				t.Errorf("Verdict = %q, want %q", report.Verdict, tt.want)
			}
		})
	}
}

func TestCompletenessMoreCoverageNeverLowersScore(t *testing.T) {
	t.Parallel()

	base := []*model.AnalysisRun{
		run("https://a.example", "wordpress",
			occ("meta_generator_wordpress", "meta", "head", "WordPress 6.4")),
	}
	extended := append(base,
		run("https://b.example", "wordpress",
			occ("wp_json_api", "structure", "/wp-json/", ""),
			occ("unrelated_pattern", "css", "", "")))

	ref := wordpressReference()
	evaluator := NewCompletenessEvaluator(WithCompletenessLogger(testLogger()))

	before := evaluator.Evaluate(base, ref).Metrics.AggregateScore
	after := evaluator.Evaluate(extended, ref).Metrics.AggregateScore

	if after < before {
		t.Errorf("aggregate score dropped from %v to %v after adding coverage", before, after)
	}
}

func TestCompletenessFiltersByTechnology(t *testing.T) {
	t.Parallel()

	runs := []*model.AnalysisRun{
		run("https://a.example", "wordpress",
			occ("wp_content_path", "structure", "/wp-content/", "")),
		run("https://b.example", "drupal",
			occ("meta_generator_wordpress", "meta", "head", "")),
	}

	report := NewCompletenessEvaluator(WithCompletenessLogger(testLogger())).
		Evaluate(runs, wordpressReference())

	if report.SitesAnalyzed != 1 {
		t.Errorf("SitesAnalyzed = %d, want 1", report.SitesAnalyzed)
	}
	// The drupal site's pattern must not leak into the union.
	if got, want := report.Metrics.AggregateScore, 25.0; got != want {
		t.Errorf("AggregateScore = %v, want %v", got, want)
	}
}

func TestCompletenessMergesRunsPerSite(t *testing.T) {
	t.Parallel()

	runs := []*model.AnalysisRun{
		run("https://a.example", "wordpress",
			occ("wp_content_path", "structure", "/wp-content/", "")),
		run("https://a.example", "wordpress",
			occ("wp_json_api", "structure", "/wp-json/", "")),
	}

	report := NewCompletenessEvaluator(WithCompletenessLogger(testLogger())).
		Evaluate(runs, wordpressReference())

	if report.SitesAnalyzed != 1 {
		t.Fatalf("SitesAnalyzed = %d, want 1", report.SitesAnalyzed)
	}
	if got, want := report.Sites[0].Score, 50.0; got != want {
		t.Errorf("Sites[0].Score = %v, want %v", got, want)
	}
	if got, want := report.Sites[0].PatternsFound, 2; got != want {
		t.Errorf("Sites[0].PatternsFound = %d, want %d", got, want)
	}
}

func TestCompletenessConsistentlyDetected(t *testing.T) {
	t.Parallel()

	// wp_content_path appears on 4/5 sites (80%), wp_json_api on 2/5.
	runs := make([]*model.AnalysisRun, 0, 5)
	for i, site := range []string{
		"https://a.example", "https://b.example", "https://c.example",
		"https://d.example", "https://e.example",
	} {
		occurrences := []model.PatternOccurrence{}
		if i < 4 {
			occurrences = append(occurrences, occ("wp_content_path", "structure", "/wp-content/", ""))
		}
		if i < 2 {
			occurrences = append(occurrences, occ("wp_json_api", "structure", "/wp-json/", ""))
		}
		runs = append(runs, run(site, "wordpress", occurrences...))
	}

	report := NewCompletenessEvaluator(WithCompletenessLogger(testLogger())).
		Evaluate(runs, wordpressReference())

	got := report.Metrics.ConsistentlyDetected
	if len(got) != 1 || got[0] != "wp_content_path" {
		t.Errorf("ConsistentlyDetected = %v, want [wp_content_path]", got)
	}
	if report.Metrics.Frequency["wp_content_path"] != 4 {
		t.Errorf("Frequency[wp_content_path] = %d, want 4", report.Metrics.Frequency["wp_content_path"])
	}
}

func TestCompletenessEmptyReference(t *testing.T) {
	t.Parallel()

	runs := []*model.AnalysisRun{
		run("https://a.example", "wordpress",
			occ("wp_content_path", "structure", "/wp-content/", "")),
	}
	ref := &model.ReferencePatternSet{Technology: "wordpress"}

	report := NewCompletenessEvaluator(WithCompletenessLogger(testLogger())).Evaluate(runs, ref)

	if !report.ConfigurationError {
		t.Error("ConfigurationError = false, want true")
	}
	if report.Metrics != nil {
		t.Errorf("Metrics = %+v, want nil", report.Metrics)
	}
	if report.Verdict.Passed() {
		t.Errorf("Verdict = %q, must not pass", report.Verdict)
	}
}

func TestCompletenessNoMatchingRuns(t *testing.T) {
	t.Parallel()

	runs := []*model.AnalysisRun{
		run("https://a.example", "drupal",
			occ("drupal_generator", "meta", "head", "Drupal 10")),
	}

	report := NewCompletenessEvaluator(WithCompletenessLogger(testLogger())).
		Evaluate(runs, wordpressReference())

	if report.Verdict != model.VerdictInsufficientData {
		t.Errorf("Verdict = %q, want INSUFFICIENT_DATA", report.Verdict)
	}
}
