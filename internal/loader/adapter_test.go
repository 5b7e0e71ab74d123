package loader

import (
	"errors"
	"testing"

	"github.com/patternqa/patternqa/internal/model"
)

func TestNormalizeRecordLearnLayout(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"phase": "phase2",
		"inputData": {"url": "https://example.com"},
		"metadata": {"timestamp": "2025-11-02T10:00:00Z"},
		"analysis": {
			"technologyDetected": "WordPress",
			"keyPatterns": ["meta_generator_wordpress", "wp_content_path"]
		},
		"data": {
			"html": "<html><head></head></html>",
			"headers": {"Server": "nginx"}
		}
	}`)

	run, err := NormalizeRecord(raw)
	if err != nil {
		t.Fatalf("NormalizeRecord() error = %v", err)
	}

	if got, want := run.SiteURL, "https://example.com"; got != want {
		t.Errorf("SiteURL = %q, want %q", got, want)
	}
	if got, want := run.Technology, "wordpress"; got != want {
		t.Errorf("Technology = %q, want %q", got, want)
	}
	if got, want := run.Phase, model.PhaseStandardization; got != want {
		t.Errorf("Phase = %q, want %q", got, want)
	}
	if got, want := len(run.Occurrences), 2; got != want {
		t.Fatalf("len(Occurrences) = %d, want %d", got, want)
	}
	if got, want := run.Occurrences[0].Name, "meta_generator_wordpress"; got != want {
		t.Errorf("Occurrences[0].Name = %q, want %q", got, want)
	}
	if got := run.Occurrences[0].Type; got != model.PatternTypeUnknown {
		t.Errorf("Occurrences[0].Type = %q, want unknown", got)
	}
	if run.Evidence == nil {
		t.Fatal("Evidence = nil, want bundle")
	}
	if v, ok := run.Evidence.GetHeader("server"); !ok || v != "nginx" {
		t.Errorf("GetHeader(server) = %q, %v, want nginx, true", v, ok)
	}
}

func TestNormalizeRecordAnalysisLayout(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"url": "https://example.org",
		"timestamp": "2025-11-02T11:00:00Z",
		"phase": "phase1",
		"detectedCMS": {"name": "Drupal"},
		"analysisResult": {
			"patterns": [
				{
					"name": "meta_generator",
					"type": "meta",
					"location": "head",
					"value": "Drupal 10",
					"selector": "meta[name=generator]",
					"attribute": "content",
					"confidence": 0.95
				},
				{
					"name": "core_version",
					"type": "js",
					"value": 10.2
				}
			]
		},
		"performance": {"duration": 12500, "token_usage": 2100}
	}`)

	run, err := NormalizeRecord(raw)
	if err != nil {
		t.Fatalf("NormalizeRecord() error = %v", err)
	}

	if got, want := run.Technology, "drupal"; got != want {
		t.Errorf("Technology = %q, want %q", got, want)
	}
	if got, want := run.Phase, model.PhaseDiscovery; got != want {
		t.Errorf("Phase = %q, want %q", got, want)
	}
	if got, want := len(run.Occurrences), 2; got != want {
		t.Fatalf("len(Occurrences) = %d, want %d", got, want)
	}

	first := run.Occurrences[0]
	if first.Type != model.PatternTypeMeta {
		t.Errorf("first.Type = %q, want meta", first.Type)
	}
	if first.Value != "Drupal 10" {
		t.Errorf("first.Value = %q, want Drupal 10", first.Value)
	}
	if first.Confidence != 0.95 {
		t.Errorf("first.Confidence = %v, want 0.95", first.Confidence)
	}

	// Numeric values keep their JSON text, and the "js" alias maps to
	// the javascript type.
	second := run.Occurrences[1]
	if second.Type != model.PatternTypeJavaScript {
		t.Errorf("second.Type = %q, want javascript", second.Type)
	}
	if second.Value != "10.2" {
		t.Errorf("second.Value = %q, want 10.2", second.Value)
	}

	if got, want := run.Performance.DurationMS, 12500.0; got != want {
		t.Errorf("Performance.DurationMS = %v, want %v", got, want)
	}
	if got, want := run.Performance.Tokens, 2100.0; got != want {
		t.Errorf("Performance.Tokens = %v, want %v", got, want)
	}
	if run.Evidence != nil {
		t.Errorf("Evidence = %+v, want nil for record without data section", run.Evidence)
	}
}

func TestNormalizeRecordTopLevelTokensWin(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"url": "https://example.org",
		"detectedCMS": {"name": "joomla"},
		"analysisResult": {"patterns": []},
		"performance": {"duration": 9000, "token_usage": 1800},
		"tokens": 1750
	}`)

	run, err := NormalizeRecord(raw)
	if err != nil {
		t.Fatalf("NormalizeRecord() error = %v", err)
	}
	if got, want := run.Performance.Tokens, 1750.0; got != want {
		t.Errorf("Performance.Tokens = %v, want %v", got, want)
	}
}

func TestNormalizeRecordUnrecognized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "empty object",
			raw:  `{}`,
		},
		{
			name: "analysis without technology",
			raw:  `{"analysis": {"keyPatterns": ["a"]}}`,
		},
		{
			name: "analysisResult without patterns",
			raw:  `{"analysisResult": {"summary": "ok"}}`,
		},
		{
			name: "collector index",
			raw:  `{"files": ["a.json", "b.json"], "collected": 2}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NormalizeRecord([]byte(tt.raw))
			if !errors.Is(err, ErrUnrecognizedRecord) {
				t.Errorf("NormalizeRecord() error = %v, want ErrUnrecognizedRecord", err)
			}
		})
	}
}

func TestNormalizeRecordInvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := NormalizeRecord([]byte(`{"analysis":`))
	if err == nil {
		t.Fatal("NormalizeRecord() error = nil, want parse error")
	}
	if errors.Is(err, ErrUnrecognizedRecord) {
		t.Error("truncated JSON should be a parse error, not an unrecognized layout")
	}
}

func TestNormalizeRecordMissingFieldsBecomeUnknown(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"analysis": {"technologyDetected": "", "keyPatterns": []}}`)

	run, err := NormalizeRecord(raw)
	if err != nil {
		t.Fatalf("NormalizeRecord() error = %v", err)
	}
	if run.SiteURL != unknownValue {
		t.Errorf("SiteURL = %q, want %q", run.SiteURL, unknownValue)
	}
	if run.Technology != unknownValue {
		t.Errorf("Technology = %q, want %q", run.Technology, unknownValue)
	}
	if run.Timestamp != unknownValue {
		t.Errorf("Timestamp = %q, want %q", run.Timestamp, unknownValue)
	}
	if run.Phase != model.PhaseUnknown {
		t.Errorf("Phase = %q, want unknown", run.Phase)
	}
}

func TestCoerceString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "string", raw: `"wp-content"`, want: "wp-content"},
		{name: "number", raw: `6.4`, want: "6.4"},
		{name: "bool", raw: `true`, want: "true"},
		{name: "null", raw: `null`, want: ""},
		{name: "empty", raw: ``, want: ""},
		{name: "object", raw: `{"v":1}`, want: `{"v":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var raw []byte
			if tt.raw != "" {
				raw = []byte(tt.raw)
			}
			if got := coerceString(raw); got != tt.want {
				t.Errorf("coerceString(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
