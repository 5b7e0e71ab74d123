package loader

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/patternqa/patternqa/internal/model"
)

// unknownValue is the placeholder stored records use for absent fields.
const unknownValue = "unknown"

// learnRecord is the layout written by the pattern learning pipeline.
// Patterns appear only as a flat list of names; type, location, and value
// information is not recorded.
type learnRecord struct {
	Phase     string `json:"phase"`
	InputData struct {
		URL string `json:"url"`
	} `json:"inputData"`
	Metadata struct {
		Timestamp string `json:"timestamp"`
	} `json:"metadata"`
	Analysis struct {
		TechnologyDetected string   `json:"technologyDetected"`
		KeyPatterns        []string `json:"keyPatterns"`
	} `json:"analysis"`
	Data *evidenceSection `json:"data"`
}

// analysisRecord is the layout written by the full analysis pipeline.
// Patterns are structured objects and the record may carry performance
// metrics for phase analysis.
type analysisRecord struct {
	URL         string `json:"url"`
	Timestamp   string `json:"timestamp"`
	Phase       string `json:"phase"`
	DetectedCMS struct {
		Name string `json:"name"`
	} `json:"detectedCMS"`
	AnalysisResult struct {
		Patterns []wirePattern `json:"patterns"`
	} `json:"analysisResult"`
	Performance struct {
		Duration   float64 `json:"duration"`
		TokenUsage float64 `json:"token_usage"`
	} `json:"performance"`
	Tokens float64          `json:"tokens"`
	Data   *evidenceSection `json:"data"`
}

// wirePattern is one pattern object as stored on disk. Value is kept raw
// because detectors occasionally emit numbers or objects where a string is
// expected; we coerce rather than fail.
type wirePattern struct {
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Location   string          `json:"location"`
	Value      json.RawMessage `json:"value"`
	Selector   string          `json:"selector"`
	Attribute  string          `json:"attribute"`
	Confidence float64         `json:"confidence"`
}

// evidenceSection is the raw collected material embedded in a record.
type evidenceSection struct {
	HTML       string `json:"html"`
	JavaScript struct {
		Inline   []string `json:"inline"`
		External []string `json:"external"`
	} `json:"javascript"`
	CSS struct {
		Inline   []string `json:"inline"`
		External []string `json:"external"`
	} `json:"css"`
	URLs    []string                   `json:"urls"`
	Headers map[string]json.RawMessage `json:"headers"`
}

// shapeProbe detects which record layout a document uses without decoding
// the whole document. A record qualifies as learn only when "analysis"
// carries "technologyDetected", and as an analysis record only when
// "analysisResult" carries "patterns"; anything else is unrecognized.
type shapeProbe struct {
	Analysis *struct {
		TechnologyDetected *string `json:"technologyDetected"`
	} `json:"analysis"`
	AnalysisResult *struct {
		Patterns json.RawMessage `json:"patterns"`
	} `json:"analysisResult"`
}

// NormalizeRecord converts one raw JSON document into a model.AnalysisRun.
// It is the single boundary where on-disk layouts are recognized; callers
// receive ErrUnrecognizedRecord (wrapped) for anything else.
func NormalizeRecord(raw []byte) (*model.AnalysisRun, error) {
	var probe shapeProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("loader: parse record: %w", err)
	}

	switch {
	case probe.Analysis != nil && probe.Analysis.TechnologyDetected != nil:
		var rec learnRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("loader: parse learn record: %w", err)
		}
		return rec.toRun(), nil

	case probe.AnalysisResult != nil && probe.AnalysisResult.Patterns != nil:
		var rec analysisRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("loader: parse analysis record: %w", err)
		}
		return rec.toRun(), nil

	default:
		return nil, ErrUnrecognizedRecord
	}
}

// toRun converts a learn record. Learn patterns carry only a name, so the
// occurrences come back with unknown type and empty locator fields; the
// identity of two same-named learn patterns therefore collapses to one key,
// which is exactly the behavior consistency scoring needs for them.
func (r *learnRecord) toRun() *model.AnalysisRun {
	occurrences := make([]model.PatternOccurrence, 0, len(r.Analysis.KeyPatterns))
	for _, name := range r.Analysis.KeyPatterns {
		occurrences = append(occurrences, model.PatternOccurrence{
			Name: name,
			Type: model.PatternTypeUnknown,
		})
	}

	return &model.AnalysisRun{
		SiteURL:     orUnknown(r.InputData.URL),
		Technology:  normalizeTechnology(r.Analysis.TechnologyDetected),
		Phase:       model.ParsePhase(r.Phase),
		Timestamp:   orUnknown(r.Metadata.Timestamp),
		Occurrences: occurrences,
		Evidence:    r.Data.toBundle(),
	}
}

// toRun converts a full analysis record.
func (r *analysisRecord) toRun() *model.AnalysisRun {
	occurrences := make([]model.PatternOccurrence, 0, len(r.AnalysisResult.Patterns))
	for _, p := range r.AnalysisResult.Patterns {
		occurrences = append(occurrences, model.PatternOccurrence{
			Name:       p.Name,
			Type:       model.ParsePatternType(p.Type),
			Location:   p.Location,
			Value:      coerceString(p.Value),
			Selector:   p.Selector,
			Attribute:  p.Attribute,
			Confidence: p.Confidence,
		})
	}

	// Token usage appears either at the top level or inside the
	// performance section depending on the collector version.
	tokens := r.Tokens
	if tokens == 0 {
		tokens = r.Performance.TokenUsage
	}

	return &model.AnalysisRun{
		SiteURL:     orUnknown(r.URL),
		Technology:  normalizeTechnology(r.DetectedCMS.Name),
		Phase:       model.ParsePhase(r.Phase),
		Timestamp:   orUnknown(r.Timestamp),
		Occurrences: occurrences,
		Performance: model.RunPerformance{
			DurationMS: r.Performance.Duration,
			Tokens:     tokens,
		},
		Evidence: r.Data.toBundle(),
	}
}

// toBundle converts the embedded evidence section. Returns nil when the
// record carried no data section or an empty one, so the verifier can tell
// "no evidence" apart from "evidence with nothing in it".
func (s *evidenceSection) toBundle() *model.EvidenceBundle {
	if s == nil {
		return nil
	}

	headers := make(map[string]string, len(s.Headers))
	for name, value := range s.Headers {
		headers[name] = coerceString(value)
	}
	if len(headers) == 0 {
		headers = nil
	}

	bundle := &model.EvidenceBundle{
		HTML:            s.HTML,
		InlineScripts:   s.JavaScript.Inline,
		ExternalScripts: s.JavaScript.External,
		InlineStyles:    s.CSS.Inline,
		ExternalStyles:  s.CSS.External,
		URLs:            s.URLs,
		Headers:         headers,
	}
	if bundle.IsEmpty() {
		return nil
	}
	return bundle
}

// coerceString renders a raw JSON value as the string the detectors meant.
// Strings decode normally, null becomes empty, and anything else keeps its
// compact JSON text so numeric versions like 6.4 stay matchable.
func coerceString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}

// normalizeTechnology lowercases a detected technology label so grouping
// and reference matching are case-insensitive. Alias resolution to a
// canonical label happens later, against the configured alias table.
func normalizeTechnology(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return unknownValue
	}
	return name
}

func orUnknown(s string) string {
	if s == "" {
		return unknownValue
	}
	return s
}
