package model

// typeUnknownStr is the string representation for unknown enum values.
const typeUnknownStr = "unknown"

// PatternType represents the evidence category a pattern was extracted from.
type PatternType string

// Pattern type constants.
const (
	// PatternTypeUnknown represents a pattern with no or unrecognized type.
	PatternTypeUnknown PatternType = ""
	// PatternTypeMeta represents patterns found in HTML meta tags.
	PatternTypeMeta PatternType = "meta"
	// PatternTypeJavaScript represents patterns found in inline or external scripts.
	PatternTypeJavaScript PatternType = "javascript"
	// PatternTypeCSS represents patterns found in inline or external stylesheets.
	PatternTypeCSS PatternType = "css"
	// PatternTypeStructure represents patterns found in URL/file structure.
	PatternTypeStructure PatternType = "structure"
	// PatternTypeHeader represents patterns found in HTTP response headers.
	PatternTypeHeader PatternType = "header"
)

// String returns the string representation of the PatternType.
func (t PatternType) String() string {
	if t == PatternTypeUnknown {
		return typeUnknownStr
	}
	return string(t)
}

// IsValid returns true if this is a known pattern type.
func (t PatternType) IsValid() bool {
	switch t {
	case PatternTypeMeta, PatternTypeJavaScript, PatternTypeCSS,
		PatternTypeStructure, PatternTypeHeader:
		return true
	default:
		return false
	}
}

// ParsePatternType converts a string to PatternType.
// It accepts the aliases used by older analysis records ("js", "url", "script",
// "style") in addition to the canonical names.
func ParsePatternType(s string) PatternType {
	switch s {
	case "meta":
		return PatternTypeMeta
	case "javascript", "js", "script":
		return PatternTypeJavaScript
	case "css", "style", "stylesheet":
		return PatternTypeCSS
	case "structure", "url", "file":
		return PatternTypeStructure
	case "header", "headers":
		return PatternTypeHeader
	default:
		return PatternTypeUnknown
	}
}

// Phase represents a pipeline stage of the fingerprinting analysis.
// Phase 1 discovers raw patterns; phase 2 standardizes their names.
// Runs from different phases are never mixed in one consistency computation
// because naming is only expected to be stable within a phase.
type Phase string

// Phase constants.
const (
	// PhaseUnknown represents a record that did not declare its phase.
	PhaseUnknown Phase = ""
	// PhaseDiscovery is the raw pattern extraction phase ("phase1").
	PhaseDiscovery Phase = "phase1"
	// PhaseStandardization is the canonical naming phase ("phase2").
	PhaseStandardization Phase = "phase2"
	// PhaseCombined marks single-pass records that ran both phases at once.
	PhaseCombined Phase = "combined"
)

// String returns the string representation of the Phase.
func (p Phase) String() string {
	if p == PhaseUnknown {
		return typeUnknownStr
	}
	return string(p)
}

// IsValid returns true if this is a known phase.
func (p Phase) IsValid() bool {
	switch p {
	case PhaseDiscovery, PhaseStandardization, PhaseCombined:
		return true
	default:
		return false
	}
}

// ParsePhase converts a string to Phase.
func ParsePhase(s string) Phase {
	switch s {
	case "phase1", "discovery":
		return PhaseDiscovery
	case "phase2", "standardization":
		return PhaseStandardization
	case "combined":
		return PhaseCombined
	default:
		return PhaseUnknown
	}
}

// PatternOccurrence is one detected instance of a fingerprinting signal in
// collected site evidence. The Name is the label assigned by the detector and
// is NOT guaranteed unique or stable across runs; identity comparisons must go
// through the identity package instead.
type PatternOccurrence struct {
	// Name is the detector-assigned label (e.g. "meta_generator_wordpress").
	Name string `json:"name"`

	// Type is the evidence category this pattern was extracted from.
	Type PatternType `json:"type,omitempty"`

	// Location is a free-text locator: a selector path, header name, or URL
	// fragment. Used together with Type to disambiguate same-named patterns.
	Location string `json:"location,omitempty"`

	// Value is the raw matched content. Long values are kept in full here;
	// identity and report-example truncation happen at the point of use.
	Value string `json:"value,omitempty"`

	// Selector is the CSS selector for markup-derived patterns.
	Selector string `json:"selector,omitempty"`

	// Attribute is the HTML attribute name for markup-derived patterns.
	Attribute string `json:"attribute,omitempty"`

	// Confidence is the detector's confidence in [0, 1].
	// Phase 2 records are expected to use standardized values only.
	Confidence float64 `json:"confidence,omitempty"`
}

// ExampleValueLength bounds the value excerpt embedded in reports.
// Full values can be whole inline script bodies; reports only need
// enough of the value to identify the signal.
const ExampleValueLength = 50

// ExampleValue returns the occurrence value truncated for report output.
func (o *PatternOccurrence) ExampleValue() string {
	if len(o.Value) > ExampleValueLength {
		return o.Value[:ExampleValueLength]
	}
	return o.Value
}

// RunPerformance holds the performance metrics recorded for one analysis run.
// These feed the phase analyzer; they are zero when the record carried none.
type RunPerformance struct {
	// DurationMS is the wall-clock duration of the analysis in milliseconds.
	DurationMS float64 `json:"duration_ms,omitempty"`

	// Tokens is the LLM token usage of the analysis.
	Tokens float64 `json:"tokens,omitempty"`
}

// AnalysisRun is one analysis execution for one site. Distinct runs of the
// same site (within one phase) are the unit of consistency comparison.
type AnalysisRun struct {
	// SiteURL is the site this run analyzed.
	SiteURL string `json:"site_url"`

	// Technology is the CMS label the run detected (e.g. "wordpress").
	// Informational only: it groups per-CMS breakdowns, never scoring.
	Technology string `json:"technology"`

	// Phase is the pipeline stage that produced this run.
	Phase Phase `json:"phase"`

	// Timestamp is the record's own timestamp string, kept verbatim because
	// stored records use inconsistent formats and we never compute with it.
	Timestamp string `json:"timestamp,omitempty"`

	// Occurrences are the patterns this run reported.
	Occurrences []PatternOccurrence `json:"occurrences"`

	// Performance holds optional latency/token metrics for phase analysis.
	Performance RunPerformance `json:"performance,omitempty"`

	// Evidence is the raw collected material this run analyzed.
	// Nil when the record carried no evidence section; the verifier
	// skips such runs.
	Evidence *EvidenceBundle `json:"-"`
}

// PatternNames returns the set of distinct pattern names in this run.
func (r *AnalysisRun) PatternNames() map[string]struct{} {
	names := make(map[string]struct{}, len(r.Occurrences))
	for i := range r.Occurrences {
		names[r.Occurrences[i].Name] = struct{}{}
	}
	return names
}
