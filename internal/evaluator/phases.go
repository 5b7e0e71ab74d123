package evaluator

import (
	"log/slog"
	"sort"

	"github.com/patternqa/patternqa/internal/model"
)

// Phase performance gates in milliseconds and tokens. Discovery runs a
// full extraction and is allowed to be slow; standardization reworks an
// existing pattern list and must be fast and cheap.
const (
	discoveryLatencyExcellent = 15000.0
	discoveryTokensExcellent  = 3000.0
	discoveryLatencyGood      = 20000.0
	discoveryTokensGood       = 4000.0

	standardizationLatencyExcellent = 8000.0
	standardizationTokensExcellent  = 1500.0
	standardizationLatencyGood      = 10000.0
	standardizationTokensGood       = 2000.0
)

// standardizedConfidences are the only confidence values phase 2 output
// is allowed to carry. Anything else counts against compliance.
var standardizedConfidences = map[float64]struct{}{
	0.95: {},
	0.90: {},
	0.85: {},
	0.80: {},
}

// PhaseAnalyzer compares discovery runs against standardization runs on
// latency, token usage, pattern volume, and confidence standardization.
type PhaseAnalyzer struct {
	logger *slog.Logger
}

// PhaseOption configures a PhaseAnalyzer.
type PhaseOption func(*PhaseAnalyzer)

// WithPhaseLogger sets a custom logger.
func WithPhaseLogger(logger *slog.Logger) PhaseOption {
	return func(a *PhaseAnalyzer) {
		a.logger = logger
	}
}

// NewPhaseAnalyzer creates a PhaseAnalyzer.
func NewPhaseAnalyzer(opts ...PhaseOption) *PhaseAnalyzer {
	a := &PhaseAnalyzer{}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Analyze builds the phase comparison report.
//
// Runs that declare neither phase are ignored; combined-phase runs are
// also ignored because their metrics describe both stages at once and
// would distort either side of the comparison. Reduction percentages are
// only computed when both phases carry the corresponding samples.
func (a *PhaseAnalyzer) Analyze(runs []*model.AnalysisRun) *model.PhaseReport {
	var discovery, standardization []*model.AnalysisRun
	for _, run := range runs {
		switch run.Phase {
		case model.PhaseDiscovery:
			discovery = append(discovery, run)
		case model.PhaseStandardization:
			standardization = append(standardization, run)
		}
	}

	a.logger.Info("analyzing phases",
		"discovery_runs", len(discovery),
		"standardization_runs", len(standardization),
	)

	report := &model.PhaseReport{
		Discovery:              phaseMetrics(discovery, false),
		Standardization:        phaseMetrics(standardization, true),
		DiscoveryVerdict:       model.VerdictNotEvaluated,
		StandardizationVerdict: model.VerdictNotEvaluated,
		ComplianceVerdict:      model.VerdictNotEvaluated,
	}

	if d, s := report.Discovery, report.Standardization; d != nil && s != nil {
		if d.Latency != nil && s.Latency != nil && d.Latency.Avg > 0 {
			report.LatencyReduction = (d.Latency.Avg - s.Latency.Avg) / d.Latency.Avg * 100
		}
		if d.Tokens != nil && s.Tokens != nil && d.Tokens.Avg > 0 {
			report.TokenReduction = (d.Tokens.Avg - s.Tokens.Avg) / d.Tokens.Avg * 100
		}
	}

	if m := report.Discovery; m != nil && m.Latency != nil {
		report.DiscoveryVerdict = performanceVerdict(m,
			discoveryLatencyExcellent, discoveryTokensExcellent,
			discoveryLatencyGood, discoveryTokensGood)
	}
	if m := report.Standardization; m != nil && m.Latency != nil {
		report.StandardizationVerdict = performanceVerdict(m,
			standardizationLatencyExcellent, standardizationTokensExcellent,
			standardizationLatencyGood, standardizationTokensGood)
	}

	if m := report.Standardization; m != nil && m.SampleCount > 0 {
		if occurrenceCount(standardization) > 0 {
			if m.ComplianceRate == 100 {
				report.ComplianceVerdict = model.VerdictExcellent
			} else {
				report.ComplianceVerdict = model.VerdictNeedsImprovement
			}
		}
	}

	a.logger.Info("phases analyzed",
		"latency_reduction", report.LatencyReduction,
		"token_reduction", report.TokenReduction,
		"discovery_verdict", report.DiscoveryVerdict,
		"standardization_verdict", report.StandardizationVerdict,
		"compliance_verdict", report.ComplianceVerdict,
	)

	return report
}

// performanceVerdict bands a phase's average latency and token usage.
// A phase with latency samples but no token samples is judged on latency
// alone; the token average is then zero and passes every token gate.
func performanceVerdict(m *model.PhaseMetrics, latExcellent, tokExcellent, latGood, tokGood float64) model.Verdict {
	latency := m.Latency.Avg
	var tokens float64
	if m.Tokens != nil {
		tokens = m.Tokens.Avg
	}

	switch {
	case latency < latExcellent && tokens < tokExcellent:
		return model.VerdictExcellent
	case latency < latGood && tokens < tokGood:
		return model.VerdictGood
	default:
		return model.VerdictNeedsImprovement
	}
}

// phaseMetrics collects the distribution statistics for one phase's runs.
// Returns nil when the phase has no runs at all.
func phaseMetrics(runs []*model.AnalysisRun, compliance bool) *model.PhaseMetrics {
	if len(runs) == 0 {
		return nil
	}

	var latencies, tokens, patternCounts []float64
	standardized := 0
	total := 0

	for _, run := range runs {
		if run.Performance.DurationMS > 0 {
			latencies = append(latencies, run.Performance.DurationMS)
		}
		if run.Performance.Tokens > 0 {
			tokens = append(tokens, run.Performance.Tokens)
		}
		patternCounts = append(patternCounts, float64(len(run.Occurrences)))

		if compliance {
			for i := range run.Occurrences {
				total++
				if _, ok := standardizedConfidences[run.Occurrences[i].Confidence]; ok {
					standardized++
				}
			}
		}
	}

	m := &model.PhaseMetrics{
		SampleCount:   len(runs),
		Latency:       newDistributionStats(latencies),
		Tokens:        newDistributionStats(tokens),
		PatternCounts: newDistributionStats(patternCounts),
	}
	if compliance && total > 0 {
		m.ComplianceRate = float64(standardized) / float64(total) * 100
	}
	return m
}

// occurrenceCount sums pattern occurrences across runs.
func occurrenceCount(runs []*model.AnalysisRun) int {
	n := 0
	for _, run := range runs {
		n += len(run.Occurrences)
	}
	return n
}

// newDistributionStats summarizes a sample set. Returns nil without
// samples. The percentile fields need the whole sample set, which is why
// callers collect before computing instead of streaming.
func newDistributionStats(samples []float64) *model.DistributionStats {
	if len(samples) == 0 {
		return nil
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	var sum float64
	for _, s := range sorted {
		sum += s
	}

	return &model.DistributionStats{
		Avg:    sum / float64(len(sorted)),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: median(sorted),
		P95:    percentile95(sorted),
	}
}

// median of an already-sorted sample set. Even-sized sets average the two
// middle samples.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// percentile95 of an already-sorted sample set, by rank truncation.
// A single sample is its own 95th percentile.
func percentile95(sorted []float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	return sorted[int(float64(n)*0.95)]
}
