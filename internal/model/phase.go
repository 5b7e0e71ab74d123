package model

// PhaseReport compares the performance and output quality of the discovery
// phase against the standardization phase across a result corpus.
type PhaseReport struct {
	// Discovery holds the metrics for phase 1 runs, nil when absent.
	Discovery *PhaseMetrics `json:"discovery,omitempty"`

	// Standardization holds the metrics for phase 2 runs, nil when absent.
	Standardization *PhaseMetrics `json:"standardization,omitempty"`

	// LatencyReduction is the phase1→phase2 average latency reduction as a
	// percentage. Zero when either phase lacks latency samples.
	LatencyReduction float64 `json:"latency_reduction,omitempty"`

	// TokenReduction is the phase1→phase2 average token reduction as a
	// percentage. Zero when either phase lacks token samples.
	TokenReduction float64 `json:"token_reduction,omitempty"`

	// DiscoveryVerdict is the acceptance band for phase 1 performance.
	DiscoveryVerdict Verdict `json:"discovery_verdict"`

	// StandardizationVerdict is the acceptance band for phase 2 performance.
	StandardizationVerdict Verdict `json:"standardization_verdict"`

	// ComplianceVerdict is the acceptance band for phase 2 confidence
	// standardization: EXCELLENT only at 100% compliance.
	ComplianceVerdict Verdict `json:"compliance_verdict"`
}

// PhaseMetrics holds the statistics collected for one phase.
type PhaseMetrics struct {
	// SampleCount is the number of runs in this phase.
	SampleCount int `json:"sample_count"`

	// Latency summarizes run durations in milliseconds, nil without samples.
	Latency *DistributionStats `json:"latency,omitempty"`

	// Tokens summarizes token usage, nil without samples.
	Tokens *DistributionStats `json:"tokens,omitempty"`

	// PatternCounts summarizes patterns reported per run, nil without samples.
	PatternCounts *DistributionStats `json:"pattern_counts,omitempty"`

	// ComplianceRate is the percentage of occurrences carrying a
	// standardized confidence value. Only meaningful for phase 2.
	ComplianceRate float64 `json:"compliance_rate,omitempty"`
}

// DistributionStats summarizes a sample distribution. The percentile fields
// require the full sample set up front; they are never streamed, which is why
// phase analysis collects all samples before computing.
type DistributionStats struct {
	// Avg is the arithmetic mean.
	Avg float64 `json:"avg"`

	// Min is the smallest sample.
	Min float64 `json:"min"`

	// Max is the largest sample.
	Max float64 `json:"max"`

	// Median is the 50th percentile.
	Median float64 `json:"median"`

	// P95 is the 95th percentile.
	P95 float64 `json:"p95"`
}
