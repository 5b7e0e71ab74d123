package model

// CompletenessReport measures how much of a technology's reference pattern
// set a collection of per-site analysis results actually discovered.
type CompletenessReport struct {
	// Technology is the technology the reference set belongs to.
	Technology string `json:"technology"`

	// SitesAnalyzed is the number of sites that contributed discovered names.
	SitesAnalyzed int `json:"sites_analyzed"`

	// RequiredCount is the size of the reference required set.
	RequiredCount int `json:"required_count"`

	// ConfigurationError is true when the reference defined no required
	// patterns. Completeness is then reported as 0 by convention, and this
	// flag distinguishes a broken reference from a genuinely failing run.
	ConfigurationError bool `json:"configuration_error,omitempty"`

	// Sites holds the per-site completeness results.
	Sites []SiteCompleteness `json:"sites"`

	// Metrics holds the aggregate metrics.
	Metrics *CompletenessMetrics `json:"metrics,omitempty"`

	// Verdict is the acceptance band for the aggregate completeness.
	Verdict Verdict `json:"verdict"`
}

// SiteCompleteness is the coverage result for one site.
type SiteCompleteness struct {
	// SiteURL identifies the site.
	SiteURL string `json:"site_url"`

	// PatternsFound is the number of distinct names the site discovered.
	PatternsFound int `json:"patterns_found"`

	// Score is |discovered ∩ required| / |required| as a percentage.
	Score float64 `json:"score"`

	// Missing lists the required names the site did not discover, sorted.
	Missing []string `json:"missing,omitempty"`
}

// CompletenessMetrics aggregates coverage across the whole corpus.
type CompletenessMetrics struct {
	// AggregateScore is the completeness of the union of all sites'
	// discovered names against the required set, as a percentage. This
	// rewards broad corpus coverage even when no single site exhibits
	// every pattern.
	AggregateScore float64 `json:"aggregate_score"`

	// DiscriminatorScore is the same union coverage computed against the
	// discriminator subset instead of the full required set.
	DiscriminatorScore float64 `json:"discriminator_score"`

	// DistinctDiscovered is the number of distinct names discovered
	// anywhere in the corpus.
	DistinctDiscovered int `json:"distinct_discovered"`

	// RequiredFound lists the required names discovered somewhere, sorted.
	RequiredFound []string `json:"required_found,omitempty"`

	// RequiredMissing lists the required names never discovered, sorted.
	RequiredMissing []string `json:"required_missing,omitempty"`

	// Frequency maps each discovered name to the number of sites where it
	// appeared at least once.
	Frequency map[string]int `json:"frequency,omitempty"`

	// ConsistentlyDetected lists names seen on at least 80% of sites, sorted.
	ConsistentlyDetected []string `json:"consistently_detected,omitempty"`
}
