package model

// ConsistencyReport measures how stably the same underlying signal receives
// the same name across repeated analysis runs of the same sites.
type ConsistencyReport struct {
	// Phase is the pipeline stage this report scored. Runs from other phases
	// were filtered out before scoring; phases are never mixed.
	Phase Phase `json:"phase"`

	// TotalSites is the number of sites that had any runs at all.
	TotalSites int `json:"total_sites"`

	// Sites holds the per-site results, only for sites with >=2 runs.
	// Sites with fewer runs have undefined consistency and are excluded,
	// not scored as zero.
	Sites []SiteConsistency `json:"sites"`

	// Metrics holds the aggregate metrics across all scored sites.
	// Nil when no site had enough runs to score.
	Metrics *ConsistencyMetrics `json:"metrics,omitempty"`

	// Verdict is the acceptance band for the average consistency.
	Verdict Verdict `json:"verdict"`
}

// SiteConsistency is the naming-stability result for one site.
type SiteConsistency struct {
	// SiteURL identifies the site.
	SiteURL string `json:"site_url"`

	// Technology is the CMS label from the site's first run.
	// Informational only; it feeds the per-CMS breakdown, never scoring.
	Technology string `json:"technology"`

	// RunsAnalyzed is the number of runs scored for this site.
	RunsAnalyzed int `json:"runs_analyzed"`

	// DistinctIdentities is the number of distinct signal identities observed.
	DistinctIdentities int `json:"distinct_identities"`

	// ConsistentIdentities is the number of identities that carried exactly
	// one name across all runs.
	ConsistentIdentities int `json:"consistent_identities"`

	// Score is ConsistentIdentities / DistinctIdentities as a percentage.
	// A site with zero identities scores 100: nothing was named, so nothing
	// was named inconsistently.
	Score float64 `json:"score"`

	// Inconsistent lists every identity that received more than one name,
	// with enough descriptive detail to diagnose the naming drift.
	// Never silently dropped.
	Inconsistent []InconsistentIdentity `json:"inconsistent,omitempty"`

	// PresentInAllRuns lists one name per identity that was observed at
	// least once in every run of the site.
	PresentInAllRuns []string `json:"present_in_all_runs,omitempty"`
}

// InconsistentIdentity describes one signal identity that received multiple
// names across runs.
type InconsistentIdentity struct {
	// Identity is the content-derived fingerprint of the signal.
	Identity string `json:"identity"`

	// Names are the distinct names attached to this identity, sorted.
	Names []string `json:"names"`

	// Type is the pattern type of the signal.
	Type PatternType `json:"type,omitempty"`

	// Location is the signal's locator, for diagnosis.
	Location string `json:"location,omitempty"`

	// ExampleValue is a truncated excerpt of the signal's value.
	ExampleValue string `json:"example_value,omitempty"`
}

// ConsistencyMetrics aggregates per-site scores across the corpus.
type ConsistencyMetrics struct {
	// SitesAnalyzed is the number of sites with enough runs to score.
	SitesAnalyzed int `json:"sites_analyzed"`

	// AverageScore is the mean per-site consistency percentage.
	AverageScore float64 `json:"average_score"`

	// MinScore is the lowest per-site score.
	MinScore float64 `json:"min_score"`

	// MaxScore is the highest per-site score.
	MaxScore float64 `json:"max_score"`

	// SitesAbove95 counts sites at or above the 95% acceptance gate.
	SitesAbove95 int `json:"sites_above_95"`

	// SitesAbove98 counts sites at or above the 98% acceptance gate.
	SitesAbove98 int `json:"sites_above_98"`

	// PercentMeeting95 is SitesAbove95 over SitesAnalyzed as a percentage.
	PercentMeeting95 float64 `json:"percent_meeting_95"`

	// TechnologyAverages maps each CMS label to its average site score.
	TechnologyAverages map[string]float64 `json:"technology_averages,omitempty"`
}
