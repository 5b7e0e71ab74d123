package model

// VerificationReport measures how many claimed patterns genuinely occur in
// the raw evidence they were extracted from. A pattern that cannot be found
// in its own evidence bundle is counted as a false positive: either the
// detector hallucinated it or mis-attributed its origin.
type VerificationReport struct {
	// RunsProcessed is the number of runs that carried an evidence bundle.
	RunsProcessed int `json:"runs_processed"`

	// TotalPatterns is the number of occurrences checked.
	TotalPatterns int `json:"total_patterns"`

	// VerifiedPatterns is the number of occurrences found in their evidence.
	VerifiedPatterns int `json:"verified_patterns"`

	// Accuracy is VerifiedPatterns / TotalPatterns as a percentage.
	Accuracy float64 `json:"accuracy"`

	// FalsePositiveRate is 100 - Accuracy.
	FalsePositiveRate float64 `json:"false_positive_rate"`

	// TypeAccuracy breaks accuracy down by pattern type.
	TypeAccuracy map[string]*AccuracyBucket `json:"type_accuracy,omitempty"`

	// TechnologyAccuracy breaks accuracy down by detected CMS label.
	TechnologyAccuracy map[string]*AccuracyBucket `json:"technology_accuracy,omitempty"`

	// FalsePositives lists every occurrence that failed verification, with
	// the reason recorded by the matcher.
	FalsePositives []FalsePositive `json:"false_positives,omitempty"`

	// Verdict is the acceptance band for the false-positive rate.
	Verdict Verdict `json:"verdict"`
}

// AccuracyBucket is a verified/total counter pair for one breakdown key.
type AccuracyBucket struct {
	// Total is the number of occurrences in this bucket.
	Total int `json:"total"`

	// Verified is the number that passed verification.
	Verified int `json:"verified"`

	// Accuracy is Verified / Total as a percentage.
	Accuracy float64 `json:"accuracy"`
}

// Add records one verification outcome in the bucket.
func (b *AccuracyBucket) Add(verified bool) {
	b.Total++
	if verified {
		b.Verified++
	}
}

// Finalize computes the bucket's accuracy percentage from its counters.
func (b *AccuracyBucket) Finalize() {
	if b.Total > 0 {
		b.Accuracy = float64(b.Verified) / float64(b.Total) * 100
	}
}

// FalsePositive describes one occurrence that failed verification.
type FalsePositive struct {
	// SiteURL is the site the occurrence was claimed for.
	SiteURL string `json:"site_url"`

	// Pattern is the occurrence's name.
	Pattern string `json:"pattern"`

	// Type is the occurrence's pattern type.
	Type PatternType `json:"type,omitempty"`

	// Reason explains why verification failed. Internal matcher faults are
	// recorded here too; they never abort the batch.
	Reason string `json:"reason"`
}
