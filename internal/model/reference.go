package model

// ReferencePatternSet is the hand-curated reference for one technology:
// the pattern names a complete analysis must be able to discover, and the
// subset considered strongly indicative of that technology alone.
//
// Lifecycle: authored externally, loaded read-only per evaluation run,
// never mutated by the evaluators.
type ReferencePatternSet struct {
	// Technology is the canonical technology name (e.g. "wordpress").
	Technology string `json:"technology"`

	// RequiredPatterns are the names that must be discoverable across the
	// corpus. Order is preserved from the reference file for stable output.
	RequiredPatterns []string `json:"required_patterns"`

	// DiscriminatorPatterns is the subset of required patterns with a low
	// cross-technology false-positive rate.
	DiscriminatorPatterns []string `json:"discriminator_patterns"`
}

// IsEmpty returns true if the reference defines no required patterns.
// An empty reference is a configuration error, not a trivially-complete
// evaluation: completeness against it reports 0% with an explicit flag.
func (r *ReferencePatternSet) IsEmpty() bool {
	return len(r.RequiredPatterns) == 0
}

// RequiredSet returns the required pattern names as a set.
func (r *ReferencePatternSet) RequiredSet() map[string]struct{} {
	return toSet(r.RequiredPatterns)
}

// DiscriminatorSet returns the discriminator pattern names as a set.
func (r *ReferencePatternSet) DiscriminatorSet() map[string]struct{} {
	return toSet(r.DiscriminatorPatterns)
}

// toSet converts a name list to a set, dropping duplicates.
func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
