package evaluator

import (
	"log/slog"
	"sort"

	"github.com/patternqa/patternqa/internal/model"
)

// Completeness verdict gates. The aggregate union coverage decides the band.
const (
	completenessExcellent = 95.0
	completenessGood      = 90.0
)

// consistentDetectionShare is the share of sites a pattern must appear on
// to count as consistently detected.
const consistentDetectionShare = 0.8

// CompletenessEvaluator measures how much of a technology's reference
// pattern set a corpus of analysis runs actually discovered.
//
// Completeness compares pattern names, not identities: the reference set
// is authored as names, and phase 2 is expected to have made names stable
// before completeness is judged.
type CompletenessEvaluator struct {
	logger *slog.Logger
}

// CompletenessOption configures a CompletenessEvaluator.
type CompletenessOption func(*CompletenessEvaluator)

// WithCompletenessLogger sets a custom logger.
func WithCompletenessLogger(logger *slog.Logger) CompletenessOption {
	return func(e *CompletenessEvaluator) {
		e.logger = logger
	}
}

// NewCompletenessEvaluator creates a CompletenessEvaluator.
func NewCompletenessEvaluator(opts ...CompletenessOption) *CompletenessEvaluator {
	e := &CompletenessEvaluator{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Evaluate scores the runs against the reference set.
//
// Only runs whose detected technology matches the reference's technology
// are considered; runs of the same site are merged into one discovered
// name set per site. An empty required set is a configuration error: the
// report carries zero scores and the ConfigurationError flag rather than
// a trivial pass. When no run matches the technology at all, the verdict
// is INSUFFICIENT_DATA.
func (e *CompletenessEvaluator) Evaluate(runs []*model.AnalysisRun, ref *model.ReferencePatternSet) *model.CompletenessReport {
	report := &model.CompletenessReport{
		Technology:    ref.Technology,
		RequiredCount: len(ref.RequiredPatterns),
	}

	// Discovered names per site, sites in first-seen order.
	var siteOrder []string
	siteNames := make(map[string]map[string]struct{})
	for _, run := range runs {
		if run.Technology != ref.Technology {
			continue
		}
		names, ok := siteNames[run.SiteURL]
		if !ok {
			names = make(map[string]struct{})
			siteNames[run.SiteURL] = names
			siteOrder = append(siteOrder, run.SiteURL)
		}
		for i := range run.Occurrences {
			names[run.Occurrences[i].Name] = struct{}{}
		}
	}
	report.SitesAnalyzed = len(siteOrder)

	e.logger.Info("evaluating completeness",
		"technology", ref.Technology,
		"sites", report.SitesAnalyzed,
		"required", report.RequiredCount,
	)

	if ref.IsEmpty() {
		report.ConfigurationError = true
		report.Verdict = model.VerdictNeedsImprovement
		e.logger.Error("reference defines no required patterns",
			"technology", ref.Technology,
		)
		return report
	}

	if report.SitesAnalyzed == 0 {
		report.Verdict = model.VerdictInsufficientData
		e.logger.Warn("no runs matched the reference technology",
			"technology", ref.Technology,
		)
		return report
	}

	required := ref.RequiredSet()
	union := make(map[string]struct{})
	frequency := make(map[string]int)

	for _, site := range siteOrder {
		names := siteNames[site]
		for name := range names {
			union[name] = struct{}{}
			frequency[name]++
		}

		score, _, missing := coverage(names, required)
		report.Sites = append(report.Sites, model.SiteCompleteness{
			SiteURL:       site,
			PatternsFound: len(names),
			Score:         score,
			Missing:       missing,
		})
	}

	aggregateScore, found, missing := coverage(union, required)
	discriminatorScore, _, _ := coverage(union, ref.DiscriminatorSet())

	threshold := float64(report.SitesAnalyzed) * consistentDetectionShare
	var consistent []string
	for name, count := range frequency {
		if float64(count) >= threshold {
			consistent = append(consistent, name)
		}
	}
	sort.Strings(consistent)

	report.Metrics = &model.CompletenessMetrics{
		AggregateScore:       aggregateScore,
		DiscriminatorScore:   discriminatorScore,
		DistinctDiscovered:   len(union),
		RequiredFound:        found,
		RequiredMissing:      missing,
		Frequency:            frequency,
		ConsistentlyDetected: consistent,
	}
	report.Verdict = completenessVerdict(aggregateScore)

	e.logger.Info("completeness evaluated",
		"aggregate", aggregateScore,
		"missing", len(missing),
		"verdict", report.Verdict,
	)

	return report
}

// completenessVerdict maps an aggregate score to its acceptance band.
func completenessVerdict(score float64) model.Verdict {
	switch {
	case score >= completenessExcellent:
		return model.VerdictExcellent
	case score >= completenessGood:
		return model.VerdictGood
	default:
		return model.VerdictNeedsImprovement
	}
}

// coverage computes |discovered ∩ required| / |required| as a percentage
// together with the sorted found and missing name lists. An empty
// required set scores zero by convention; the caller decides whether that
// is a configuration error.
func coverage(discovered, required map[string]struct{}) (float64, []string, []string) {
	if len(required) == 0 {
		return 0, nil, nil
	}

	var found, missing []string
	for name := range required {
		if _, ok := discovered[name]; ok {
			found = append(found, name)
		} else {
			missing = append(missing, name)
		}
	}
	sort.Strings(found)
	sort.Strings(missing)

	return float64(len(found)) / float64(len(required)) * 100, found, missing
}
