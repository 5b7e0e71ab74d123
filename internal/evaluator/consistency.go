package evaluator

import (
	"log/slog"
	"sort"

	"github.com/patternqa/patternqa/internal/identity"
	"github.com/patternqa/patternqa/internal/model"
)

// Consistency verdict gates. The average site score decides the band.
const (
	consistencyExcellent = 98.0
	consistencyGood      = 95.0
)

// minRunsForConsistency is the smallest number of same-phase runs for which
// a site's consistency is defined. Below it the site is excluded from
// scoring entirely rather than scored as perfect or as zero.
const minRunsForConsistency = 2

// ConsistencyEvaluator scores how stably the same underlying signal
// receives the same name across repeated runs of the same site.
//
// Design decision: Identity grouping uses the content fingerprint, never
// the pattern name, because:
// 1. The name is exactly the thing under test
// 2. Same-named patterns from different evidence must not collapse
// 3. Renamed patterns with identical content must collapse
type ConsistencyEvaluator struct {
	// phase restricts scoring to runs of one pipeline stage. Runs that
	// did not declare a phase are included, matching how older records
	// were produced before phases existed. PhaseUnknown disables the
	// filter entirely.
	phase model.Phase

	// logger is used for evaluation progress logging.
	logger *slog.Logger
}

// ConsistencyOption configures a ConsistencyEvaluator.
type ConsistencyOption func(*ConsistencyEvaluator)

// WithConsistencyPhase sets the phase filter.
// Default is PhaseStandardization: naming stability is a phase 2 promise.
func WithConsistencyPhase(p model.Phase) ConsistencyOption {
	return func(e *ConsistencyEvaluator) {
		e.phase = p
	}
}

// WithConsistencyLogger sets a custom logger.
func WithConsistencyLogger(logger *slog.Logger) ConsistencyOption {
	return func(e *ConsistencyEvaluator) {
		e.logger = logger
	}
}

// NewConsistencyEvaluator creates a ConsistencyEvaluator.
func NewConsistencyEvaluator(opts ...ConsistencyOption) *ConsistencyEvaluator {
	e := &ConsistencyEvaluator{
		phase: model.PhaseStandardization,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Evaluate scores naming consistency across the given runs.
//
// Runs are grouped by site, filtered to the configured phase, and each
// site with at least two runs is scored as the share of distinct signal
// identities that carried exactly one name. Sites with fewer runs are
// excluded, and when no site can be scored the verdict is
// INSUFFICIENT_DATA with nil metrics.
func (e *ConsistencyEvaluator) Evaluate(runs []*model.AnalysisRun) *model.ConsistencyReport {
	bySite := groupBySite(runs, e.phase)

	e.logger.Info("evaluating naming consistency",
		"phase", e.phase.String(),
		"sites", len(bySite.order),
	)

	report := &model.ConsistencyReport{
		Phase:      e.phase,
		TotalSites: len(bySite.order),
	}

	var scores []float64
	techTotals := make(map[string]float64)
	techCounts := make(map[string]int)

	for _, site := range bySite.order {
		siteRuns := bySite.runs[site]
		if len(siteRuns) < minRunsForConsistency {
			continue
		}

		result := scoreSite(site, siteRuns)
		report.Sites = append(report.Sites, result)
		scores = append(scores, result.Score)

		techTotals[result.Technology] += result.Score
		techCounts[result.Technology]++
	}

	if len(scores) == 0 {
		report.Verdict = model.VerdictInsufficientData
		e.logger.Warn("no site had enough runs to score consistency",
			"min_runs", minRunsForConsistency,
		)
		return report
	}

	metrics := &model.ConsistencyMetrics{
		SitesAnalyzed:      len(scores),
		MinScore:           scores[0],
		MaxScore:           scores[0],
		TechnologyAverages: make(map[string]float64, len(techCounts)),
	}

	var sum float64
	for _, s := range scores {
		sum += s
		if s < metrics.MinScore {
			metrics.MinScore = s
		}
		if s > metrics.MaxScore {
			metrics.MaxScore = s
		}
		if s >= consistencyGood {
			metrics.SitesAbove95++
		}
		if s >= consistencyExcellent {
			metrics.SitesAbove98++
		}
	}
	metrics.AverageScore = sum / float64(len(scores))
	metrics.PercentMeeting95 = float64(metrics.SitesAbove95) / float64(len(scores)) * 100

	for tech, total := range techTotals {
		metrics.TechnologyAverages[tech] = total / float64(techCounts[tech])
	}

	report.Metrics = metrics
	report.Verdict = consistencyVerdict(metrics.AverageScore)

	e.logger.Info("naming consistency evaluated",
		"sites_scored", metrics.SitesAnalyzed,
		"average", metrics.AverageScore,
		"verdict", report.Verdict,
	)

	return report
}

// consistencyVerdict maps an average score to its acceptance band.
func consistencyVerdict(average float64) model.Verdict {
	switch {
	case average >= consistencyExcellent:
		return model.VerdictExcellent
	case average >= consistencyGood:
		return model.VerdictGood
	default:
		return model.VerdictNeedsImprovement
	}
}

// identityRecord accumulates everything observed for one signal identity
// across the runs of a site.
type identityRecord struct {
	// names are the distinct names attached to this identity.
	names map[string]struct{}

	// firstName is the first name observed, used as the stable
	// representative in the present-in-all-runs list.
	firstName string

	// runsSeen tracks which runs contained this identity at least once.
	runsSeen map[int]struct{}

	// Descriptive fields from the first observation, for diagnosis.
	patternType  model.PatternType
	location     string
	exampleValue string
}

// scoreSite computes the consistency result for one site.
func scoreSite(site string, runs []*model.AnalysisRun) model.SiteConsistency {
	records := make(map[identity.Key]*identityRecord)

	for runIdx, run := range runs {
		for i := range run.Occurrences {
			occ := &run.Occurrences[i]
			key := identity.Fingerprint(occ)

			rec, ok := records[key]
			if !ok {
				rec = &identityRecord{
					names:        make(map[string]struct{}),
					firstName:    occ.Name,
					runsSeen:     make(map[int]struct{}),
					patternType:  occ.Type,
					location:     occ.Location,
					exampleValue: occ.ExampleValue(),
				}
				records[key] = rec
			}
			rec.names[occ.Name] = struct{}{}
			rec.runsSeen[runIdx] = struct{}{}
		}
	}

	result := model.SiteConsistency{
		SiteURL:            site,
		Technology:         runs[0].Technology,
		RunsAnalyzed:       len(runs),
		DistinctIdentities: len(records),
	}

	// Deterministic output order regardless of map iteration.
	keys := make([]identity.Key, 0, len(records))
	for key := range records {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, key := range keys {
		rec := records[key]

		if len(rec.names) == 1 {
			result.ConsistentIdentities++
		} else {
			names := make([]string, 0, len(rec.names))
			for name := range rec.names {
				names = append(names, name)
			}
			sort.Strings(names)

			result.Inconsistent = append(result.Inconsistent, model.InconsistentIdentity{
				Identity:     string(key),
				Names:        names,
				Type:         rec.patternType,
				Location:     rec.location,
				ExampleValue: rec.exampleValue,
			})
		}

		if len(rec.runsSeen) == len(runs) {
			result.PresentInAllRuns = append(result.PresentInAllRuns, rec.firstName)
		}
	}
	sort.Strings(result.PresentInAllRuns)

	// A site with no identities at all has nothing named inconsistently.
	if result.DistinctIdentities == 0 {
		result.Score = 100
	} else {
		result.Score = float64(result.ConsistentIdentities) / float64(result.DistinctIdentities) * 100
	}

	return result
}

// siteGroups holds runs grouped by site in first-seen order.
type siteGroups struct {
	order []string
	runs  map[string][]*model.AnalysisRun
}

// groupBySite groups runs by site URL, keeping only runs matching the
// phase filter. Runs with no declared phase always pass the filter.
func groupBySite(runs []*model.AnalysisRun, phase model.Phase) *siteGroups {
	groups := &siteGroups{
		runs: make(map[string][]*model.AnalysisRun),
	}
	for _, run := range runs {
		if phase != model.PhaseUnknown && run.Phase != phase && run.Phase != model.PhaseUnknown {
			continue
		}
		if _, ok := groups.runs[run.SiteURL]; !ok {
			groups.order = append(groups.order, run.SiteURL)
		}
		groups.runs[run.SiteURL] = append(groups.runs[run.SiteURL], run)
	}
	return groups
}
