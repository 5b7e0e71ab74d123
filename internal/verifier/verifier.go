package verifier

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/patternqa/patternqa/internal/model"
)

// False-positive rate verdict gates, in percent.
const (
	falsePositiveExcellent = 2.0
	falsePositiveGood      = 5.0
)

// Outcome reasons recorded per occurrence.
const (
	reasonFound    = "found in evidence"
	reasonNotFound = "not found in collected evidence"
)

// Verifier checks claimed pattern occurrences against evidence bundles.
type Verifier struct {
	logger *slog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// New creates a Verifier.
func New(opts ...Option) *Verifier {
	v := &Verifier{}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v
}

// Verify checks every occurrence of every run that carries an evidence
// bundle and aggregates the accuracy report. Runs without evidence are
// skipped; they claimed patterns but kept nothing to check them against.
func (v *Verifier) Verify(runs []*model.AnalysisRun) *model.VerificationReport {
	report := &model.VerificationReport{
		TypeAccuracy:       make(map[string]*model.AccuracyBucket),
		TechnologyAccuracy: make(map[string]*model.AccuracyBucket),
	}

	for _, run := range runs {
		if run.Evidence == nil {
			continue
		}
		report.RunsProcessed++

		for i := range run.Occurrences {
			occ := &run.Occurrences[i]
			verified, reason := v.verifyOccurrence(run.Evidence, occ)

			report.TotalPatterns++
			if verified {
				report.VerifiedPatterns++
			} else {
				report.FalsePositives = append(report.FalsePositives, model.FalsePositive{
					SiteURL: run.SiteURL,
					Pattern: occ.Name,
					Type:    occ.Type,
					Reason:  reason,
				})
			}

			bucketFor(report.TypeAccuracy, occ.Type.String()).Add(verified)
			bucketFor(report.TechnologyAccuracy, run.Technology).Add(verified)
		}
	}

	if report.TotalPatterns > 0 {
		report.Accuracy = float64(report.VerifiedPatterns) / float64(report.TotalPatterns) * 100
		report.FalsePositiveRate = 100 - report.Accuracy
		report.Verdict = verificationVerdict(report.FalsePositiveRate)
	} else {
		report.Verdict = model.VerdictInsufficientData
	}

	for _, bucket := range report.TypeAccuracy {
		bucket.Finalize()
	}
	for _, bucket := range report.TechnologyAccuracy {
		bucket.Finalize()
	}

	v.logger.Info("verification complete",
		"runs", report.RunsProcessed,
		"patterns", report.TotalPatterns,
		"verified", report.VerifiedPatterns,
		"false_positive_rate", report.FalsePositiveRate,
		"verdict", report.Verdict,
	)

	return report
}

// verifyOccurrence dispatches one occurrence to its matcher. The location
// text decides when the record carried no usable type, and patterns that
// fit neither are searched in the serialized bundle. A panicking matcher
// is recorded as unverified with the fault text; evidence is untrusted
// input and one malformed bundle must not abort the batch.
func (v *Verifier) verifyOccurrence(evidence *model.EvidenceBundle, occ *model.PatternOccurrence) (verified bool, reason string) {
	defer func() {
		if r := recover(); r != nil {
			verified = false
			reason = fmt.Sprintf("verification fault: %v", r)
			v.logger.Error("matcher fault recovered",
				"pattern", occ.Name,
				"fault", r,
			)
		}
	}()

	location := strings.ToLower(occ.Location)

	switch {
	case occ.Type == model.PatternTypeMeta || strings.Contains(location, "meta"):
		verified = matchMeta(evidence, occ)
	case occ.Type == model.PatternTypeJavaScript || strings.Contains(location, "script"):
		verified = matchScript(evidence, occ)
	case occ.Type == model.PatternTypeCSS || strings.Contains(location, "style"):
		verified = matchStyle(evidence, occ)
	case occ.Type == model.PatternTypeStructure || strings.Contains(location, "url"):
		verified = matchStructure(evidence, occ)
	case occ.Type == model.PatternTypeHeader || strings.Contains(location, "header"):
		verified = matchHeader(evidence, occ)
	default:
		verified = strings.Contains(evidence.Flatten(), occ.Value)
	}

	if verified {
		return true, reasonFound
	}
	return false, reasonNotFound
}

// verificationVerdict maps a false-positive rate to its acceptance band.
func verificationVerdict(rate float64) model.Verdict {
	switch {
	case rate <= falsePositiveExcellent:
		return model.VerdictExcellent
	case rate <= falsePositiveGood:
		return model.VerdictGood
	default:
		return model.VerdictNeedsImprovement
	}
}

// bucketFor returns the bucket for key, creating it on first use.
func bucketFor(buckets map[string]*model.AccuracyBucket, key string) *model.AccuracyBucket {
	bucket, ok := buckets[key]
	if !ok {
		bucket = &model.AccuracyBucket{}
		buckets[key] = bucket
	}
	return bucket
}
