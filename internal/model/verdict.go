package model

// Verdict classifies an evaluation result into the acceptance bands consumed
// by the surrounding harness. The band thresholds are part of the evaluated
// contract: downstream consumers of the report shape depend on these exact
// strings and cutoffs, so they must not drift.
type Verdict string

// Verdict constants.
const (
	// VerdictNotEvaluated marks a metric that had no input to evaluate.
	VerdictNotEvaluated Verdict = "NOT_EVALUATED"
	// VerdictExcellent is the top acceptance band.
	VerdictExcellent Verdict = "EXCELLENT"
	// VerdictGood is the passing acceptance band.
	VerdictGood Verdict = "GOOD"
	// VerdictNeedsImprovement indicates the evaluation failed its gate.
	VerdictNeedsImprovement Verdict = "NEEDS_IMPROVEMENT"
	// VerdictInsufficientData indicates too little input to score at all.
	// This is deliberately distinct from NEEDS_IMPROVEMENT: missing data is
	// not evidence of a quality problem.
	VerdictInsufficientData Verdict = "INSUFFICIENT_DATA"
)

// String returns the string representation of the Verdict.
func (v Verdict) String() string {
	if v == "" {
		return string(VerdictNotEvaluated)
	}
	return string(v)
}

// IsValid returns true if this is a known verdict.
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictNotEvaluated, VerdictExcellent, VerdictGood,
		VerdictNeedsImprovement, VerdictInsufficientData:
		return true
	default:
		return false
	}
}

// Passed returns true if the verdict clears the acceptance gate.
// Callers map a failed verdict to a non-zero process exit; the core only
// ever exposes the verdict as data.
func (v Verdict) Passed() bool {
	return v == VerdictExcellent || v == VerdictGood
}

// ParseVerdict converts a string to Verdict.
func ParseVerdict(s string) Verdict {
	switch s {
	case "EXCELLENT":
		return VerdictExcellent
	case "GOOD":
		return VerdictGood
	case "NEEDS_IMPROVEMENT":
		return VerdictNeedsImprovement
	case "INSUFFICIENT_DATA":
		return VerdictInsufficientData
	default:
		return VerdictNotEvaluated
	}
}

// WorseOf returns the worse of two verdicts, for rolling an overall verdict
// up from several sub-reports. INSUFFICIENT_DATA outranks the passing bands
// but not NEEDS_IMPROVEMENT, because an actual failure is more actionable
// than missing data.
func WorseOf(a, b Verdict) Verdict {
	rank := func(v Verdict) int {
		switch v {
		case VerdictNeedsImprovement:
			return 4
		case VerdictInsufficientData:
			return 3
		case VerdictGood:
			return 2
		case VerdictExcellent:
			return 1
		default: // NOT_EVALUATED never drags the overall verdict down
			return 0
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}
