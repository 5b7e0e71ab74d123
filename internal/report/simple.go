package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/patternqa/patternqa/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables additional detail in the output, such as the
	// full false-positive listing instead of a count.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.EvaluationReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeConsistency(&sb, report.Consistency)
	w.writeCompleteness(&sb, report.Completeness)
	w.writeVerification(&sb, report.Verification)
	w.writePhases(&sb, report.Phases)
	w.writeFooter(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with evaluation information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.EvaluationReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                     PATTERN QUALITY REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Technology:      %s\n", report.Technology))
	sb.WriteString(fmt.Sprintf("Generated:       %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Records Loaded:  %d\n", report.RecordsLoaded))
	if report.RecordsSkipped > 0 {
		sb.WriteString(fmt.Sprintf("Records Skipped: %d\n", report.RecordsSkipped))
	}
	sb.WriteString("\n")
}

// writeSection writes a section divider with a title.
func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeConsistency writes the naming-consistency section.
func (w *SimpleWriter) writeConsistency(sb *strings.Builder, r *model.ConsistencyReport) {
	if r == nil {
		return
	}

	w.writeSection(sb, "NAMING CONSISTENCY")

	if r.Metrics == nil {
		sb.WriteString(fmt.Sprintf("  No site had >=2 runs in the %s phase.\n", r.Phase.String()))
		sb.WriteString(fmt.Sprintf("  Verdict: %s\n\n", r.Verdict.String()))
		return
	}

	sb.WriteString(fmt.Sprintf("  Phase:          %s\n", r.Phase.String()))
	sb.WriteString(fmt.Sprintf("  Sites analyzed: %d of %d\n", r.Metrics.SitesAnalyzed, r.TotalSites))
	sb.WriteString(fmt.Sprintf("  Average score:  %.1f%% (min %.1f%%, max %.1f%%)\n",
		r.Metrics.AverageScore, r.Metrics.MinScore, r.Metrics.MaxScore))
	sb.WriteString(fmt.Sprintf("  Sites >= 95%%:   %d (%.1f%%)\n", r.Metrics.SitesAbove95, r.Metrics.PercentMeeting95))
	sb.WriteString(fmt.Sprintf("  Verdict:        %s\n", r.Verdict.String()))

	for tech, avg := range r.Metrics.TechnologyAverages {
		sb.WriteString(fmt.Sprintf("    %-20s %.1f%%\n", tech, avg))
	}

	if w.verbose {
		for _, site := range r.Sites {
			for _, inc := range site.Inconsistent {
				sb.WriteString(fmt.Sprintf("  [!] %s: %s named %s\n",
					site.SiteURL, inc.Location, strings.Join(inc.Names, " / ")))
			}
		}
	}
	sb.WriteString("\n")
}

// writeCompleteness writes the reference-coverage section.
func (w *SimpleWriter) writeCompleteness(sb *strings.Builder, r *model.CompletenessReport) {
	if r == nil {
		return
	}

	w.writeSection(sb, "REFERENCE COVERAGE")

	if r.ConfigurationError {
		sb.WriteString(fmt.Sprintf("  [!] Reference for %s defines no required patterns.\n", r.Technology))
		sb.WriteString(fmt.Sprintf("  Verdict: %s\n\n", r.Verdict.String()))
		return
	}
	if r.Metrics == nil {
		sb.WriteString(fmt.Sprintf("  No runs matched technology %s.\n", r.Technology))
		sb.WriteString(fmt.Sprintf("  Verdict: %s\n\n", r.Verdict.String()))
		return
	}

	sb.WriteString(fmt.Sprintf("  Technology:         %s\n", r.Technology))
	sb.WriteString(fmt.Sprintf("  Sites analyzed:     %d\n", r.SitesAnalyzed))
	sb.WriteString(fmt.Sprintf("  Aggregate coverage: %.1f%% (%d/%d required)\n",
		r.Metrics.AggregateScore, len(r.Metrics.RequiredFound), r.RequiredCount))
	sb.WriteString(fmt.Sprintf("  Discriminators:     %.1f%%\n", r.Metrics.DiscriminatorScore))
	sb.WriteString(fmt.Sprintf("  Verdict:            %s\n", r.Verdict.String()))

	if len(r.Metrics.RequiredMissing) > 0 {
		sb.WriteString("  Missing everywhere:\n")
		for _, name := range r.Metrics.RequiredMissing {
			sb.WriteString(fmt.Sprintf("    [-] %s\n", name))
		}
	}
	sb.WriteString("\n")
}

// writeVerification writes the evidence-verification section.
func (w *SimpleWriter) writeVerification(sb *strings.Builder, r *model.VerificationReport) {
	if r == nil {
		return
	}

	w.writeSection(sb, "EVIDENCE VERIFICATION")

	if r.TotalPatterns == 0 {
		sb.WriteString("  No runs carried evidence bundles.\n")
		sb.WriteString(fmt.Sprintf("  Verdict: %s\n\n", r.Verdict.String()))
		return
	}

	sb.WriteString(fmt.Sprintf("  Runs with evidence:  %d\n", r.RunsProcessed))
	sb.WriteString(fmt.Sprintf("  Patterns checked:    %d\n", r.TotalPatterns))
	sb.WriteString(fmt.Sprintf("  Verified:            %d (%.1f%%)\n", r.VerifiedPatterns, r.Accuracy))
	sb.WriteString(fmt.Sprintf("  False positive rate: %.1f%%\n", r.FalsePositiveRate))
	sb.WriteString(fmt.Sprintf("  Verdict:             %s\n", r.Verdict.String()))

	if w.verbose {
		for _, fp := range r.FalsePositives {
			sb.WriteString(fmt.Sprintf("  [x] %s: %s (%s)\n", fp.SiteURL, fp.Pattern, fp.Reason))
		}
	} else if len(r.FalsePositives) > 0 {
		sb.WriteString(fmt.Sprintf("  %d false positive(s); use verbose output for the full list.\n", len(r.FalsePositives)))
	}
	sb.WriteString("\n")
}

// writePhases writes the phase-comparison section.
func (w *SimpleWriter) writePhases(sb *strings.Builder, r *model.PhaseReport) {
	if r == nil {
		return
	}

	w.writeSection(sb, "PHASE COMPARISON")

	if r.Discovery == nil && r.Standardization == nil {
		sb.WriteString("  No runs declared a recognizable phase.\n\n")
		return
	}

	w.writePhaseMetrics(sb, "Discovery", r.Discovery, r.DiscoveryVerdict)
	w.writePhaseMetrics(sb, "Standardization", r.Standardization, r.StandardizationVerdict)

	if r.Discovery != nil && r.Standardization != nil {
		sb.WriteString(fmt.Sprintf("  Latency reduction: %.1f%%\n", r.LatencyReduction))
		sb.WriteString(fmt.Sprintf("  Token reduction:   %.1f%%\n", r.TokenReduction))
		sb.WriteString(fmt.Sprintf("  Compliance:        %s\n", r.ComplianceVerdict.String()))
	}
	sb.WriteString("\n")
}

// writePhaseMetrics writes statistics for one phase.
func (w *SimpleWriter) writePhaseMetrics(sb *strings.Builder, name string, m *model.PhaseMetrics, verdict model.Verdict) {
	if m == nil {
		return
	}

	sb.WriteString(fmt.Sprintf("  %s (%d runs):\n", name, m.SampleCount))
	if m.Latency != nil {
		sb.WriteString(fmt.Sprintf("    Latency ms: avg %.0f, median %.0f, p95 %.0f\n",
			m.Latency.Avg, m.Latency.Median, m.Latency.P95))
	}
	if m.Tokens != nil {
		sb.WriteString(fmt.Sprintf("    Tokens:     avg %.0f, median %.0f, p95 %.0f\n",
			m.Tokens.Avg, m.Tokens.Median, m.Tokens.P95))
	}
	if m.ComplianceRate > 0 {
		sb.WriteString(fmt.Sprintf("    Confidence compliance: %.1f%%\n", m.ComplianceRate))
	}
	sb.WriteString(fmt.Sprintf("    Verdict:    %s\n", verdict.String()))
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, report *model.EvaluationReport) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("OVERALL VERDICT: %s\n", report.Verdict().String()))
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
