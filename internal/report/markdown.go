package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/patternqa/patternqa/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.EvaluationReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeConsistency(md, report.Consistency)
	w.writeCompleteness(md, report.Completeness)
	w.writeVerification(md, report.Verification)
	w.writePhases(md, report.Phases)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with evaluation information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.EvaluationReport) {
	title := "Pattern Quality Report"
	if report.Technology != "" {
		// Technology labels are stored lowercased; title casing reads
		// better in a document heading.
		title += ": " + cases.Title(language.English).String(report.Technology)
	}
	md.H1(title)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Technology", "`" + report.Technology + "`"},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Records Loaded", strconv.Itoa(report.RecordsLoaded)},
			{"Records Skipped", strconv.Itoa(report.RecordsSkipped)},
			{"Overall Verdict", verdictBadge(report.Verdict())},
		},
	})
	md.PlainText("")

	w.writeVerdictAlert(md, report.Verdict())
}

// verdictBadge returns a verdict string with a visual indicator.
func verdictBadge(v model.Verdict) string {
	switch v {
	case model.VerdictExcellent:
		return "🟢 EXCELLENT"
	case model.VerdictGood:
		return "🟡 GOOD"
	case model.VerdictNeedsImprovement:
		return "🔴 NEEDS_IMPROVEMENT"
	case model.VerdictInsufficientData:
		return "⚪ INSUFFICIENT_DATA"
	default:
		return "⚪ NOT_EVALUATED"
	}
}

// writeVerdictAlert writes an appropriate alert based on the overall verdict.
func (w *MarkdownWriter) writeVerdictAlert(md *markdown.Markdown, v model.Verdict) {
	switch v {
	case model.VerdictNeedsImprovement:
		md.Caution("At least one evaluation dimension failed its acceptance gate. Review the sections below for details.")
	case model.VerdictInsufficientData:
		md.Warning("Not enough input data to score every dimension. Collect more analysis runs and re-evaluate.")
	case model.VerdictGood:
		md.Note("All evaluated dimensions passed, with room to improve before the top band.")
	case model.VerdictExcellent:
		md.Tip("All evaluated dimensions met the top acceptance band.")
	}
	md.PlainText("")
}

// writeConsistency writes the naming-consistency section.
func (w *MarkdownWriter) writeConsistency(md *markdown.Markdown, r *model.ConsistencyReport) {
	if r == nil {
		return
	}

	md.H2("Naming Consistency")
	md.PlainText("")

	if r.Metrics == nil {
		md.PlainTextf("No site had enough runs in the %s phase to score. Verdict: %s", r.Phase.String(), r.Verdict.String())
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Phase", r.Phase.String()},
			{"Sites Analyzed", strconv.Itoa(r.Metrics.SitesAnalyzed)},
			{"Average Score", formatPercent(r.Metrics.AverageScore)},
			{"Min / Max", formatPercent(r.Metrics.MinScore) + " / " + formatPercent(r.Metrics.MaxScore)},
			{"Sites ≥ 95%", strconv.Itoa(r.Metrics.SitesAbove95)},
			{"Sites ≥ 98%", strconv.Itoa(r.Metrics.SitesAbove98)},
			{"Verdict", verdictBadge(r.Verdict)},
		},
	})
	md.PlainText("")

	w.writeInconsistent(md, r.Sites)
}

// writeInconsistent writes the per-identity naming drift details.
func (w *MarkdownWriter) writeInconsistent(md *markdown.Markdown, sites []model.SiteConsistency) {
	var rows [][]string
	for _, site := range sites {
		for _, inc := range site.Inconsistent {
			names := ""
			for i, name := range inc.Names {
				if i > 0 {
					names += ", "
				}
				names += "`" + name + "`"
			}
			rows = append(rows, []string{
				truncateString(site.SiteURL, 40),
				inc.Type.String(),
				truncateString(inc.Location, 30),
				names,
			})
		}
	}
	if len(rows) == 0 {
		return
	}

	md.PlainText("Identities that received more than one name:")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Site", "Type", "Location", "Names"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeCompleteness writes the reference-coverage section.
func (w *MarkdownWriter) writeCompleteness(md *markdown.Markdown, r *model.CompletenessReport) {
	if r == nil {
		return
	}

	md.H2("Reference Coverage")
	md.PlainText("")

	if r.ConfigurationError {
		md.Cautionf("The reference set for %s defines no required patterns. Fix the reference file before relying on this score.", r.Technology)
		md.PlainText("")
		return
	}
	if r.Metrics == nil {
		md.PlainTextf("No runs matched technology %s. Verdict: %s", r.Technology, r.Verdict.String())
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Technology", r.Technology},
			{"Sites Analyzed", strconv.Itoa(r.SitesAnalyzed)},
			{"Required Patterns", strconv.Itoa(r.RequiredCount)},
			{"Aggregate Coverage", formatPercent(r.Metrics.AggregateScore)},
			{"Discriminator Coverage", formatPercent(r.Metrics.DiscriminatorScore)},
			{"Distinct Discovered", strconv.Itoa(r.Metrics.DistinctDiscovered)},
			{"Verdict", verdictBadge(r.Verdict)},
		},
	})
	md.PlainText("")

	if len(r.Metrics.RequiredMissing) > 0 {
		md.PlainText("Required patterns never discovered anywhere in the corpus:")
		md.PlainText("")
		md.BulletList(r.Metrics.RequiredMissing...)
		md.PlainText("")
	}
	if len(r.Metrics.ConsistentlyDetected) > 0 {
		md.Details("Consistently detected patterns (seen on at least 80% of sites)",
			bulletLines(r.Metrics.ConsistentlyDetected))
		md.PlainText("")
	}
}

// bulletLines renders names as markdown list items for a details block.
func bulletLines(names []string) string {
	out := ""
	for _, name := range names {
		out += "- " + name + "\n"
	}
	return out
}

// writeVerification writes the evidence-verification section.
func (w *MarkdownWriter) writeVerification(md *markdown.Markdown, r *model.VerificationReport) {
	if r == nil {
		return
	}

	md.H2("Evidence Verification")
	md.PlainText("")

	if r.TotalPatterns == 0 {
		md.PlainTextf("No runs carried evidence bundles. Verdict: %s", r.Verdict.String())
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Runs With Evidence", strconv.Itoa(r.RunsProcessed)},
			{"Patterns Checked", strconv.Itoa(r.TotalPatterns)},
			{"Verified", strconv.Itoa(r.VerifiedPatterns)},
			{"Accuracy", formatPercent(r.Accuracy)},
			{"False Positive Rate", formatPercent(r.FalsePositiveRate)},
			{"Verdict", verdictBadge(r.Verdict)},
		},
	})
	md.PlainText("")

	w.writePieChart(md, r)
	w.writeFalsePositives(md, r.FalsePositives)
}

// writePieChart writes a mermaid pie chart of verification outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, r *model.VerificationReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Verification Outcomes"),
		piechart.WithShowData(true),
	)

	if r.VerifiedPatterns > 0 {
		chart.LabelAndIntValue("Verified", uint64(r.VerifiedPatterns))
	}
	if missed := r.TotalPatterns - r.VerifiedPatterns; missed > 0 {
		chart.LabelAndIntValue("False Positives", uint64(missed))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFalsePositives writes the table of occurrences that failed verification.
func (w *MarkdownWriter) writeFalsePositives(md *markdown.Markdown, fps []model.FalsePositive) {
	if len(fps) == 0 {
		return
	}

	rows := make([][]string, len(fps))
	for i, fp := range fps {
		rows[i] = []string{
			truncateString(fp.SiteURL, 40),
			fp.Pattern,
			fp.Type.String(),
			truncateString(fp.Reason, 60),
		}
	}

	md.PlainText("Patterns that could not be found in their own evidence:")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Site", "Pattern", "Type", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePhases writes the phase-comparison section.
func (w *MarkdownWriter) writePhases(md *markdown.Markdown, r *model.PhaseReport) {
	if r == nil {
		return
	}

	md.H2("Phase Comparison")
	md.PlainText("")

	if r.Discovery == nil && r.Standardization == nil {
		md.PlainText("No runs declared a recognizable phase.")
		md.PlainText("")
		return
	}

	w.writePhaseMetrics(md, "Discovery", r.Discovery, r.DiscoveryVerdict)
	w.writePhaseMetrics(md, "Standardization", r.Standardization, r.StandardizationVerdict)

	if r.Discovery != nil && r.Standardization != nil {
		md.Table(markdown.TableSet{
			Header: []string{"Improvement", "Value"},
			Rows: [][]string{
				{"Latency Reduction", formatPercent(r.LatencyReduction)},
				{"Token Reduction", formatPercent(r.TokenReduction)},
				{"Confidence Compliance", verdictBadge(r.ComplianceVerdict)},
			},
		})
		md.PlainText("")
	}
}

// writePhaseMetrics writes the statistics table for one phase.
func (w *MarkdownWriter) writePhaseMetrics(md *markdown.Markdown, name string, m *model.PhaseMetrics, verdict model.Verdict) {
	if m == nil {
		return
	}

	md.PlainTextf("### %s (%d runs)", name, m.SampleCount)
	md.PlainText("")

	rows := [][]string{}
	if m.Latency != nil {
		rows = append(rows, []string{"Latency (ms)", formatStats(m.Latency)})
	}
	if m.Tokens != nil {
		rows = append(rows, []string{"Tokens", formatStats(m.Tokens)})
	}
	if m.PatternCounts != nil {
		rows = append(rows, []string{"Patterns / run", formatStats(m.PatternCounts)})
	}
	rows = append(rows, []string{"Verdict", verdictBadge(verdict)})

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "avg / median / p95 / max"},
		Rows:   rows,
	})
	md.PlainText("")
}

// formatStats renders a distribution as "avg / median / p95 / max".
func formatStats(s *model.DistributionStats) string {
	return fmt.Sprintf("%.1f / %.1f / %.1f / %.1f", s.Avg, s.Median, s.P95, s.Max)
}

// formatPercent renders a percentage with one decimal place.
func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [patternqa](https://github.com/patternqa/patternqa)*")
}
