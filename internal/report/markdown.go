package report

import (
	"fmt"
	"sort"
	"strings"

	"dxsim/domain/diagnostic"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Run carries what a single-run report shows
type Run struct {
	ID                 string
	Fingerprint        string
	Condition          string
	PopulationSize     int
	Seed               uint64
	Sensitivity        float64
	Specificity        float64
	ObservedPrevalence map[string]float64
	Metrics            diagnostic.MetricsRecord
}

// Markdown renders a single run as a markdown document
func Markdown(r Run) string {
	m := r.Metrics
	condition := escapeText(r.Condition)
	var b strings.Builder

	fmt.Fprintf(&b, "# Simulated test for %s\n\n", condition)
	fmt.Fprintf(&b, "Run `%s` (fingerprint `%s`, seed %d). Population of %d, test sensitivity %.2f, specificity %.2f.\n\n",
		r.ID, r.Fingerprint, r.Seed, r.PopulationSize, r.Sensitivity, r.Specificity)

	for _, line := range Summary(condition, m) {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	b.WriteString("\n## Two-by-two table\n\n")
	writeTwoByTwo(&b, m.TwoByTwo())

	b.WriteString("\n## Statistics\n\n")
	b.WriteString("| Statistic | Value | 95% CI |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| Sensitivity | %.2f%% | %s |\n", m.Sensitivity, interval(m.SensitivityCI))
	fmt.Fprintf(&b, "| Specificity | %.2f%% | %s |\n", m.Specificity, interval(m.SpecificityCI))
	fmt.Fprintf(&b, "| Accuracy | %.2f%% | %s |\n", m.Accuracy, interval(m.AccuracyCI))
	fmt.Fprintf(&b, "| Positive predictive value | %.2f%% | |\n", m.PositivePredictiveValue)
	fmt.Fprintf(&b, "| Negative predictive value | %.2f%% | |\n", m.NegativePredictiveValue)
	fmt.Fprintf(&b, "| Positive likelihood ratio | %s | |\n", Ratio(m.PositiveLikelihoodRatio))
	fmt.Fprintf(&b, "| Negative likelihood ratio | %s | |\n", Ratio(m.NegativeLikelihoodRatio))
	fmt.Fprintf(&b, "| Post-test probability | %s | %s |\n", percent(m.PosttestProbability), interval(m.PosttestProbabilityCI))

	if len(r.ObservedPrevalence) > 0 {
		b.WriteString("\n## Generated population\n\n")
		b.WriteString("| Condition | Observed prevalence |\n|---|---|\n")
		names := make([]string, 0, len(r.ObservedPrevalence))
		for name := range r.ObservedPrevalence {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "| %s | %s |\n", escapeText(name), percent(r.ObservedPrevalence[name]))
		}
	}

	return b.String()
}

// SweepMarkdown renders the distribution of each statistic over a sweep
func SweepMarkdown(s diagnostic.SweepSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Replicate sweep for %s\n\n", escapeText(s.Condition))
	fmt.Fprintf(&b, "%d of %d replicates completed (%d degenerate). Population of %d, sensitivity %.2f, specificity %.2f.\n\n",
		s.Completed, s.Replicates, s.Degenerate, s.Size, s.Sensitivity, s.Specificity)

	b.WriteString("| Statistic | Mean | Std dev | 2.5% | 97.5% | Min | Max |\n|---|---|---|---|---|---|---|\n")
	for _, r := range s.Rates {
		fmt.Fprintf(&b, "| %s | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f |\n",
			r.Name, r.Mean, r.StdDev, r.Lower, r.Upper, r.Min, r.Max)
	}
	return b.String()
}

// HTML renders markdown with table support. Raw HTML is dropped and only
// links with trusted protocols are emitted.
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML | html.Safelink | html.NofollowLinks,
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}

// escapeText backslash-escapes every character the parser treats as
// markup and folds line breaks, so user-supplied names render as literal
// inline text.
func escapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' {
			b.WriteByte(' ')
			continue
		}
		if r < 0x80 && strings.IndexByte(string(parser.EscapeChars), byte(r)) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func writeTwoByTwo(b *strings.Builder, t diagnostic.TwoByTwo) {
	fmt.Fprintf(b, "| | %s | %s |\n|---|---|---|\n", t.ColumnLabels[0], t.ColumnLabels[1])
	for i, label := range t.RowLabels {
		fmt.Fprintf(b, "| %s | %d | %d |\n", label, t.Cells[i][0], t.Cells[i][1])
	}
}

func interval(iv diagnostic.Interval) string {
	return percent(iv.Lower) + " to " + percent(iv.Upper)
}
