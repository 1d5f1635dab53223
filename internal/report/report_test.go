package report

import (
	"math"
	"strings"
	"testing"

	"dxsim/domain/diagnostic"

	"github.com/stretchr/testify/assert"
)

func sampleMetrics() diagnostic.MetricsRecord {
	return diagnostic.MetricsRecord{
		TruePositives: 3, FalseNegatives: 1, FalsePositives: 1, TrueNegatives: 3, Total: 8,
		Sensitivity: 75, Specificity: 75, Accuracy: 75,
		PositivePredictiveValue: 75, NegativePredictiveValue: 75,
		Prevalence:              0.5,
		PositiveLikelihoodRatio: 3,
		NegativeLikelihoodRatio: 1.0 / 3,
		PretestOdds:             1,
		PosttestOdds:            3,
		PosttestProbability:     0.75,
		AccuracyCI:              diagnostic.Interval{Lower: 0.5, Upper: 1.0},
		PosttestProbabilityCI:   diagnostic.Interval{Lower: 0.5, Upper: 1.0},
	}
}

func TestSummary(t *testing.T) {
	lines := Summary("flu", sampleMetrics())

	assert.Equal(t, []string{
		"We tested for flu which has a prevalence of 50.00% in this population",
		"Pre-Test Probability: 100.00%",
		"Post-Test Probability: 75.00% (95% CI: 50.00%, 100.00%)",
		"Percentage of people with a wrong result: 25.00% (95% CI: 0.00%, 50.00%)",
	}, lines)
}

func TestSummary_UndefinedPosttest(t *testing.T) {
	m := sampleMetrics()
	m.PosttestProbability = math.NaN()
	m.PosttestProbabilityCI = diagnostic.Interval{Lower: math.NaN(), Upper: math.NaN()}

	lines := Summary("flu", m)
	assert.Equal(t, "Post-Test Probability: undefined (95% CI: undefined, undefined)", lines[2])
}

func TestRatio(t *testing.T) {
	assert.Equal(t, "3.000", Ratio(3))
	assert.Equal(t, "∞", Ratio(math.Inf(1)))
	assert.Equal(t, "-∞", Ratio(math.Inf(-1)))
	assert.Equal(t, "undefined", Ratio(math.NaN()))
}

func TestMarkdown_RendersTables(t *testing.T) {
	md := Markdown(Run{
		ID:                 "run-1",
		Fingerprint:        "abc123",
		Condition:          "flu",
		PopulationSize:     8,
		Seed:               7,
		Sensitivity:        0.9,
		Specificity:        0.8,
		ObservedPrevalence: map[string]float64{"flu": 0.5, "asthma": 0.125},
		Metrics:            sampleMetrics(),
	})

	assert.Contains(t, md, "# Simulated test for flu")
	assert.Contains(t, md, "| Tested Positive | 3 | 1 |")
	assert.Contains(t, md, "| Tested Negative | 1 | 3 |")
	assert.Contains(t, md, "| Positive likelihood ratio | 3.000 | |")
	assert.Less(t, strings.Index(md, "| asthma |"), strings.Index(md, "| flu |"))

	out := string(HTML(md))
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "Tested Positive")
}

func TestSweepMarkdown(t *testing.T) {
	md := SweepMarkdown(diagnostic.SweepSummary{
		Condition: "flu", Size: 1000, Sensitivity: 0.9, Specificity: 0.8,
		Replicates: 10, Completed: 9, Degenerate: 1,
		Rates: []diagnostic.RateSummary{{Name: "sensitivity", Mean: 90, StdDev: 1.5, Lower: 87, Upper: 93, Min: 86, Max: 94}},
	})

	assert.Contains(t, md, "9 of 10 replicates completed (1 degenerate)")
	assert.Contains(t, md, "| sensitivity | 90.0000 | 1.5000 |")
}

func TestHTML_DropsRawHTML(t *testing.T) {
	out := string(HTML("# Simulated test for <script>alert(1)</script>\n"))
	assert.NotContains(t, out, "<script>")
}

func TestHTML_ConditionLinksStayText(t *testing.T) {
	condition := "[click](javascript:alert(document.cookie))"
	md := Markdown(Run{
		Condition:          condition,
		ObservedPrevalence: map[string]float64{condition: 0.5},
		Metrics:            sampleMetrics(),
	})

	out := string(HTML(md))
	assert.NotContains(t, out, "<a ")
	assert.NotContains(t, out, `href="javascript`)
	assert.Contains(t, out, "Simulated test for [click](javascript:alert(document.cookie))")

	sweep := string(HTML(SweepMarkdown(diagnostic.SweepSummary{Condition: condition})))
	assert.NotContains(t, sweep, "<a ")
}

func TestHTML_UnsafeLinkNotRendered(t *testing.T) {
	out := string(HTML("[x](javascript:alert(1))\n"))
	assert.NotContains(t, out, `href="javascript`)

	out = string(HTML("[docs](https://example.com)\n"))
	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, "nofollow")
}

func TestEscapeText(t *testing.T) {
	assert.Equal(t, "flu", escapeText("flu"))
	assert.Equal(t, `heart\-disease`, escapeText("heart-disease"))
	assert.Equal(t, `\[a\]\(b\) \*c\* \| d`, escapeText("[a](b)\n*c* | d"))
	assert.Equal(t, "grippe à", escapeText("grippe à"))
}
