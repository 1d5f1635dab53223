// Package report turns a metrics record into the text shown to people:
// summary lines, a markdown report and its HTML rendering.
package report

import (
	"fmt"
	"math"

	"dxsim/domain/diagnostic"
)

// Summary returns the display lines for one run: prevalence, pre-test and
// post-test probability, and the share of wrong results with its interval.
func Summary(condition string, m diagnostic.MetricsRecord) []string {
	wrongLower := (1 - m.AccuracyCI.Upper) * 100
	wrongUpper := (1 - m.AccuracyCI.Lower) * 100

	return []string{
		fmt.Sprintf("We tested for %s which has a prevalence of %.2f%% in this population", condition, m.Prevalence*100),
		fmt.Sprintf("Pre-Test Probability: %s", percent(m.PretestOdds)),
		fmt.Sprintf("Post-Test Probability: %s (95%% CI: %s, %s)",
			percent(m.PosttestProbability),
			percent(m.PosttestProbabilityCI.Lower),
			percent(m.PosttestProbabilityCI.Upper)),
		fmt.Sprintf("Percentage of people with a wrong result: %.2f%% (95%% CI: %.2f%%, %.2f%%)",
			100-m.Accuracy, wrongLower, wrongUpper),
	}
}

// percent formats a fraction, spelling out values that have none
func percent(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "undefined"
	}
	return fmt.Sprintf("%.2f%%", f*100)
}

// Ratio formats a likelihood ratio for display
func Ratio(f float64) string {
	switch {
	case math.IsNaN(f):
		return "undefined"
	case math.IsInf(f, 1):
		return "∞"
	case math.IsInf(f, -1):
		return "-∞"
	}
	return fmt.Sprintf("%.3f", f)
}
