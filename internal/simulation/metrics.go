package simulation

import (
	"math"

	"dxsim/domain/diagnostic"
)

// ZScore95 is the two-sided 95% normal critical value used for all intervals.
const ZScore95 = 1.96

// ConfusionCounts is the raw 2x2 tally of an outcome table.
type ConfusionCounts struct {
	TruePositives  int
	TrueNegatives  int
	FalsePositives int
	FalseNegatives int
}

// Total returns the number of rows tallied.
func (c ConfusionCounts) Total() int {
	return c.TruePositives + c.TrueNegatives + c.FalsePositives + c.FalseNegatives
}

// Count tallies the confusion matrix of an outcome table.
func Count(t *diagnostic.OutcomeTable) ConfusionCounts {
	var c ConfusionCounts
	if t == nil {
		return c
	}
	for i := 0; i < t.Len(); i++ {
		truth, result := t.Row(i)
		switch {
		case truth && result:
			c.TruePositives++
		case !truth && !result:
			c.TrueNegatives++
		case !truth && result:
			c.FalsePositives++
		default:
			c.FalseNegatives++
		}
	}
	return c
}

// Compute derives the full metrics record from an outcome table.
//
// Rates whose denominator is zero are reported as 0. Likelihood ratios are
// not guarded: x/0 is +Inf and 0/0 is NaN (see diagnostic.MetricsRecord).
func Compute(t *diagnostic.OutcomeTable) diagnostic.MetricsRecord {
	c := Count(t)
	tp, tn, fp, fn := c.TruePositives, c.TrueNegatives, c.FalsePositives, c.FalseNegatives
	n := c.Total()

	sensitivity := rate(tp, tp+fn)
	specificity := rate(tn, tn+fp)
	ppv := rate(tp, tp+fp)
	npv := rate(tn, tn+fn)
	accuracy := rate(tp+tn, n)
	prevalence := rate(tp+fn, n)

	lrPositive := ratio(sensitivity, 1-specificity)
	lrNegative := ratio(1-sensitivity, specificity)

	pretestOdds := ratio(prevalence, 1-prevalence)
	posttestOdds := pretestOdds * lrPositive
	posttestProbability := oddsToProbability(posttestOdds)

	sensitivitySE := standardError(sensitivity, n)
	specificitySE := standardError(specificity, n)
	accuracySE := standardError(accuracy, n)
	posttestSE := standardError(posttestProbability, n)

	return diagnostic.MetricsRecord{
		TruePositives:  tp,
		TrueNegatives:  tn,
		FalsePositives: fp,
		FalseNegatives: fn,
		Total:          n,

		Sensitivity:             roundPercent(sensitivity),
		Specificity:             roundPercent(specificity),
		PositivePredictiveValue: roundPercent(ppv),
		NegativePredictiveValue: roundPercent(npv),
		Accuracy:                roundPercent(accuracy),
		Prevalence:              prevalence,

		PositiveLikelihoodRatio: lrPositive,
		NegativeLikelihoodRatio: lrNegative,

		PretestOdds:         pretestOdds,
		PosttestOdds:        posttestOdds,
		PretestProbability:  pretestOdds * 100,
		PosttestProbability: posttestProbability,

		SensitivityCI:         normalInterval(sensitivity, sensitivitySE),
		SpecificityCI:         normalInterval(specificity, specificitySE),
		AccuracyCI:            normalInterval(accuracy, accuracySE),
		PosttestProbabilityCI: normalInterval(posttestProbability, posttestSE),

		SensitivitySE:         sensitivitySE,
		SpecificitySE:         specificitySE,
		AccuracySE:            accuracySE,
		PosttestProbabilitySE: posttestSE,
	}
}

// rate is num/den, or 0 when den is 0.
func rate(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// ratio divides without a guard but spells out the zero-denominator result
// instead of leaning on platform float behaviour.
func ratio(num, den float64) float64 {
	if den != 0 {
		return num / den
	}
	switch {
	case num > 0:
		return math.Inf(1)
	case num < 0:
		return math.Inf(-1)
	}
	return math.NaN()
}

func oddsToProbability(odds float64) float64 {
	if math.IsInf(odds, 1) {
		return 1
	}
	return odds / (odds + 1)
}

// standardError is the binomial normal-approximation SE over n rows.
func standardError(p float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return math.Sqrt(p * (1 - p) / float64(n))
}

// normalInterval is p ± z·se, deliberately unclipped.
func normalInterval(p, se float64) diagnostic.Interval {
	return diagnostic.Interval{
		Lower: p - ZScore95*se,
		Upper: p + ZScore95*se,
	}
}

func roundPercent(p float64) float64 {
	return math.Round(p*100*100) / 100
}
