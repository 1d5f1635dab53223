package simulation

import (
	"math"
	"testing"

	"dxsim/domain/diagnostic"
	"dxsim/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCompute_KnownValues(t *testing.T) {
	table := testkit.OutcomeTable(t, "TTFTFFFT", "TFFTTFFT")

	m := Compute(table)

	assert.Equal(t, 3, m.TruePositives)
	assert.Equal(t, 1, m.FalseNegatives)
	assert.Equal(t, 1, m.FalsePositives)
	assert.Equal(t, 3, m.TrueNegatives)
	assert.Equal(t, 8, m.Total)

	assert.Equal(t, 75.0, m.Sensitivity)
	assert.Equal(t, 75.0, m.Specificity)
	assert.Equal(t, 75.0, m.PositivePredictiveValue)
	assert.Equal(t, 75.0, m.NegativePredictiveValue)
	assert.Equal(t, 75.0, m.Accuracy)
	assert.Equal(t, 0.5, m.Prevalence)

	assert.InDelta(t, 3.0, m.PositiveLikelihoodRatio, 1e-12)
	assert.InDelta(t, 1.0/3, m.NegativeLikelihoodRatio, 1e-12)
	assert.InDelta(t, 1.0, m.PretestOdds, 1e-12)
	assert.InDelta(t, 3.0, m.PosttestOdds, 1e-12)
	assert.InDelta(t, 100.0, m.PretestProbability, 1e-9)
	assert.InDelta(t, 0.75, m.PosttestProbability, 1e-12)
	assert.True(t, m.LikelihoodRatiosFinite())
}

func TestCompute_NormalApproximationIntervals(t *testing.T) {
	m := Compute(testkit.OutcomeTable(t, "TTFTFFFT", "TFFTTFFT"))

	wantSE := math.Sqrt(0.75 * 0.25 / 8)
	for name, se := range map[string]float64{
		"sensitivity": m.SensitivitySE,
		"specificity": m.SpecificitySE,
		"accuracy":    m.AccuracySE,
		"posttest":    m.PosttestProbabilitySE,
	} {
		assert.InDelta(t, wantSE, se, 1e-12, name)
	}

	assert.InDelta(t, 0.75-1.96*wantSE, m.SensitivityCI.Lower, 1e-12)
	assert.InDelta(t, 0.75+1.96*wantSE, m.SensitivityCI.Upper, 1e-12)
	assert.Equal(t, m.SensitivityCI, m.AccuracyCI)
	assert.Equal(t, m.SensitivityCI, m.PosttestProbabilityCI)

	// small n pushes the upper bound past 1; it is reported as-is
	assert.Greater(t, m.SensitivityCI.Upper, 1.0)
}

func TestCompute_AllTrueNegatives(t *testing.T) {
	m := Compute(testkit.OutcomeTable(t, "FFFF", "FFFF"))

	assert.Equal(t, 0, m.TruePositives)
	assert.Equal(t, 0, m.FalseNegatives)
	assert.Equal(t, 0.0, m.Sensitivity)
	assert.Equal(t, 0.0, m.PositivePredictiveValue)
	assert.Equal(t, 100.0, m.Specificity)
	assert.Equal(t, 100.0, m.NegativePredictiveValue)
	assert.Equal(t, 100.0, m.Accuracy)
	assert.Equal(t, 0.0, m.Prevalence)

	// sensitivity 0 over 1-specificity 0
	assert.True(t, math.IsNaN(m.PositiveLikelihoodRatio))
	assert.InDelta(t, 1.0, m.NegativeLikelihoodRatio, 1e-12)
	assert.False(t, m.LikelihoodRatiosFinite())
}

func TestCompute_PerfectTest(t *testing.T) {
	m := Compute(testkit.OutcomeTable(t, "TTFF", "TTFF"))

	assert.Equal(t, 100.0, m.Sensitivity)
	assert.Equal(t, 100.0, m.Specificity)
	assert.True(t, math.IsInf(m.PositiveLikelihoodRatio, 1))
	assert.Equal(t, 0.0, m.NegativeLikelihoodRatio)
	assert.True(t, math.IsInf(m.PosttestOdds, 1))
	assert.Equal(t, 1.0, m.PosttestProbability)
	assert.Equal(t, 0.0, m.PosttestProbabilitySE)
	assert.Equal(t, diagnostic.Interval{Lower: 1, Upper: 1}, m.PosttestProbabilityCI)
	assert.False(t, m.LikelihoodRatiosFinite())
}

func TestCompute_ZeroSpecificity(t *testing.T) {
	m := Compute(testkit.OutcomeTable(t, "TF", "TT"))

	assert.Equal(t, 100.0, m.Sensitivity)
	assert.Equal(t, 0.0, m.Specificity)
	assert.InDelta(t, 1.0, m.PositiveLikelihoodRatio, 1e-12)
	assert.True(t, math.IsNaN(m.NegativeLikelihoodRatio))
}

func TestCompute_RoundsPercentages(t *testing.T) {
	m := Compute(testkit.OutcomeTable(t, "TTTFFF", "TFFFFT"))

	assert.Equal(t, 33.33, m.Sensitivity)
	assert.Equal(t, 66.67, m.Specificity)
	// raw fields stay unrounded
	assert.InDelta(t, 0.5, m.Prevalence, 1e-12)
	assert.InDelta(t, 1.0, m.PositiveLikelihoodRatio, 1e-12)
}

func TestCompute_EmptyTable(t *testing.T) {
	m := Compute(testkit.OutcomeTable(t, "", ""))

	assert.Equal(t, 0, m.Total)
	assert.Equal(t, 0.0, m.Accuracy)
	assert.Equal(t, 0.0, m.SensitivitySE)
	assert.Equal(t, 0.0, m.AccuracySE)

	assert.Equal(t, ConfusionCounts{}, Count(nil))
}

func TestCompute_CountsCoverEveryRow(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 300).Draw(rt, "n")
		truth := rapid.SliceOfN(rapid.Bool(), n, n).Draw(rt, "truth")
		results := rapid.SliceOfN(rapid.Bool(), n, n).Draw(rt, "results")

		table, err := diagnostic.NewOutcomeTable(truth, results)
		require.NoError(rt, err)

		m := Compute(table)
		if got := m.TruePositives + m.TrueNegatives + m.FalsePositives + m.FalseNegatives; got != n {
			rt.Fatalf("counts sum to %d, want %d", got, n)
		}
		if m.Total != n {
			rt.Fatalf("total %d, want %d", m.Total, n)
		}
		for name, pct := range map[string]float64{
			"sensitivity": m.Sensitivity,
			"specificity": m.Specificity,
			"ppv":         m.PositivePredictiveValue,
			"npv":         m.NegativePredictiveValue,
			"accuracy":    m.Accuracy,
		} {
			if pct < 0 || pct > 100 {
				rt.Fatalf("%s out of range: %v", name, pct)
			}
		}
	})
}

func TestPipeline_EndToEnd(t *testing.T) {
	pop, err := Generate(testkit.Config(5000, "flu", 0.2), testkit.Source(1))
	require.NoError(t, err)

	table, err := Simulate(pop, "flu", 0.9, 0.8, testkit.Source(2))
	require.NoError(t, err)

	m := Compute(table)
	assert.Equal(t, 5000, m.Total)
	assert.InDelta(t, 90, m.Sensitivity, 3)
	assert.InDelta(t, 80, m.Specificity, 2)
	assert.InDelta(t, 0.2, m.Prevalence, 0.03)
	assert.Less(t, m.SensitivityCI.Lower, m.SensitivityCI.Upper)
}
