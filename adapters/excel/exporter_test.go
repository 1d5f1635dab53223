package excel

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"dxsim/domain/diagnostic"
	"dxsim/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRun() report.Run {
	return report.Run{
		ID:                 "run-1",
		Fingerprint:        "abc123def456",
		Condition:          "flu",
		PopulationSize:     8,
		Seed:               18446744073709551615,
		Sensitivity:        0.9,
		Specificity:        0.8,
		ObservedPrevalence: map[string]float64{"flu": 0.5, "asthma": 0.25},
		Metrics: diagnostic.MetricsRecord{
			TruePositives: 4, FalseNegatives: 0, FalsePositives: 1, TrueNegatives: 3, Total: 8,
			Sensitivity: 100, Specificity: 75, Accuracy: 87.5,
			Prevalence:              0.5,
			PositiveLikelihoodRatio: 4,
			NegativeLikelihoodRatio: 0,
			PosttestProbability:     0.8,
			PosttestProbabilityCI:   diagnostic.Interval{Lower: 0.52, Upper: 1.08},
			AccuracyCI:              diagnostic.Interval{Lower: 0.64, Upper: 1.1},
		},
	}
}

func TestWriteRunXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.xlsx")
	require.NoError(t, WriteRunXLSX(path, sampleRun()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetTwoByTwo, SheetMetrics, SheetPopulation}, f.GetSheetList())

	get := func(sheet, cell string) string {
		v, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "run-1", get(SheetSummary, "B1"))
	assert.Equal(t, "18446744073709551615", get(SheetSummary, "B5"))
	assert.Equal(t, "We tested for flu which has a prevalence of 50.00% in this population", get(SheetSummary, "A9"))

	assert.Equal(t, "Actual Positive", get(SheetTwoByTwo, "B1"))
	assert.Equal(t, "Tested Positive", get(SheetTwoByTwo, "A2"))
	assert.Equal(t, "4", get(SheetTwoByTwo, "B2"))
	assert.Equal(t, "1", get(SheetTwoByTwo, "C2"))
	assert.Equal(t, "3", get(SheetTwoByTwo, "C3"))

	assert.Equal(t, "Sensitivity (%)", get(SheetMetrics, "A6"))
	assert.Equal(t, "100", get(SheetMetrics, "B6"))
	assert.Equal(t, "", get(SheetMetrics, "C11"), "prevalence has no interval")

	assert.Equal(t, "asthma", get(SheetPopulation, "A2"))
	assert.Equal(t, "flu", get(SheetPopulation, "A3"))
}

func TestWriteRun_NonFiniteRatios(t *testing.T) {
	run := sampleRun()
	run.Metrics.PositiveLikelihoodRatio = math.Inf(1)
	run.Metrics.NegativeLikelihoodRatio = math.NaN()

	var buf bytes.Buffer
	require.NoError(t, WriteRun(&buf, run))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	lrPos, err := f.GetCellValue(SheetMetrics, "B12")
	require.NoError(t, err)
	assert.Equal(t, "inf", lrPos)

	lrNeg, err := f.GetCellValue(SheetMetrics, "B13")
	require.NoError(t, err)
	assert.Equal(t, "", lrNeg)
}

func TestWriteSweepXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.xlsx")
	require.NoError(t, WriteSweepXLSX(path, diagnostic.SweepSummary{
		Condition: "flu", Size: 1000, Replicates: 10, Completed: 10,
		Rates: []diagnostic.RateSummary{{Name: "sensitivity", Mean: 90.5, Min: 88, Max: 93}},
	}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetSweep)
	require.NoError(t, err)
	require.Len(t, rows, 10)
	assert.Equal(t, "Statistic", rows[8][0])
	assert.Equal(t, []string{"sensitivity", "90.5", "0", "0", "0", "88", "93"}, rows[9])
}
