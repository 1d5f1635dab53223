package excel

import (
	"fmt"
	"io"
	"math"
	"sort"

	"dxsim/domain/diagnostic"
	"dxsim/internal/report"

	"github.com/xuri/excelize/v2"
)

// Sheet names written by the exporter
const (
	SheetSummary    = "Summary"
	SheetTwoByTwo   = "Two by Two"
	SheetMetrics    = "Metrics"
	SheetPopulation = "Population"
	SheetSweep      = "Sweep"
)

// WriteRunXLSX saves a run workbook to path
func WriteRunXLSX(path string, run report.Run) error {
	f, err := runWorkbook(run)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

// WriteRun streams a run workbook to w
func WriteRun(w io.Writer, run report.Run) error {
	f, err := runWorkbook(run)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

// WriteSweepXLSX saves a sweep summary workbook to path
func WriteSweepXLSX(path string, s diagnostic.SweepSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSweep); err != nil {
		return err
	}
	rows := [][]any{
		{"Condition", s.Condition},
		{"Population size", s.Size},
		{"Sensitivity", s.Sensitivity},
		{"Specificity", s.Specificity},
		{"Replicates", s.Replicates},
		{"Completed", s.Completed},
		{"Degenerate", s.Degenerate},
		{},
		{"Statistic", "Mean", "Std dev", "2.5%", "97.5%", "Min", "Max"},
	}
	for _, r := range s.Rates {
		rows = append(rows, []any{r.Name, r.Mean, r.StdDev, r.Lower, r.Upper, r.Min, r.Max})
	}
	if err := writeRows(f, SheetSweep, rows); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func runWorkbook(run report.Run) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetTwoByTwo, SheetMetrics, SheetPopulation} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	m := run.Metrics
	sheets := map[string][][]any{
		SheetSummary:    summaryRows(run),
		SheetTwoByTwo:   twoByTwoRows(m.TwoByTwo()),
		SheetMetrics:    metricsRows(m),
		SheetPopulation: populationRows(run.ObservedPrevalence),
	}
	for name, rows := range sheets {
		if err := writeRows(f, name, rows); err != nil {
			f.Close()
			return nil, fmt.Errorf("write %s sheet: %w", name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func summaryRows(run report.Run) [][]any {
	rows := [][]any{
		{"Run ID", run.ID},
		{"Fingerprint", run.Fingerprint},
		{"Condition", run.Condition},
		{"Population size", run.PopulationSize},
		{"Seed", fmt.Sprintf("%d", run.Seed)},
		{"Requested sensitivity", run.Sensitivity},
		{"Requested specificity", run.Specificity},
		{},
	}
	for _, line := range report.Summary(run.Condition, run.Metrics) {
		rows = append(rows, []any{line})
	}
	return rows
}

func twoByTwoRows(t diagnostic.TwoByTwo) [][]any {
	return [][]any{
		{"", t.ColumnLabels[0], t.ColumnLabels[1]},
		{t.RowLabels[0], t.Cells[0][0], t.Cells[0][1]},
		{t.RowLabels[1], t.Cells[1][0], t.Cells[1][1]},
	}
}

func metricsRows(m diagnostic.MetricsRecord) [][]any {
	noCI := diagnostic.Interval{Lower: math.NaN(), Upper: math.NaN()}
	row := func(name string, value float64, ci diagnostic.Interval, se float64) []any {
		return []any{name, number(value), number(ci.Lower), number(ci.Upper), number(se)}
	}
	return [][]any{
		{"Statistic", "Value", "95% CI lower", "95% CI upper", "Standard error"},
		{"True positives", m.TruePositives},
		{"True negatives", m.TrueNegatives},
		{"False positives", m.FalsePositives},
		{"False negatives", m.FalseNegatives},
		row("Sensitivity (%)", m.Sensitivity, m.SensitivityCI, m.SensitivitySE),
		row("Specificity (%)", m.Specificity, m.SpecificityCI, m.SpecificitySE),
		row("Accuracy (%)", m.Accuracy, m.AccuracyCI, m.AccuracySE),
		row("Positive predictive value (%)", m.PositivePredictiveValue, noCI, math.NaN()),
		row("Negative predictive value (%)", m.NegativePredictiveValue, noCI, math.NaN()),
		row("Prevalence", m.Prevalence, noCI, math.NaN()),
		row("Positive likelihood ratio", m.PositiveLikelihoodRatio, noCI, math.NaN()),
		row("Negative likelihood ratio", m.NegativeLikelihoodRatio, noCI, math.NaN()),
		row("Pre-test odds", m.PretestOdds, noCI, math.NaN()),
		row("Post-test odds", m.PosttestOdds, noCI, math.NaN()),
		row("Pre-test probability", m.PretestProbability, noCI, math.NaN()),
		row("Post-test probability", m.PosttestProbability, m.PosttestProbabilityCI, m.PosttestProbabilitySE),
	}
}

func populationRows(prevalence map[string]float64) [][]any {
	names := make([]string, 0, len(prevalence))
	for name := range prevalence {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := [][]any{{"Condition", "Observed prevalence"}}
	for _, name := range names {
		rows = append(rows, []any{name, prevalence[name]})
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// number leaves non-finite values as blank-equivalent text
func number(x float64) any {
	switch {
	case math.IsNaN(x):
		return ""
	case math.IsInf(x, 1):
		return "inf"
	case math.IsInf(x, -1):
		return "-inf"
	}
	return x
}
