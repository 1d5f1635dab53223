package diagnostic

import (
	"encoding/json"
	"math"
)

// Interval is a lower/upper bound pair. Bounds are not clipped to [0,1].
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains reports whether x lies within the closed interval.
func (i Interval) Contains(x float64) bool {
	return x >= i.Lower && x <= i.Upper
}

// Width returns Upper - Lower.
func (i Interval) Width() float64 {
	return i.Upper - i.Lower
}

// MetricsRecord holds everything derived from one outcome table.
//
// Sensitivity, Specificity, PositivePredictiveValue, NegativePredictiveValue
// and Accuracy are percentages rounded to two decimals. Every other float is
// a raw fraction, odds or ratio. PretestProbability is PretestOdds*100, kept
// under that name for compatibility with existing consumers even though it is
// scaled odds rather than a probability.
//
// Likelihood ratios are +Inf when their denominator is zero and the numerator
// is not, and NaN for 0/0. PosttestProbability is 1 when PosttestOdds is +Inf.
type MetricsRecord struct {
	TruePositives  int `json:"true_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
	Total          int `json:"total"`

	Sensitivity             float64 `json:"sensitivity"`
	Specificity             float64 `json:"specificity"`
	PositivePredictiveValue float64 `json:"positive_predictive_value"`
	NegativePredictiveValue float64 `json:"negative_predictive_value"`
	Accuracy                float64 `json:"accuracy"`
	Prevalence              float64 `json:"prevalence"`

	PositiveLikelihoodRatio float64 `json:"positive_likelihood_ratio"`
	NegativeLikelihoodRatio float64 `json:"negative_likelihood_ratio"`

	PretestOdds         float64 `json:"pretest_odds"`
	PosttestOdds        float64 `json:"posttest_odds"`
	PretestProbability  float64 `json:"pretest_probability"`
	PosttestProbability float64 `json:"posttest_probability"`

	SensitivityCI         Interval `json:"sensitivity_ci"`
	SpecificityCI         Interval `json:"specificity_ci"`
	AccuracyCI            Interval `json:"accuracy_ci"`
	PosttestProbabilityCI Interval `json:"posttest_probability_ci"`

	SensitivitySE         float64 `json:"sensitivity_se"`
	SpecificitySE         float64 `json:"specificity_se"`
	AccuracySE            float64 `json:"accuracy_se"`
	PosttestProbabilitySE float64 `json:"posttest_probability_se"`
}

// LikelihoodRatiosFinite reports whether both likelihood ratios are defined.
func (m MetricsRecord) LikelihoodRatiosFinite() bool {
	return isFinite(m.PositiveLikelihoodRatio) && isFinite(m.NegativeLikelihoodRatio)
}

// TwoByTwo returns the confusion matrix laid out as the classic 2x2 table.
func (m MetricsRecord) TwoByTwo() TwoByTwo {
	return TwoByTwo{
		RowLabels:    [2]string{"Tested Positive", "Tested Negative"},
		ColumnLabels: [2]string{"Actual Positive", "Actual Negative"},
		Cells: [2][2]int{
			{m.TruePositives, m.FalsePositives},
			{m.FalseNegatives, m.TrueNegatives},
		},
	}
}

// Groups splits the counts by ground truth, the way the waffle charts show them.
func (m MetricsRecord) Groups() Groups {
	return Groups{
		WithCondition: Group{
			Label:  "People with the condition",
			Counts: map[string]int{"true_positives": m.TruePositives, "false_negatives": m.FalseNegatives},
		},
		WithoutCondition: Group{
			Label:  "People without the condition",
			Counts: map[string]int{"false_positives": m.FalsePositives, "true_negatives": m.TrueNegatives},
		},
	}
}

// TwoByTwo is the confusion matrix with display labels.
type TwoByTwo struct {
	RowLabels    [2]string `json:"row_labels"`
	ColumnLabels [2]string `json:"column_labels"`
	Cells        [2][2]int `json:"cells"`
}

// Group is one side of the ground-truth split.
type Group struct {
	Label  string         `json:"label"`
	Counts map[string]int `json:"counts"`
}

// Groups holds both sides of the ground-truth split.
type Groups struct {
	WithCondition    Group `json:"with_condition"`
	WithoutCondition Group `json:"without_condition"`
}

// MarshalJSON writes non-finite floats as null; encoding/json rejects them.
func (m MetricsRecord) MarshalJSON() ([]byte, error) {
	type interval struct {
		Lower *float64 `json:"lower"`
		Upper *float64 `json:"upper"`
	}
	iv := func(i Interval) interval { return interval{finite(i.Lower), finite(i.Upper)} }

	return json.Marshal(struct {
		TruePositives  int `json:"true_positives"`
		TrueNegatives  int `json:"true_negatives"`
		FalsePositives int `json:"false_positives"`
		FalseNegatives int `json:"false_negatives"`
		Total          int `json:"total"`

		Sensitivity             *float64 `json:"sensitivity"`
		Specificity             *float64 `json:"specificity"`
		PositivePredictiveValue *float64 `json:"positive_predictive_value"`
		NegativePredictiveValue *float64 `json:"negative_predictive_value"`
		Accuracy                *float64 `json:"accuracy"`
		Prevalence              *float64 `json:"prevalence"`

		PositiveLikelihoodRatio *float64 `json:"positive_likelihood_ratio"`
		NegativeLikelihoodRatio *float64 `json:"negative_likelihood_ratio"`

		PretestOdds         *float64 `json:"pretest_odds"`
		PosttestOdds        *float64 `json:"posttest_odds"`
		PretestProbability  *float64 `json:"pretest_probability"`
		PosttestProbability *float64 `json:"posttest_probability"`

		SensitivityCI         interval `json:"sensitivity_ci"`
		SpecificityCI         interval `json:"specificity_ci"`
		AccuracyCI            interval `json:"accuracy_ci"`
		PosttestProbabilityCI interval `json:"posttest_probability_ci"`

		SensitivitySE         *float64 `json:"sensitivity_se"`
		SpecificitySE         *float64 `json:"specificity_se"`
		AccuracySE            *float64 `json:"accuracy_se"`
		PosttestProbabilitySE *float64 `json:"posttest_probability_se"`
	}{
		TruePositives:  m.TruePositives,
		TrueNegatives:  m.TrueNegatives,
		FalsePositives: m.FalsePositives,
		FalseNegatives: m.FalseNegatives,
		Total:          m.Total,

		Sensitivity:             finite(m.Sensitivity),
		Specificity:             finite(m.Specificity),
		PositivePredictiveValue: finite(m.PositivePredictiveValue),
		NegativePredictiveValue: finite(m.NegativePredictiveValue),
		Accuracy:                finite(m.Accuracy),
		Prevalence:              finite(m.Prevalence),

		PositiveLikelihoodRatio: finite(m.PositiveLikelihoodRatio),
		NegativeLikelihoodRatio: finite(m.NegativeLikelihoodRatio),

		PretestOdds:         finite(m.PretestOdds),
		PosttestOdds:        finite(m.PosttestOdds),
		PretestProbability:  finite(m.PretestProbability),
		PosttestProbability: finite(m.PosttestProbability),

		SensitivityCI:         iv(m.SensitivityCI),
		SpecificityCI:         iv(m.SpecificityCI),
		AccuracyCI:            iv(m.AccuracyCI),
		PosttestProbabilityCI: iv(m.PosttestProbabilityCI),

		SensitivitySE:         finite(m.SensitivitySE),
		SpecificitySE:         finite(m.SpecificitySE),
		AccuracySE:            finite(m.AccuracySE),
		PosttestProbabilitySE: finite(m.PosttestProbabilitySE),
	})
}

func finite(x float64) *float64 {
	if !isFinite(x) {
		return nil
	}
	return &x
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
