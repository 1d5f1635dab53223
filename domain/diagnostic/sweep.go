package diagnostic

// RateSummary describes how one statistic varied across sweep replicates.
// Lower and Upper are the 2.5th and 97.5th percentiles.
type RateSummary struct {
	Name   string  `json:"name"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// SweepSummary aggregates the metrics of repeated independent runs
type SweepSummary struct {
	Condition   string        `json:"condition"`
	Size        int           `json:"population_size"`
	Sensitivity float64       `json:"sensitivity"`
	Specificity float64       `json:"specificity"`
	Replicates  int           `json:"replicates"`
	Completed   int           `json:"completed"`
	Degenerate  int           `json:"degenerate"`
	Rates       []RateSummary `json:"rates"`
}

// Rate looks up a summary by statistic name
func (s SweepSummary) Rate(name string) (RateSummary, bool) {
	for _, r := range s.Rates {
		if r.Name == name {
			return r, true
		}
	}
	return RateSummary{}, false
}
