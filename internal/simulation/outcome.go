package simulation

import (
	"math/rand/v2"

	"dxsim/domain/core"
	"dxsim/domain/diagnostic"

	"gonum.org/v1/gonum/stat/distuv"
)

// Simulate applies a test with the given sensitivity and specificity to one
// condition column. Each individual gets a single uniform draw u: a carrier
// tests positive when u < sensitivity, a non-carrier when u >= specificity.
//
// Sensitivity and specificity are used as given. Values outside [0,1] give
// all-positive or all-negative columns; range checks belong to the caller.
func Simulate(pop *diagnostic.Population, condition string, sensitivity, specificity float64, src rand.Source) (*diagnostic.OutcomeTable, error) {
	if pop == nil {
		return nil, core.NewValidationError("population", "population is required")
	}

	truth, ok := pop.Column(condition)
	if !ok {
		return nil, core.NewUnknownConditionError(condition, pop.Conditions())
	}
	if !anyTrue(truth) {
		return nil, core.NewDegenerateConditionError(condition)
	}
	if src == nil {
		return nil, core.NewValidationError("source", "a random source is required")
	}

	draw := distuv.Uniform{Min: 0, Max: 1, Src: src}
	results := make([]bool, len(truth))
	for i, hasCondition := range truth {
		u := draw.Rand()
		if hasCondition {
			results[i] = u < sensitivity
		} else {
			results[i] = u >= specificity
		}
	}

	return diagnostic.NewOutcomeTable(truth, results)
}

func anyTrue(col []bool) bool {
	for _, v := range col {
		if v {
			return true
		}
	}
	return false
}
