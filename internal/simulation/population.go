package simulation

import (
	"math"
	"math/rand/v2"

	"dxsim/domain/core"
	"dxsim/domain/diagnostic"

	"gonum.org/v1/gonum/stat/distuv"
)

// ValidateConfig checks a population config before any sampling happens.
func ValidateConfig(cfg diagnostic.PopulationConfig) error {
	if cfg.Size <= diagnostic.MinPopulationSize || len(cfg.Conditions) == 0 {
		return core.NewPopulationTooSmallError()
	}

	// A prevalence at or below 1/size expects fewer than one positive.
	floor := 1 / float64(cfg.Size)
	var tooRare, outOfRange []string
	for _, name := range cfg.ConditionNames() {
		p := cfg.Conditions[name]
		switch {
		case math.IsNaN(p) || p > 1:
			outOfRange = append(outOfRange, name)
		case p <= floor:
			tooRare = append(tooRare, name)
		}
	}
	if len(tooRare) > 0 {
		return core.NewLowPrevalenceError(tooRare)
	}
	if len(outOfRange) > 0 {
		return core.NewInvalidPrevalenceError(outOfRange)
	}
	return nil
}

// Generate samples a population with one independent Bernoulli column per
// condition. Columns are drawn in sorted name order so a seeded source
// always yields the same table.
func Generate(cfg diagnostic.PopulationConfig, src rand.Source) (*diagnostic.Population, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, core.NewValidationError("source", "a random source is required")
	}

	columns := make(map[string][]bool, len(cfg.Conditions))
	for _, name := range cfg.ConditionNames() {
		trial := distuv.Bernoulli{P: cfg.Conditions[name], Src: src}
		col := make([]bool, cfg.Size)
		for i := range col {
			col[i] = trial.Rand() == 1
		}
		columns[name] = col
	}

	return diagnostic.NewPopulation(cfg.Size, columns)
}
