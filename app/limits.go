package app

import (
	"fmt"

	"dxsim/internal/errors"
)

// Limits bounds the work one request may ask for. The simulation core has
// no upper bound on population size, so callers enforce one here.
type Limits struct {
	// MaxPopulation caps the population size of a run or sweep
	MaxPopulation int
	// MaxSweepRows caps population size times replicates for a sweep
	MaxSweepRows int64
}

// DefaultLimits are applied by services that are not given any
func DefaultLimits() Limits {
	return Limits{
		MaxPopulation: 1_000_000,
		MaxSweepRows:  20_000_000,
	}
}

// withDefaults fills non-positive bounds from DefaultLimits
func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxPopulation < 1 {
		l.MaxPopulation = d.MaxPopulation
	}
	if l.MaxSweepRows < 1 {
		l.MaxSweepRows = d.MaxSweepRows
	}
	return l
}

func (l Limits) checkRun(req RunRequest) error {
	if req.Population.Size > l.MaxPopulation {
		return errors.InvalidInput(fmt.Sprintf("population_size must be at most %d", l.MaxPopulation))
	}
	return nil
}

func (l Limits) checkSweep(req RunRequest, replicates int) error {
	if err := l.checkRun(req); err != nil {
		return err
	}
	if rows := int64(req.Population.Size) * int64(replicates); rows > l.MaxSweepRows {
		return errors.InvalidInput(fmt.Sprintf(
			"population_size times replicates must be at most %d, got %d", l.MaxSweepRows, rows))
	}
	return nil
}
