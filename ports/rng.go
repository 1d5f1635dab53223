package ports

import (
	"context"
	"math/rand/v2"
)

// RNGPort provides seeded random number generation for deterministic runs.
// The returned *rand.Rand also satisfies rand.Source, so it can be handed
// straight to the population generator and test simulator.
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed uint64) (*rand.Rand, error)

	// Stream creates an independent stream for one replicate of a sweep, so
	// replicates can run in any order and still reproduce.
	Stream(ctx context.Context, sweepID, stageName string, replicate int, baseSeed uint64) (*rand.Rand, error)
}
