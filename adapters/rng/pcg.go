package rng

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// PCGAdapter implements ports.RNGPort with PCG streams. The stream name is
// hashed into the PCG increment so different operations sharing one seed
// still draw independent sequences.
type PCGAdapter struct{}

// NewPCGAdapter creates the adapter
func NewPCGAdapter() *PCGAdapter {
	return &PCGAdapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (a *PCGAdapter) SeededStream(ctx context.Context, name string, seed uint64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewPCG(seed, hashString(name))), nil
}

// Stream derives the stream for one sweep replicate
func (a *PCGAdapter) Stream(ctx context.Context, sweepID, stageName string, replicate int, baseSeed uint64) (*rand.Rand, error) {
	if replicate < 0 {
		return nil, fmt.Errorf("replicate index must be non-negative, got %d", replicate)
	}
	key := fmt.Sprintf("%s/%s/%d", sweepID, stageName, replicate)
	return a.SeededStream(ctx, key, baseSeed+uint64(replicate))
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
