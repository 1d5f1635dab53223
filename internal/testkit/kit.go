package testkit

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"dxsim/domain/diagnostic"
)

// ScriptedSource replays fixed uniform draws through the rand.Source
// interface so a test decides exactly what Float64 returns. Draws must lie
// in [0,1); the script wraps around when exhausted.
type ScriptedSource struct {
	draws []float64
	next  int
}

// NewScriptedSource creates a source that yields the given draws in order
func NewScriptedSource(draws ...float64) *ScriptedSource {
	if len(draws) == 0 {
		draws = []float64{0}
	}
	return &ScriptedSource{draws: draws}
}

// Uint64 encodes the next draw in the low 53 bits, which is what
// (*rand.Rand).Float64 reads back.
func (s *ScriptedSource) Uint64() uint64 {
	f := s.draws[s.next%len(s.draws)]
	s.next++
	return uint64(f * (1 << 53))
}

// Calls returns how many draws were consumed
func (s *ScriptedSource) Calls() int {
	return s.next
}

// Source returns a seeded PCG source for tests that only need determinism
func Source(seed uint64) rand.Source {
	return rand.NewPCG(seed, 0x9e3779b97f4a7c15)
}

// RNGAdapter implements ports.RNGPort for testing and records every stream
// it hands out.
type RNGAdapter struct {
	mu       sync.Mutex
	requests []string
}

// SeededStream creates a deterministic random number generator for a named operation
func (r *RNGAdapter) SeededStream(ctx context.Context, name string, seed uint64) (*rand.Rand, error) {
	r.record(fmt.Sprintf("%s@%d", name, seed))
	return rand.New(rand.NewPCG(seed, uint64(hashString(name)))), nil
}

// Stream creates a deterministic RNG stream for one replicate
func (r *RNGAdapter) Stream(ctx context.Context, sweepID, stageName string, replicate int, baseSeed uint64) (*rand.Rand, error) {
	seed := baseSeed + uint64(replicate)
	r.record(fmt.Sprintf("%s/%d@%d", stageName, replicate, seed))
	return rand.New(rand.NewPCG(seed, uint64(hashString(stageName)))), nil
}

// Requests returns the streams requested so far
func (r *RNGAdapter) Requests() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.requests))
	copy(out, r.requests)
	return out
}

func (r *RNGAdapter) record(s string) {
	r.mu.Lock()
	r.requests = append(r.requests, s)
	r.mu.Unlock()
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2
	}
	return hash
}

// Flags parses a compact "TTF." style string into booleans; 'T' or '1' is
// true, anything else false.
func Flags(s string) []bool {
	out := make([]bool, len(s))
	for i, c := range s {
		out[i] = c == 'T' || c == '1'
	}
	return out
}

// OutcomeTable builds a table from two flag strings and fails the test on error
func OutcomeTable(t testing.TB, truth, results string) *diagnostic.OutcomeTable {
	t.Helper()
	table, err := diagnostic.NewOutcomeTable(Flags(truth), Flags(results))
	if err != nil {
		t.Fatalf("build outcome table: %v", err)
	}
	return table
}

// Population builds a population from flag strings keyed by condition
func Population(t testing.TB, columns map[string]string) *diagnostic.Population {
	t.Helper()
	size := -1
	cols := make(map[string][]bool, len(columns))
	for name, flags := range columns {
		cols[name] = Flags(flags)
		size = len(flags)
	}
	pop, err := diagnostic.NewPopulation(size, cols)
	if err != nil {
		t.Fatalf("build population: %v", err)
	}
	return pop
}

// Config returns a valid single-condition population config
func Config(size int, condition string, prevalence float64) diagnostic.PopulationConfig {
	return diagnostic.PopulationConfig{
		Size:       size,
		Conditions: map[string]float64{condition: prevalence},
	}
}
