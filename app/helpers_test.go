package app

import (
	"context"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"dxsim/internal"
	"dxsim/internal/testkit"
)

// scriptedPort hands out sources that replay the same draws for every stream
type scriptedPort struct {
	draws []float64
}

func (p scriptedPort) SeededStream(ctx context.Context, name string, seed uint64) (*rand.Rand, error) {
	return rand.New(testkit.NewScriptedSource(p.draws...)), nil
}

func (p scriptedPort) Stream(ctx context.Context, sweepID, stageName string, replicate int, baseSeed uint64) (*rand.Rand, error) {
	return rand.New(testkit.NewScriptedSource(p.draws...)), nil
}

type recordingObserver struct {
	mu         sync.Mutex
	completed  []string
	failed     []string
	sweeps     int
	degenerate int
}

func (o *recordingObserver) RunCompleted(condition string, population int, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed = append(o.completed, condition)
}

func (o *recordingObserver) RunFailed(kind string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed = append(o.failed, kind)
}

func (o *recordingObserver) SweepCompleted(replicates, degenerate int, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sweeps++
	o.degenerate += degenerate
}

func quietLogger() *internal.Logger {
	return internal.NewWriterLogger(internal.LogLevelError, io.Discard)
}

func fluRequest(size int, seed uint64) RunRequest {
	return RunRequest{
		Population:  testkit.Config(size, "flu", 0.2),
		Condition:   "flu",
		Sensitivity: 0.9,
		Specificity: 0.8,
		Seed:        seed,
	}
}
