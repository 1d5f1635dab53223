package ports

import (
	"time"
)

// RunObserver receives run telemetry. Implementations must be safe for
// concurrent use because sweep replicates report in parallel.
type RunObserver interface {
	RunCompleted(condition string, population int, elapsed time.Duration)
	RunFailed(kind string)
	SweepCompleted(replicates, degenerate int, elapsed time.Duration)
}

// NopObserver discards all telemetry.
type NopObserver struct{}

func (NopObserver) RunCompleted(string, int, time.Duration) {}
func (NopObserver) RunFailed(string)                        {}
func (NopObserver) SweepCompleted(int, int, time.Duration)  {}
