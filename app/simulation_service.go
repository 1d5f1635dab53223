package app

import (
	"context"
	"math/rand/v2"
	"time"

	"dxsim/domain/core"
	"dxsim/domain/diagnostic"
	"dxsim/internal"
	"dxsim/internal/errors"
	"dxsim/internal/report"
	"dxsim/internal/simulation"
	"dxsim/internal/validation"
	"dxsim/ports"
)

// Stream names; a run's population and test draws never share a stream.
const (
	populationStream = "population"
	testStream       = "test"
)

// SimulationService runs the generate, simulate, compute pipeline once
type SimulationService struct {
	rngPort  ports.RNGPort
	observer ports.RunObserver
	logger   *internal.Logger
	seed     uint64
	limits   Limits
	now      func() time.Time
}

// RunRequest defines the inputs for one simulated test
type RunRequest struct {
	Population  diagnostic.PopulationConfig `json:"population"`
	Condition   string                      `json:"test_condition" validate:"required"`
	Sensitivity float64                     `json:"sensitivity" validate:"probability"`
	Specificity float64                     `json:"specificity" validate:"probability"`
	// Seed 0 picks one from the clock; the chosen seed is echoed in the result
	Seed uint64 `json:"seed,omitempty"`
}

// RunResult contains the complete output of a run
type RunResult struct {
	RunID              core.RunID               `json:"run_id"`
	Fingerprint        core.Hash                `json:"fingerprint"`
	Condition          string                   `json:"test_condition"`
	PopulationSize     int                      `json:"population_size"`
	Sensitivity        float64                  `json:"sensitivity"`
	Specificity        float64                  `json:"specificity"`
	Seed               uint64                   `json:"seed"`
	ObservedPrevalence map[string]float64       `json:"observed_prevalence"`
	Metrics            diagnostic.MetricsRecord `json:"metrics"`
	TwoByTwo           diagnostic.TwoByTwo      `json:"two_by_two"`
	Groups             diagnostic.Groups        `json:"groups"`
	Messages           []string                 `json:"messages"`
	CreatedAt          core.Timestamp           `json:"created_at"`
	RuntimeMs          int64                    `json:"runtime_ms"`
}

// Report returns the report view of the result
func (r *RunResult) Report() report.Run {
	return report.Run{
		ID:                 r.RunID.String(),
		Fingerprint:        r.Fingerprint.Short(),
		Condition:          r.Condition,
		PopulationSize:     r.PopulationSize,
		Seed:               r.Seed,
		Sensitivity:        r.Sensitivity,
		Specificity:        r.Specificity,
		ObservedPrevalence: r.ObservedPrevalence,
		Metrics:            r.Metrics,
	}
}

// NewSimulationService creates a simulation service
func NewSimulationService(rngPort ports.RNGPort, observer ports.RunObserver, logger *internal.Logger) *SimulationService {
	if observer == nil {
		observer = ports.NopObserver{}
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SimulationService{
		rngPort:  rngPort,
		observer: observer,
		logger:   logger.With("simulation"),
		limits:   DefaultLimits(),
		now:      time.Now,
	}
}

// WithDefaultSeed sets the seed used when a request leaves it at 0.
// A default of 0 keeps the clock-derived seed.
func (s *SimulationService) WithDefaultSeed(seed uint64) *SimulationService {
	s.seed = seed
	return s
}

// WithLimits replaces the request bounds; non-positive fields keep their
// defaults.
func (s *SimulationService) WithLimits(l Limits) *SimulationService {
	s.limits = l.withDefaults()
	return s
}

// Run validates the request, then generates a population, applies the
// test to it and derives the metrics, each from its own seeded stream.
func (s *SimulationService) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	if err := validation.Struct(req); err != nil {
		s.observer.RunFailed(errors.CodeInvalidInput)
		return nil, err
	}
	if err := s.limits.checkRun(req); err != nil {
		s.observer.RunFailed(errors.CodeInvalidInput)
		return nil, err
	}

	start := s.now()
	seed := pickSeed(req.Seed, s.seed, start)

	pop, table, err := runPipeline(ctx, req, func(name string) (*rand.Rand, error) {
		return s.rngPort.SeededStream(ctx, name, seed)
	})
	if err != nil {
		return nil, s.fail(req, err)
	}

	metrics := simulation.Compute(table)
	elapsed := s.now().Sub(start)
	s.observer.RunCompleted(req.Condition, pop.Size(), elapsed)

	result := &RunResult{
		RunID:              core.NewRunID(),
		Fingerprint:        core.ComputeRunFingerprint(req.Population.Size, req.Population.Conditions, req.Condition, req.Sensitivity, req.Specificity, seed),
		Condition:          req.Condition,
		PopulationSize:     pop.Size(),
		Sensitivity:        req.Sensitivity,
		Specificity:        req.Specificity,
		Seed:               seed,
		ObservedPrevalence: pop.ObservedPrevalence(),
		Metrics:            metrics,
		TwoByTwo:           metrics.TwoByTwo(),
		Groups:             metrics.Groups(),
		Messages:           report.Summary(req.Condition, metrics),
		CreatedAt:          core.NewTimestamp(start),
		RuntimeMs:          elapsed.Milliseconds(),
	}

	s.logger.Info("run %s: %s over %d people, seed %d, accuracy %.2f%%",
		result.RunID, req.Condition, pop.Size(), seed, metrics.Accuracy)
	return result, nil
}

// runPipeline generates the population and simulates the test, drawing
// each stage's source from streamFor.
func runPipeline(ctx context.Context, req RunRequest, streamFor func(name string) (*rand.Rand, error)) (*diagnostic.Population, *diagnostic.OutcomeTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	popSrc, err := streamFor(populationStream)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open population stream")
	}
	pop, err := simulation.Generate(req.Population, popSrc)
	if err != nil {
		return nil, nil, err
	}

	testSrc, err := streamFor(testStream)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open test stream")
	}
	table, err := simulation.Simulate(pop, req.Condition, req.Sensitivity, req.Specificity, testSrc)
	if err != nil {
		return nil, nil, err
	}
	return pop, table, nil
}

func (s *SimulationService) fail(req RunRequest, err error) error {
	mapped := errors.FromSimulation(err)
	s.observer.RunFailed(errors.GetCode(mapped))
	s.logger.Warn("run for %q failed: %v", req.Condition, err)
	return mapped
}

func pickSeed(requested, fallback uint64, now time.Time) uint64 {
	switch {
	case requested != 0:
		return requested
	case fallback != 0:
		return fallback
	}
	return clockSeed(now)
}

func clockSeed(t time.Time) uint64 {
	seed := uint64(t.UnixNano())
	if seed == 0 {
		seed = 1
	}
	return seed
}
