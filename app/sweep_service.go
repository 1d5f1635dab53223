package app

import (
	"context"
	"math"
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"

	"dxsim/domain/core"
	"dxsim/domain/diagnostic"
	"dxsim/internal"
	"dxsim/internal/errors"
	"dxsim/internal/simulation"
	"dxsim/internal/validation"
	"dxsim/ports"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// SweepService repeats a run with independent streams and summarises how
// each statistic is distributed across replicates.
type SweepService struct {
	rngPort     ports.RNGPort
	observer    ports.RunObserver
	logger      *internal.Logger
	parallelism int
	replicates  int
	seed        uint64
	limits      Limits
	now         func() time.Time
}

// SweepRequest defines the inputs for a replicate sweep
type SweepRequest struct {
	RunRequest
	// Replicates 0 uses the service default
	Replicates int `json:"replicates,omitempty" validate:"omitempty,min=1,max=10000"`
}

// SweepResult contains the aggregated output of a sweep
type SweepResult struct {
	SweepID     core.SweepID            `json:"sweep_id"`
	Fingerprint core.Hash               `json:"fingerprint"`
	Seed        uint64                  `json:"seed"`
	Summary     diagnostic.SweepSummary `json:"summary"`
	CreatedAt   core.Timestamp          `json:"created_at"`
	RuntimeMs   int64                   `json:"runtime_ms"`
}

// sweepRates are the statistics summarised per sweep, in report order
var sweepRates = []struct {
	name string
	get  func(diagnostic.MetricsRecord) float64
}{
	{"sensitivity", func(m diagnostic.MetricsRecord) float64 { return m.Sensitivity }},
	{"specificity", func(m diagnostic.MetricsRecord) float64 { return m.Specificity }},
	{"positive_predictive_value", func(m diagnostic.MetricsRecord) float64 { return m.PositivePredictiveValue }},
	{"negative_predictive_value", func(m diagnostic.MetricsRecord) float64 { return m.NegativePredictiveValue }},
	{"accuracy", func(m diagnostic.MetricsRecord) float64 { return m.Accuracy }},
	{"prevalence", func(m diagnostic.MetricsRecord) float64 { return m.Prevalence }},
	{"positive_likelihood_ratio", func(m diagnostic.MetricsRecord) float64 { return m.PositiveLikelihoodRatio }},
	{"posttest_probability", func(m diagnostic.MetricsRecord) float64 { return m.PosttestProbability }},
}

// WithDefaultSeed sets the seed used when a request leaves it at 0
func (s *SweepService) WithDefaultSeed(seed uint64) *SweepService {
	s.seed = seed
	return s
}

// WithLimits replaces the request bounds; non-positive fields keep their
// defaults.
func (s *SweepService) WithLimits(l Limits) *SweepService {
	s.limits = l.withDefaults()
	return s
}

// NewSweepService creates a sweep service. parallelism and replicates
// fall back to NumCPU and 200 when not positive.
func NewSweepService(rngPort ports.RNGPort, observer ports.RunObserver, logger *internal.Logger, parallelism, replicates int) *SweepService {
	if observer == nil {
		observer = ports.NopObserver{}
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if parallelism < 1 {
		parallelism = runtime.NumCPU()
	}
	if replicates < 1 {
		replicates = 200
	}
	return &SweepService{
		rngPort:     rngPort,
		observer:    observer,
		logger:      logger.With("sweep"),
		parallelism: parallelism,
		replicates:  replicates,
		limits:      DefaultLimits(),
		now:         time.Now,
	}
}

// Sweep runs the pipeline once per replicate with bounded parallelism.
// Replicates whose tested condition came out empty are counted as
// degenerate and left out of the summary; any other failure stops the sweep.
func (s *SweepService) Sweep(ctx context.Context, req SweepRequest) (*SweepResult, error) {
	if err := validation.Struct(req); err != nil {
		s.observer.RunFailed(errors.CodeInvalidInput)
		return nil, err
	}
	replicates := req.Replicates
	if replicates == 0 {
		replicates = s.replicates
	}
	if err := s.limits.checkSweep(req.RunRequest, replicates); err != nil {
		s.observer.RunFailed(errors.CodeInvalidInput)
		return nil, err
	}
	if err := checkSweepable(req.RunRequest); err != nil {
		return nil, s.fail(req, err)
	}
	start := s.now()
	seed := pickSeed(req.Seed, s.seed, start)

	fingerprint := core.ComputeRunFingerprint(req.Population.Size, req.Population.Conditions, req.Condition, req.Sensitivity, req.Specificity, seed)
	// streams are keyed by fingerprint so the same inputs and seed reproduce
	streamKey := fingerprint.String()

	results := make([]*diagnostic.MetricsRecord, replicates)
	var degenerate atomic.Int64

	sem := semaphore.NewWeighted(int64(s.parallelism))
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < replicates; i++ {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)

			_, table, err := runPipeline(gctx, req.RunRequest, func(name string) (*rand.Rand, error) {
				return s.rngPort.Stream(gctx, streamKey, name, i, seed)
			})
			if core.IsDegenerateConditionError(err) {
				degenerate.Add(1)
				s.logger.Debug("replicate %d: %v", i, err)
				return nil
			}
			if err != nil {
				return err
			}
			m := simulation.Compute(table)
			results[i] = &m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, s.fail(req, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, s.fail(req, err)
	}

	completed := make([]diagnostic.MetricsRecord, 0, replicates)
	for _, m := range results {
		if m != nil {
			completed = append(completed, *m)
		}
	}

	summary := diagnostic.SweepSummary{
		Condition:   req.Condition,
		Size:        req.Population.Size,
		Sensitivity: req.Sensitivity,
		Specificity: req.Specificity,
		Replicates:  replicates,
		Completed:   len(completed),
		Degenerate:  int(degenerate.Load()),
		Rates:       summarise(completed),
	}

	elapsed := s.now().Sub(start)
	s.observer.SweepCompleted(replicates, summary.Degenerate, elapsed)
	s.logger.Info("sweep of %d replicates for %s finished in %s (%d degenerate)",
		replicates, req.Condition, elapsed, summary.Degenerate)

	return &SweepResult{
		SweepID:     core.NewSweepID(),
		Fingerprint: fingerprint,
		Seed:        seed,
		Summary:     summary,
		CreatedAt:   core.NewTimestamp(start),
		RuntimeMs:   elapsed.Milliseconds(),
	}, nil
}

// checkSweepable rejects inputs that would fail identically in every
// replicate.
func checkSweepable(req RunRequest) error {
	if err := simulation.ValidateConfig(req.Population); err != nil {
		return err
	}
	if _, ok := req.Population.Conditions[req.Condition]; !ok {
		return core.NewUnknownConditionError(req.Condition, req.Population.ConditionNames())
	}
	return nil
}

func (s *SweepService) fail(req SweepRequest, err error) error {
	mapped := errors.FromSimulation(err)
	s.observer.RunFailed(errors.GetCode(mapped))
	s.logger.Warn("sweep for %q failed: %v", req.Condition, err)
	return mapped
}

// summarise builds one RateSummary per statistic. Non-finite values are
// skipped, so a statistic with none left reports zeros.
func summarise(records []diagnostic.MetricsRecord) []diagnostic.RateSummary {
	out := make([]diagnostic.RateSummary, 0, len(sweepRates))
	for _, rate := range sweepRates {
		data := make(stats.Float64Data, 0, len(records))
		for _, m := range records {
			if v := rate.get(m); !math.IsNaN(v) && !math.IsInf(v, 0) {
				data = append(data, v)
			}
		}
		out = append(out, describeRate(rate.name, data))
	}
	return out
}

func describeRate(name string, data stats.Float64Data) diagnostic.RateSummary {
	summary := diagnostic.RateSummary{Name: name}
	if data.Len() == 0 {
		return summary
	}
	summary.Mean, _ = stats.Mean(data)
	if data.Len() > 1 {
		summary.StdDev, _ = stats.StandardDeviationSample(data)
	}
	summary.Lower, _ = stats.PercentileNearestRank(data, 2.5)
	summary.Upper, _ = stats.PercentileNearestRank(data, 97.5)
	summary.Min, _ = stats.Min(data)
	summary.Max, _ = stats.Max(data)
	return summary
}
