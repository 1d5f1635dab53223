package container

import (
	"fmt"
	"net/http"

	"dxsim/adapters/metrics"
	"dxsim/adapters/rng"
	"dxsim/app"
	"dxsim/internal"
	"dxsim/internal/config"
	"dxsim/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	RNG      ports.RNGPort
	Observer ports.RunObserver
	Metrics  *metrics.PrometheusObserver // nil when metrics are disabled

	// Services
	Simulation *app.SimulationService
	Sweep      *app.SweepService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
		RNG:    rng.NewPCGAdapter(),
	}

	if cfg.Metrics.Enabled {
		c.Metrics = metrics.NewPrometheusObserver()
		c.Observer = c.Metrics
	} else {
		c.Observer = ports.NopObserver{}
	}

	limits := app.Limits{
		MaxPopulation: cfg.Simulation.MaxPopulation,
		MaxSweepRows:  cfg.Simulation.MaxSweepRows,
	}
	c.Simulation = app.NewSimulationService(c.RNG, c.Observer, c.Logger).
		WithDefaultSeed(cfg.Simulation.Seed).
		WithLimits(limits)
	c.Sweep = app.NewSweepService(c.RNG, c.Observer, c.Logger, cfg.Simulation.Parallelism, cfg.Simulation.Replicates).
		WithDefaultSeed(cfg.Simulation.Seed).
		WithLimits(limits)

	c.Logger.Debug("container ready (metrics=%t, parallelism=%d, replicates=%d)",
		cfg.Metrics.Enabled, cfg.Simulation.Parallelism, cfg.Simulation.Replicates)
	return c, nil
}

// MetricsHandler returns the /metrics handler, or nil when metrics are disabled
func (c *Container) MetricsHandler() http.Handler {
	if c.Metrics == nil {
		return nil
	}
	return c.Metrics.Handler()
}
