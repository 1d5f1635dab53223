package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusObserver implements ports.RunObserver on its own registry so
// several instances can coexist in one process.
type PrometheusObserver struct {
	registry *prometheus.Registry

	runsTotal       *prometheus.CounterVec
	runFailures     *prometheus.CounterVec
	runDuration     prometheus.Histogram
	populationSize  prometheus.Histogram
	sweepsTotal     prometheus.Counter
	sweepReplicates prometheus.Counter
	sweepDegenerate prometheus.Counter
	sweepDuration   prometheus.Histogram
}

// NewPrometheusObserver registers the simulation metrics on a fresh registry
func NewPrometheusObserver() *PrometheusObserver {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusObserver{
		registry: reg,

		// runsTotal counts completed runs by tested condition
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dxsim_runs_total",
			Help: "Completed simulation runs by tested condition",
		}, []string{"condition"}),

		// runFailures counts rejected or failed runs by error code
		runFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dxsim_run_failures_total",
			Help: "Failed simulation runs by error code",
		}, []string{"code"}),

		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dxsim_run_duration_seconds",
			Help:    "Wall time of one simulation run",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
		}),

		populationSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dxsim_population_size",
			Help:    "Population size per completed run",
			Buckets: prometheus.ExponentialBuckets(32, 4, 8),
		}),

		sweepsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "dxsim_sweeps_total",
			Help: "Completed replicate sweeps",
		}),

		sweepReplicates: factory.NewCounter(prometheus.CounterOpts{
			Name: "dxsim_sweep_replicates_total",
			Help: "Replicates requested across all completed sweeps",
		}),

		sweepDegenerate: factory.NewCounter(prometheus.CounterOpts{
			Name: "dxsim_sweep_degenerate_replicates_total",
			Help: "Sweep replicates skipped because the tested condition was empty",
		}),

		sweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dxsim_sweep_duration_seconds",
			Help:    "Wall time of one replicate sweep",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
}

// RunCompleted records a finished run
func (o *PrometheusObserver) RunCompleted(condition string, population int, elapsed time.Duration) {
	o.runsTotal.WithLabelValues(condition).Inc()
	o.runDuration.Observe(elapsed.Seconds())
	o.populationSize.Observe(float64(population))
}

// RunFailed records a failed run under its error code
func (o *PrometheusObserver) RunFailed(code string) {
	o.runFailures.WithLabelValues(code).Inc()
}

// SweepCompleted records a finished sweep
func (o *PrometheusObserver) SweepCompleted(replicates, degenerate int, elapsed time.Duration) {
	o.sweepsTotal.Inc()
	o.sweepReplicates.Add(float64(replicates))
	o.sweepDegenerate.Add(float64(degenerate))
	o.sweepDuration.Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry
func (o *PrometheusObserver) Registry() *prometheus.Registry {
	return o.registry
}

// Handler serves the registry in the Prometheus text format
func (o *PrometheusObserver) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}
