// Package metrics exports reactor engine activity as Prometheus metrics.
//
// The Sink implements reactor.Sink; install it on a scheduler:
//
//	sink := metrics.NewSink(metrics.WithNamespace("myapp"))
//	s := reactor.NewScheduler(reactor.WithSink(sink))
//
//	// Expose the metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/reactor-go/reactor/pkg/reactor"
)

// Config configures the Prometheus sink.
type Config struct {
	// Namespace is the metrics namespace (default: "reactor").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush and run duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus sink.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "reactor",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

var _ reactor.Sink = (*Sink)(nil)

// Sink records reactor engine events as Prometheus metrics.
//
// Metrics collected:
//   - reactor_flushes_total: Counter of scheduler flushes by outcome
//   - reactor_flush_duration_seconds: Histogram of flush duration
//   - reactor_flush_passes: Histogram of passes per flush
//   - reactor_computation_runs_total: Counter of computation runs by status
//   - reactor_run_duration_seconds: Histogram of computation run duration
//   - reactor_dependency_resubscriptions_total: Counter of dependency resubscriptions
//   - reactor_dependency_drops_total: Counter of dropped dependencies
//   - reactor_disposal_failures_total: Counter of panics during teardown
//
// Computation names are deliberately not used as labels: graphs create
// and dispose nodes freely, and per-node labels would be unbounded.
type Sink struct {
	flushesTotal  *prometheus.CounterVec
	flushDuration prometheus.Histogram
	flushPasses   prometheus.Histogram

	runsTotal   *prometheus.CounterVec
	runDuration prometheus.Histogram

	depResubscriptions prometheus.Counter
	depDrops           prometheus.Counter
	disposalFailures   prometheus.Counter
}

// NewSink creates a Prometheus sink, registering its metrics with the
// configured registry.
func NewSink(opts ...Option) *Sink {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Sink{
		flushesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of scheduler flushes by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Scheduler flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		flushPasses: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_passes",
			Help:        "Number of passes per scheduler flush",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 3, 5, 8, 13, 21, 50, 100},
		}),

		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "computation_runs_total",
			Help:        "Total number of computation runs by status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "run_duration_seconds",
			Help:        "Computation run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		depResubscriptions: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dependency_resubscriptions_total",
			Help:        "Total dynamic dependency positions resubscribed during reconciliation",
			ConstLabels: config.ConstLabels,
		}),

		depDrops: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dependency_drops_total",
			Help:        "Total dynamic dependencies dropped during reconciliation",
			ConstLabels: config.ConstLabels,
		}),

		disposalFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "disposal_failures_total",
			Help:        "Total panics recovered during resource teardown",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// FlushStarted implements reactor.Sink.
func (s *Sink) FlushStarted() {}

// FlushFinished implements reactor.Sink.
func (s *Sink) FlushFinished(stats reactor.FlushStats) {
	outcome := "success"
	if stats.Aborted {
		outcome = "aborted"
	} else if stats.Errors > 0 {
		outcome = "errors"
	}
	s.flushesTotal.WithLabelValues(outcome).Inc()
	s.flushDuration.Observe(stats.Duration.Seconds())
	s.flushPasses.Observe(float64(stats.Passes))
}

// ComputationRan implements reactor.Sink.
func (s *Sink) ComputationRan(stats reactor.RunStats) {
	status := "success"
	if stats.Err != nil {
		status = "error"
	}
	s.runsTotal.WithLabelValues(status).Inc()
	s.runDuration.Observe(stats.Duration.Seconds())
}

// DependenciesReconciled implements reactor.Sink.
func (s *Sink) DependenciesReconciled(stats reactor.TrackerStats) {
	if stats.Resubscribed > 0 {
		s.depResubscriptions.Add(float64(stats.Resubscribed))
	}
	if stats.Dropped > 0 {
		s.depDrops.Add(float64(stats.Dropped))
	}
}

// DisposalFailed implements reactor.Sink.
func (s *Sink) DisposalFailed(string, any) {
	s.disposalFailures.Inc()
}
