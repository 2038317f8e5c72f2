package reactor

import (
	"log/slog"
	"time"
)

// FlushStats summarizes one scheduler flush.
type FlushStats struct {
	// Passes is the number of internal iterations the flush needed.
	// A pass beyond the first means executing the previous pass scheduled
	// new work.
	Passes int

	// Runs is the number of computation executions across all passes.
	Runs int

	// Errors is the number of executions that recorded an error.
	Errors int

	// Aborted is true when the flush hit its iteration limit and raised a
	// cycle error.
	Aborted bool

	// Duration is the wall time of the whole flush.
	Duration time.Duration
}

// RunStats describes a single computation execution.
type RunStats struct {
	// Computation is the node's human-readable name.
	Computation string

	// Duration is the wall time of the run, including dependency
	// reconciliation.
	Duration time.Duration

	// Err is the error recorded by the run, nil on success.
	Err error
}

// TrackerStats describes the dependency reconciliation performed by one run.
type TrackerStats struct {
	// Computation is the node's human-readable name.
	Computation string

	// Static is the number of static dependencies (fixed at construction).
	Static int

	// Dynamic is the number of dynamic dependencies after reconciliation.
	Dynamic int

	// Resubscribed is the number of dynamic positions whose subscription
	// was replaced or newly created during the run.
	Resubscribed int

	// Dropped is the number of trailing dependencies disposed because the
	// dependency list shrank.
	Dropped int
}

// Sink receives structured engine events: scheduler lifecycle,
// per-computation execution outcomes, dependency-tracking diagnostics and
// disposal failures. The core never requires a sink; NopSink is the default.
//
// Sink implementations must be cheap and must not call back into the engine.
type Sink interface {
	// FlushStarted fires when a scheduler flush begins executing.
	FlushStarted()

	// FlushFinished fires when a flush completes or aborts.
	FlushFinished(FlushStats)

	// ComputationRan fires after every computation execution.
	ComputationRan(RunStats)

	// DependenciesReconciled fires after a run's dynamic dependency list
	// has been reconciled.
	DependenciesReconciled(TrackerStats)

	// DisposalFailed fires when a cleanup callback or an owned child's
	// Dispose panics during teardown. Teardown continues regardless.
	DisposalFailed(owner string, recovered any)
}

// NopSink is the default Sink; it discards every event.
type NopSink struct{}

func (NopSink) FlushStarted()                       {}
func (NopSink) FlushFinished(FlushStats)            {}
func (NopSink) ComputationRan(RunStats)             {}
func (NopSink) DependenciesReconciled(TrackerStats) {}
func (NopSink) DisposalFailed(string, any)          {}

// SlogSink logs engine events through a *slog.Logger.
// Reconciliation diagnostics are logged at debug level; everything else at
// info, except failures which log at error level.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a SlogSink. A nil logger falls back to slog.Default().
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

func (s *SlogSink) FlushStarted() {
	s.logger.Debug("flush started")
}

func (s *SlogSink) FlushFinished(stats FlushStats) {
	s.logger.Info("flush finished",
		"passes", stats.Passes,
		"runs", stats.Runs,
		"errors", stats.Errors,
		"aborted", stats.Aborted,
		"duration", stats.Duration,
	)
}

func (s *SlogSink) ComputationRan(stats RunStats) {
	if stats.Err != nil {
		s.logger.Error("computation failed",
			"computation", stats.Computation,
			"duration", stats.Duration,
			"error", stats.Err,
		)
		return
	}
	s.logger.Debug("computation ran",
		"computation", stats.Computation,
		"duration", stats.Duration,
	)
}

func (s *SlogSink) DependenciesReconciled(stats TrackerStats) {
	s.logger.Debug("dependencies reconciled",
		"computation", stats.Computation,
		"static", stats.Static,
		"dynamic", stats.Dynamic,
		"resubscribed", stats.Resubscribed,
		"dropped", stats.Dropped,
	)
}

func (s *SlogSink) DisposalFailed(owner string, recovered any) {
	s.logger.Error("disposal failed",
		"owner", owner,
		"recovered", recovered,
	)
}

// MultiSink fans every event out to each contained sink, in order.
type MultiSink []Sink

func (m MultiSink) FlushStarted() {
	for _, s := range m {
		s.FlushStarted()
	}
}

func (m MultiSink) FlushFinished(stats FlushStats) {
	for _, s := range m {
		s.FlushFinished(stats)
	}
}

func (m MultiSink) ComputationRan(stats RunStats) {
	for _, s := range m {
		s.ComputationRan(stats)
	}
}

func (m MultiSink) DependenciesReconciled(stats TrackerStats) {
	for _, s := range m {
		s.DependenciesReconciled(stats)
	}
}

func (m MultiSink) DisposalFailed(owner string, recovered any) {
	for _, s := range m {
		s.DisposalFailed(owner, recovered)
	}
}
