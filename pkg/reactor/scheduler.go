package reactor

import (
	"sort"
	"time"
)

// DefaultMaxIterations bounds the number of passes one flush may take
// before the scheduler treats the workload as an infinite reschedule cycle.
const DefaultMaxIterations = 1000

// Mode selects when the scheduler flushes pending work.
type Mode int

const (
	// ModeImmediate flushes as soon as work is scheduled (outside an
	// explicit batch). This is the default.
	ModeImmediate Mode = iota

	// ModeBatched never flushes on its own; pending work runs only on
	// ExecuteBatch or an explicit Flush.
	ModeBatched
)

// SchedulerOption configures a scheduler at construction.
type SchedulerOption func(*Scheduler)

// WithSink installs the instrumentation sink receiving engine events.
// The default is NopSink.
func WithSink(sink Sink) SchedulerOption {
	return func(s *Scheduler) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithMaxIterations overrides the flush iteration bound.
func WithMaxIterations(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxIterations = n
		}
	}
}

// WithMode sets the initial scheduling mode.
func WithMode(m Mode) SchedulerOption {
	return func(s *Scheduler) {
		s.mode = m
	}
}

// Scheduler collects pending computations, orders them deepest-in-hierarchy
// first, and executes them in batches. A flush iterates while executing a
// batch schedules new work; exceeding the configured maximum iteration
// count panics with *CycleError, since the scheduler cannot safely guess a
// correct fixed point for an unbounded reactive loop.
//
// All state a scheduler owns is confined to one logical thread; see the
// package documentation for the execution model.
type Scheduler struct {
	// queue is the deferred execution queue every emission and flush
	// request passes through.
	queue *DeferredQueue

	// root owns top-level computations.
	root *Owner

	// pending is the set of nodes awaiting execution. Set semantics: at
	// most one entry per node.
	pending map[*Computation]struct{}

	// flushQueued dedups flush requests on the deferred queue.
	flushQueued bool

	// flushing is true while a flush loop is executing; scheduling during
	// a flush feeds the in-progress loop instead of queueing another.
	flushing bool

	maxIterations int
	mode          Mode
	sink          Sink
}

// NewScheduler creates a scheduler with its own deferred queue and root
// ownership scope.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		queue:         NewDeferredQueue(),
		pending:       make(map[*Computation]struct{}),
		maxIterations: DefaultMaxIterations,
		sink:          NopSink{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.root = &Owner{id: nextID(), name: "root", sink: s.sink}
	return s
}

// Queue exposes the scheduler's deferred execution queue for advanced
// hold/release control.
func (s *Scheduler) Queue() *DeferredQueue {
	return s.queue
}

// Root returns the owner of all top-level computations. Disposing it tears
// the whole graph down.
func (s *Scheduler) Root() *Owner {
	return s.root
}

// Sink returns the configured instrumentation sink.
func (s *Scheduler) Sink() Sink {
	return s.sink
}

// SetMaxIterations reconfigures the flush iteration bound. Values below
// one are ignored.
func (s *Scheduler) SetMaxIterations(n int) {
	if n > 0 {
		s.maxIterations = n
	}
}

// MaxIterations returns the current flush iteration bound.
func (s *Scheduler) MaxIterations() int {
	return s.maxIterations
}

// SetMode switches between immediate and explicitly batched flushing.
func (s *Scheduler) SetMode(m Mode) {
	s.mode = m
}

// Mode returns the current scheduling mode.
func (s *Scheduler) Mode() Mode {
	return s.mode
}

// Schedule adds a node to the pending set. Equivalent to the node's own
// ScheduleExecution; duplicates are ignored.
func (s *Scheduler) Schedule(c *Computation) {
	if c == nil {
		return
	}
	c.ScheduleExecution()
}

// enqueue records a deduplicated node and, outside a flush and outside
// batched mode, requests a flush through the deferred queue.
func (s *Scheduler) enqueue(c *Computation) {
	s.pending[c] = struct{}{}
	if s.flushing || s.mode == ModeBatched {
		return
	}
	s.requestFlush()
}

// requestFlush puts one flush action on the deferred queue.
func (s *Scheduler) requestFlush() {
	if s.flushQueued || s.flushing {
		return
	}
	s.flushQueued = true
	s.queue.Schedule(s.flush)
}

// ExecuteBatch brackets fn with a queue hold so that many mutations
// collapse into a single flush after fn returns. Batches nest; the flush
// happens when the outermost batch releases.
func (s *Scheduler) ExecuteBatch(fn func()) {
	s.queue.Hold()
	defer func() {
		s.requestFlush()
		s.queue.Release()
	}()
	fn()
}

// Flush requests a flush of pending work. Mainly useful in batched mode;
// in immediate mode flushes happen on their own.
func (s *Scheduler) Flush() {
	s.requestFlush()
}

// flush executes pending computations. Each pass snapshots and clears the
// pending set, orders it deepest-first, executes every node, then delivers
// the emissions that execution produced so newly dirtied dependents join
// the next pass. The loop repeats until no work remains or the iteration
// bound trips.
func (s *Scheduler) flush() {
	s.flushQueued = false
	if s.flushing || len(s.pending) == 0 {
		return
	}
	s.flushing = true
	defer func() { s.flushing = false }()

	s.sink.FlushStarted()
	start := time.Now()

	var stats FlushStats
	for len(s.pending) > 0 {
		stats.Passes++
		if stats.Passes > s.maxIterations {
			stats.Passes = s.maxIterations
			stats.Aborted = true
			stats.Duration = time.Since(start)
			s.sink.FlushFinished(stats)
			panic(&CycleError{
				Iterations: s.maxIterations,
				Pending:    s.pendingNames(),
			})
		}

		batch := make([]*Computation, 0, len(s.pending))
		for c := range s.pending {
			batch = append(batch, c)
		}
		clear(s.pending)

		sort.Slice(batch, func(i, j int) bool {
			return pathBefore(batch[i].path, batch[j].path)
		})

		for _, c := range batch {
			if c.IsDisposed() {
				continue
			}
			c.executeInternal()
			stats.Runs++
			if c.lastErr != nil {
				stats.Errors++
			}
		}

		// Deliver emissions produced by this pass. Their change callbacks
		// refill the pending set for the next pass.
		s.queue.runPending()
	}

	stats.Duration = time.Since(start)
	s.sink.FlushFinished(stats)
}

// pendingNames lists the names of still-scheduled nodes for diagnostics.
func (s *Scheduler) pendingNames() []string {
	names := make([]string, 0, len(s.pending))
	for c := range s.pending {
		names = append(names, c.name)
	}
	sort.Strings(names)
	return names
}
