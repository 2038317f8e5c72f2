package reactor

import (
	"fmt"
	"sync/atomic"
	"time"
)

// computationConfig collects constructor options shared by all variants.
type computationConfig struct {
	static []Source
}

// ComputationOption configures a computation at construction.
type ComputationOption func(*computationConfig)

// WithStaticDeps declares dependencies subscribed once at construction and
// never re-evaluated, in addition to whatever the body tracks dynamically.
func WithStaticDeps(srcs ...Source) ComputationOption {
	return func(c *computationConfig) {
		c.static = append(c.static, srcs...)
	}
}

// Computation is the reactive node underlying every variant: it owns a
// dependency tracker, carries scheduling state and the last recorded error,
// and participates in the resource hierarchy through its embedded Owner.
//
// Lifecycle: Idle -> PendingExecution (ScheduleExecution, deduplicated) ->
// Executing -> Idle or Idle-with-error. Disposed is terminal; scheduling a
// disposed node is inert.
type Computation struct {
	*Owner

	name  string
	sched *Scheduler

	// tracker records static and dynamic dependencies.
	tracker *depTracker

	// body is the execute hook. Variants are closures over this.
	body func(*Builder)

	// pending dedups scheduling: at most one pending entry per node.
	pending atomic.Bool

	// initialized flips after the first run; later runs reset owned
	// resources first.
	initialized bool

	// lastErr is the error recorded by the most recent run, nil on
	// success.
	lastErr error
}

// newComputation wires a node into the scheduler and hierarchy and
// schedules its initial run. parent nil means the scheduler's root.
func newComputation(s *Scheduler, parent *Owner, name string, body func(*Builder), opts ...ComputationOption) *Computation {
	if s == nil {
		panic(ErrNilScheduler)
	}
	if body == nil {
		panic(ErrNilBody)
	}

	var cfg computationConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Computation{
		Owner: &Owner{id: nextID(), name: name},
		name:  name,
		sched: s,
		body:  body,
	}
	c.tracker = newDepTracker(c)
	for _, src := range cfg.static {
		c.tracker.addStatic(src)
	}

	if parent == nil {
		parent = s.root
	}
	parent.ManageResource(c)

	c.ScheduleExecution()
	return c
}

// Name returns the node's human-readable name.
func (c *Computation) Name() string {
	return c.name
}

// LastError returns the error recorded by the most recent run, or nil.
// A node with a recorded error stays inert until a dependency change
// reschedules it, at which point it gets another chance to succeed.
func (c *Computation) LastError() error {
	return c.lastErr
}

// ScheduleExecution marks the node pending and hands it to the scheduler.
// Calling it again before the next run has no additional effect, and
// scheduling a disposed node does nothing.
func (c *Computation) ScheduleExecution() {
	if c.IsDisposed() {
		return
	}
	c.tracker.dirty = true
	if c.pending.CompareAndSwap(false, true) {
		c.sched.enqueue(c)
	}
}

// Dispose tears down the node: owned resources cascade through the
// embedded Owner, then every dependency subscription is released.
// Idempotent.
func (c *Computation) Dispose() {
	if c.IsDisposed() {
		return
	}
	c.Owner.Dispose()
	c.tracker.dispose()
}

// executeInternal performs one run: it clears the pending flag, releases
// resources from the previous run, opens dynamic tracking, invokes the body
// inside a fresh builder, closes tracking (reconciling subscriptions) and
// refreshes the dirty-check snapshots. A panic inside the body is recorded
// as the node's last error and reported to the sink without interrupting
// the scheduler's batch.
func (c *Computation) executeInternal() {
	if c.IsDisposed() {
		return
	}
	c.pending.Store(false)
	if !c.tracker.hasDirtyDependencies() {
		return
	}
	c.tracker.consumeDirty()

	if c.initialized {
		c.Owner.reset()
	}
	c.initialized = true

	start := time.Now()
	c.tracker.beginDynamic()
	err := c.runBody()
	c.tracker.endDynamic()
	c.tracker.updateLastKnownValues()
	c.lastErr = err

	sink := c.sched.sink
	sink.ComputationRan(RunStats{
		Computation: c.name,
		Duration:    time.Since(start),
		Err:         err,
	})
	sink.DependenciesReconciled(c.tracker.stats())
}

// runBody invokes the execute hook inside a fresh builder, sealing the
// builder on exit even when the hook panics. Cycle errors raised by a
// nested flush are structural and re-panic rather than being recorded.
func (c *Computation) runBody() (err error) {
	b := &Builder{comp: c}
	defer b.seal()
	defer func() {
		if r := recover(); r != nil {
			if cycle, ok := r.(*CycleError); ok {
				panic(cycle)
			}
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("reactor: computation %q panicked: %v", c.name, r)
		}
	}()

	c.body(b)
	return nil
}
