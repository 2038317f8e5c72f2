package reactor

// Computed is a memoized derivation: each run applies a pure function to
// tracked state and stores the result in a backing Value. Its subscribers
// are only notified when the result changes under the backing value's
// comparer, even when dependencies fire more often.
type Computed[T any] struct {
	*Computation

	backing *Value[T]
}

// NewComputed creates a computed value owned by the scheduler's root scope
// and schedules its initial run.
func NewComputed[T any](s *Scheduler, name string, fn func(*Builder) T, opts ...ComputationOption) *Computed[T] {
	return newComputed(s, nil, name, fn, opts...)
}

func newComputed[T any](s *Scheduler, parent *Owner, name string, fn func(*Builder) T, opts ...ComputationOption) *Computed[T] {
	if s == nil {
		panic(ErrNilScheduler)
	}
	if fn == nil {
		panic(ErrNilBody)
	}

	var zero T
	c := &Computed[T]{backing: NewValue(s, zero)}
	c.Computation = newComputation(s, parent, name, func(b *Builder) {
		c.backing.Set(fn(b))
	}, opts...)
	return c
}

// WithEquals configures the result comparer used to suppress notifications
// when a run produces an unchanged result.
func (c *Computed[T]) WithEquals(fn func(T, T) bool) *Computed[T] {
	c.backing.WithEquals(fn)
	return c
}

// Current returns the most recently computed result without subscribing.
func (c *Computed[T]) Current() T {
	return c.backing.Current()
}

// Subscribe registers a callback invoked whenever the computed result
// changes.
func (c *Computed[T]) Subscribe(fn func(T)) *Subscription {
	return c.backing.Subscribe(fn)
}

// Unsubscribe removes a previously returned subscription handle.
func (c *Computed[T]) Unsubscribe(sub *Subscription) {
	sub.Dispose()
}

// Source implementation: tracking a Computed means tracking its backing
// value, so dependents re-run only when the result changes.

func (c *Computed[T]) observe(fn func(any)) *Subscription { return c.backing.observe(fn) }
func (c *Computed[T]) snapshot() uint64                   { return c.backing.snapshot() }
func (c *Computed[T]) changedSince(v uint64) bool         { return c.backing.changedSince(v) }
func (c *Computed[T]) sourceID() uint64                   { return c.backing.sourceID() }
