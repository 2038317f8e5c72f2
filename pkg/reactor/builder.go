package reactor

// Builder is the single-use scope handed to a computation body for one run.
// It records dependencies as the body reads reactive state and routes
// resources created by the body into the computation's ownership tree.
//
// A builder is sealed when its run returns, even on error. Any method call
// on a sealed builder panics with ErrBuilderSealed, so dependencies and
// nested resources can never leak past the run that created them.
type Builder struct {
	comp   *Computation
	sealed bool
}

// ensureLive panics when the builder has outlived its run.
func (b *Builder) ensureLive() {
	if b.sealed {
		panic(ErrBuilderSealed)
	}
}

// Track reads a reactive value and enrolls it as the run's next dynamic
// dependency: the computation re-runs when the value changes. This is how
// a body "reads" reactive state without a separate subscribe call. Both
// Value[T] and Computed[T] are trackable.
func Track[T any](b *Builder, src Readable[T]) T {
	b.ensureLive()
	b.comp.tracker.addDynamic(src)
	return src.Current()
}

// TrackSource enrolls a dependency without reading a value. Useful for
// streams, where the computation should re-run per emission but there is
// no current value to return.
func TrackSource(b *Builder, src Source) {
	b.ensureLive()
	b.comp.tracker.addDynamic(src)
}

// Use hands ownership of a resource to the enclosing computation: it is
// disposed before the next run and when the computation is disposed.
func (b *Builder) Use(d Disposable) {
	b.ensureLive()
	b.comp.ManageResource(d)
}

// OnCleanup registers a teardown callback on the enclosing computation.
// Cleanups run in reverse registration order before the next run and on
// disposal.
func (b *Builder) OnCleanup(fn func()) {
	b.ensureLive()
	b.comp.RegisterCleanup(fn)
}

// CreateEffect constructs a nested effect owned by the enclosing
// computation, so disposing the parent disposes it too.
func (b *Builder) CreateEffect(name string, fn func(*Builder), opts ...ComputationOption) *Effect {
	b.ensureLive()
	return newEffect(b.comp.sched, b.comp.Owner, name, fn, opts...)
}

// CreateConditional constructs a nested conditional computation owned by
// the enclosing computation.
func (b *Builder) CreateConditional(name string, cond Readable[bool], fn func(*Builder), opts ...ComputationOption) *Conditional {
	b.ensureLive()
	return newConditional(b.comp.sched, b.comp.Owner, name, cond, fn, opts...)
}

// CreateComputed constructs a nested computed value owned by the enclosing
// computation.
func CreateComputed[T any](b *Builder, name string, fn func(*Builder) T, opts ...ComputationOption) *Computed[T] {
	b.ensureLive()
	return newComputed(b.comp.sched, b.comp.Owner, name, fn, opts...)
}

// ProvideContext stores a context value on the enclosing computation,
// visible to it and everything it owns.
func ProvideContext[T any](b *Builder, c *Context[T], value T) {
	b.ensureLive()
	c.Provide(b.comp.Owner, value)
}

// UseContext reads a context value visible from the enclosing computation.
func UseContext[T any](b *Builder, c *Context[T]) T {
	b.ensureLive()
	return c.Get(b.comp.Owner)
}

// Owner exposes the enclosing computation's resource node, for advanced
// resource wiring.
func (b *Builder) Owner() *Owner {
	b.ensureLive()
	return b.comp.Owner
}

// Scheduler returns the scheduler the enclosing computation runs on.
func (b *Builder) Scheduler() *Scheduler {
	b.ensureLive()
	return b.comp.sched
}

// seal makes the builder inert. Called when the run exits, error or not.
func (b *Builder) seal() {
	b.sealed = true
}
