package reactor

// Conditional is a computation gated by a boolean observable. Every run
// first tracks the gate itself; the body only executes while the gate is
// true. Because the gate is re-tracked on every run, the node wakes up
// again as soon as the gate flips back.
type Conditional struct {
	*Computation
}

// NewConditional creates a gated computation owned by the scheduler's root
// scope and schedules its initial run.
func NewConditional(s *Scheduler, name string, cond Readable[bool], fn func(*Builder), opts ...ComputationOption) *Conditional {
	return newConditional(s, nil, name, cond, fn, opts...)
}

func newConditional(s *Scheduler, parent *Owner, name string, cond Readable[bool], fn func(*Builder), opts ...ComputationOption) *Conditional {
	if cond == nil {
		panic(ErrNilCondition)
	}
	if fn == nil {
		panic(ErrNilBody)
	}

	body := func(b *Builder) {
		if !Track(b, cond) {
			return
		}
		fn(b)
	}
	return &Conditional{Computation: newComputation(s, parent, name, body, opts...)}
}
