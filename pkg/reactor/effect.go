package reactor

// Effect is a computation run purely for its side effects: it has no
// return value and no subscribers of its own. It re-runs whenever anything
// it tracked changes.
type Effect struct {
	*Computation
}

// NewEffect creates an effect owned by the scheduler's root scope and
// schedules its initial run.
func NewEffect(s *Scheduler, name string, fn func(*Builder), opts ...ComputationOption) *Effect {
	return newEffect(s, nil, name, fn, opts...)
}

func newEffect(s *Scheduler, parent *Owner, name string, fn func(*Builder), opts ...ComputationOption) *Effect {
	if fn == nil {
		panic(ErrNilBody)
	}
	return &Effect{Computation: newComputation(s, parent, name, fn, opts...)}
}
