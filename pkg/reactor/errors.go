package reactor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBuilderSealed is the panic value for any Builder method called after
// the run that created the builder has returned. Builders are single-use
// scopes; capturing one in a closure and invoking it later is a bug.
var ErrBuilderSealed = errors.New("reactor: builder used after its run completed")

// ErrReleaseWithoutHold is the panic value for DeferredQueue.Release calls
// that are not paired with a preceding Hold.
var ErrReleaseWithoutHold = errors.New("reactor: Release called without matching Hold")

// ErrNilScheduler is the panic value for constructors called with a nil
// scheduler.
var ErrNilScheduler = errors.New("reactor: nil scheduler")

// ErrNilBody is the panic value for computation constructors called with a
// nil body function.
var ErrNilBody = errors.New("reactor: nil computation body")

// ErrNilCondition is the panic value for NewConditional called with a nil
// gate observable.
var ErrNilCondition = errors.New("reactor: nil condition observable")

// CycleError reports that a single scheduler flush exceeded its maximum
// iteration count. It signals an unbounded reactive loop (work that keeps
// scheduling more work) which the scheduler cannot resolve to a fixed point.
// It is raised as a panic out of the flush, never swallowed.
type CycleError struct {
	// Iterations is the number of passes the flush executed before giving up.
	Iterations int

	// Pending holds the names of computations still scheduled when the
	// flush was aborted.
	Pending []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	if len(e.Pending) == 0 {
		return fmt.Sprintf("reactor: flush exceeded %d iterations, likely reactive cycle", e.Iterations)
	}
	return fmt.Sprintf("reactor: flush exceeded %d iterations, likely reactive cycle through [%s]",
		e.Iterations, strings.Join(e.Pending, ", "))
}
