// Package reactor provides a fine-grained reactive computation engine.
//
// Mutable state containers (Value, Stream) automatically notify derived
// computations and side-effects (Computed, Effect, Conditional), which
// re-execute only when their actual dependencies change. Dependencies are
// discovered at runtime: reading a value through a Builder during a
// computation's run subscribes the computation to that value's changes.
//
// # Core Types
//
// Value[T] is a reactive state container:
//
//	sched := reactor.NewScheduler()
//	count := reactor.NewValue(sched, 0)
//	count.Set(5)              // notifies subscribers if the value changed
//	n := count.Current()      // plain read, no subscription
//
// Computed[T] is a memoized derivation:
//
//	doubled := reactor.NewComputed(sched, "doubled", func(b *reactor.Builder) int {
//	    return reactor.Track(b, count) * 2
//	})
//
// Effect runs side effects when dependencies change:
//
//	reactor.NewEffect(sched, "log", func(b *reactor.Builder) {
//	    fmt.Println("count is", reactor.Track(b, count))
//	})
//
// # Scheduling
//
// Every emission and every flush request passes through one deferred
// execution queue. ExecuteBatch holds the queue so that many mutations
// collapse into a single flush:
//
//	sched.ExecuteBatch(func() {
//	    first.Set("John")
//	    last.Set("Doe")
//	})  // dependents run once, with the final values
//
// Within a flush, computations execute deepest-in-hierarchy first. A flush
// that keeps scheduling new work beyond the configured maximum iteration
// count panics with *CycleError.
//
// # Ownership
//
// Every computation is a resource node: nested computations, subscriptions
// and cleanup callbacks created through its Builder are owned by it and are
// disposed when it is disposed or before it re-runs. Disposal is idempotent
// and cascades.
//
// # Execution Model
//
// The engine is single-threaded, cooperative and fully synchronous. It
// performs no internal locking; it must be driven from one logical thread
// (for example one simulation tick loop). Concurrent use from multiple
// goroutines is undefined behavior and must be excluded by the caller.
package reactor
