package reactor

// Stream is a stateless event stream: it holds no current value, it only
// fans emitted values out to subscribers. Emissions are coalesced through
// the engine's deferred queue and delivered in FIFO order.
type Stream[T any] struct {
	observableBase
}

// NewStream creates an event stream bound to the scheduler's deferred queue.
func NewStream[T any](s *Scheduler) *Stream[T] {
	if s == nil {
		panic(ErrNilScheduler)
	}
	return &Stream[T]{
		observableBase: observableBase{id: nextID(), queue: s.queue},
	}
}

// Emit publishes a value to all current subscribers. A reentrant Emit from
// inside a notification callback enqueues the value and returns; the
// in-progress flush delivers it in order instead of recursing.
func (st *Stream[T]) Emit(v T) {
	st.emit(v)
}

// Subscribe registers a callback invoked with every emitted value, in
// subscription order.
func (st *Stream[T]) Subscribe(fn func(T)) *Subscription {
	return st.subscribe(func(raw any) { fn(raw.(T)) })
}

// Unsubscribe removes a previously returned subscription handle.
// Equivalent to sub.Dispose.
func (st *Stream[T]) Unsubscribe(sub *Subscription) {
	sub.Dispose()
}

// ID returns the stream's unique identity.
func (st *Stream[T]) ID() uint64 {
	return st.sourceID()
}
