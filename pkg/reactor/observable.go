package reactor

// Source is the type-erased contract every observable satisfies. The
// dependency tracker uses it to subscribe change callbacks and to take the
// version snapshots that back the dirty-check short-circuit, without any
// reflection on the observable's value type.
type Source interface {
	// observe subscribes a type-erased change callback.
	observe(fn func(any)) *Subscription

	// snapshot returns the observable's current version. The version
	// increases by one for every accepted mutation or emission.
	snapshot() uint64

	// changedSince reports whether the observable mutated since the given
	// version snapshot was taken.
	changedSince(version uint64) bool

	// sourceID returns the observable's unique identity.
	sourceID() uint64
}

// Readable is a Source with a typed current value: Value[T] and Computed[T]
// both satisfy it, so either can be read through Builder.Track.
type Readable[T any] interface {
	Source

	// Current returns the current value without subscribing.
	Current() T
}

// subscriber is one entry in an observable's subscriber list.
type subscriber struct {
	id       uint64
	fn       func(any)
	disposed bool
}

// Subscription is the handle returned by Subscribe. Disposing it removes
// the callback from the observable's subscriber list. Dispose is idempotent
// and safe to call from within a notification pass: the in-progress pass
// iterates a snapshot, and a subscriber disposed mid-pass is skipped when
// its turn comes.
type Subscription struct {
	base *observableBase
	sub  *subscriber
}

// Dispose removes the subscription. Further emissions will not invoke the
// callback.
func (s *Subscription) Dispose() {
	if s == nil || s.sub == nil || s.sub.disposed {
		return
	}
	s.sub.disposed = true
	s.base.remove(s.sub)
}

// IsDisposed reports whether the subscription has been disposed.
func (s *Subscription) IsDisposed() bool {
	return s == nil || s.sub == nil || s.sub.disposed
}

// observableBase provides type-erased subscriber management and emission
// coalescing. It is embedded in Value[T] and Stream[T] to share the
// notification logic.
type observableBase struct {
	id uint64

	// queue is the engine's deferred execution queue; every emission flush
	// is scheduled through it.
	queue *DeferredQueue

	// subs are the callbacks subscribed to this observable, in insertion
	// order. Insertion order is notification order.
	subs []*subscriber

	// events holds emitted values awaiting delivery, in FIFO order.
	events []any

	// emitting guards against reentrant flushes from the same instance.
	// A reentrant emit appends to events and returns; the in-progress
	// flush picks the value up.
	emitting bool

	// flushQueued dedups flush requests on the deferred queue.
	flushQueued bool

	// version increases by one per accepted mutation. Dependency trackers
	// compare snapshots of it to detect out-of-band changes.
	version uint64
}

// subscribe appends a callback to the subscriber list.
func (b *observableBase) subscribe(fn func(any)) *Subscription {
	sub := &subscriber{id: nextID(), fn: fn}
	b.subs = append(b.subs, sub)
	return &Subscription{base: b, sub: sub}
}

// remove deletes a subscriber from the list, preserving order.
func (b *observableBase) remove(sub *subscriber) {
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// emit records a value and schedules a flush through the deferred queue.
// When the queue is idle the flush (and therefore subscriber notification)
// happens synchronously before emit returns; while the queue is held or
// draining, delivery is deferred and coalesced.
func (b *observableBase) emit(v any) {
	b.version++
	b.events = append(b.events, v)
	if b.emitting || b.flushQueued {
		return
	}
	b.flushQueued = true
	b.queue.Schedule(b.flush)
}

// flush drains all queued values in FIFO order, iterating a snapshot of the
// current subscribers so that unsubscriptions during notification cannot
// corrupt the in-progress pass. Each subscriber sees each value at most
// once.
func (b *observableBase) flush() {
	b.flushQueued = false
	if b.emitting {
		return
	}
	b.emitting = true
	defer func() { b.emitting = false }()

	for len(b.events) > 0 {
		v := b.events[0]
		b.events = b.events[1:]

		snapshot := make([]*subscriber, len(b.subs))
		copy(snapshot, b.subs)
		for _, s := range snapshot {
			if s.disposed {
				continue
			}
			s.fn(v)
		}
	}
}

// Source implementation shared by embedders.

func (b *observableBase) observe(fn func(any)) *Subscription { return b.subscribe(fn) }
func (b *observableBase) snapshot() uint64                   { return b.version }
func (b *observableBase) changedSince(version uint64) bool   { return b.version != version }
func (b *observableBase) sourceID() uint64                   { return b.id }
