package reactor

// DeferredQueue is a hold/release gated FIFO of actions. It either runs a
// scheduled action immediately or defers it until the queue is released.
// Every emission flush and every scheduler flush request passes through one
// such queue, which is what makes Scheduler.ExecuteBatch an effective way to
// collapse many mutations into a single flush.
//
// The queue drains iteratively, never recursively: actions scheduled while
// a drain is in progress are appended and processed within the same drain
// pass instead of growing the call stack.
type DeferredQueue struct {
	// holds counts outstanding Hold calls. While positive, scheduled
	// actions accumulate instead of running.
	holds int

	// draining guards against reentrant drains from the same queue.
	draining bool

	// actions is the FIFO of deferred actions.
	actions []func()
}

// NewDeferredQueue creates an empty, unheld queue.
func NewDeferredQueue() *DeferredQueue {
	return &DeferredQueue{}
}

// Hold gates the queue: actions scheduled after Hold accumulate until the
// matching Release. Holds nest; the queue drains when the count returns
// to zero.
func (q *DeferredQueue) Hold() {
	q.holds++
}

// Release undoes one Hold. When the last hold is released the queue drains
// synchronously. Release without a matching Hold panics with
// ErrReleaseWithoutHold.
func (q *DeferredQueue) Release() {
	if q.holds == 0 {
		panic(ErrReleaseWithoutHold)
	}
	q.holds--
	if q.holds == 0 {
		q.drain()
	}
}

// Held reports whether the queue is currently gated.
func (q *DeferredQueue) Held() bool {
	return q.holds > 0
}

// Len returns the number of actions currently deferred.
func (q *DeferredQueue) Len() int {
	return len(q.actions)
}

// Schedule enqueues an action. If the queue is not held and not already
// draining, the queue drains immediately, running this action (and anything
// queued before it) before Schedule returns.
func (q *DeferredQueue) Schedule(fn func()) {
	if fn == nil {
		return
	}
	q.actions = append(q.actions, fn)
	if q.holds == 0 {
		q.drain()
	}
}

// drain runs queued actions in FIFO order until the queue is empty or a
// hold is taken. Reentrant calls (an action scheduling further actions)
// return immediately; the outer loop picks the new actions up.
func (q *DeferredQueue) drain() {
	if q.draining {
		return
	}
	q.draining = true
	defer func() { q.draining = false }()

	q.runPending()
}

// runPending executes currently queued actions even when called from within
// an in-progress drain. The scheduler uses this between flush passes so
// that emissions produced by one pass reach their subscribers (and schedule
// dependent computations) before the next pass is selected.
func (q *DeferredQueue) runPending() {
	for len(q.actions) > 0 && q.holds == 0 {
		fn := q.actions[0]
		q.actions = q.actions[1:]
		fn()
	}
}
