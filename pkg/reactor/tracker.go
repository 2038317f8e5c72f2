package reactor

// depEntry pairs a dependency with its subscription handle and the version
// snapshot taken after the last successful run. The snapshot backs the
// dirty-check short-circuit without reflecting on the dependency's value.
type depEntry struct {
	src  Source
	sub  *Subscription
	seen uint64
}

// depTracker is the per-computation record of static and dynamically
// discovered dependencies.
//
// Static dependencies are fixed at construction and never re-evaluated.
// Dynamic dependencies are reconciled positionally each run: the dependency
// at cursor position i of run N+1 is compared against position i of run N;
// unchanged entries keep their subscription, changed ones are resubscribed,
// and trailing surplus entries from the previous run are disposed.
type depTracker struct {
	node *Computation

	static  []*depEntry
	dynamic []*depEntry

	// cursor is the position of the next dynamic dependency within the
	// current run.
	cursor int

	// tracking is true while a run's dynamic bracket is open.
	tracking bool

	// dirty is set by any dependency's change callback, by explicit
	// scheduling, and by construction (so the first run always executes).
	dirty bool

	// resubscribed counts dynamic positions replaced or added this run.
	resubscribed int

	// dropped counts trailing entries disposed this run.
	dropped int
}

func newDepTracker(node *Computation) *depTracker {
	return &depTracker{node: node, dirty: true}
}

// markDirty is the change callback attached to every dependency
// subscription: it marks the tracker dirty and asks the owning node to
// schedule itself. This is the mechanism by which state changes propagate
// into scheduling.
func (t *depTracker) markDirty() {
	t.dirty = true
	t.node.ScheduleExecution()
}

// addStatic subscribes to a dependency once, at construction.
func (t *depTracker) addStatic(src Source) {
	if src == nil {
		return
	}
	entry := &depEntry{src: src, seen: src.snapshot()}
	entry.sub = src.observe(func(any) { t.markDirty() })
	t.static = append(t.static, entry)
}

// beginDynamic opens the dynamic-tracking bracket for one run, resetting
// the position cursor.
func (t *depTracker) beginDynamic() {
	t.cursor = 0
	t.tracking = true
	t.resubscribed = 0
	t.dropped = 0
}

// addDynamic enrolls the observable read at the current cursor position.
// If the same source sat at this position last run, its subscription is
// kept; otherwise the old subscription is disposed and a new one created.
func (t *depTracker) addDynamic(src Source) {
	if src == nil || !t.tracking {
		return
	}

	if t.cursor < len(t.dynamic) {
		entry := t.dynamic[t.cursor]
		if entry.src.sourceID() == src.sourceID() {
			t.cursor++
			return
		}
		entry.sub.Dispose()
		entry.src = src
		entry.sub = src.observe(func(any) { t.markDirty() })
		entry.seen = src.snapshot()
		t.resubscribed++
		t.cursor++
		return
	}

	entry := &depEntry{src: src, seen: src.snapshot()}
	entry.sub = src.observe(func(any) { t.markDirty() })
	t.dynamic = append(t.dynamic, entry)
	t.resubscribed++
	t.cursor++
}

// endDynamic closes the bracket, disposing any dependencies left over
// beyond the new cursor position (the list shrank).
func (t *depTracker) endDynamic() {
	for i := t.cursor; i < len(t.dynamic); i++ {
		t.dynamic[i].sub.Dispose()
		t.dropped++
	}
	t.dynamic = t.dynamic[:t.cursor]
	t.tracking = false
}

// hasDirtyDependencies reports whether the node needs to run: the explicit
// dirty flag first, and only if clean, a comparison of each static
// dependency's version snapshot against its live version. The fallback
// covers mutations that never traversed this tracker's subscriptions.
func (t *depTracker) hasDirtyDependencies() bool {
	if t.dirty {
		return true
	}
	for _, e := range t.static {
		if e.src.changedSince(e.seen) {
			return true
		}
	}
	return false
}

// consumeDirty clears the explicit dirty flag at the start of a run.
// Dirtiness arriving during the run (a nested batch delivering emissions)
// re-sets the flag and survives the run.
func (t *depTracker) consumeDirty() {
	t.dirty = false
}

// updateLastKnownValues refreshes every dependency's version snapshot after
// a run.
func (t *depTracker) updateLastKnownValues() {
	for _, e := range t.static {
		e.seen = e.src.snapshot()
	}
	for _, e := range t.dynamic {
		e.seen = e.src.snapshot()
	}
}

// stats summarizes the reconciliation performed by the last run.
func (t *depTracker) stats() TrackerStats {
	return TrackerStats{
		Computation:  t.node.name,
		Static:       len(t.static),
		Dynamic:      len(t.dynamic),
		Resubscribed: t.resubscribed,
		Dropped:      t.dropped,
	}
}

// dispose unsubscribes every dependency. Called when the owning node is
// disposed.
func (t *depTracker) dispose() {
	for _, e := range t.static {
		e.sub.Dispose()
	}
	t.static = nil
	for _, e := range t.dynamic {
		e.sub.Dispose()
	}
	t.dynamic = nil
	t.tracking = false
}
