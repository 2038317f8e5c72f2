package reactor

import "testing"

func TestQueueRunsImmediatelyWhenIdle(t *testing.T) {
	q := NewDeferredQueue()
	ran := false

	q.Schedule(func() { ran = true })
	if !ran {
		t.Error("expected action to run immediately on idle queue")
	}
	if q.Len() != 0 {
		t.Errorf("expected empty queue, got %d actions", q.Len())
	}
}

func TestQueueHoldDefersActions(t *testing.T) {
	q := NewDeferredQueue()
	var order []int

	q.Hold()
	q.Schedule(func() { order = append(order, 1) })
	q.Schedule(func() { order = append(order, 2) })
	q.Schedule(func() { order = append(order, 3) })

	if len(order) != 0 {
		t.Errorf("expected no actions to run while held, got %d", len(order))
	}
	if q.Len() != 3 {
		t.Errorf("expected 3 deferred actions, got %d", q.Len())
	}

	q.Release()
	if len(order) != 3 {
		t.Fatalf("expected 3 actions after release, got %d", len(order))
	}
	// FIFO order
	for i, v := range order {
		if v != i+1 {
			t.Errorf("expected action %d at position %d, got %d", i+1, i, v)
		}
	}
}

func TestQueueNestedHolds(t *testing.T) {
	q := NewDeferredQueue()
	ran := false

	q.Hold()
	q.Hold()
	q.Schedule(func() { ran = true })

	q.Release()
	if ran {
		t.Error("inner release should not drain while outer hold remains")
	}
	if !q.Held() {
		t.Error("expected queue to still be held")
	}

	q.Release()
	if !ran {
		t.Error("expected action to run when last hold released")
	}
	if q.Held() {
		t.Error("expected queue to be unheld")
	}
}

func TestQueueReleaseWithoutHoldPanics(t *testing.T) {
	q := NewDeferredQueue()

	defer func() {
		if r := recover(); r != ErrReleaseWithoutHold {
			t.Errorf("expected ErrReleaseWithoutHold, got %v", r)
		}
	}()
	q.Release()
}

func TestQueueDrainsIterativelyNotRecursively(t *testing.T) {
	q := NewDeferredQueue()
	var order []int

	// An action scheduling further actions must not recurse: the new
	// actions run in the same drain, after everything already queued.
	q.Hold()
	q.Schedule(func() {
		order = append(order, 1)
		q.Schedule(func() { order = append(order, 3) })
	})
	q.Schedule(func() { order = append(order, 2) })
	q.Release()

	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("expected %d actions, got %d", len(want), len(order))
	}
	for i, v := range want {
		if order[i] != v {
			t.Errorf("position %d: expected %d, got %d", i, v, order[i])
		}
	}
}

func TestQueueHoldDuringDrainPausesIt(t *testing.T) {
	q := NewDeferredQueue()
	var order []int

	q.Hold()
	q.Schedule(func() {
		order = append(order, 1)
		q.Hold()
	})
	q.Schedule(func() { order = append(order, 2) })
	q.Release()

	if len(order) != 1 {
		t.Fatalf("expected drain to pause after re-hold, got %d actions", len(order))
	}

	q.Release()
	if len(order) != 2 || order[1] != 2 {
		t.Errorf("expected remaining action to run on release, got %v", order)
	}
}

func TestQueueIgnoresNilActions(t *testing.T) {
	q := NewDeferredQueue()
	q.Schedule(nil)
	if q.Len() != 0 {
		t.Errorf("expected nil action to be ignored, got %d queued", q.Len())
	}
}
