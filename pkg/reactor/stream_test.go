package reactor

import "testing"

func TestStreamFanOut(t *testing.T) {
	s := NewScheduler()
	events := NewStream[string](s)

	var a, b []string
	events.Subscribe(func(v string) { a = append(a, v) })
	events.Subscribe(func(v string) { b = append(b, v) })

	events.Emit("one")
	events.Emit("two")

	for name, got := range map[string][]string{"a": a, "b": b} {
		if len(got) != 2 || got[0] != "one" || got[1] != "two" {
			t.Errorf("subscriber %s: expected [one two], got %v", name, got)
		}
	}
}

func TestStreamDeliversDuplicates(t *testing.T) {
	s := NewScheduler()
	events := NewStream[int](s)

	notifications := 0
	events.Subscribe(func(int) { notifications++ })

	// Streams have no equality suppression: every emission is delivered
	events.Emit(7)
	events.Emit(7)
	if notifications != 2 {
		t.Errorf("expected 2 notifications for duplicate emissions, got %d", notifications)
	}
}

func TestStreamReentrantEmitKeepsFIFO(t *testing.T) {
	s := NewScheduler()
	events := NewStream[int](s)

	var got []int
	events.Subscribe(func(n int) {
		got = append(got, n)
		if n == 1 {
			events.Emit(2)
		}
	})

	events.Emit(1)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected in-order delivery [1 2], got %v", got)
	}
}

func TestStreamUnsubscribe(t *testing.T) {
	s := NewScheduler()
	events := NewStream[int](s)

	notifications := 0
	sub := events.Subscribe(func(int) { notifications++ })

	events.Emit(1)
	events.Unsubscribe(sub)
	events.Emit(2)

	if notifications != 1 {
		t.Errorf("expected 1 notification after unsubscribe, got %d", notifications)
	}
}

func TestStreamTriggersTrackingComputation(t *testing.T) {
	s := NewScheduler()
	events := NewStream[int](s)

	runs := 0
	NewEffect(s, "listener", func(b *Builder) {
		runs++
		TrackSource(b, events)
	})

	if runs != 1 {
		t.Fatalf("expected initial run, got %d", runs)
	}

	// Every emission re-runs the tracking computation, even duplicates
	events.Emit(1)
	events.Emit(1)
	if runs != 3 {
		t.Errorf("expected 3 runs after two emissions, got %d", runs)
	}
}
