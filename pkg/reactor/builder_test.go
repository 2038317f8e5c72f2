package reactor

import "testing"

func TestBuilderSealedAfterRun(t *testing.T) {
	s := NewScheduler()
	count := NewValue(s, 0)

	var escaped *Builder
	NewEffect(s, "leaky", func(b *Builder) {
		escaped = b
	})

	// Using the captured builder after its run must panic
	defer func() {
		if r := recover(); r != ErrBuilderSealed {
			t.Errorf("expected ErrBuilderSealed, got %v", r)
		}
	}()
	Track(escaped, count)
}

func TestBuilderSealedEvenAfterPanickingRun(t *testing.T) {
	s := NewScheduler()

	var escaped *Builder
	NewEffect(s, "failing", func(b *Builder) {
		escaped = b
		panic("body failure")
	})

	defer func() {
		if r := recover(); r != ErrBuilderSealed {
			t.Errorf("expected ErrBuilderSealed, got %v", r)
		}
	}()
	escaped.OnCleanup(func() {})
}

func TestBuilderResourcesReleasedBetweenRuns(t *testing.T) {
	s := NewScheduler()
	gen := NewValue(s, 0)

	var log []string
	NewEffect(s, "resourceful", func(b *Builder) {
		n := Track(b, gen)
		b.Use(&fakeResource{name: "res", log: &log})
		b.OnCleanup(func() { log = append(log, "cleanup") })
		_ = n
	})

	if len(log) != 0 {
		t.Fatalf("expected no teardown after first run, got %v", log)
	}

	// The rerun releases the previous run's resources first:
	// cleanups before owned children.
	gen.Set(1)
	if len(log) != 2 || log[0] != "cleanup" || log[1] != "res" {
		t.Errorf("expected [cleanup res] before rerun, got %v", log)
	}
}

func TestBuilderNestedEffectDisposedWithParent(t *testing.T) {
	s := NewScheduler()
	outer := NewValue(s, 0)
	inner := NewValue(s, 0)

	innerRuns := 0
	parent := NewEffect(s, "parent", func(b *Builder) {
		_ = Track(b, outer)
		b.CreateEffect("child", func(cb *Builder) {
			innerRuns++
			_ = Track(cb, inner)
		})
	})

	if innerRuns != 1 {
		t.Fatalf("expected nested effect to run once, got %d", innerRuns)
	}

	inner.Set(1)
	if innerRuns != 2 {
		t.Errorf("expected nested rerun, got %d", innerRuns)
	}

	parent.Dispose()
	inner.Set(2)
	if innerRuns != 2 {
		t.Errorf("expected no nested runs after parent disposal, got %d", innerRuns)
	}
}

func TestBuilderNestedComputed(t *testing.T) {
	s := NewScheduler()
	n := NewValue(s, 2)

	var squared *Computed[int]
	NewEffect(s, "host", func(b *Builder) {
		squared = CreateComputed(b, "squared", func(cb *Builder) int {
			v := Track(cb, n)
			return v * v
		})
	})

	if squared.Current() != 4 {
		t.Errorf("expected 4, got %d", squared.Current())
	}
	n.Set(3)
	if squared.Current() != 9 {
		t.Errorf("expected 9 after update, got %d", squared.Current())
	}
}

func TestBuilderAccessors(t *testing.T) {
	s := NewScheduler()

	NewEffect(s, "introspect", func(b *Builder) {
		if b.Scheduler() != s {
			t.Error("expected builder scheduler to match")
		}
		if b.Owner() == nil {
			t.Error("expected non-nil owner")
		}
	})
}
