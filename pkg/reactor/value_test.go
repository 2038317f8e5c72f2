package reactor

import "testing"

func TestValueBasic(t *testing.T) {
	s := NewScheduler()
	count := NewValue(s, 0)

	// Initial value
	if count.Current() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Current())
	}

	// Set value
	count.Set(5)
	if count.Current() != 5 {
		t.Errorf("expected value 5, got %d", count.Current())
	}

	// Update value
	count.Update(func(n int) int { return n * 2 })
	if count.Current() != 10 {
		t.Errorf("expected value 10, got %d", count.Current())
	}
}

func TestValueNotifiesSubscribers(t *testing.T) {
	s := NewScheduler()
	count := NewValue(s, 0)

	var got []int
	count.Subscribe(func(n int) { got = append(got, n) })

	count.Set(1)
	count.Set(2)

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected notifications [1 2], got %v", got)
	}
}

func TestValueSuppressesEqualWrites(t *testing.T) {
	s := NewScheduler()
	count := NewValue(s, 1)

	notifications := 0
	count.Subscribe(func(int) { notifications++ })

	// Same value should not notify
	count.Set(1)
	if notifications != 0 {
		t.Errorf("same value should not notify, got %d notifications", notifications)
	}

	// Different value should notify
	count.Set(2)
	if notifications != 1 {
		t.Errorf("expected 1 notification, got %d", notifications)
	}
}

func TestValueCustomEquals(t *testing.T) {
	s := NewScheduler()

	// Compare case-insensitively
	name := NewValue(s, "go").WithEquals(func(a, b string) bool {
		return len(a) == len(b)
	})

	notifications := 0
	name.Subscribe(func(string) { notifications++ })

	// Equal under the custom comparer
	name.Set("GO")
	if notifications != 0 {
		t.Errorf("custom-equal value should not notify, got %d", notifications)
	}

	name.Set("gopher")
	if notifications != 1 {
		t.Errorf("expected 1 notification, got %d", notifications)
	}
}

func TestValueDeepEqualForSlices(t *testing.T) {
	s := NewScheduler()
	items := NewValue(s, []int{1, 2})

	notifications := 0
	items.Subscribe(func([]int) { notifications++ })

	// Deep-equal slice should not notify
	items.Set([]int{1, 2})
	if notifications != 0 {
		t.Errorf("deep-equal slice should not notify, got %d", notifications)
	}

	items.Set([]int{1, 2, 3})
	if notifications != 1 {
		t.Errorf("expected 1 notification, got %d", notifications)
	}
}

func TestValueSubscriptionOrder(t *testing.T) {
	s := NewScheduler()
	count := NewValue(s, 0)

	var order []string
	count.Subscribe(func(int) { order = append(order, "first") })
	count.Subscribe(func(int) { order = append(order, "second") })
	count.Subscribe(func(int) { order = append(order, "third") })

	count.Set(1)
	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("expected %d notifications, got %d", len(want), len(order))
	}
	for i, w := range want {
		if order[i] != w {
			t.Errorf("position %d: expected %s, got %s", i, w, order[i])
		}
	}
}

func TestValueUnsubscribe(t *testing.T) {
	s := NewScheduler()
	count := NewValue(s, 0)

	notifications := 0
	sub := count.Subscribe(func(int) { notifications++ })

	count.Set(1)
	count.Unsubscribe(sub)
	count.Set(2)

	if notifications != 1 {
		t.Errorf("expected 1 notification after unsubscribe, got %d", notifications)
	}
	if !sub.IsDisposed() {
		t.Error("expected subscription to report disposed")
	}

	// Disposing twice is a no-op
	sub.Dispose()
}

func TestValueUnsubscribeDuringNotification(t *testing.T) {
	s := NewScheduler()
	count := NewValue(s, 0)

	var sub2 *Subscription
	sub2Calls := 0

	count.Subscribe(func(int) { sub2.Dispose() })
	sub2 = count.Subscribe(func(int) { sub2Calls++ })

	// sub2 is disposed by the first subscriber before its turn comes
	count.Set(1)
	if sub2Calls != 0 {
		t.Errorf("subscriber disposed mid-pass should be skipped, got %d calls", sub2Calls)
	}
}

func TestValueReentrantSetDeliversInOrder(t *testing.T) {
	s := NewScheduler()
	count := NewValue(s, 0)

	var got []int
	count.Subscribe(func(n int) {
		got = append(got, n)
		if n == 1 {
			// Reentrant write: delivered after the current event, not
			// recursively inside it.
			count.Set(2)
		}
	})

	count.Set(1)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected in-order delivery [1 2], got %v", got)
	}
	if count.Current() != 2 {
		t.Errorf("expected final value 2, got %d", count.Current())
	}
}

func TestValueHeldQueueCoalescesDelivery(t *testing.T) {
	s := NewScheduler()
	count := NewValue(s, 0)

	var got []int
	count.Subscribe(func(n int) { got = append(got, n) })

	s.Queue().Hold()
	count.Set(1)
	count.Set(2)

	// Values apply immediately even while delivery is deferred
	if count.Current() != 2 {
		t.Errorf("expected current value 2 while held, got %d", count.Current())
	}
	if len(got) != 0 {
		t.Errorf("expected no delivery while held, got %v", got)
	}

	s.Queue().Release()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected delivery [1 2] after release, got %v", got)
	}
}

func TestValueNilSchedulerPanics(t *testing.T) {
	defer func() {
		if r := recover(); r != ErrNilScheduler {
			t.Errorf("expected ErrNilScheduler, got %v", r)
		}
	}()
	NewValue[int](nil, 0)
}
