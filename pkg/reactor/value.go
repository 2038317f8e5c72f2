package reactor

import "reflect"

// Value is a stateful reactive container. Setting it notifies subscribers
// only when the new value differs from the current one under the configured
// equality comparer; equal writes are a complete no-op.
//
// Reading through Current never subscribes. To read reactively inside a
// computation body, use Track with the run's Builder.
type Value[T any] struct {
	observableBase

	// value is the current value.
	value T

	// equal is the equality comparer used to suppress no-op writes.
	// If nil, defaultEquals is used.
	equal func(T, T) bool
}

// NewValue creates a stateful container bound to the scheduler's deferred
// queue, holding the given initial value.
func NewValue[T any](s *Scheduler, initial T) *Value[T] {
	if s == nil {
		panic(ErrNilScheduler)
	}
	return &Value[T]{
		observableBase: observableBase{id: nextID(), queue: s.queue},
		value:          initial,
	}
}

// WithEquals returns the value configured with a custom equality comparer.
// Useful for types where reflect.DeepEqual is too expensive or has the
// wrong semantics.
func (v *Value[T]) WithEquals(fn func(T, T) bool) *Value[T] {
	v.equal = fn
	return v
}

// Current returns the current value without subscribing.
func (v *Value[T]) Current() T {
	return v.value
}

// Set updates the value. If the new value equals the current one under the
// comparer, nothing happens and no subscriber is notified. Otherwise the
// value is applied immediately and an emission is coalesced through the
// engine's deferred queue.
func (v *Value[T]) Set(next T) {
	if v.equals(v.value, next) {
		return
	}
	v.value = next
	v.emit(next)
}

// Update applies fn to the current value and sets the result.
func (v *Value[T]) Update(fn func(T) T) {
	v.Set(fn(v.value))
}

// Subscribe registers a callback invoked with every accepted new value,
// in subscription order. The returned handle removes the callback when
// disposed.
func (v *Value[T]) Subscribe(fn func(T)) *Subscription {
	return v.subscribe(func(raw any) { fn(raw.(T)) })
}

// Unsubscribe removes a previously returned subscription handle.
// Equivalent to sub.Dispose.
func (v *Value[T]) Unsubscribe(sub *Subscription) {
	sub.Dispose()
}

// ID returns the value's unique identity.
func (v *Value[T]) ID() uint64 {
	return v.sourceID()
}

// equals applies the configured comparer, falling back to defaultEquals.
func (v *Value[T]) equals(a, b T) bool {
	if v.equal != nil {
		return v.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals provides type-appropriate equality checking.
// Uses == for the common comparable kinds and reflect.DeepEqual for others.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int8:
		return av == any(b).(int8)
	case int16:
		return av == any(b).(int16)
	case int32:
		return av == any(b).(int32)
	case int64:
		return av == any(b).(int64)
	case uint:
		return av == any(b).(uint)
	case uint8:
		return av == any(b).(uint8)
	case uint16:
		return av == any(b).(uint16)
	case uint32:
		return av == any(b).(uint32)
	case uint64:
		return av == any(b).(uint64)
	case float32:
		return av == any(b).(float32)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}
