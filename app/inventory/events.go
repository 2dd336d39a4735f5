package inventory

import "sync"

// OneShotEvent delivers a value exactly once. Setting replaces any pending
// value; consuming clears it, so a later consumer sees nothing. This is
// deliberately not a persistent observable: re-reading after consumption
// must not redeliver.
type OneShotEvent[T any] struct {
	mu      sync.Mutex
	value   T
	pending bool
}

func (e *OneShotEvent[T]) Set(v T) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.value = v
	e.pending = true
}

func (e *OneShotEvent[T]) Consume() (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.pending {
		var zero T
		return zero, false
	}
	v := e.value
	var zero T
	e.value = zero
	e.pending = false
	return v, true
}
