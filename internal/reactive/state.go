// Package reactive provides observable values and effects with explicit
// teardown.
//
// State[T] wraps a value and notifies bindings when it changes. Effect runs a
// setup function and keeps the cleanup it returns until the next run or Stop.
//
//	count := reactive.NewState(0)
//	unbind := count.Bind(func(v int) { fmt.Println("count", v) })
//	count.Set(1)
//	unbind()
package reactive

import "sync"

// State wraps a value and notifies bindings when it changes.
type State[T any] struct {
	// notify serializes writers with their notifications, so bindings see
	// values in the order they were stored.
	notify   sync.Mutex
	mu       sync.RWMutex
	value    T
	bindings []*binding[T]
}

type binding[T any] struct {
	fn     func(T)
	active bool
}

// Unbind removes a binding. Calling it more than once is harmless.
type Unbind func()

// NewState creates a new state with the given initial value.
func NewState[T any](initial T) *State[T] {
	return &State[T]{value: initial}
}

// Get returns the current value.
func (s *State[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the value and notifies all active bindings in registration
// order. Bindings run outside the value lock and may call Get, but must not
// Set or Update the same state.
func (s *State[T]) Set(v T) {
	s.Update(func(T) T { return v })
}

// Update applies fn to the current value and stores the result as one step;
// concurrent updates are never lost.
func (s *State[T]) Update(fn func(T) T) {
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	v := fn(s.value)
	s.value = v
	active := make([]*binding[T], 0, len(s.bindings))
	for _, b := range s.bindings {
		if b.active {
			active = append(active, b)
		}
	}
	s.bindings = active
	s.mu.Unlock()

	for _, b := range active {
		s.mu.RLock()
		live := b.active
		s.mu.RUnlock()
		if live {
			b.fn(v)
		}
	}
}

// Bind registers fn to be called with every new value.
func (s *State[T]) Bind(fn func(T)) Unbind {
	s.mu.Lock()
	b := &binding[T]{fn: fn, active: true}
	s.bindings = append(s.bindings, b)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		b.active = false
		s.mu.Unlock()
	}
}

// Bindings returns the number of active bindings.
func (s *State[T]) Bindings() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, b := range s.bindings {
		if b.active {
			n++
		}
	}
	return n
}
