package handler

import "sync"

// Slot holds at most one handler of type H. The zero value is an empty,
// ready to use slot. A Slot is safe for concurrent use.
type Slot[H any] struct {
	mu      sync.RWMutex
	handler H
	bound   bool
}

// Register installs h, replacing any previous handler. It reports whether a
// handler was replaced.
func (s *Slot[H]) Register(h H) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := s.bound
	s.handler = h
	s.bound = true

	return replaced
}

// Unregister empties the slot and reports whether a handler was removed.
func (s *Slot[H]) Unregister() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.bound
	var zero H
	s.handler = zero
	s.bound = false

	return removed
}

// Bound reports whether a handler is installed.
func (s *Slot[H]) Bound() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bound
}

// Load returns the installed handler, if any.
func (s *Slot[H]) Load() (H, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handler, s.bound
}
