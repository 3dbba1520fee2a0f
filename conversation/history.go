package conversation

import (
	"sync"
	"time"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
	RoleTool  Role = "tool"
)

// Turn is one entry of the history.
type Turn struct {
	Role Role
	Text string
	// Name is the function name for tool turns.
	Name      string
	Timestamp time.Time
}

// Options configures a History.
type Options struct {
	// MaxTurns bounds the history; the oldest turns are dropped first.
	// Zero keeps everything.
	MaxTurns int
}

// History is a volatile, thread-safe list of turns.
type History struct {
	mu       sync.RWMutex
	turns    []Turn
	maxTurns int
}

// NewHistory constructs an empty history.
func NewHistory(optFns ...func(o *Options)) *History {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	return &History{maxTurns: opts.MaxTurns}
}

// Append adds turns in order. A zero Timestamp is set to the current time.
func (h *History) Append(turns ...Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	for _, t := range turns {
		if t.Timestamp.IsZero() {
			t.Timestamp = now
		}
		h.turns = append(h.turns, t)
	}

	h.trimLocked()
}

// Turns returns a copy of the history, oldest first.
func (h *History) Turns() []Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Turn(nil), h.turns...)
}

// Last returns the most recent turn.
func (h *History) Last() (Turn, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.turns) == 0 {
		return Turn{}, false
	}
	return h.turns[len(h.turns)-1], true
}

// Len returns the number of turns held.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}

// Reset drops every turn.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = nil
}

// trimLocked enforces maxTurns; caller must hold the write lock.
func (h *History) trimLocked() {
	if h.maxTurns <= 0 || len(h.turns) <= h.maxTurns {
		return
	}
	drop := len(h.turns) - h.maxTurns
	h.turns = append(h.turns[:0:0], h.turns[drop:]...)
}
