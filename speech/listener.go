package speech

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/litertlm/logging"
)

// State is the lifecycle state of a Listener.
type State int

const (
	StateIdle State = iota
	StateReady
	StateListening
	StateClosed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateListening:
		return "listening"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ListenerOptions configures a Listener.
type ListenerOptions struct {
	// SkipEmpty drops transcripts that are empty after trimming.
	SkipEmpty bool
	Logger    logging.Logger
}

// Listener drives a Recognizer and forwards its transcripts.
type Listener struct {
	mu         sync.Mutex
	recognizer Recognizer
	deliver    ResultFunc
	state      State
	skipEmpty  bool
	logger     logging.Logger
}

// NewListener constructs a Listener forwarding transcripts to deliver.
func NewListener(recognizer Recognizer, deliver ResultFunc, optFns ...func(o *ListenerOptions)) *Listener {
	opts := ListenerOptions{SkipEmpty: true, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Listener{
		recognizer: recognizer,
		deliver:    deliver,
		skipEmpty:  opts.SkipEmpty,
		logger:     logging.OrNoOp(opts.Logger),
	}
}

// State returns the current lifecycle state.
func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Init prepares the recognizer. Calling Init again is a no-op.
func (l *Listener) Init(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateClosed:
		return ErrClosed
	case StateReady, StateListening:
		return nil
	}

	if err := l.recognizer.Init(ctx); err != nil {
		return fmt.Errorf("speech init: %w", err)
	}
	l.state = StateReady
	l.logger.Info("speech.listener.initialized")
	return nil
}

// Start begins listening. Starting while listening is a no-op.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateClosed:
		return ErrClosed
	case StateIdle:
		return ErrNotInitialized
	case StateListening:
		return nil
	}

	if err := l.recognizer.Start(ctx, l.onResult); err != nil {
		return fmt.Errorf("speech start: %w", err)
	}
	l.state = StateListening
	l.logger.Info("speech.listener.started")
	return nil
}

// Stop ends listening. Stopping a listener that is not listening is a no-op.
func (l *Listener) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateClosed:
		return ErrClosed
	case StateIdle, StateReady:
		return nil
	}

	if err := l.recognizer.Stop(); err != nil {
		return fmt.Errorf("speech stop: %w", err)
	}
	l.state = StateReady
	l.logger.Info("speech.listener.stopped")
	return nil
}

// Close stops listening if needed and releases the recognizer. It is
// idempotent.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == StateClosed {
		return nil
	}

	var stopErr error
	if l.state == StateListening {
		stopErr = l.recognizer.Stop()
	}
	closeErr := l.recognizer.Close()
	l.state = StateClosed
	l.logger.Info("speech.listener.closed")

	if stopErr != nil {
		return fmt.Errorf("speech stop: %w", stopErr)
	}
	if closeErr != nil {
		return fmt.Errorf("speech close: %w", closeErr)
	}
	return nil
}

// onResult runs on the recognizer's goroutine and must not take l.mu, since
// Stop holds it while waiting for the recognizer.
func (l *Listener) onResult(text string) {
	if l.skipEmpty && strings.TrimSpace(text) == "" {
		l.logger.Debug("speech.transcript.skipped")
		return
	}
	l.logger.Debug("speech.transcript.received", "chars", len(text))
	if l.deliver != nil {
		l.deliver(text)
	}
}
