package speech

import (
	"context"
	"errors"
)

var (
	// ErrNotInitialized is returned when listening starts before Init.
	ErrNotInitialized = errors.New("speech: recognizer not initialized")
	// ErrClosed is returned by any lifecycle call after Close.
	ErrClosed = errors.New("speech: closed")
)

// ResultFunc receives one final transcript.
type ResultFunc func(text string)

// Recognizer is a source of transcripts.
//
// Start begins listening and must return promptly; results are delivered to
// onResult from any goroutine until Stop is called or ctx is done.
type Recognizer interface {
	Init(ctx context.Context) error
	Start(ctx context.Context, onResult ResultFunc) error
	Stop() error
	Close() error
}
