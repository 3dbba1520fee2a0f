package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrTimeout is returned when a bounded wait expires before a result arrives.
var ErrTimeout = errors.New("bridge: timed out waiting for result")

// Future is a value that becomes available exactly once.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// NewFuture creates an unresolved future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolve sets the result. Only the first call has an effect; it reports
// whether this call resolved the future.
func (f *Future[T]) Resolve(v T, err error) bool {
	resolved := false
	f.once.Do(func() {
		f.value = v
		f.err = err
		close(f.done)
		resolved = true
	})
	return resolved
}

// Done is closed once the future is resolved.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the future is resolved, ctx is done or timeout elapses.
// A timeout <= 0 waits on ctx alone. On timeout ErrTimeout is returned; on
// cancellation the context error is returned.
func (f *Future[T]) Await(ctx context.Context, timeout time.Duration) (T, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-f.done:
		return f.value, f.err
	case <-expired:
		var zero T
		return zero, ErrTimeout
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Go runs fn on a new goroutine and returns a future for its result. A
// panic in fn resolves the future with an error.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := NewFuture[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.Resolve(zero, fmt.Errorf("bridge: recovered panic: %v", r))
			}
		}()
		v, err := fn(ctx)
		f.Resolve(v, err)
	}()
	return f
}

// CallWithTimeout runs fn and waits at most timeout for it. When the wait
// fails or fn returns an error, fallback is returned together with the
// error. fn receives a context that is cancelled once the wait is over.
func CallWithTimeout[T any](ctx context.Context, timeout time.Duration, fallback T, fn func(ctx context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	v, err := Go(callCtx, fn).Await(ctx, timeout)
	if err != nil {
		return fallback, err
	}
	return v, nil
}
