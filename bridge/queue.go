package bridge

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/litertlm/logging"
)

// ErrQueueClosed is returned when posting to a closed queue.
var ErrQueueClosed = errors.New("bridge: queue closed")

// QueueOptions configures a Queue.
type QueueOptions struct {
	// Name labels log output.
	Name   string
	Logger logging.Logger
}

// Queue runs posted tasks one at a time, in order, on a single goroutine.
// Tasks may post further tasks. A panicking task is recovered and logged.
type Queue struct {
	name   string
	logger logging.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending []func()
	closed  bool

	worker  atomic.Uint64
	stopped chan struct{}
}

// NewQueue starts a queue worker.
func NewQueue(optFns ...func(o *QueueOptions)) *Queue {
	opts := QueueOptions{Name: "main", Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	q := &Queue{
		name:    opts.Name,
		logger:  logging.OrNoOp(opts.Logger),
		stopped: make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)

	go q.run()

	return q
}

// Post schedules fn. It returns ErrQueueClosed once Close has been called.
func (q *Queue) Post(fn func()) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	q.pending = append(q.pending, fn)
	q.cond.Signal()

	return nil
}

// Close stops accepting tasks and lets the worker run the ones already
// pending. Called from outside the queue it waits for the worker to exit.
// Called from a task it returns at once; the worker exits once that task
// and the remaining pending ones are done. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()

	if q.OnWorker() {
		q.logger.Debug("bridge.queue.close_from_task", "queue", q.name)
		return
	}
	<-q.stopped
}

// OnWorker reports whether the caller is running on the queue's worker,
// that is from inside a task.
func (q *Queue) OnWorker() bool {
	id := goroutineID()
	return id != 0 && id == q.worker.Load()
}

// Stopped is closed once the worker has exited.
func (q *Queue) Stopped() <-chan struct{} { return q.stopped }

func (q *Queue) run() {
	defer close(q.stopped)

	q.worker.Store(goroutineID())

	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.pending) == 0 && q.closed {
			q.mu.Unlock()
			return
		}
		task := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.exec(task)
	}
}

func (q *Queue) exec(task func()) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("bridge.queue.panic", "queue", q.name, "recover", r)
		}
	}()
	task()
}
