package speech

import (
	"context"
	"sync"
	"time"
)

// ScriptedOptions configures a ScriptedRecognizer.
type ScriptedOptions struct {
	// Transcripts are played back in order after every Start.
	Transcripts []string
	// Interval is waited before each scripted transcript.
	Interval time.Duration
}

// ScriptedRecognizer is an in-process Recognizer that plays back fixed
// transcripts and accepts ad-hoc ones through Say.
type ScriptedRecognizer struct {
	mu          sync.Mutex
	transcripts []string
	interval    time.Duration
	initialized bool
	onResult    ResultFunc
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

var _ Recognizer = (*ScriptedRecognizer)(nil)

// NewScriptedRecognizer constructs a ScriptedRecognizer.
func NewScriptedRecognizer(optFns ...func(o *ScriptedOptions)) *ScriptedRecognizer {
	var opts ScriptedOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ScriptedRecognizer{
		transcripts: append([]string(nil), opts.Transcripts...),
		interval:    opts.Interval,
	}
}

// Init implements Recognizer.
func (r *ScriptedRecognizer) Init(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.initialized = true
	return nil
}

// Start implements Recognizer.
func (r *ScriptedRecognizer) Start(ctx context.Context, onResult ResultFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return ErrNotInitialized
	}
	if r.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.onResult = onResult

	r.wg.Add(1)
	go r.play(ctx, onResult)

	return nil
}

func (r *ScriptedRecognizer) play(ctx context.Context, onResult ResultFunc) {
	defer r.wg.Done()

	for _, text := range r.transcripts {
		if r.interval > 0 {
			timer := time.NewTimer(r.interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			return
		}
		onResult(text)
	}
}

// Say delivers text immediately when listening and reports whether it did.
func (r *ScriptedRecognizer) Say(text string) bool {
	r.mu.Lock()
	onResult := r.onResult
	r.mu.Unlock()

	if onResult == nil {
		return false
	}
	onResult(text)
	return true
}

// Stop implements Recognizer. It waits for the playback goroutine to exit.
func (r *ScriptedRecognizer) Stop() error {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.onResult = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
	return nil
}

// Close implements Recognizer.
func (r *ScriptedRecognizer) Close() error {
	if err := r.Stop(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.initialized = false
	return nil
}
