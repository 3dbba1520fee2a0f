// Package litertlm provides a high-level façade over the parser, handler
// registry, generator and speech listener of an on-device language model
// assistant. Most applications interact with this package by:
//  1. Creating an Assistant via New() (optionally overriding the simulated
//     generator, the parser or the speech recognizer)
//  2. Registering a tool executor and a transcript handler
//  3. Generating replies asynchronously (GenerateAsync), synchronously
//     (Generate) or through the tool calling loop (Converse)
//
// Callbacks registered on the assistant run one at a time on its internal
// queue, which plays the role of the host's main thread. Completion
// callbacks, tool executions and transcripts are all delivered there.
package litertlm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/litertlm/bridge"
	"github.com/hupe1980/litertlm/handler"
	"github.com/hupe1980/litertlm/logging"
	"github.com/hupe1980/litertlm/model"
	"github.com/hupe1980/litertlm/parser"
	"github.com/hupe1980/litertlm/speech"
	"github.com/hupe1980/litertlm/tool"
)

const (
	// DefaultFailureReply is passed to completion callbacks when generation
	// fails.
	DefaultFailureReply = "Error: AI Failed to respond"
	// DefaultToolResultFailureReply is passed to completion callbacks when
	// submitting a tool result fails.
	DefaultToolResultFailureReply = "Error during tool result response: AI Failed to respond"
	// DefaultToolTimeout bounds the wait for the tool executor.
	DefaultToolTimeout = 10 * time.Second
	// DefaultToolFallback is returned when the tool executor does not answer
	// in time.
	DefaultToolFallback = "{}"
	// DefaultMaxToolRounds bounds the tool calling loop of Converse.
	DefaultMaxToolRounds = 8
)

var (
	// ErrClosed is returned by every operation after Shutdown.
	ErrClosed = errors.New("litertlm: assistant shut down")
	// ErrNoRecognizer is returned by the speech operations when no
	// recognizer is configured.
	ErrNoRecognizer = errors.New("litertlm: no speech recognizer configured")
	// ErrToolRoundsExceeded is returned by Converse when the model keeps
	// calling tools past MaxToolRounds.
	ErrToolRoundsExceeded = errors.New("litertlm: tool rounds exceeded")
)

// CompletionFunc receives the outcome of an asynchronous generation. On
// failure reply holds the matching default failure reply.
type CompletionFunc func(reply string, err error)

// Options configures the Assistant.
type Options struct {
	// Generator produces model replies. Defaults to model.NewSimulator().
	Generator model.Generator
	// Parser detects function calls. Defaults to the lenient parser.
	Parser *parser.Parser
	// Registry holds the callback slots. Defaults to an empty registry.
	Registry *handler.Registry
	// Recognizer enables InitSTT / StartSTT / StopSTT when set.
	Recognizer speech.Recognizer

	// ToolTimeout bounds ExecuteTool. Values <= 0 wait until ctx is done.
	ToolTimeout time.Duration
	// ToolFallback is returned by ExecuteTool on timeout.
	ToolFallback string
	// MaxToolRounds bounds Converse.
	MaxToolRounds int
	// Executor configures how Converse runs a batch of calls.
	Executor tool.ExecutorConfig

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Assistant ties a generator to the callback slots of its host.
type Assistant struct {
	opts      Options
	generator model.Generator
	parser    *parser.Parser
	registry  *handler.Registry
	queue     *bridge.Queue
	listener  *speech.Listener
	executor  *tool.Executor
	serial    *tool.Executor
	logger    logging.Logger

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

// New creates an Assistant with optional overrides. Any unset component is
// initialized with an in-process default.
func New(optFns ...func(o *Options)) *Assistant {
	opts := Options{
		ToolTimeout:   DefaultToolTimeout,
		ToolFallback:  DefaultToolFallback,
		MaxToolRounds: DefaultMaxToolRounds,
		Executor:      tool.ExecutorConfig{PreserveOrder: true},
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	logger := logging.OrNoOp(opts.Logger)
	opts.Logger = logger

	if opts.Generator == nil {
		opts.Generator = model.NewSimulator(func(o *model.SimulatorOptions) { o.Logger = logger })
	}
	if opts.Parser == nil {
		opts.Parser = parser.New(func(o *parser.Options) { o.Logger = logger })
	}
	if opts.Registry == nil {
		opts.Registry = handler.NewRegistry(func(o *handler.Options) { o.Logger = logger })
	}
	if opts.MaxToolRounds <= 0 {
		opts.MaxToolRounds = DefaultMaxToolRounds
	}
	if opts.Executor.Logger == nil {
		opts.Executor.Logger = logger
	}
	// results are submitted in call order
	opts.Executor.PreserveOrder = true

	// used for tool rounds started from the queue itself
	serial := tool.NewExecutor(tool.ExecutorConfig{
		MaxParallel:    1,
		PreserveOrder:  true,
		LogStartEvents: opts.Executor.LogStartEvents,
		Logger:         opts.Executor.Logger,
	})

	a := &Assistant{
		opts:      opts,
		generator: opts.Generator,
		parser:    opts.Parser,
		registry:  opts.Registry,
		queue:     bridge.NewQueue(func(o *bridge.QueueOptions) { o.Name = "assistant"; o.Logger = logger }),
		executor:  tool.NewExecutor(opts.Executor),
		serial:    serial,
		logger:    logger,
	}

	if opts.Recognizer != nil {
		a.listener = speech.NewListener(opts.Recognizer, func(text string) {
			if err := a.DeliverTranscript(text); err != nil {
				logger.Warn("assistant.transcript.dropped", "error", err.Error())
			}
		}, func(o *speech.ListenerOptions) { o.Logger = logger })
	}

	info := a.generator.Info()
	logger.Info("assistant.initialized", "model", info.Name, "provider", info.Provider, "stt", a.listener != nil)

	return a
}

// Info returns metadata about the configured generator.
func (a *Assistant) Info() model.Info { return a.generator.Info() }

// Registry returns the callback registry.
func (a *Assistant) Registry() *handler.Registry { return a.registry }

// Generate sends prompt to the model and returns the raw reply.
func (a *Assistant) Generate(ctx context.Context, prompt string) (string, error) {
	if a.isClosed() {
		return "", ErrClosed
	}

	start := time.Now()
	reply, err := a.generator.Generate(ctx, prompt)
	a.logGeneration("assistant.generate", reply, start, err)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return reply, nil
}

// GenerateAsync generates off the caller's goroutine and delivers the
// outcome to onComplete on the assistant queue. A nil onComplete discards
// the outcome.
func (a *Assistant) GenerateAsync(ctx context.Context, prompt string, onComplete CompletionFunc) error {
	return a.async(ctx, DefaultFailureReply, onComplete, func(ctx context.Context) (string, error) {
		return a.Generate(ctx, prompt)
	})
}

// SubmitToolResult returns the result of a tool call to the model and
// returns the model's next reply.
func (a *Assistant) SubmitToolResult(ctx context.Context, functionName, result string) (string, error) {
	if a.isClosed() {
		return "", ErrClosed
	}

	start := time.Now()
	reply, err := a.generator.SubmitToolResult(ctx, functionName, result)
	a.logGeneration("assistant.tool_result", reply, start, err, "function", functionName)
	if err != nil {
		return "", fmt.Errorf("submit tool result: %w", err)
	}
	return reply, nil
}

// SubmitToolResultAsync is the asynchronous form of SubmitToolResult.
func (a *Assistant) SubmitToolResultAsync(ctx context.Context, functionName, result string, onComplete CompletionFunc) error {
	return a.async(ctx, DefaultToolResultFailureReply, onComplete, func(ctx context.Context) (string, error) {
		return a.SubmitToolResult(ctx, functionName, result)
	})
}

// ResetConversation clears the generator's conversation state.
func (a *Assistant) ResetConversation(ctx context.Context) error {
	if a.isClosed() {
		return ErrClosed
	}
	if err := a.generator.Reset(ctx); err != nil {
		return fmt.Errorf("reset conversation: %w", err)
	}
	a.logger.Info("assistant.conversation.reset")
	return nil
}

// ParseFunctionCall inspects a raw model reply with the configured parser.
func (a *Assistant) ParseFunctionCall(raw string) (parser.Result, error) {
	return a.parser.Parse(raw)
}

// RegisterToolExecutor installs fn as the tool executor, replacing any
// previous one. A nil fn empties the slot.
func (a *Assistant) RegisterToolExecutor(fn handler.ToolExecutor) {
	a.registry.RegisterToolExecutor(fn)
}

// HandleTranscript installs fn as the transcript handler, replacing any
// previous one. A nil fn empties the slot.
func (a *Assistant) HandleTranscript(fn handler.TranscriptHandler) {
	a.registry.RegisterTranscriptHandler(fn)
}

// ExecuteTool runs the registered tool executor on the assistant queue and
// waits at most ToolTimeout for its result. On timeout, cancellation or
// after Shutdown the ToolFallback is returned; without an executor the
// result is handler.NoExecutorResult.
//
// Called from a callback already running on the queue, the executor runs
// inline and ToolTimeout does not apply.
func (a *Assistant) ExecuteTool(ctx context.Context, functionName, paramsJSON string) string {
	a.logger.Info("assistant.tool.requested", "function", functionName, "params", paramsJSON)

	if a.queue.OnWorker() {
		a.logger.Debug("assistant.tool.inline", "function", functionName)
		result, _ := a.registry.ExecuteTool(ctx, functionName, paramsJSON)
		return result
	}

	future := bridge.NewFuture[string]()
	err := a.queue.Post(func() {
		result, _ := a.registry.ExecuteTool(ctx, functionName, paramsJSON)
		future.Resolve(result, nil)
	})
	if err != nil {
		a.logger.Warn("assistant.tool.dropped", "function", functionName, "error", err.Error())
		return a.opts.ToolFallback
	}

	result, err := future.Await(ctx, a.opts.ToolTimeout)
	if err != nil {
		a.logger.Warn("assistant.tool.timeout", "function", functionName, "timeout", a.opts.ToolTimeout, "error", err.Error())
		return a.opts.ToolFallback
	}
	return result
}

// DeliverTranscript posts text to the transcript handler on the assistant
// queue. An unbound handler drops the text with a warning.
func (a *Assistant) DeliverTranscript(text string) error {
	if err := a.queue.Post(func() {
		a.logger.Debug("assistant.transcript.received", "chars", len(text))
		a.registry.DeliverTranscript(text)
	}); err != nil {
		return ErrClosed
	}
	return nil
}

// InitSTT prepares the speech recognizer.
func (a *Assistant) InitSTT(ctx context.Context) error {
	if a.listener == nil {
		return ErrNoRecognizer
	}
	return a.listener.Init(ctx)
}

// StartSTT starts listening. Transcripts go to the transcript handler.
func (a *Assistant) StartSTT(ctx context.Context) error {
	if a.listener == nil {
		return ErrNoRecognizer
	}
	return a.listener.Start(ctx)
}

// StopSTT stops listening.
func (a *Assistant) StopSTT() error {
	if a.listener == nil {
		return ErrNoRecognizer
	}
	return a.listener.Stop()
}

// Shutdown waits for in-flight asynchronous work, stops speech recognition,
// closes the generator and drains the queue. Later calls return ErrClosed.
//
// Shutdown may be called from a callback running on the queue. It then
// returns without waiting for the queue to drain; callbacks still pending
// run after the current one returns.
func (a *Assistant) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.closed = true
	a.mu.Unlock()

	var errs []error

	waited := make(chan struct{})
	go func() {
		a.inflight.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("waiting for in-flight work: %w", ctx.Err()))
	}

	if a.listener != nil {
		if err := a.listener.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.generator.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close generator: %w", err))
	}
	a.queue.Close()

	a.logger.Info("assistant.shutdown", "errors", len(errs), "from_queue", a.queue.OnWorker())

	return errors.Join(errs...)
}

func (a *Assistant) isClosed() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.closed
}

// async runs fn on its own goroutine and posts the outcome to the queue.
func (a *Assistant) async(ctx context.Context, failureReply string, onComplete CompletionFunc, fn func(context.Context) (string, error)) error {
	a.mu.RLock()
	if a.closed {
		a.mu.RUnlock()
		return ErrClosed
	}
	a.inflight.Add(1)
	a.mu.RUnlock()

	future := bridge.Go(ctx, fn)

	go func() {
		defer a.inflight.Done()

		<-future.Done()
		reply, err := future.Await(context.Background(), 0)
		if err != nil {
			reply = failureReply
		}

		if onComplete == nil {
			return
		}
		if postErr := a.queue.Post(func() { onComplete(reply, err) }); postErr != nil {
			a.logger.Warn("assistant.completion.dropped", "error", postErr.Error())
		}
	}()

	return nil
}

func (a *Assistant) logGeneration(op, reply string, start time.Time, err error, args ...any) {
	info := a.generator.Info()
	if gl, ok := a.logger.(logging.GenerationLogger); ok {
		gl.LogGeneration(info.Name, len(reply), time.Since(start), err, append(args, "operation", op)...)
		return
	}

	args = append(args,
		"model", info.Name,
		"chars", len(reply),
		"duration_ms", time.Since(start).Milliseconds(),
		"success", err == nil,
	)
	if err != nil {
		a.logger.Error(op+".failed", append(args, "error", err.Error())...)
		return
	}
	a.logger.Info(op+".completed", args...)
}
