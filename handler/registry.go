package handler

import (
	"context"
	"fmt"

	"github.com/hupe1980/litertlm/logging"
	"github.com/tidwall/sjson"
)

// SlotName identifies a callback slot in log output.
type SlotName string

const (
	// SlotToolExecutor answers function calls requested by the model.
	SlotToolExecutor SlotName = "tool_executor"
	// SlotTranscript receives speech-to-text results.
	SlotTranscript SlotName = "transcript"
)

// NoExecutorResult is returned by ExecuteTool when no executor is registered.
const NoExecutorResult = `{"error":"No tool executor registered"}`

// ToolExecutor runs the named function with its parameters encoded as a JSON
// object and returns a JSON formatted result.
type ToolExecutor func(ctx context.Context, functionName, paramsJSON string) string

// TranscriptHandler receives a recognized utterance.
type TranscriptHandler func(text string)

// Options configures a Registry.
type Options struct {
	Logger logging.Logger
}

// Registry groups the callback slots of one assistant.
type Registry struct {
	toolExecutor Slot[ToolExecutor]
	transcript   Slot[TranscriptHandler]
	logger       logging.Logger
}

// NewRegistry creates a Registry with empty slots.
func NewRegistry(optFns ...func(o *Options)) *Registry {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{logger: logging.OrNoOp(opts.Logger)}
}

// RegisterToolExecutor installs fn as the tool executor, replacing the
// previous one. A nil fn empties the slot.
func (r *Registry) RegisterToolExecutor(fn ToolExecutor) {
	if fn == nil {
		r.UnregisterToolExecutor()
		return
	}
	replaced := r.toolExecutor.Register(fn)
	r.logger.Info("handler.slot.registered", "slot", SlotToolExecutor, "replaced", replaced)
}

// UnregisterToolExecutor empties the tool executor slot.
func (r *Registry) UnregisterToolExecutor() bool {
	removed := r.toolExecutor.Unregister()
	r.logger.Info("handler.slot.unregistered", "slot", SlotToolExecutor, "removed", removed)
	return removed
}

// HasToolExecutor reports whether a tool executor is registered.
func (r *Registry) HasToolExecutor() bool { return r.toolExecutor.Bound() }

// RegisterTranscriptHandler installs fn as the transcript handler, replacing
// the previous one. A nil fn empties the slot.
func (r *Registry) RegisterTranscriptHandler(fn TranscriptHandler) {
	if fn == nil {
		r.UnregisterTranscriptHandler()
		return
	}
	replaced := r.transcript.Register(fn)
	r.logger.Info("handler.slot.registered", "slot", SlotTranscript, "replaced", replaced)
}

// UnregisterTranscriptHandler empties the transcript slot.
func (r *Registry) UnregisterTranscriptHandler() bool {
	removed := r.transcript.Unregister()
	r.logger.Info("handler.slot.unregistered", "slot", SlotTranscript, "removed", removed)
	return removed
}

// HasTranscriptHandler reports whether a transcript handler is registered.
func (r *Registry) HasTranscriptHandler() bool { return r.transcript.Bound() }

// ExecuteTool invokes the tool executor. The second result is false when no
// executor is registered, in which case NoExecutorResult is returned. A
// panicking executor produces an error document instead of unwinding.
func (r *Registry) ExecuteTool(ctx context.Context, functionName, paramsJSON string) (result string, bound bool) {
	fn, ok := r.toolExecutor.Load()
	if !ok {
		r.logger.Warn("handler.slot.unbound", "slot", SlotToolExecutor, "function", functionName)
		return NoExecutorResult, false
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("handler.tool_executor.panic", "function", functionName, "recover", rec)
			result = ErrorDocument(fmt.Sprintf("tool executor panicked: %v", rec))
			bound = true
		}
	}()

	r.logger.Debug("handler.tool_executor.invoke", "function", functionName, "params", paramsJSON)

	return fn(ctx, functionName, paramsJSON), true
}

// DeliverTranscript hands text to the transcript handler. It returns false
// when no handler is registered. A panicking handler is recovered and logged.
func (r *Registry) DeliverTranscript(text string) (delivered bool) {
	fn, ok := r.transcript.Load()
	if !ok {
		r.logger.Warn("handler.slot.unbound", "slot", SlotTranscript)
		return false
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("handler.transcript.panic", "recover", rec)
			delivered = true
		}
	}()

	fn(text)
	return true
}

// ErrorDocument builds a {"error": msg} JSON document.
func ErrorDocument(msg string) string {
	doc, err := sjson.Set("{}", "error", msg)
	if err != nil {
		return `{"error":"internal error"}`
	}
	return doc
}
