package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/litertlm/internal/util"
	"github.com/hupe1980/litertlm/logging"
	"github.com/hupe1980/litertlm/parser"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ToolboxOptions configures a Toolbox.
type ToolboxOptions struct {
	Logger logging.Logger
}

// Toolbox is a registry of tools that answers function calls. Its Execute
// method matches handler.ToolExecutor, so a Toolbox can be registered
// directly as the assistant's tool executor.
type Toolbox struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger logging.Logger
}

// NewToolbox creates an empty Toolbox.
func NewToolbox(optFns ...func(o *ToolboxOptions)) *Toolbox {
	opts := ToolboxOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Toolbox{tools: map[string]Tool{}, logger: logging.OrNoOp(opts.Logger)}
}

// Register adds tools. Names must be non-empty and unique within the box.
func (b *Toolbox) Register(tools ...Tool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, t := range tools {
		name := t.Name()
		if strings.TrimSpace(name) == "" {
			return errors.New("tool: empty tool name")
		}
		if _, exists := b.tools[name]; exists {
			return fmt.Errorf("tool: %q already registered", name)
		}
		b.tools[name] = t
	}

	return nil
}

// Get returns the tool registered under name.
func (b *Toolbox) Get(name string) (Tool, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.tools[name]
	return t, ok
}

// Names returns the registered tool names in sorted order.
func (b *Toolbox) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Sorted(maps.Keys(b.tools))
}

// Declarations renders every tool as a declaration block, one per line, in
// name order. The result is meant for the model's system instruction.
func (b *Toolbox) Declarations() string {
	names := b.Names()
	lines := make([]string, 0, len(names))
	for _, name := range names {
		t, _ := b.Get(name)
		lines = append(lines, parser.FormatDeclaration(t.Name(), t.Description(), t.Parameters()))
	}
	return strings.Join(lines, "\n")
}

// Call runs the named tool with string parameters, coercing them to the
// types declared in the tool's schema. Panics are converted to *ToolError.
func (b *Toolbox) Call(ctx context.Context, name string, params map[string]string) (result any, err error) {
	t, ok := b.Get(name)
	if !ok {
		return nil, NewToolError(name, "tool not found", CodeNotFound)
	}

	args, err := util.CoerceParameters(params, t.Parameters())
	if err != nil {
		return nil, &ToolError{Tool: name, Message: err.Error(), Code: CodeValidation, Details: err}
	}
	if err := util.ValidateParameters(args, t.Parameters()); err != nil {
		return nil, &ToolError{Tool: name, Message: err.Error(), Code: CodeValidation, Details: err}
	}

	toolCtx := NewContext(ctx, uuid.NewString(), name, b.logger)

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("tool.call.panic", "tool", name, "fc_id", toolCtx.FunctionCallID(), "recover", r)
			result = nil
			err = NewToolError(name, fmt.Sprintf("panic: %v", r), CodePanic)
		}
	}()

	return t.Call(toolCtx, args)
}

// Execute decodes paramsJSON, runs the tool and encodes the outcome as JSON.
// Failures are reported as {"error": ..., "code": ...} documents.
func (b *Toolbox) Execute(ctx context.Context, name, paramsJSON string) string {
	start := time.Now()

	params, err := decodeParams(paramsJSON)
	if err != nil {
		b.logger.Warn("tool.execute.bad_params", "tool", name, "error", err.Error())
		return errorDocument(&ToolError{Tool: name, Message: err.Error(), Code: CodeValidation})
	}

	result, err := b.Call(ctx, name, params)
	if err != nil {
		b.logExecution(name, start, err)
		return errorDocument(err)
	}

	out, err := encodeResult(result)
	if err != nil {
		b.logger.Error("tool.execute.encode_failed", "tool", name, "error", err.Error())
		return errorDocument(&ToolError{Tool: name, Message: err.Error(), Code: CodeExecution})
	}

	b.logExecution(name, start, nil)

	return out
}

func (b *Toolbox) logExecution(name string, start time.Time, err error) {
	dur := time.Since(start)
	if tl, ok := b.logger.(logging.ToolCallLogger); ok {
		tl.LogToolCall(name, dur, err)
		return
	}
	if err != nil {
		b.logger.Warn("tool.execute.failed", "tool", name, "error", err.Error(), "duration_ms", dur.Milliseconds())
		return
	}
	b.logger.Info("tool.execute.success", "tool", name, "duration_ms", dur.Milliseconds())
}

// decodeParams reads a flat JSON object into string values.
func decodeParams(paramsJSON string) (map[string]string, error) {
	params := map[string]string{}
	if strings.TrimSpace(paramsJSON) == "" {
		return params, nil
	}
	if !gjson.Valid(paramsJSON) {
		return nil, errors.New("parameters are not valid JSON")
	}
	res := gjson.Parse(paramsJSON)
	if !res.IsObject() {
		return nil, errors.New("parameters must be a JSON object")
	}
	res.ForEach(func(k, v gjson.Result) bool {
		params[k.String()] = v.String()
		return true
	})
	return params, nil
}

// encodeResult turns a tool result into a JSON object. Strings that already
// hold a JSON object pass through; other values are wrapped as {"result": v}.
func encodeResult(result any) (string, error) {
	if s, ok := result.(string); ok {
		if trimmed := strings.TrimSpace(s); gjson.Valid(trimmed) && gjson.Parse(trimmed).IsObject() {
			return trimmed, nil
		}
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	if gjson.ParseBytes(raw).IsObject() {
		return string(raw), nil
	}
	return sjson.SetRaw("{}", "result", string(raw))
}

func errorDocument(err error) string {
	doc, _ := sjson.Set("{}", "error", err.Error())

	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		doc, _ = sjson.Set(doc, "error", toolErr.Message)
		doc, _ = sjson.Set(doc, "code", toolErr.Code)
		doc, _ = sjson.Set(doc, "tool", toolErr.Tool)
	}

	return doc
}
