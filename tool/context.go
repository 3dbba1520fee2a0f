package tool

import (
	"context"

	"github.com/hupe1980/litertlm/logging"
)

// Context is handed to a tool for the duration of one call.
type Context struct {
	ctx            context.Context
	functionCallID string
	functionName   string
	logger         logging.Logger
}

// NewContext constructs a tool context for one function call.
func NewContext(ctx context.Context, functionCallID, functionName string, logger logging.Logger) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{
		ctx:            ctx,
		functionCallID: functionCallID,
		functionName:   functionName,
		logger:         logging.OrNoOp(logger),
	}
}

// Context returns the context of the tool invocation.
func (tc *Context) Context() context.Context { return tc.ctx }

// FunctionCallID correlates the model request with the tool execution.
func (tc *Context) FunctionCallID() string { return tc.functionCallID }

// FunctionName returns the name the model used to call the tool.
func (tc *Context) FunctionName() string { return tc.functionName }

// Logger returns the logger associated with the tool invocation.
func (tc *Context) Logger() logging.Logger { return tc.logger }
