// Package tool implements the function / tool calling subsystem: tools with
// schema described arguments, a Toolbox that answers parsed function calls
// with JSON results, and an Executor that runs a batch of calls with bounded
// parallelism.
package tool

import (
	"fmt"

	"github.com/hupe1980/litertlm/internal/util"
)

// Tool defines the interface for extending the assistant with host functions.
//
// Tools are registered with a Toolbox, which coerces the string parameters
// produced by the response parser into the types declared by Parameters
// before calling the tool.
//
// Tool implementations should:
//   - Provide clear, descriptive names (snake_case recommended)
//   - Define a JSON schema for parameters
//   - Return JSON serializable results
//   - Be safe for concurrent use if registered with a parallel Executor
type Tool interface {
	// Name returns the unique identifier the model uses to call this tool.
	Name() string

	// Description returns a human-readable description that is rendered into
	// the tool declaration shown to the model.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with typed arguments.
	Call(toolCtx *Context, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// Error codes carried by ToolError.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodePanic      = "PANIC"
)

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
