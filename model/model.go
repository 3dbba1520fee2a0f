package model

import (
	"context"
	"errors"

	"github.com/hupe1980/litertlm/conversation"
)

// ErrClosed is returned by a Generator after Close.
var ErrClosed = errors.New("model: generator closed")

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "simulator", "openai", "anthropic", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Generator is a stateful conversational model.
//
// Generate and SubmitToolResult both extend the same conversation and return
// the raw model response, which may contain a function call block.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	SubmitToolResult(ctx context.Context, functionName, result string) (string, error)
	Reset(ctx context.Context) error
	Close() error
	Info() Info
}

// Request is the normalized, stateless input to a Completer.
type Request struct {
	Instructions string              `json:"instructions"`
	Turns        []conversation.Turn `json:"turns"`
}

// Completer produces the next model turn for a full conversation.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)

	// Info returns information about the model implementation.
	Info() Info
}
