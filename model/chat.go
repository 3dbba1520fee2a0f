package model

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/litertlm/conversation"
	"github.com/hupe1980/litertlm/internal/util"
	"github.com/hupe1980/litertlm/logging"
	"github.com/hupe1980/litertlm/parser"
)

// ChatOptions configures a ChatGenerator.
type ChatOptions struct {
	// Instructions is sent as the system prompt with every request. It is
	// rendered as a text/template against InstructionData when that is set.
	Instructions    string
	InstructionData map[string]any
	// MaxTurns bounds the kept history. Zero keeps everything.
	MaxTurns int
	Logger   logging.Logger
}

// ChatGenerator turns a stateless Completer into a Generator.
//
// Tool results are recorded as tool turns carrying a function response
// block, so models that speak the function call grammar see the same
// transcript an on-device runtime would produce.
type ChatGenerator struct {
	completer    Completer
	history      *conversation.History
	instructions string
	logger       logging.Logger

	mu     sync.Mutex // serializes turns
	closed bool
}

// NewChatGenerator constructs a ChatGenerator around completer.
func NewChatGenerator(completer Completer, optFns ...func(o *ChatOptions)) *ChatGenerator {
	opts := ChatOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := logging.OrNoOp(opts.Logger)

	instructions := opts.Instructions
	if opts.InstructionData != nil {
		rendered, err := util.RenderTemplate(instructions, opts.InstructionData)
		if err != nil {
			logger.Warn("model.chat.instructions_unrendered", "error", err.Error())
		} else {
			instructions = rendered
		}
	}

	return &ChatGenerator{
		completer:    completer,
		history:      conversation.NewHistory(func(o *conversation.Options) { o.MaxTurns = opts.MaxTurns }),
		instructions: instructions,
		logger:       logger,
	}
}

// History exposes the conversation kept by the generator.
func (g *ChatGenerator) History() *conversation.History { return g.history }

// Generate implements Generator.
func (g *ChatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.turn(ctx, conversation.Turn{Role: conversation.RoleUser, Text: prompt})
}

// SubmitToolResult implements Generator.
func (g *ChatGenerator) SubmitToolResult(ctx context.Context, functionName, result string) (string, error) {
	return g.turn(ctx, conversation.Turn{
		Role: conversation.RoleTool,
		Name: functionName,
		Text: parser.FormatResponse(functionName, result),
	})
}

// Reset implements Generator.
func (g *ChatGenerator) Reset(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}
	g.history.Reset()
	return nil
}

// Close implements Generator.
func (g *ChatGenerator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}

// Info implements Generator.
func (g *ChatGenerator) Info() Info { return g.completer.Info() }

// turn sends the history plus in and records both turns only on success.
func (g *ChatGenerator) turn(ctx context.Context, in conversation.Turn) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return "", ErrClosed
	}

	in.Timestamp = time.Now()
	req := Request{
		Instructions: g.instructions,
		Turns:        append(g.history.Turns(), in),
	}

	info := g.completer.Info()
	start := time.Now()

	out, err := g.completer.Complete(ctx, req)
	if err != nil {
		g.logger.Error("model.chat.failed", "model", info.Name, "provider", info.Provider, "error", err.Error())
		return "", fmt.Errorf("%s completion: %w", info.Provider, err)
	}

	g.history.Append(in, conversation.Turn{Role: conversation.RoleModel, Text: out})

	g.logger.Debug(
		"model.chat.completed",
		"model", info.Name,
		"turns", len(req.Turns),
		"chars", len(out),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return out, nil
}
