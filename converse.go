package litertlm

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/litertlm/parser"
	"github.com/hupe1980/litertlm/tool"
)

// ToolCall records one function call answered during Converse.
type ToolCall struct {
	ID     string
	Call   parser.FunctionCall
	Output string
}

// Reply is the outcome of Converse.
type Reply struct {
	// Text is the final plain text reply of the model.
	Text string
	// Raw is the last raw model response.
	Raw string
	// Calls lists every answered call in order.
	Calls []ToolCall
	// Rounds counts the tool rounds performed.
	Rounds int
}

// Converse generates a reply to prompt and runs the tool calling loop:
// every function call in the reply is answered through ExecuteTool, each
// result is submitted back to the model, and the loop repeats until the
// model answers in plain text or MaxToolRounds is exceeded.
//
// Called from a callback running on the assistant queue, the calls of a
// round run one after another on the queue itself.
func (a *Assistant) Converse(ctx context.Context, prompt string) (Reply, error) {
	raw, err := a.Generate(ctx, prompt)
	if err != nil {
		return Reply{}, err
	}

	var reply Reply
	for {
		reply.Raw = raw

		calls, prose, err := a.parser.ParseAll(raw)
		if errors.Is(err, parser.ErrEmptyFunctionName) {
			a.logger.Warn("assistant.converse.invalid_calls", "round", reply.Rounds)
			reply.Text = raw
			return reply, nil
		}
		if len(calls) == 0 {
			reply.Text = prose
			return reply, nil
		}

		if reply.Rounds >= a.opts.MaxToolRounds {
			reply.Text = prose
			return reply, fmt.Errorf("%w: %d", ErrToolRoundsExceeded, a.opts.MaxToolRounds)
		}
		reply.Rounds++

		executor := a.executor
		if a.queue.OnWorker() {
			executor = a.serial
		}
		results := executor.Execute(ctx, calls, func(ctx context.Context, call parser.FunctionCall) string {
			return a.ExecuteTool(ctx, call.Name, call.ParamsJSON())
		})
		if err := ctx.Err(); err != nil {
			return reply, err
		}

		for _, res := range results {
			reply.Calls = append(reply.Calls, toolCall(res))

			raw, err = a.SubmitToolResult(ctx, res.Call.Name, res.Output)
			if err != nil {
				return reply, err
			}
		}
	}
}

func toolCall(res tool.Result) ToolCall {
	return ToolCall{ID: res.ID, Call: res.Call, Output: res.Output}
}
