package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/litertlm/conversation"
)

type fakeCompleter struct {
	reqs  []Request
	reply string
	err   error
}

func (f *fakeCompleter) Complete(_ context.Context, req Request) (string, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeCompleter) Info() Info { return Info{Name: "fake", Provider: "fake"} }

func TestChatGenerator_Turns(t *testing.T) {
	fc := &fakeCompleter{reply: "ok"}
	gen := NewChatGenerator(fc, func(o *ChatOptions) { o.Instructions = "be brief" })
	ctx := context.Background()

	out, err := gen.Generate(ctx, "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	_, err = gen.SubmitToolResult(ctx, "ping", `{"ok":true}`)
	require.NoError(t, err)

	require.Len(t, fc.reqs, 2)
	assert.Equal(t, "be brief", fc.reqs[0].Instructions)
	assert.Len(t, fc.reqs[0].Turns, 1)

	last := fc.reqs[1].Turns
	require.Len(t, last, 3)
	assert.Equal(t, conversation.RoleTool, last[2].Role)
	assert.Equal(t, "ping", last[2].Name)
	assert.Equal(t, `<start_function_response>response:ping{"ok":true}<end_function_response>`, last[2].Text)

	assert.Equal(t, 4, gen.History().Len())
	assert.Equal(t, "fake", gen.Info().Name)
}

func TestChatGenerator_FailureKeepsHistory(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("unavailable")}
	gen := NewChatGenerator(fc)

	_, err := gen.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, fc.err)
	assert.Equal(t, 0, gen.History().Len())
}

func TestChatGenerator_ResetAndClose(t *testing.T) {
	gen := NewChatGenerator(&fakeCompleter{reply: "ok"}, func(o *ChatOptions) { o.MaxTurns = 2 })
	ctx := context.Background()

	_, _ = gen.Generate(ctx, "a")
	_, _ = gen.Generate(ctx, "b")
	assert.Equal(t, 2, gen.History().Len())

	require.NoError(t, gen.Reset(ctx))
	assert.Equal(t, 0, gen.History().Len())

	require.NoError(t, gen.Close())
	_, err := gen.Generate(ctx, "c")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestChatGenerator_InstructionTemplate(t *testing.T) {
	fc := &fakeCompleter{reply: "ok"}
	gen := NewChatGenerator(fc, func(o *ChatOptions) {
		o.Instructions = "You are {{.name}}. Tools:\n{{.tools}}"
		o.InstructionData = map[string]any{"name": "Gemma", "tools": "<start_function_declaration>declaration:ping{}"}
	})

	_, err := gen.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "You are Gemma. Tools:\n<start_function_declaration>declaration:ping{}", fc.reqs[0].Instructions)
}

func TestChatGenerator_InstructionTemplateError(t *testing.T) {
	fc := &fakeCompleter{reply: "ok"}
	gen := NewChatGenerator(fc, func(o *ChatOptions) {
		o.Instructions = "broken {{.name"
		o.InstructionData = map[string]any{}
	})

	_, err := gen.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "broken {{.name", fc.reqs[0].Instructions)
}
