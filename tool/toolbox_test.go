package tool

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/hupe1980/litertlm/internal/testutil"
	"github.com/hupe1980/litertlm/logging"
)

func newTestToolbox(t *testing.T, optFns ...func(o *ToolboxOptions)) *Toolbox {
	t.Helper()

	box := NewToolbox(optFns...)
	require.NoError(t, box.Register(
		NewFunctionTool("get_weather", "Get the weather", weatherSchema(),
			func(_ *Context, args map[string]any) (any, error) {
				return map[string]any{"location": args["location"], "days": args["days"]}, nil
			}),
		NewFunctionTool("ping", "Health check", nil,
			func(*Context, map[string]any) (any, error) { return "pong", nil }),
		NewFunctionTool("echo_json", "Returns a JSON document", nil,
			func(*Context, map[string]any) (any, error) { return `{"ok":true}`, nil }),
		NewFunctionTool("explode", "Panics", nil,
			func(*Context, map[string]any) (any, error) { panic("kaboom") }),
	))

	return box
}

func TestToolbox_Register(t *testing.T) {
	box := newTestToolbox(t)

	assert.Equal(t, []string{"echo_json", "explode", "get_weather", "ping"}, box.Names())

	err := box.Register(NewFunctionTool("ping", "", nil, nil))
	assert.ErrorContains(t, err, "already registered")

	err = box.Register(NewFunctionTool(" ", "", nil, nil))
	assert.ErrorContains(t, err, "empty tool name")

	_, ok := box.Get("ping")
	assert.True(t, ok)
	_, ok = box.Get("nope")
	assert.False(t, ok)
}

func TestToolbox_Call(t *testing.T) {
	box := newTestToolbox(t)
	ctx := context.Background()

	out, err := box.Call(ctx, "get_weather", map[string]string{"location": "London", "days": "3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"location": "London", "days": float64(3)}, out)

	_, err = box.Call(ctx, "get_weather", map[string]string{"location": "London", "days": "three"})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidation, toolErr.Code)

	_, err = box.Call(ctx, "missing", nil)
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeNotFound, toolErr.Code)

	_, err = box.Call(ctx, "explode", nil)
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodePanic, toolErr.Code)
}

func TestToolbox_Execute(t *testing.T) {
	logger := testutil.NewRecordingLogger()
	box := newTestToolbox(t, func(o *ToolboxOptions) { o.Logger = logger })
	ctx := context.Background()

	tests := []struct {
		name   string
		tool   string
		params string
		check  func(t *testing.T, out string)
	}{
		{
			name:   "object result",
			tool:   "get_weather",
			params: `{"location":"London","days":"2"}`,
			check: func(t *testing.T, out string) {
				assert.Equal(t, "London", gjson.Get(out, "location").String())
				assert.Equal(t, int64(2), gjson.Get(out, "days").Int())
			},
		},
		{
			name:   "scalar result wrapped",
			tool:   "ping",
			params: `{}`,
			check: func(t *testing.T, out string) {
				assert.JSONEq(t, `{"result":"pong"}`, out)
			},
		},
		{
			name:   "json string passthrough",
			tool:   "echo_json",
			params: "",
			check: func(t *testing.T, out string) {
				assert.JSONEq(t, `{"ok":true}`, out)
			},
		},
		{
			name:   "invalid params",
			tool:   "get_weather",
			params: `not json`,
			check: func(t *testing.T, out string) {
				assert.Equal(t, CodeValidation, gjson.Get(out, "code").String())
			},
		},
		{
			name:   "array params rejected",
			tool:   "get_weather",
			params: `[1,2]`,
			check: func(t *testing.T, out string) {
				assert.Equal(t, CodeValidation, gjson.Get(out, "code").String())
			},
		},
		{
			name:   "unknown tool",
			tool:   "missing",
			params: `{}`,
			check: func(t *testing.T, out string) {
				assert.Equal(t, CodeNotFound, gjson.Get(out, "code").String())
				assert.Equal(t, "missing", gjson.Get(out, "tool").String())
				assert.Equal(t, "tool not found", gjson.Get(out, "error").String())
			},
		},
		{
			name:   "panic",
			tool:   "explode",
			params: `{}`,
			check: func(t *testing.T, out string) {
				assert.Equal(t, CodePanic, gjson.Get(out, "code").String())
				assert.Contains(t, gjson.Get(out, "error").String(), "kaboom")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := box.Execute(ctx, tt.tool, tt.params)
			require.True(t, gjson.Valid(out), out)
			tt.check(t, out)
		})
	}

	assert.True(t, logger.Has("INFO", "tool.execute.success"))
	assert.True(t, logger.Has("WARN", "tool.execute.failed"))
	assert.True(t, logger.Has("ERROR", "tool.call.panic"))
}

func TestToolbox_ExecuteWithStructuredLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := logging.DefaultLoggerConfig()
	cfg.Output = buf
	cfg.AddSource = false

	box := newTestToolbox(t, func(o *ToolboxOptions) { o.Logger = logging.NewLogger(cfg) })
	box.Execute(context.Background(), "ping", `{}`)
	box.Execute(context.Background(), "missing", `{}`)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Tool execution completed", gjson.Get(lines[0], "msg").String())
	assert.Equal(t, "ping", gjson.Get(lines[0], "tool_name").String())
	assert.Equal(t, "Tool execution failed", gjson.Get(lines[1], "msg").String())
	assert.Equal(t, "missing", gjson.Get(lines[1], "tool_name").String())
}

func TestToolbox_Declarations(t *testing.T) {
	box := NewToolbox()
	require.NoError(t, box.Register(
		NewFunctionTool("b_tool", "Second", nil, nil),
		NewFunctionTool("a_tool", "First", nil, nil),
	))

	want := "<start_function_declaration>declaration:a_tool{description:<escape>First<escape>,parameters:{}}<end_function_declaration>\n" +
		"<start_function_declaration>declaration:b_tool{description:<escape>Second<escape>,parameters:{}}<end_function_declaration>"
	assert.Equal(t, want, box.Declarations())
}
