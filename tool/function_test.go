package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weatherSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"location": map[string]any{"type": "string"},
			"days":     map[string]any{"type": "integer"},
		},
		"required": []string{"location"},
	}
}

func TestFunctionTool_Call(t *testing.T) {
	ft := NewFunctionTool("get_weather", "Get the weather", weatherSchema(),
		func(tc *Context, args map[string]any) (any, error) {
			return map[string]any{"location": args["location"], "fc": tc.FunctionName()}, nil
		})

	assert.Equal(t, "get_weather", ft.Name())
	assert.Equal(t, "Get the weather", ft.Description())

	out, err := ft.Call(NewContext(context.Background(), "id-1", "get_weather", nil), map[string]any{"location": "London"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"location": "London", "fc": "get_weather"}, out)
}

func TestFunctionTool_Errors(t *testing.T) {
	tc := NewContext(context.Background(), "id", "t", nil)

	t.Run("validation", func(t *testing.T) {
		ft := NewFunctionTool("t", "", weatherSchema(), func(*Context, map[string]any) (any, error) {
			t.Fatal("must not be called")
			return nil, nil
		})
		_, err := ft.Call(tc, map[string]any{})

		var toolErr *ToolError
		require.ErrorAs(t, err, &toolErr)
		assert.Equal(t, CodeValidation, toolErr.Code)
	})

	t.Run("plain error", func(t *testing.T) {
		ft := NewFunctionTool("t", "", nil, func(*Context, map[string]any) (any, error) {
			return nil, errors.New("boom")
		})
		_, err := ft.Call(tc, nil)

		var toolErr *ToolError
		require.ErrorAs(t, err, &toolErr)
		assert.Equal(t, CodeExecution, toolErr.Code)
		assert.Equal(t, "boom", toolErr.Message)
	})

	t.Run("custom tool error preserved", func(t *testing.T) {
		ft := NewFunctionTool("t", "", nil, func(*Context, map[string]any) (any, error) {
			return nil, NewToolError("t", "quota", "RATE_LIMITED")
		})
		_, err := ft.Call(tc, nil)

		var toolErr *ToolError
		require.ErrorAs(t, err, &toolErr)
		assert.Equal(t, "RATE_LIMITED", toolErr.Code)
	})
}

func TestNewFunctionToolFromStruct(t *testing.T) {
	type timerArgs struct {
		Minutes int    `json:"minutes" description:"Duration in minutes"`
		Label   string `json:"label,omitempty"`
	}

	ft := NewFunctionToolFromStruct("set_timer", "Start a countdown", timerArgs{}, func(*Context, map[string]any) (any, error) {
		return "ok", nil
	})

	props, ok := ft.Parameters()["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "minutes")
	assert.Contains(t, props, "label")
}

func TestToolError_Error(t *testing.T) {
	assert.Equal(t, "tool error [NOT_FOUND] in x: missing", NewToolError("x", "missing", CodeNotFound).Error())
	assert.Equal(t, "tool error in x: missing", (&ToolError{Tool: "x", Message: "missing"}).Error())
}
