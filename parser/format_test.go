package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	got := Format(FunctionCall{Name: "get_weather", Parameters: map[string]string{"unit": "celsius", "location": "Paris"}})
	assert.Equal(t, "<start_function_call>call:get_weather{location:Paris, unit:celsius}<end_function_call>", got)

	assert.Equal(t, "<start_function_call>call:ping<end_function_call>", Format(FunctionCall{Name: "ping"}))
}

func TestFormat_CustomMarkers(t *testing.T) {
	p := New(func(o *Options) {
		o.StartMarker = "<tool_call>"
		o.EndMarker = "</tool_call>"
		o.CallPrefix = ""
	})
	assert.Equal(t, "<tool_call>search{q:go}</tool_call>", p.Format(FunctionCall{Name: "search", Parameters: map[string]string{"q": "go"}}))
}

func TestFormatResponse(t *testing.T) {
	assert.Equal(t,
		`<start_function_response>response:get_weather{"temp": 21}<end_function_response>`,
		FormatResponse("get_weather", ` {"temp": 21} `),
	)
	assert.Equal(t,
		"<start_function_response>response:get_weather{value:<escape>sunny<escape>}<end_function_response>",
		FormatResponse("get_weather", "sunny"),
	)
}

func TestFormatDeclaration(t *testing.T) {
	got := FormatDeclaration("get_weather", "Get the weather", map[string]any{"type": "object"})
	assert.Equal(t,
		`<start_function_declaration>declaration:get_weather{description:<escape>Get the weather<escape>,parameters:{"type":"object"}}<end_function_declaration>`,
		got,
	)

	got = FormatDeclaration("ping", "Ping", nil)
	assert.Contains(t, got, ",parameters:{}}")

	// channels cannot be encoded
	got = FormatDeclaration("bad", "Bad", map[string]any{"c": make(chan int)})
	assert.Contains(t, got, ",parameters:{}}")
}

func TestFunctionCall_Helpers(t *testing.T) {
	call := FunctionCall{Name: "f", Parameters: map[string]string{"b": "2", "a": "1"}}

	assert.Equal(t, `{"a":"1","b":"2"}`, call.ParamsJSON())
	assert.Equal(t, "{}", FunctionCall{Name: "g"}.ParamsJSON())

	v, ok := call.Param("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	_, ok = call.Param("zzz")
	assert.False(t, ok)

	clone := call.Clone()
	clone.Parameters["a"] = "changed"
	assert.Equal(t, "1", call.Parameters["a"])
}
