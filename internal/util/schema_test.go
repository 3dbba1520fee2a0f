package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type weatherArgs struct {
	Location string  `json:"location" description:"City name"`
	Days     int     `json:"days,omitempty"`
	Metric   *bool   `json:"metric"`
	Scale    float64 `json:"scale"`
	hidden   string
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(weatherArgs{})
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)

	assert.Contains(t, props, "location")
	assert.Contains(t, props, "days")
	assert.Contains(t, props, "metric")
	assert.NotContains(t, props, "hidden")
	assert.Equal(t, "integer", props["days"].(map[string]any)["type"])
	assert.Equal(t, "City name", props["location"].(map[string]any)["description"])
	assert.ElementsMatch(t, []string{"location", "scale"}, schema["required"])

	_ = weatherArgs{}.hidden
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		"required": []string{"x"},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"x": 5.0}, schema))

	err := ValidateParameters(map[string]any{}, schema)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "x", vErr.Field)

	err = ValidateParameters(map[string]any{"x": "five"}, schema)
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "expected type integer")

	// decoded JSON schemas carry []any
	schema["required"] = []any{"x"}
	assert.Error(t, ValidateParameters(map[string]any{}, schema))
}

func TestCoerceParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"count":   map[string]any{"type": "integer"},
			"ratio":   map[string]any{"type": "number"},
			"loud":    map[string]any{"type": "boolean"},
			"tags":    map[string]any{"type": "array"},
			"meta":    map[string]any{"type": "object"},
			"label":   map[string]any{"type": "string"},
			"untyped": map[string]any{},
		},
	}

	got, err := CoerceParameters(map[string]string{
		"count":   " 3 ",
		"ratio":   "0.5",
		"loud":    "true",
		"tags":    `["a", "b"]`,
		"meta":    `{"k": 1}`,
		"label":   " keep spacing ",
		"untyped": "x",
		"extra":   "y",
	}, schema)
	require.NoError(t, err)

	assert.Equal(t, 3.0, got["count"])
	assert.Equal(t, 0.5, got["ratio"])
	assert.Equal(t, true, got["loud"])
	assert.Equal(t, []any{"a", "b"}, got["tags"])
	assert.Equal(t, map[string]any{"k": 1.0}, got["meta"])
	assert.Equal(t, " keep spacing ", got["label"])
	assert.Equal(t, "x", got["untyped"])
	assert.Equal(t, "y", got["extra"])

	require.NoError(t, ValidateParameters(got, schema))
}

func TestCoerceParameters_Invalid(t *testing.T) {
	schema := map[string]any{
		"properties": map[string]any{"count": map[string]any{"type": "integer"}},
	}

	_, err := CoerceParameters(map[string]string{"count": "many"}, schema)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "count", vErr.Field)
	assert.Equal(t, "many", vErr.Value)
}

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("no markers <escape>", nil)
	require.NoError(t, err)
	assert.Equal(t, "no markers <escape>", out)

	out, err = RenderTemplate("Hi {{upper .name}}! {{.tools}} {{default \"none\" .missing}}", map[string]any{
		"name":  "gemma",
		"tools": "<start_function_declaration>",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi GEMMA! <start_function_declaration> none", out)

	_, err = RenderTemplate("{{.broken", nil)
	assert.Error(t, err)
}
