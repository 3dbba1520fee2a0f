package parser

import (
	"encoding/json"
	"maps"
)

// Kind distinguishes the two shapes a parsed response can take.
type Kind int

const (
	// KindText is a plain natural-language response.
	KindText Kind = iota
	// KindFunctionCall is a response requesting a tool invocation.
	KindFunctionCall
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindFunctionCall:
		return "function_call"
	default:
		return "unknown"
	}
}

// FunctionCall is a tool invocation requested by the model.
type FunctionCall struct {
	Name       string            `json:"name"`
	Parameters map[string]string `json:"parameters"`
}

// Param returns the value of a single parameter.
func (c FunctionCall) Param(key string) (string, bool) {
	v, ok := c.Parameters[key]
	return v, ok
}

// Clone returns a deep copy of the call.
func (c FunctionCall) Clone() FunctionCall {
	params := make(map[string]string, len(c.Parameters))
	maps.Copy(params, c.Parameters)
	return FunctionCall{Name: c.Name, Parameters: params}
}

// ParamsJSON encodes the parameters as a JSON object with sorted keys.
// A call without parameters encodes as "{}".
func (c FunctionCall) ParamsJSON() string {
	if len(c.Parameters) == 0 {
		return "{}"
	}
	// map[string]string always marshals
	b, _ := json.Marshal(c.Parameters)
	return string(b)
}

// Result is the outcome of parsing one raw response.
//
// For KindText, Text holds the input unchanged. For KindFunctionCall, Call
// is set and Text holds any prose preceding the call block (trimmed).
type Result struct {
	Kind Kind
	Text string
	Call *FunctionCall
}

// IsFunctionCall reports whether the response requested a tool invocation.
func (r Result) IsFunctionCall() bool { return r.Kind == KindFunctionCall && r.Call != nil }
