package testutil

import "strings"

// CallBuilder provides a fluent helper for constructing raw model responses
// containing function call blocks.
// Example:
//
//	raw := NewCallBuilder("get_weather").Param("location", "Paris").Build()
//
// Parameters are rendered in insertion order, which lets tests exercise
// orderings that the parser's own formatter never produces.
type CallBuilder struct {
	name    string
	keys    []string
	values  []string
	prefix  string
	suffix  string
	noEnd   bool
	escaped bool
}

// NewCallBuilder creates a builder for a call to name.
func NewCallBuilder(name string) *CallBuilder { return &CallBuilder{name: name} }

// Param appends a key/value pair (chainable).
func (b *CallBuilder) Param(key, value string) *CallBuilder {
	b.keys = append(b.keys, key)
	b.values = append(b.values, value)
	return b
}

// Escaped wraps every value in <escape> tokens (chainable).
func (b *CallBuilder) Escaped() *CallBuilder { b.escaped = true; return b }

// Prose adds text before the call block (chainable).
func (b *CallBuilder) Prose(text string) *CallBuilder { b.prefix = text; return b }

// Trailing adds text after the end marker (chainable).
func (b *CallBuilder) Trailing(text string) *CallBuilder { b.suffix = text; return b }

// Unterminated omits the end marker (chainable).
func (b *CallBuilder) Unterminated() *CallBuilder { b.noEnd = true; return b }

// Build renders the raw response.
func (b *CallBuilder) Build() string {
	var sb strings.Builder
	sb.WriteString(b.prefix)
	sb.WriteString("<start_function_call>call:")
	sb.WriteString(b.name)
	if len(b.keys) > 0 {
		sb.WriteByte('{')
		for i, k := range b.keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteByte(':')
			if b.escaped {
				sb.WriteString("<escape>" + b.values[i] + "<escape>")
			} else {
				sb.WriteString(b.values[i])
			}
		}
		sb.WriteByte('}')
	}
	if !b.noEnd {
		sb.WriteString("<end_function_call>")
	}
	sb.WriteString(b.suffix)
	return sb.String()
}
