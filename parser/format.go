package parser

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

// Tokens of the function response and declaration turns.
const (
	ResponseStartMarker    = "<start_function_response>"
	ResponseEndMarker      = "<end_function_response>"
	ResponsePrefix         = "response:"
	DeclarationStartMarker = "<start_function_declaration>"
	DeclarationEndMarker   = "<end_function_declaration>"
	DeclarationPrefix      = "declaration:"
)

// Format renders call in the grammar understood by p. Parameters are
// written in sorted key order; a call without parameters has no braces.
func (p *Parser) Format(call FunctionCall) string {
	var b strings.Builder
	b.WriteString(p.opts.StartMarker)
	b.WriteString(p.opts.CallPrefix)
	b.WriteString(call.Name)

	if len(call.Parameters) > 0 {
		b.WriteByte('{')
		for i, k := range slices.Sorted(maps.Keys(call.Parameters)) {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteByte(':')
			b.WriteString(call.Parameters[k])
		}
		b.WriteByte('}')
	}

	b.WriteString(p.opts.EndMarker)
	return b.String()
}

// Format renders call with the default grammar.
func Format(call FunctionCall) string { return defaultParser.Format(call) }

// FormatResponse renders a tool result as a function response turn that can
// be fed back to the model. A JSON object result is embedded as is; any
// other result is wrapped as an escaped value.
func FormatResponse(name, result string) string {
	var b strings.Builder
	b.WriteString(ResponseStartMarker)
	b.WriteString(ResponsePrefix)
	b.WriteString(name)

	trimmed := strings.TrimSpace(result)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		b.WriteString(trimmed)
	} else {
		b.WriteString("{value:")
		b.WriteString(DefaultEscapeToken)
		b.WriteString(result)
		b.WriteString(DefaultEscapeToken)
		b.WriteByte('}')
	}

	b.WriteString(ResponseEndMarker)
	return b.String()
}

// FormatDeclaration renders a tool declaration block for a system
// instruction. parameters is a JSON schema; an unencodable schema is written
// as an empty object.
func FormatDeclaration(name, description string, parameters map[string]any) string {
	schema := []byte("{}")
	if len(parameters) > 0 {
		if b, err := json.Marshal(parameters); err == nil {
			schema = b
		}
	}

	var b strings.Builder
	b.WriteString(DeclarationStartMarker)
	b.WriteString(DeclarationPrefix)
	b.WriteString(name)
	b.WriteString("{description:")
	b.WriteString(DefaultEscapeToken)
	b.WriteString(description)
	b.WriteString(DefaultEscapeToken)
	b.WriteString(",parameters:")
	b.Write(schema)
	b.WriteByte('}')
	b.WriteString(DeclarationEndMarker)
	return b.String()
}
