package parser

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"
)

// decodeLenient splits "k: v, k2: v2" into a map. Escape tokens are removed
// first, so commas and colons inside escaped values still split.
func (p *Parser) decodeLenient(block string) map[string]string {
	params := map[string]string{}
	if block == "" {
		return params
	}

	if esc := p.opts.EscapeToken; esc != "" {
		block = strings.ReplaceAll(block, esc, "")
	}

	for _, pair := range splitTopLevel(block, ',') {
		key, value, ok := strings.Cut(pair, ":")
		if !ok {
			p.logger.Debug("parser.param.dropped", "pair", pair)
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			p.logger.Debug("parser.param.dropped", "pair", pair)
			continue
		}
		value = strings.TrimSpace(value)
		params[key] = value
		p.logger.Debug("parser.param.found", "key", key, "value", value)
	}

	return params
}

// splitTopLevel splits s on sep outside of nested groups. Empty segments are
// dropped. A bracket only opens a group when it is closed again within s and
// the group reads like a nested value (see nestedGroups); any other bracket
// is plain text, so values holding stray brackets still split.
func splitTopLevel(s string, sep byte) []string {
	groups := nestedGroups(s)

	var (
		parts []string
		last  int
	)

	flush := func(end int) {
		if seg := strings.TrimSpace(s[last:end]); seg != "" {
			parts = append(parts, seg)
		}
	}

	for i := 0; i < len(s); i++ {
		if end, ok := groups[i]; ok {
			i = end
			continue
		}
		if s[i] == sep {
			flush(i)
			last = i + 1
		}
	}
	flush(len(s))

	return parts
}

// nestedGroups maps the index of every accepted opening bracket to the index
// of its closing bracket. Pairs are matched by type; unmatched brackets are
// ignored. An object group is accepted when each of its comma separated
// segments holds a colon, a list group when it holds no colon of its own.
// Inner groups are judged first, so an accepted outer group may contain
// colons or commas inside accepted inner ones.
func nestedGroups(s string) map[int]int {
	var (
		groups = map[int]int{}
		stack  []int
	)

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{', '[':
			stack = append(stack, i)
		case '}', ']':
			if len(stack) == 0 {
				continue
			}
			open := stack[len(stack)-1]
			if closerOf(s[open]) != s[i] {
				continue
			}
			stack = stack[:len(stack)-1]
			if acceptGroup(s, open, i, groups) {
				groups[open] = i
			}
		}
	}

	return groups
}

func closerOf(open byte) byte {
	if open == '[' {
		return ']'
	}
	return '}'
}

func acceptGroup(s string, open, end int, groups map[int]int) bool {
	var (
		segColon bool
		anyColon bool
		segStart = open + 1
	)

	for i := open + 1; i < end; i++ {
		if inner, ok := groups[i]; ok {
			i = inner
			continue
		}
		switch s[i] {
		case ':':
			segColon, anyColon = true, true
		case ',':
			if s[open] == '{' && !segColon {
				return false
			}
			segColon = false
			segStart = i + 1
		}
	}

	if s[open] == '[' {
		return !anyColon
	}
	// a trailing comma leaves an empty last segment
	return segColon || strings.TrimSpace(s[segStart:end]) == ""
}

// decodeStructured decodes a JSON object block with the strict or repair
// strategy. Failures are logged and yield zero parameters.
func (p *Parser) decodeStructured(obj string) map[string]string {
	var (
		params map[string]string
		err    error
	)

	switch p.opts.Strategy {
	case StrategyRepair:
		params, err = p.decodeRepaired(obj)
	default:
		params, err = decodeJSONObject(obj)
	}

	if err != nil {
		p.logger.Warn("parser.params.malformed", "strategy", p.opts.Strategy.String(), "error", err.Error())
		return map[string]string{}
	}

	return params
}

func (p *Parser) decodeRepaired(obj string) (map[string]string, error) {
	quoted := quoteEscapedSpans(obj, p.opts.EscapeToken)

	repaired, err := jsonrepair.JSONRepair(quoted)
	if err != nil {
		return nil, &ParamError{Strategy: StrategyRepair, Block: obj, Err: err}
	}

	params, err := decodeJSONObject(repaired)
	if err != nil {
		return nil, &ParamError{Strategy: StrategyRepair, Block: obj, Err: err}
	}
	return params, nil
}

// decodeJSONObject flattens a JSON object into string values. Strings are
// unquoted, null becomes "" and nested values keep their raw JSON text.
func decodeJSONObject(obj string) (map[string]string, error) {
	if !gjson.Valid(obj) {
		return nil, &ParamError{Strategy: StrategyStrict, Block: obj}
	}

	res := gjson.Parse(obj)
	if !res.IsObject() {
		return nil, &ParamError{Strategy: StrategyStrict, Block: obj}
	}

	params := map[string]string{}
	res.ForEach(func(key, value gjson.Result) bool {
		params[key.String()] = value.String()
		return true
	})

	return params, nil
}

// quoteEscapedSpans replaces every esc...esc span with a JSON string literal.
// An unterminated span runs to the end of the block.
func quoteEscapedSpans(block, esc string) string {
	if esc == "" || !strings.Contains(block, esc) {
		return block
	}

	parts := strings.Split(block, esc)

	var b strings.Builder
	for i, part := range parts {
		if i%2 == 0 {
			b.WriteString(part)
			continue
		}
		// string values always marshal
		lit, _ := json.Marshal(part)
		b.Write(lit)
	}

	return b.String()
}
