package parser

import (
	"strings"
	"unicode"

	"github.com/hupe1980/litertlm/logging"
)

// Default grammar tokens.
const (
	DefaultStartMarker = "<start_function_call>"
	DefaultEndMarker   = "<end_function_call>"
	DefaultCallPrefix  = "call:"
	DefaultEscapeToken = "<escape>"
)

// Strategy selects how the parameter block of a call is decoded.
type Strategy int

const (
	// StrategyLenient splits on commas and colons after stripping escape tokens.
	StrategyLenient Strategy = iota
	// StrategyStrict decodes the block as a JSON object.
	StrategyStrict
	// StrategyRepair quotes escaped spans, repairs and then decodes as JSON.
	StrategyRepair
)

// String returns the string representation of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyLenient:
		return "lenient"
	case StrategyStrict:
		return "strict"
	case StrategyRepair:
		return "repair"
	default:
		return "unknown"
	}
}

// Options configures a Parser.
type Options struct {
	// StartMarker opens a call block. Its absence makes a response plain text.
	StartMarker string
	// EndMarker closes a call block. A missing end marker is tolerated.
	EndMarker string
	// CallPrefix follows the start marker and precedes the function name.
	CallPrefix string
	// EscapeToken wraps values that may contain delimiters.
	EscapeToken string
	// Strategy selects the parameter block decoder.
	Strategy Strategy
	// Logger receives debug traces and malformed block warnings.
	Logger logging.Logger
}

// Parser turns raw model responses into plain text or function calls.
type Parser struct {
	opts   Options
	logger logging.Logger
}

// New creates a Parser for the default grammar with optional overrides.
// Empty marker overrides fall back to the defaults.
func New(optFns ...func(o *Options)) *Parser {
	opts := Options{
		StartMarker: DefaultStartMarker,
		EndMarker:   DefaultEndMarker,
		CallPrefix:  DefaultCallPrefix,
		EscapeToken: DefaultEscapeToken,
		Strategy:    StrategyLenient,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.StartMarker == "" {
		opts.StartMarker = DefaultStartMarker
	}
	if opts.EndMarker == "" {
		opts.EndMarker = DefaultEndMarker
	}
	return &Parser{opts: opts, logger: logging.OrNoOp(opts.Logger)}
}

// Options returns a copy of the parser configuration.
func (p *Parser) Options() Options { return p.opts }

// Parse inspects raw and returns either plain text or the first function
// call it contains.
//
// A detected block with an empty function name returns ErrEmptyFunctionName
// together with a plain text result carrying raw. Parameter blocks that
// cannot be decoded degrade to zero parameters.
func (p *Parser) Parse(raw string) (Result, error) {
	start := strings.Index(raw, p.opts.StartMarker)
	if start < 0 {
		return Result{Kind: KindText, Text: raw}, nil
	}

	block, _ := p.cutBlock(raw[start+len(p.opts.StartMarker):])

	call, err := p.parseBlock(block)
	if err != nil {
		p.logger.Warn("parser.call.rejected", "error", err.Error())
		return Result{Kind: KindText, Text: raw}, err
	}

	return Result{
		Kind: KindFunctionCall,
		Text: strings.TrimSpace(raw[:start]),
		Call: &call,
	}, nil
}

// ParseAll returns every function call in raw in order of appearance along
// with the prose found outside the call blocks.
//
// Blocks with an empty function name are skipped. When blocks were found but
// none of them was valid, ErrEmptyFunctionName is returned.
func (p *Parser) ParseAll(raw string) ([]FunctionCall, string, error) {
	var (
		calls  []FunctionCall
		prose  []string
		blocks int
	)

	rest := raw
	for {
		i := strings.Index(rest, p.opts.StartMarker)
		if i < 0 {
			prose = appendProse(prose, rest)
			break
		}
		prose = appendProse(prose, rest[:i])

		var block string
		block, rest = p.cutBlock(rest[i+len(p.opts.StartMarker):])
		blocks++

		call, err := p.parseBlock(block)
		if err != nil {
			p.logger.Warn("parser.call.skipped", "index", blocks-1, "error", err.Error())
			continue
		}
		calls = append(calls, call)
	}

	if blocks == 0 {
		return nil, raw, nil
	}

	text := strings.Join(prose, "\n")
	if len(calls) == 0 {
		return nil, text, ErrEmptyFunctionName
	}
	return calls, text, nil
}

func appendProse(prose []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		prose = append(prose, s)
	}
	return prose
}

// cutBlock splits s, the text following a start marker, into the call block
// and whatever follows its end marker. An unterminated block ends at the
// next start marker or at the end of input.
func (p *Parser) cutBlock(s string) (block, rest string) {
	end := strings.Index(s, p.opts.EndMarker)
	next := strings.Index(s, p.opts.StartMarker)
	switch {
	case end >= 0 && (next < 0 || end < next):
		return s[:end], s[end+len(p.opts.EndMarker):]
	case next >= 0:
		return s[:next], s[next:]
	default:
		return s, ""
	}
}

// parseBlock decodes the content between the markers.
func (p *Parser) parseBlock(block string) (FunctionCall, error) {
	body := strings.TrimLeftFunc(block, unicode.IsSpace)
	if p.opts.CallPrefix != "" {
		body = strings.TrimPrefix(body, p.opts.CallPrefix)
	}

	p.logger.Debug("parser.call.cleaned", "body", body)

	open := strings.IndexByte(body, '{')
	if open < 0 {
		name := strings.TrimSpace(body)
		if name == "" {
			return FunctionCall{}, ErrEmptyFunctionName
		}
		return FunctionCall{Name: name, Parameters: map[string]string{}}, nil
	}

	name := strings.TrimSpace(body[:open])
	if name == "" {
		return FunctionCall{}, ErrEmptyFunctionName
	}

	var params map[string]string
	switch p.opts.Strategy {
	case StrategyStrict, StrategyRepair:
		closing := p.matchingBrace(body, open)
		if closing < 0 {
			// unbalanced, e.g. a dangling escape token: settle for the last brace
			if last := strings.LastIndexByte(body, '}'); last > open {
				closing = last
			}
		}
		obj := body[open:]
		if closing >= 0 {
			obj = body[open : closing+1]
		}
		params = p.decodeStructured(strings.TrimSpace(obj))
	default:
		// values may hold stray braces, so the block runs to the last one
		inner := body[open+1:]
		if last := strings.LastIndexByte(body, '}'); last > open {
			inner = body[open+1 : last]
		}
		params = p.decodeLenient(strings.TrimSpace(inner))
	}

	p.logger.Debug("parser.call.detected", "function", name, "params", len(params), "strategy", p.opts.Strategy.String())

	return FunctionCall{Name: name, Parameters: params}, nil
}

// matchingBrace returns the index of the brace closing the one at open, or
// -1 when the block is unbalanced. Braces inside escape-delimited spans and
// JSON strings are ignored.
func (p *Parser) matchingBrace(s string, open int) int {
	esc := p.opts.EscapeToken

	var (
		depth    int
		inQuote  bool
		inEscape bool
	)

	for i := open; i < len(s); {
		if esc != "" && !inQuote && strings.HasPrefix(s[i:], esc) {
			inEscape = !inEscape
			i += len(esc)
			continue
		}

		c := s[i]
		if inEscape {
			i++
			continue
		}

		if inQuote {
			switch c {
			case '\\':
				i += 2
				continue
			case '"':
				inQuote = false
			}
			i++
			continue
		}
		if c == '"' {
			inQuote = true
			i++
			continue
		}

		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
		i++
	}

	return -1
}

var defaultParser = New()

// Parse parses raw with the default lenient parser.
func Parse(raw string) (Result, error) { return defaultParser.Parse(raw) }

// ParseAll parses every call block in raw with the default lenient parser.
func ParseAll(raw string) ([]FunctionCall, string, error) { return defaultParser.ParseAll(raw) }
