// Package parser converts raw model output into either plain text or a
// structured function call.
//
// Grammar understood by the default Parser:
//
//	<start_function_call>call:get_weather{location: Paris, unit: celsius}<end_function_call>
//	<start_function_call>call:ping<end_function_call>
//
// Responses without the start marker are plain text and are returned
// unchanged. Markers are located by string search, so surrounding prose and
// whitespace are tolerated.
//
// Three parameter strategies are available:
//
//   - StrategyLenient splits the block on top-level commas and each pair on
//     the first colon after removing every <escape> token. Escaped commas are
//     still split on.
//   - StrategyStrict decodes the block as a JSON object and stringifies each
//     value. A block that is not valid JSON yields zero parameters.
//   - StrategyRepair turns <escape> delimited spans into JSON strings, repairs
//     the result (unquoted keys, trailing commas) and decodes it like
//     StrategyStrict. This is the only strategy that keeps delimiters inside
//     escaped values intact.
//
// A Parser holds no mutable state after construction and is safe for
// concurrent use.
package parser
