// Package model defines the provider-agnostic generation abstractions used by
// the assistant.
//
// A Generator is the conversational engine the assistant drives: it answers
// prompts, accepts tool results and keeps its own conversation state. Two
// implementations ship with the package:
//   - Simulator: deterministic, in-process stand-in for an on-device model,
//     useful for tests, examples and editor-style development
//   - ChatGenerator: adapts any stateless Completer (see the openai and
//     anthropic subpackages) into a Generator by keeping a conversation
//     history and rendering tool results as function response turns
package model
