// Package handler provides the callback slots through which host code
// receives work from the assistant: a tool executor that answers function
// calls and a transcript handler that receives speech-to-text results.
//
// Each slot holds at most one handler. Registering replaces the previous
// handler, and invoking an empty slot is a logged no-op rather than an error.
// A Registry is an ordinary value owned by its creator; there is no package
// level state.
package handler
