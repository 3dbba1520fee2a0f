// Package logging provides a minimal logging interface and adapters for litertlm.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the parser, handler registry, tools and the assistant use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - StructuredLogger with component context and tool / generation helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	assistant := litertlm.New(func(o *litertlm.Options) { o.Logger = logger })
//
// Arguments after the message are slog style key/value pairs.
package logging
