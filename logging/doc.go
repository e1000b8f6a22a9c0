// Package logging provides a minimal logging interface and adapters for ensemble.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the engine, stage runner and evaluators use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - EnsembleLogger with run / component context and domain helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	eng := engine.New(m, func(o *engine.Options) { o.Logger = logger })
//
// Arguments after the message are slog-style alternating key/value pairs.
package logging
