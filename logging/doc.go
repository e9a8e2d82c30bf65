// Package logging provides a minimal logging interface and adapters for the
// ADK client.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the client, session manager and runner use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - ZapAdapter for hosts standardised on go.uber.org/zap
//   - LogrAdapter for hosts passing a logr.Logger (controllers, zapr)
//   - ClientLogger with HTTP call and run helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	c := client.New(func(o *client.Options) { o.Logger = logger })
package logging
