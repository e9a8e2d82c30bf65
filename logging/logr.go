package logging

import "github.com/go-logr/logr"

// LogrAdapter wraps a logr.Logger, e.g. one built with zapr inside a
// controller, to implement the Logger interface. Debug maps to V(1); logr
// has no warn level, so Warn logs at V(0) with level=warn.
type LogrAdapter struct {
	l logr.Logger
}

// NewLogrAdapter creates a Logger from a logr.Logger.
func NewLogrAdapter(l logr.Logger) *LogrAdapter {
	return &LogrAdapter{l: l}
}

// Debug logs a debug message.
func (a *LogrAdapter) Debug(msg string, args ...any) { a.l.V(1).Info(msg, args...) }

// Info logs an informational message.
func (a *LogrAdapter) Info(msg string, args ...any) { a.l.Info(msg, args...) }

// Warn logs a warning message.
func (a *LogrAdapter) Warn(msg string, args ...any) {
	a.l.Info(msg, append([]any{"level", "warn"}, args...)...)
}

// Error logs an error message. An error value under the "error" key is
// handed to logr as the error argument.
func (a *LogrAdapter) Error(msg string, args ...any) {
	var err error
	rest := make([]any, 0, len(args))
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) && args[i] == "error" {
			if e, ok := args[i+1].(error); ok && err == nil {
				err = e
				continue
			}
		}
		rest = append(rest, args[i:min(i+2, len(args))]...)
	}
	a.l.Error(err, msg, rest...)
}
