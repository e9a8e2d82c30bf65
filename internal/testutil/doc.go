// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing core model objects (sessions, events,
// function call parts). They are not intended for production usage.
package testutil
