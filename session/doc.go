// Package session tracks the single active ADK session of a client.
//
// The Manager moves between two states, no session (core.EmptySession) and
// exactly one active session, via Create and Terminate. It never holds more
// than one session: creating while one is tracked is a caller error and
// fails with core.ErrSessionActive instead of silently replacing it.
//
// Presentation layers observe transitions through the OnChange option.
package session
