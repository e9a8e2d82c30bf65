// Package runner implements the conversation loop of the ADK client.
//
// A Runner glues the session.Manager to a turn submitter (normally a
// *client.Client): Start opens a session, Send builds a run request from the
// tracked session and aggregates the response, Stop terminates the session.
//
// # Branching choices
//
// The text fragments of the last response double as the choices of a
// branching conversation. Choose(i) feeds the i-th fragment back as the next
// user turn; an index outside the list fails with ErrNoSuchChoice.
//
// Only one turn per runner is in flight; a concurrent Send or Choose fails
// fast with ErrRunInProgress.
//
// With Options.Artifacts set, the artifact versions a turn reports are
// fetched into the cache before Send returns.
package runner
