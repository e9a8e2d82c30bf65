package testutil

import (
	"github.com/hupe1980/adkclient/core"
)

// SessionBuilder helps construct sessions with fluent chaining for tests.
// Example:
//
//	sess := NewSessionBuilder("sess-1").App("demo").State("k","v").Events(ev1, ev2).Build()
type SessionBuilder struct {
	id         string
	app        string
	user       string
	lastUpdate float64
	state      map[string]any
	events     []core.Event
}

// NewSessionBuilder creates a new builder for a session with the given id,
// app "multi_tool_agent" and user "user_1".
// Use chainable methods (App, User, State, Event, Events) then call Build.
func NewSessionBuilder(id string) *SessionBuilder {
	return &SessionBuilder{id: id, app: "multi_tool_agent", user: "user_1", state: map[string]any{}}
}

// App sets the app name (chainable).
func (b *SessionBuilder) App(app string) *SessionBuilder { b.app = app; return b }

// User sets the user id (chainable).
func (b *SessionBuilder) User(user string) *SessionBuilder { b.user = user; return b }

// LastUpdate sets the last update time in epoch seconds (chainable).
func (b *SessionBuilder) LastUpdate(ts float64) *SessionBuilder { b.lastUpdate = ts; return b }

// State sets or overwrites a state key/value pair on the resulting session (chainable).
func (b *SessionBuilder) State(key string, val any) *SessionBuilder {
	b.state[key] = val
	return b
}

// Event appends a single event to the session history (chainable).
func (b *SessionBuilder) Event(ev core.Event) *SessionBuilder {
	b.events = append(b.events, ev)
	return b
}

// Events appends multiple events to the session history (chainable).
func (b *SessionBuilder) Events(evs ...core.Event) *SessionBuilder {
	b.events = append(b.events, evs...)
	return b
}

// Build returns a core.Session with pre-populated state and events.
func (b *SessionBuilder) Build() core.Session {
	s := core.Session{ID: b.id, AppName: b.app, UserID: b.user, LastUpdateTime: b.lastUpdate}
	if len(b.state) > 0 {
		s.State = make(map[string]any, len(b.state))
		for k, v := range b.state {
			s.State[k] = v
		}
	}
	if len(b.events) > 0 {
		s.Events = append([]core.Event(nil), b.events...)
	}
	return s
}
