package testutil

import (
	"github.com/hupe1980/adkclient/core"
)

// EventBuilder provides a fluent helper for constructing events in tests.
// Example:
//
//	ev := NewEventBuilder().Author("agent").Invocation("inv-1").ModelText("hello").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type EventBuilder struct {
	author       string
	invocationID string
	id           string
	role         string
	parts        []core.Part
	partial      *bool
	turnComplete *bool
	errorCode    *string
	errorMessage *string
	actions      core.EventActions
	branch       *string
	longRunning  []string
	timestamp    float64
}

// NewEventBuilder creates a builder with default author "agent".
func NewEventBuilder() *EventBuilder { return &EventBuilder{author: "agent"} }

// Author sets the author name for the event (chainable).
func (b *EventBuilder) Author(a string) *EventBuilder { b.author = a; return b }

// Invocation sets the invocation ID associated with the event (chainable).
func (b *EventBuilder) Invocation(id string) *EventBuilder { b.invocationID = id; return b }

// ID overrides the auto-generated event ID (chainable). Use mainly in tests where determinism matters.
func (b *EventBuilder) ID(id string) *EventBuilder { b.id = id; return b }

// Branch sets the branch pointer for forked conversation paths (chainable).
func (b *EventBuilder) Branch(br string) *EventBuilder { b.branch = &br; return b }

// Timestamp sets the event time in fractional epoch seconds (chainable).
func (b *EventBuilder) Timestamp(ts float64) *EventBuilder { b.timestamp = ts; return b }

// Partial marks the event as a streaming / partial chunk (chainable).
func (b *EventBuilder) Partial(p bool) *EventBuilder { b.partial = &p; return b }

// TurnComplete sets the TurnComplete flag indicating model turn completion (chainable).
func (b *EventBuilder) TurnComplete(c bool) *EventBuilder { b.turnComplete = &c; return b }

// UserText appends a text part and sets role to user (chainable).
func (b *EventBuilder) UserText(t string) *EventBuilder {
	b.role = core.RoleUser
	b.parts = append(b.parts, core.TextPart{Text: t})
	return b
}

// ModelText appends a text part and sets role to model (chainable).
func (b *EventBuilder) ModelText(t string) *EventBuilder {
	b.role = core.RoleModel
	b.parts = append(b.parts, core.TextPart{Text: t})
	return b
}

// Thought appends a thought marker part (chainable).
func (b *EventBuilder) Thought() *EventBuilder {
	b.parts = append(b.parts, core.ThoughtPart{Thought: true})
	return b
}

// AddPart appends a custom content part (chainable).
func (b *EventBuilder) AddPart(p core.Part) *EventBuilder {
	b.parts = append(b.parts, p)
	return b
}

// FunctionCall adds a function call part with the provided id, name and arguments (chainable).
func (b *EventBuilder) FunctionCall(id, name string, args map[string]any) *EventBuilder {
	b.parts = append(b.parts, core.FunctionCallPart{ID: id, Name: name, Args: args})
	return b
}

// FunctionResponse adds a function response part representing tool execution output (chainable).
func (b *EventBuilder) FunctionResponse(id, name string, result any) *EventBuilder {
	b.parts = append(b.parts, core.FunctionResponsePart{ID: id, Name: name, Response: result})
	return b
}

// Error sets the error code and message carried by the event (chainable).
func (b *EventBuilder) Error(code, message string) *EventBuilder {
	b.errorCode = &code
	b.errorMessage = &message
	return b
}

// SkipSummarization sets the SkipSummarization action flag (chainable).
func (b *EventBuilder) SkipSummarization() *EventBuilder {
	t := true
	b.actions.SkipSummarization = &t
	return b
}

// Escalate sets the Escalate action flag (chainable).
func (b *EventBuilder) Escalate() *EventBuilder { t := true; b.actions.Escalate = &t; return b }

// Transfer sets the target agent for a transfer action (chainable).
func (b *EventBuilder) Transfer(to string) *EventBuilder { b.actions.TransferToAgent = &to; return b }

// StateDelta merges a key/value pair into the state delta action (chainable).
func (b *EventBuilder) StateDelta(key string, val any) *EventBuilder {
	if b.actions.StateDelta == nil {
		b.actions.StateDelta = map[string]any{}
	}
	b.actions.StateDelta[key] = val
	return b
}

// ArtifactDelta records a saved artifact version (chainable).
func (b *EventBuilder) ArtifactDelta(name string, version int) *EventBuilder {
	if b.actions.ArtifactDelta == nil {
		b.actions.ArtifactDelta = map[string]int{}
	}
	b.actions.ArtifactDelta[name] = version
	return b
}

// RequestAuth registers an auth request for a function call id (chainable).
func (b *EventBuilder) RequestAuth(functionCallID string, cfg core.AuthConfig) *EventBuilder {
	if b.actions.RequestedAuthConfigs == nil {
		b.actions.RequestedAuthConfigs = map[string]core.AuthConfig{}
	}
	b.actions.RequestedAuthConfigs[functionCallID] = cfg
	return b
}

// LongRunning registers one or more long-running tool IDs on the event (chainable).
func (b *EventBuilder) LongRunning(ids ...string) *EventBuilder {
	b.longRunning = append(b.longRunning, ids...)
	return b
}

// Build constructs the core.Event value.
func (b *EventBuilder) Build() core.Event {
	ev := core.Event{
		ID:           b.id,
		Author:       b.author,
		InvocationID: b.invocationID,
		Branch:       b.branch,
		Partial:      b.partial,
		TurnComplete: b.turnComplete,
		ErrorCode:    b.errorCode,
		ErrorMessage: b.errorMessage,
		Timestamp:    b.timestamp,
	}
	if ev.ID == "" {
		ev.ID = core.NewID()
	}
	if len(b.longRunning) > 0 {
		ev.LongRunningToolIDs = append([]string{}, b.longRunning...)
	}
	if !b.actions.IsZero() {
		actions := b.actions
		ev.Actions = &actions
	}
	if len(b.parts) > 0 {
		role := b.role
		if role == "" {
			role = core.RoleModel
		}
		ev.Content = &core.Content{Role: role, Parts: append([]core.Part(nil), b.parts...)}
	}
	return ev
}
