package core

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Event is one emitted record of a run. A run response is an ordered
// sequence of events. It captures:
//   - Correlation (InvocationID, ID, Author, Branch)
//   - Conversational content (optional role-based Parts)
//   - Orchestration directives (Actions)
//   - Tool / long-running operation hints (LongRunningToolIDs)
//   - Error / interruption metadata
//   - Grounding citations
//
// Content may be nil for control or error-only events. Timestamp is
// fractional seconds since the Unix epoch as sent by the server.
type Event struct {
	Content            *Content           `json:"content,omitempty"`
	GroundingMetadata  *GroundingMetadata `json:"groundingMetadata,omitempty"`
	Partial            *bool              `json:"partial,omitempty"`
	TurnComplete       *bool              `json:"turnComplete,omitempty"`
	ErrorCode          *string            `json:"errorCode,omitempty"`
	ErrorMessage       *string            `json:"errorMessage,omitempty"`
	Interrupted        *bool              `json:"interrupted,omitempty"`
	CustomMetadata     any                `json:"customMetadata,omitempty"`
	InvocationID       string             `json:"invocationId,omitempty"`
	Author             string             `json:"author,omitempty"`
	Actions            *EventActions      `json:"actions,omitempty"`
	LongRunningToolIDs []string           `json:"longRunningToolIds,omitempty"`
	Branch             *string            `json:"branch,omitempty"`
	ID                 string             `json:"id,omitempty"`
	Timestamp          float64            `json:"timestamp,omitempty"`
}

type eventFields Event

var eventSchema = schemaOf[eventFields]()

// UnmarshalJSON accepts camelCase and snake_case keys.
func (e *Event) UnmarshalJSON(data []byte) error {
	var f eventFields
	if _, err := eventSchema.decode(data, &f); err != nil {
		return err
	}
	*e = Event(f)
	return nil
}

// NewID generates a new unique identifier for events.
func NewID() string { return uuid.NewString() }

// Parts returns the event's content parts or nil.
func (e Event) Parts() []Part {
	if e.Content == nil {
		return nil
	}
	return e.Content.Parts
}

// IsPartial reports whether this event is a streaming fragment.
func (e Event) IsPartial() bool { return e.Partial != nil && *e.Partial }

// IsTurnComplete reports whether the server flagged the model turn complete.
func (e Event) IsTurnComplete() bool { return e.TurnComplete != nil && *e.TurnComplete }

// IsInterrupted reports whether the turn was interrupted.
func (e Event) IsInterrupted() bool { return e.Interrupted != nil && *e.Interrupted }

// HasError reports whether the event carries an error code or message.
func (e Event) HasError() bool {
	return (e.ErrorCode != nil && *e.ErrorCode != "") || (e.ErrorMessage != nil && *e.ErrorMessage != "")
}

// GetFunctionCalls returns any FunctionCall parts contained within the event
// content preserving their original order.
func (e Event) GetFunctionCalls() []FunctionCallPart {
	var calls []FunctionCallPart
	for _, p := range e.Parts() {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc)
		}
	}
	return calls
}

// GetFunctionResponses returns any FunctionResponse parts contained within the
// event content preserving their original order.
func (e Event) GetFunctionResponses() []FunctionResponsePart {
	var responses []FunctionResponsePart
	for _, p := range e.Parts() {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr)
		}
	}
	return responses
}

// HasTrailingCodeExecutionResult reports whether the last part is a code
// execution result.
func (e Event) HasTrailingCodeExecutionResult() bool {
	parts := e.Parts()
	if len(parts) == 0 {
		return false
	}
	_, ok := parts[len(parts)-1].(CodeExecutionResultPart)
	return ok
}

// IsFinalResponse reports whether the event ends the agent's turn: no pending
// tool calls/responses, not partial, no trailing code execution result. A
// skipped summarization or long running tool ids force final.
func (e Event) IsFinalResponse() bool {
	if (e.Actions != nil && e.Actions.SkipSummarization != nil && *e.Actions.SkipSummarization) || len(e.LongRunningToolIDs) > 0 {
		return true
	}

	return len(e.GetFunctionCalls()) == 0 &&
		len(e.GetFunctionResponses()) == 0 &&
		!e.IsPartial() &&
		!e.HasTrailingCodeExecutionResult()
}

// Time converts Timestamp to a UTC time.Time.
func (e Event) Time() time.Time { return secondsToTime(e.Timestamp) }

func secondsToTime(s float64) time.Time {
	sec, frac := math.Modf(s)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
