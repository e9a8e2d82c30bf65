package core

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/tidwall/gjson"
)

// ParseRunResponse decodes a run response body: a JSON array of event
// objects. Any structural failure, including an unrecognized part, is
// returned as *MalformedResponseError wrapping the cause.
func ParseRunResponse(body []byte) ([]Event, error) {
	if !gjson.ValidBytes(body) {
		return nil, &MalformedResponseError{Err: fmt.Errorf("body is not valid JSON")}
	}
	if !gjson.ParseBytes(body).IsArray() {
		return nil, &MalformedResponseError{Err: fmt.Errorf("body is not a JSON array")}
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}

	events := make([]Event, 0, len(raws))
	for i, raw := range raws {
		if !gjson.ParseBytes(raw).IsObject() {
			return nil, &MalformedResponseError{Err: fmt.Errorf("event %d is not a JSON object", i)}
		}
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, &MalformedResponseError{Err: fmt.Errorf("event %d: %w", i, err)}
		}
		events = append(events, ev)
	}
	return events, nil
}

// ExtractText returns the text of every TextPart, in event order then part
// order. Other part variants are skipped.
func ExtractText(events []Event) []string {
	var texts []string
	for _, ev := range events {
		for _, p := range ev.Parts() {
			if t, ok := PartText(p); ok {
				texts = append(texts, t)
			}
		}
	}
	return texts
}

// ExtractParts returns every part of variant T with the ExtractText ordering.
func ExtractParts[T Part](events []Event) []T {
	var out []T
	for _, ev := range events {
		for _, p := range ev.Parts() {
			if v, ok := p.(T); ok {
				out = append(out, v)
			}
		}
	}
	return out
}

// ExtractPartsFunc returns the parts matching keep, with the ExtractText
// ordering.
func ExtractPartsFunc(events []Event, keep func(Part) bool) []Part {
	var out []Part
	for _, ev := range events {
		for _, p := range ev.Parts() {
			if keep(p) {
				out = append(out, p)
			}
		}
	}
	return out
}

// EventError is an error reported by the server inside one event of a batch.
type EventError struct {
	Index        int // Position of the event in the batch
	EventID      string
	InvocationID string
	Author       string
	Code         string
	Message      string
}

func (e EventError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("event %d: %s: %s", e.Index, e.Code, e.Message)
	case e.Code != "":
		return fmt.Sprintf("event %d: %s", e.Index, e.Code)
	default:
		return fmt.Sprintf("event %d: %s", e.Index, e.Message)
	}
}

// EventErrors returns the errors carried by events, in event order.
func EventErrors(events []Event) []EventError {
	var errs []EventError
	for i, ev := range events {
		if !ev.HasError() {
			continue
		}
		ee := EventError{Index: i, EventID: ev.ID, InvocationID: ev.InvocationID, Author: ev.Author}
		if ev.ErrorCode != nil {
			ee.Code = *ev.ErrorCode
		}
		if ev.ErrorMessage != nil {
			ee.Message = *ev.ErrorMessage
		}
		errs = append(errs, ee)
	}
	return errs
}

// RunResult is the aggregate of one run response. Texts and Errors are
// independent: a batch with failing events still yields the text of the
// others.
type RunResult struct {
	Events               []Event
	Texts                []string
	Errors               []EventError
	TurnComplete         bool
	TransferToAgent      string
	Escalated            bool
	StateDelta           map[string]any
	ArtifactDelta        map[string]int
	RequestedAuthConfigs map[string]AuthConfig
	LongRunningToolIDs   []string
}

// Aggregate folds a batch of events into a RunResult. Deltas are merged in
// event order, later events winning; the last transfer target wins.
func Aggregate(events []Event) RunResult {
	res := RunResult{
		Events: events,
		Texts:  ExtractText(events),
		Errors: EventErrors(events),
	}
	for _, ev := range events {
		if ev.IsTurnComplete() {
			res.TurnComplete = true
		}
		res.LongRunningToolIDs = append(res.LongRunningToolIDs, ev.LongRunningToolIDs...)
		if ev.Actions == nil {
			continue
		}
		a := ev.Actions
		if target, ok := a.TransferTarget(); ok {
			res.TransferToAgent = target
		}
		if a.ShouldEscalate() {
			res.Escalated = true
		}
		for k, v := range a.StateDelta {
			if res.StateDelta == nil {
				res.StateDelta = make(map[string]any)
			}
			res.StateDelta[k] = v
		}
		for k, v := range a.ArtifactDelta {
			if res.ArtifactDelta == nil {
				res.ArtifactDelta = make(map[string]int)
			}
			res.ArtifactDelta[k] = v
		}
		for k, v := range a.RequestedAuthConfigs {
			if res.RequestedAuthConfigs == nil {
				res.RequestedAuthConfigs = make(map[string]AuthConfig)
			}
			res.RequestedAuthConfigs[k] = v
		}
	}
	return res
}

// Err combines the event errors of the batch, nil when there are none.
func (r RunResult) Err() error {
	var result *multierror.Error
	for _, e := range r.Errors {
		result = multierror.Append(result, e)
	}
	return result.ErrorOrNil()
}

// HasErrors reports whether any event carried an error.
func (r RunResult) HasErrors() bool { return len(r.Errors) > 0 }
