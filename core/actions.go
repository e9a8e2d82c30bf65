package core

// EventActions encodes side-effects or orchestration signals attached to an
// Event. All fields are optional pointers / maps so absence can be
// distinguished from zero values.
type EventActions struct {
	SkipSummarization    *bool                 `json:"skipSummarization,omitempty"`
	StateDelta           map[string]any        `json:"stateDelta,omitempty"`
	ArtifactDelta        map[string]int        `json:"artifactDelta,omitempty"`
	TransferToAgent      *string               `json:"transferToAgent,omitempty"`
	Escalate             *bool                 `json:"escalate,omitempty"`
	RequestedAuthConfigs map[string]AuthConfig `json:"requestedAuthConfigs,omitempty"`
}

type eventActionsFields EventActions

var eventActionsSchema = schemaOf[eventActionsFields]()

// UnmarshalJSON accepts camelCase and snake_case keys. The contents of the
// delta maps are taken verbatim.
func (a *EventActions) UnmarshalJSON(data []byte) error {
	var f eventActionsFields
	if _, err := eventActionsSchema.decode(data, &f); err != nil {
		return err
	}
	*a = EventActions(f)
	return nil
}

// IsZero reports whether no action is set.
func (a EventActions) IsZero() bool {
	return a.SkipSummarization == nil &&
		len(a.StateDelta) == 0 &&
		len(a.ArtifactDelta) == 0 &&
		a.TransferToAgent == nil &&
		a.Escalate == nil &&
		len(a.RequestedAuthConfigs) == 0
}

// ShouldEscalate reports whether the escalate flag is set and true.
func (a EventActions) ShouldEscalate() bool { return a.Escalate != nil && *a.Escalate }

// TransferTarget returns the agent a transfer is directed to, if any.
func (a EventActions) TransferTarget() (string, bool) {
	if a.TransferToAgent == nil || *a.TransferToAgent == "" {
		return "", false
	}
	return *a.TransferToAgent, true
}
