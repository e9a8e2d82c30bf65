package core

import (
	"encoding/json"
	"fmt"
)

// Conventional roles. Role is free text on the wire.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Content holds role + ordered parts. Order is render order.
type Content struct {
	Role  string // Conversation role (user, model, ...)
	Parts []Part // Ordered heterogeneous parts
}

// NewTextContent returns a single text part content for role.
func NewTextContent(role, text string) Content {
	return Content{Role: role, Parts: []Part{TextPart{Text: text}}}
}

// NewUserContent returns a single text part user content.
func NewUserContent(text string) Content {
	return NewTextContent(RoleUser, text)
}

type contentWire struct {
	Parts []json.RawMessage `json:"parts"`
	Role  string            `json:"role"`
}

// MarshalJSON encodes every part with EncodePart preserving order.
func (c Content) MarshalJSON() ([]byte, error) {
	w := contentWire{Role: c.Role, Parts: make([]json.RawMessage, 0, len(c.Parts))}
	for i, p := range c.Parts {
		raw, err := EncodePart(p)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		w.Parts = append(w.Parts, raw)
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes every part with DecodePart. Any part failing to decode
// fails the whole content.
func (c *Content) UnmarshalJSON(data []byte) error {
	var w contentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	parts := make([]Part, 0, len(w.Parts))
	for i, raw := range w.Parts {
		p, err := DecodePart(raw)
		if err != nil {
			return fmt.Errorf("part %d: %w", i, err)
		}
		parts = append(parts, p)
	}
	c.Role = w.Role
	c.Parts = parts
	return nil
}
