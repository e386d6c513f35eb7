// Package protocol defines the wire vocabulary shared with the game server:
// inbound event envelopes, their typed payloads, outbound commands and the
// runner session states. Shapes are validated here once, at the boundary, so
// rendering code downstream can assume well-formed data.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingType marks an inbound frame that carries neither a "type" nor an
// "event" key. Such frames are logged and dropped, never dispatched.
var ErrMissingType = errors.New("message has no type or event key")

// Envelope is one inbound server message. Data stays raw until Decode picks
// the payload type for the event. Cmd is only set on response frames, echoing
// the command being acknowledged.
type Envelope struct {
	Type      string          `json:"type"`
	Cmd       string          `json:"cmd,omitempty"`
	Data      json.RawMessage `json:"data"`
	Timestamp float64         `json:"timestamp,omitempty"` // server clock, unix seconds
}

// wireEnvelope accepts both the canonical "type" key and the legacy "event"
// alias some emitters use.
type wireEnvelope struct {
	Type      string          `json:"type"`
	Event     string          `json:"event"`
	Cmd       string          `json:"cmd"`
	Data      json.RawMessage `json:"data"`
	Timestamp float64         `json:"timestamp"`
}

// ParseEnvelope decodes one raw frame into an Envelope.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}

	typ := w.Type
	if typ == "" {
		typ = w.Event
	}
	if typ == "" {
		return nil, ErrMissingType
	}

	return &Envelope{
		Type:      typ,
		Cmd:       w.Cmd,
		Data:      w.Data,
		Timestamp: w.Timestamp,
	}, nil
}
