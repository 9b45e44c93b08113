// Package events fans capture notifications out to stream subscribers.
package events

import (
	"encoding/json"
	"time"
)

// Event types published by the capture pipeline.
const (
	TypeLeadCaptured   = "lead.captured"
	TypeCaptureSkipped = "capture.skipped"
	TypeAuditCompleted = "audit.completed"
	TypePing           = "ping"
)

// Event is the envelope written to subscribers.
type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	CaptureID string          `json:"capture_id,omitempty"`
	Origin    string          `json:"origin,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// MakeEvent encodes an event envelope. Marshal failures of data yield an
// envelope without a payload.
func MakeEvent(captureID, origin, typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			raw = b
		}
	}
	e := Event{
		Type:      typ,
		Version:   1,
		At:        time.Now().UTC(),
		CaptureID: captureID,
		Origin:    origin,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
