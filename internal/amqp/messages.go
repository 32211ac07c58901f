package amqp

import (
	"encoding/json"
	"time"

	"pft/internal/core"
)

// MessageVersion is bumped when RecordMessage changes shape.
const MessageVersion = 1

// RecordMessage is the body published for every record the finance API
// accepted.
type RecordMessage struct {
	Version int                `json:"version"`
	Event   core.RecordCreated `json:"event"`
	SentAt  time.Time          `json:"sent_at"`
}

// NewRecordMessage wraps ev with the current version and time.
func NewRecordMessage(ev core.RecordCreated) *RecordMessage {
	return &RecordMessage{
		Version: MessageVersion,
		Event:   ev,
		SentAt:  time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordMessageFromJSON decodes a published body.
func RecordMessageFromJSON(data []byte) (*RecordMessage, error) {
	var msg RecordMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
