package amqp

import (
	"encoding/json"
	"time"
)

// ChangeMessage is the cross-process form of a ledger change event. It names
// the storage key that changed and the originating process; consumers re-read
// the authoritative store rather than trusting any payload, so no record data
// travels with it.
type ChangeMessage struct {
	Key       string    `json:"key"`
	Origin    string    `json:"origin"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage creates a change message for the given storage key.
func NewChangeMessage(key, origin string) *ChangeMessage {
	return &ChangeMessage{
		Key:       key,
		Origin:    origin,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
