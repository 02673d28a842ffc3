package amqp

import "testing"

func TestChangeMessageJSON(t *testing.T) {
	msg := NewChangeMessage("cashier_sessions", "proc-1")
	if msg.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	decoded, err := ChangeMessageFromJSON(data)
	if err != nil {
		t.Fatalf("ChangeMessageFromJSON() error = %v", err)
	}
	if decoded.Key != "cashier_sessions" || decoded.Origin != "proc-1" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestChangeMessageFromJSONInvalid(t *testing.T) {
	if _, err := ChangeMessageFromJSON([]byte("{broken")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
