package ledger

import "testing"

func TestNotifierKeyFiltering(t *testing.T) {
	n := NewNotifier()

	var sessionEvents, allEvents []Change
	unsubSessions := n.Subscribe(func(c Change) {
		sessionEvents = append(sessionEvents, c)
	}, KeySessions)
	unsubAll := n.Subscribe(func(c Change) {
		allEvents = append(allEvents, c)
	})
	defer unsubSessions()
	defer unsubAll()

	n.Publish(Change{Key: KeySessions, Origin: "p1"})
	n.Publish(Change{Key: KeyBills, Origin: "p1"})

	if len(sessionEvents) != 1 {
		t.Errorf("filtered subscriber got %d events, want 1", len(sessionEvents))
	}
	if len(allEvents) != 2 {
		t.Errorf("catch-all subscriber got %d events, want 2", len(allEvents))
	}
	if sessionEvents[0].Key != KeySessions || sessionEvents[0].Origin != "p1" {
		t.Errorf("event = %+v", sessionEvents[0])
	}
}

func TestNotifierUnsubscribe(t *testing.T) {
	n := NewNotifier()

	count := 0
	unsubscribe := n.Subscribe(func(Change) { count++ }, KeyBills)

	n.Publish(Change{Key: KeyBills})
	unsubscribe()
	n.Publish(Change{Key: KeyBills})
	unsubscribe() // second call is a no-op

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestNotifierCallbackMayUnsubscribeItself(t *testing.T) {
	n := NewNotifier()

	count := 0
	var unsubscribe func()
	unsubscribe = n.Subscribe(func(Change) {
		count++
		unsubscribe()
	}, KeySessions)

	n.Publish(Change{Key: KeySessions})
	n.Publish(Change{Key: KeySessions})

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestNotifierMultipleKeys(t *testing.T) {
	n := NewNotifier()

	var keys []string
	unsubscribe := n.Subscribe(func(c Change) {
		keys = append(keys, c.Key)
	}, KeySessions, KeyActiveSession)
	defer unsubscribe()

	n.Publish(Change{Key: KeySessions})
	n.Publish(Change{Key: KeyActiveSession})
	n.Publish(Change{Key: KeyTransactions})

	if len(keys) != 2 {
		t.Fatalf("got %d events, want 2", len(keys))
	}
	if keys[0] != KeySessions || keys[1] != KeyActiveSession {
		t.Errorf("keys = %v", keys)
	}
}
