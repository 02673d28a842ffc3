package ledger

import "sync"

// Change identifies which stored collection changed. Subscribers are expected
// to re-read the authoritative store rather than trust any payload, so the
// event deliberately carries no data beyond the key. Origin identifies the
// process that performed the mutation; the AMQP bridge uses it to avoid
// echoing remote changes back out.
type Change struct {
	Key    string
	Origin string
}

// Notifier is the ledger-owned change emitter. Events are delivered
// synchronously to every subscriber, including subscribers in the same
// process as the mutator, so local views and remote processes observe the
// same signal.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscription
}

type subscription struct {
	keys map[string]struct{} // empty means all keys
	fn   func(Change)
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]*subscription)}
}

// Subscribe registers fn for changes to the given keys (all keys when none
// are given) and returns the unsubscribe function. The caller must invoke it
// to avoid leaking the listener.
func (n *Notifier) Subscribe(fn func(Change), keys ...string) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	sub := &subscription{fn: fn, keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		sub.keys[k] = struct{}{}
	}
	n.subs[id] = sub
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

// Publish delivers the change to all matching subscribers. Callbacks run
// outside the notifier lock so they may subscribe or unsubscribe themselves.
func (n *Notifier) Publish(c Change) {
	n.mu.Lock()
	matched := make([]func(Change), 0, len(n.subs))
	for _, sub := range n.subs {
		if len(sub.keys) == 0 {
			matched = append(matched, sub.fn)
			continue
		}
		if _, ok := sub.keys[c.Key]; ok {
			matched = append(matched, sub.fn)
		}
	}
	n.mu.Unlock()

	for _, fn := range matched {
		fn(c)
	}
}
