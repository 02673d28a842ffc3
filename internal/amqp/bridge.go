package amqp

import (
	"context"

	"caja/internal/ledger"
	"caja/internal/log"
)

// Bridge joins a ledger notifier to the AMQP fanout: local changes go out,
// remote changes come in as if they were local. Origin ids keep a process
// from echoing its own events back into its notifier.
type Bridge struct {
	client   *Client
	notifier *ledger.Notifier
	origin   string
	logger   *log.Logger
}

func NewBridge(client *Client, notifier *ledger.Notifier, origin string, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Bridge{
		client:   client,
		notifier: notifier,
		origin:   origin,
		logger:   logger.WithComponent(log.ComponentAMQP),
	}
}

// Run forwards events both ways until the context is canceled. The outbound
// subscription is released on return.
func (b *Bridge) Run(ctx context.Context) error {
	unsubscribe := b.notifier.Subscribe(func(c ledger.Change) {
		// Only re-broadcast changes this process made itself
		if c.Origin != b.origin {
			return
		}
		if err := b.client.PublishChange(ctx, c.Key, c.Origin); err != nil {
			b.logger.ErrorContext(ctx, "Failed to publish change",
				log.FieldStorageKey, c.Key,
				log.FieldError, err.Error())
		}
	})
	defer unsubscribe()

	return b.client.ConsumeChanges(ctx, func(msg *ChangeMessage) {
		if msg.Origin == b.origin {
			return
		}
		b.logger.DebugContext(ctx, "Remote change received",
			log.FieldStorageKey, msg.Key,
			log.FieldOrigin, msg.Origin)
		b.notifier.Publish(ledger.Change{Key: msg.Key, Origin: msg.Origin})
	})
}
