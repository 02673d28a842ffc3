// Package ledger is the persistence and derived-accounting layer of the cash
// register: four record collections held whole in a key-value store, CRUD and
// filtered-query operations over them, and change notifications for
// multi-view and multi-process synchronization.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"caja/internal/core"
	"caja/internal/kv"
	"caja/internal/log"
)

// Reserved storage keys. Each one holds a whole serialized collection, except
// KeyActiveSession which holds a bare session id.
const (
	KeySessions       = "cashier_sessions"
	KeyTransactions   = "cashier_transactions"
	KeyBills          = "cashier_bills"
	KeyActiveSession  = "cashier_active_session"
	KeyCategoryConfig = "categoryConfig"
)

// ErrNotFound is returned when an operation targets an id absent from its
// collection.
var ErrNotFound = errors.New("record not found")

// Service owns the four collections. Mutations are serialized in-process;
// across processes sharing the same store the write of a whole collection is
// last-writer-wins, with no concurrency token. That weakness is accepted, not
// papered over.
type Service struct {
	store    kv.Store
	notifier *Notifier
	logger   *log.Logger
	origin   string

	mu sync.Mutex
}

func New(store kv.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Service{
		store:    store,
		notifier: NewNotifier(),
		logger:   logger.WithComponent(log.ComponentLedger),
		origin:   core.NewID(),
	}
}

// Notifier exposes the change emitter, e.g. for the AMQP bridge.
func (s *Service) Notifier() *Notifier { return s.notifier }

// Origin identifies this service instance in change events.
func (s *Service) Origin() string { return s.origin }

func (s *Service) publish(key string) {
	s.notifier.Publish(Change{Key: key, Origin: s.origin})
}

// readCollection loads and decodes a whole collection. A missing key or
// non-parseable stored value yields an empty collection: the store is not
// assumed tamper-proof, and malformed content is recovered from silently
// rather than propagated.
func readCollection[T any](ctx context.Context, s *Service, key string) ([]T, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.WarnContext(ctx, "Malformed stored collection, treating as empty",
			log.FieldStorageKey, key,
			log.FieldError, err.Error())
		return nil, nil
	}
	return items, nil
}

func writeCollection[T any](ctx context.Context, s *Service, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Service) activeSessionID(ctx context.Context) (string, error) {
	raw, ok, err := s.store.Get(ctx, KeyActiveSession)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", KeyActiveSession, err)
	}
	if !ok {
		return "", nil
	}
	return string(raw), nil
}

func (s *Service) setActiveSessionID(ctx context.Context, id string) error {
	if id == "" {
		if err := s.store.Delete(ctx, KeyActiveSession); err != nil {
			return fmt.Errorf("clear %s: %w", KeyActiveSession, err)
		}
		return nil
	}
	if err := s.store.Set(ctx, KeyActiveSession, []byte(id)); err != nil {
		return fmt.Errorf("write %s: %w", KeyActiveSession, err)
	}
	return nil
}
