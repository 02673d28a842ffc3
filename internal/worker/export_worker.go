// Package worker exports closed cash sessions to an external report sink.
// It reacts to session-collection change events and re-reads the
// authoritative store, never trusting event payloads, then appends sessions
// it has not exported yet.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"caja/internal/core"
	"caja/internal/kv"
	"caja/internal/ledger"
	"caja/internal/log"
)

// exportedKey tracks the ids of sessions already appended to the sink. The
// key is worker-owned; the ledger never touches it.
const exportedKey = "cashier_exported_sessions"

const exportPageSize = 50

// SessionAppender is the report sink, e.g. the Google Sheets client.
type SessionAppender interface {
	AppendClosedSession(ctx context.Context, session core.CashSession) error
}

type ExportWorker struct {
	service  *ledger.Service
	store    kv.Store
	appender SessionAppender
	logger   *log.Logger
	kick     chan struct{}
}

func NewExportWorker(service *ledger.Service, store kv.Store, appender SessionAppender, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportWorker{
		service:  service,
		store:    store,
		appender: appender,
		logger:   logger.WithComponent(log.ComponentWorker),
		kick:     make(chan struct{}, 1),
	}
}

// Run exports on every session-collection change and on a periodic resync
// tick that catches missed events. Blocks until the context is canceled.
func (w *ExportWorker) Run(ctx context.Context, resyncInterval time.Duration) error {
	unsubscribe := w.service.Notifier().Subscribe(func(ledger.Change) {
		select {
		case w.kick <- struct{}{}:
		default: // an export is already pending
		}
	}, ledger.KeySessions)
	defer unsubscribe()

	ticker := time.NewTicker(resyncInterval)
	defer ticker.Stop()

	// Startup pass picks up sessions closed while the worker was down
	if err := w.ExportPending(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup export failed", log.FieldError, err.Error())
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.kick:
		case <-ticker.C:
		}
		if err := w.ExportPending(ctx); err != nil {
			w.logger.ErrorContext(ctx, "Export pass failed", log.FieldError, err.Error())
		}
	}
}

// ExportPending appends every closed session not yet exported, oldest first,
// and records each success so a failed append is retried on the next pass.
func (w *ExportWorker) ExportPending(ctx context.Context) error {
	exported, err := w.exportedSet(ctx)
	if err != nil {
		return err
	}

	var pending []core.CashSession
	cursor := ""
	for {
		page, next, err := w.service.GetClosedSessions(ctx, exportPageSize, cursor)
		if err != nil {
			return fmt.Errorf("list closed sessions: %w", err)
		}
		for _, session := range page {
			if _, ok := exported[session.ID]; !ok {
				pending = append(pending, session)
			}
		}
		if next == "" {
			break
		}
		cursor = next
	}

	// Pages arrive newest first; export in chronological order
	for i := len(pending) - 1; i >= 0; i-- {
		session := pending[i]
		if err := w.appender.AppendClosedSession(ctx, session); err != nil {
			return fmt.Errorf("append session %s: %w", session.ID, err)
		}
		exported[session.ID] = struct{}{}
		if err := w.saveExportedSet(ctx, exported); err != nil {
			return err
		}
		w.logger.InfoContext(ctx, "Session exported",
			log.FieldOperation, log.OpExport,
			log.FieldSessionID, session.ID)
	}

	return nil
}

func (w *ExportWorker) exportedSet(ctx context.Context) (map[string]struct{}, error) {
	raw, ok, err := w.store.Get(ctx, exportedKey)
	if err != nil {
		return nil, fmt.Errorf("read exported set: %w", err)
	}
	set := make(map[string]struct{})
	if !ok || len(raw) == 0 {
		return set, nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		w.logger.WarnContext(ctx, "Malformed exported set, starting over",
			log.FieldError, err.Error())
		return set, nil
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (w *ExportWorker) saveExportedSet(ctx context.Context, set map[string]struct{}) error {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode exported set: %w", err)
	}
	if err := w.store.Set(ctx, exportedKey, raw); err != nil {
		return fmt.Errorf("write exported set: %w", err)
	}
	return nil
}
