package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"caja/internal/core"
	"caja/internal/kv"
	"caja/internal/ledger"
	"caja/internal/log"
)

type recordingAppender struct {
	appended []string
	failOn   string
}

func (a *recordingAppender) AppendClosedSession(_ context.Context, session core.CashSession) error {
	if a.failOn != "" && session.ID == a.failOn {
		return errors.New("sink unavailable")
	}
	a.appended = append(a.appended, session.ID)
	return nil
}

func newWorkerFixture(t *testing.T) (*ledger.Service, kv.Store, *recordingAppender, *ExportWorker) {
	t.Helper()
	store := kv.NewMemory()
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	service := ledger.New(store, logger)
	appender := &recordingAppender{}
	return service, store, appender, NewExportWorker(service, store, appender, logger)
}

func closeNewSession(t *testing.T, service *ledger.Service, opening float64) string {
	t.Helper()
	ctx := context.Background()
	session, err := service.CreateSession(ctx, opening, "ana")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if err := service.CloseSession(ctx, session.ID, opening); err != nil {
		t.Fatalf("CloseSession() error = %v", err)
	}
	return session.ID
}

func TestExportPending(t *testing.T) {
	ctx := context.Background()
	service, _, appender, worker := newWorkerFixture(t)

	first := closeNewSession(t, service, 100)
	second := closeNewSession(t, service, 200)

	if err := worker.ExportPending(ctx); err != nil {
		t.Fatalf("ExportPending() error = %v", err)
	}
	if len(appender.appended) != 2 {
		t.Fatalf("appended %d sessions, want 2", len(appender.appended))
	}
	seen := map[string]bool{}
	for _, id := range appender.appended {
		seen[id] = true
	}
	if !seen[first] || !seen[second] {
		t.Errorf("appended = %v, want both %s and %s", appender.appended, first, second)
	}

	// A second pass exports nothing new
	if err := worker.ExportPending(ctx); err != nil {
		t.Fatalf("ExportPending() error = %v", err)
	}
	if len(appender.appended) != 2 {
		t.Errorf("appended %d sessions after second pass, want 2", len(appender.appended))
	}

	// Sessions closed later are picked up by the next pass
	third := closeNewSession(t, service, 300)
	if err := worker.ExportPending(ctx); err != nil {
		t.Fatalf("ExportPending() error = %v", err)
	}
	if len(appender.appended) != 3 || appender.appended[2] != third {
		t.Errorf("appended = %v, want %s last", appender.appended, third)
	}
}

func TestExportPendingRetriesAfterFailure(t *testing.T) {
	ctx := context.Background()
	service, _, appender, worker := newWorkerFixture(t)

	failing := closeNewSession(t, service, 100)
	appender.failOn = failing

	if err := worker.ExportPending(ctx); err == nil {
		t.Fatal("ExportPending() error = nil, want sink failure")
	}
	if len(appender.appended) != 0 {
		t.Fatalf("appended = %v, want none", appender.appended)
	}

	// Once the sink recovers the session is exported exactly once
	appender.failOn = ""
	if err := worker.ExportPending(ctx); err != nil {
		t.Fatalf("ExportPending() error = %v", err)
	}
	if len(appender.appended) != 1 || appender.appended[0] != failing {
		t.Errorf("appended = %v, want [%s]", appender.appended, failing)
	}
}

func TestExportedSetSurvivesMalformedState(t *testing.T) {
	ctx := context.Background()
	service, store, appender, worker := newWorkerFixture(t)

	id := closeNewSession(t, service, 100)
	if err := store.Set(ctx, "cashier_exported_sessions", []byte("{broken")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := worker.ExportPending(ctx); err != nil {
		t.Fatalf("ExportPending() error = %v", err)
	}
	if len(appender.appended) != 1 || appender.appended[0] != id {
		t.Errorf("appended = %v, want [%s]", appender.appended, id)
	}
}
