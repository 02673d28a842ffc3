package ledger

import (
	"context"
	"fmt"
	"sort"

	"caja/internal/core"
	"caja/internal/log"
)

// DefaultPageSize is the closed-session page size used when the caller asks
// for a non-positive limit.
const DefaultPageSize = 20

// CreateSession opens a new cash session with the given opening amount, makes
// it the active session and returns it. The opening amount is expected to be
// a finite number >= 0; that is not enforced here, validation belongs to the
// caller.
func (s *Service) CreateSession(ctx context.Context, openingAmount float64, responsibleUser string) (core.CashSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := readCollection[core.CashSession](ctx, s, KeySessions)
	if err != nil {
		return core.CashSession{}, err
	}

	now := core.Now()
	session := core.CashSession{
		ID:              core.NewID(),
		OpeningAmount:   openingAmount,
		ResponsibleUser: responsibleUser,
		StartTime:       now,
		Status:          core.SessionOpen,
		CreatedAt:       now,
	}

	sessions = append(sessions, session)
	if err := writeCollection(ctx, s, KeySessions, sessions); err != nil {
		return core.CashSession{}, err
	}
	if err := s.setActiveSessionID(ctx, session.ID); err != nil {
		return core.CashSession{}, err
	}

	s.logger.InfoContext(ctx, "Session opened",
		log.FieldOperation, log.OpCreate,
		log.FieldSessionID, session.ID,
		log.FieldAmount, openingAmount)

	s.publish(KeySessions)
	s.publish(KeyActiveSession)
	return session, nil
}

// GetActiveSession returns the session the active pointer references, or nil
// when the pointer is unset, dangling, or references a session that already
// closed. The status check guards against a stale pointer left behind by
// another writer.
func (s *Service) GetActiveSession(ctx context.Context) (*core.CashSession, error) {
	activeID, err := s.activeSessionID(ctx)
	if err != nil {
		return nil, err
	}
	if activeID == "" {
		return nil, nil
	}

	sessions, err := readCollection[core.CashSession](ctx, s, KeySessions)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].ID == activeID && sessions[i].IsOpen() {
			session := sessions[i]
			return &session, nil
		}
	}
	return nil, nil
}

// SubscribeToActiveSession invokes the callback immediately with the current
// active session, then again whenever the session collection or the active
// pointer changes, re-reading from the store each time. The returned function
// unsubscribes the listener.
func (s *Service) SubscribeToActiveSession(ctx context.Context, callback func(*core.CashSession)) (func(), error) {
	session, err := s.GetActiveSession(ctx)
	if err != nil {
		return nil, err
	}
	callback(session)

	unsubscribe := s.notifier.Subscribe(func(Change) {
		session, err := s.GetActiveSession(context.Background())
		if err != nil {
			s.logger.Error("Re-read active session after change failed", log.FieldError, err.Error())
			return
		}
		callback(session)
	}, KeySessions, KeyActiveSession)

	return unsubscribe, nil
}

// CloseSession closes the identified session exactly once: it derives the
// closing totals from the session's transactions, freezes them onto the
// record together with the counted amount, and clears the active pointer.
// The pointer is cleared even when the closed session was not the active one;
// that mirrors the historical behavior and is deliberate (see DESIGN.md).
// Returns ErrNotFound if no session has that id.
func (s *Service) CloseSession(ctx context.Context, sessionID string, countedAmount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := readCollection[core.CashSession](ctx, s, KeySessions)
	if err != nil {
		return err
	}

	idx := -1
	for i := range sessions {
		if sessions[i].ID == sessionID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("close session %s: %w", sessionID, ErrNotFound)
	}

	transactions, err := s.GetSessionTransactions(ctx, sessionID)
	if err != nil {
		return err
	}

	counted := countedAmount
	metrics := core.CalculateSessionMetrics(sessions[idx].OpeningAmount, &counted, transactions)

	session := sessions[idx]
	session.Status = core.SessionClosed
	session.EndTime = core.Now()
	session.CountedClosingAmount = &counted
	session.TotalInflows = &metrics.TotalInflows
	session.TotalOutflows = &metrics.TotalOutflows
	session.ExpectedClosing = &metrics.ExpectedClosing
	session.Difference = &metrics.Difference
	sessions[idx] = session

	if err := writeCollection(ctx, s, KeySessions, sessions); err != nil {
		return err
	}
	if err := s.setActiveSessionID(ctx, ""); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Session closed",
		log.FieldOperation, log.OpClose,
		log.FieldSessionID, sessionID,
		"total_inflows", metrics.TotalInflows,
		"total_outflows", metrics.TotalOutflows,
		"expected_closing", metrics.ExpectedClosing,
		"difference", metrics.Difference)

	s.publish(KeySessions)
	s.publish(KeyActiveSession)
	return nil
}

// GetClosedSessions returns one page of closed sessions sorted by start time
// descending. The cursor is opaque; pass the previous page's next-cursor to
// continue, or the empty string to start from the top. The returned cursor is
// empty once the listing is exhausted.
func (s *Service) GetClosedSessions(ctx context.Context, limit int, cursor string) ([]core.CashSession, string, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	sessions, err := readCollection[core.CashSession](ctx, s, KeySessions)
	if err != nil {
		return nil, "", err
	}

	closed := make([]core.CashSession, 0, len(sessions))
	for _, session := range sessions {
		if session.Status == core.SessionClosed {
			closed = append(closed, session)
		}
	}
	sort.SliceStable(closed, func(i, j int) bool {
		return core.ParseTimestamp(closed[i].StartTime).After(core.ParseTimestamp(closed[j].StartTime))
	})

	start := 0
	if cursor != "" {
		lastIndex, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		start = lastIndex + 1
	}
	if start >= len(closed) {
		return []core.CashSession{}, "", nil
	}

	end := start + limit
	if end > len(closed) {
		end = len(closed)
	}

	page := closed[start:end]
	next := ""
	if end < len(closed) {
		next = encodeCursor(end - 1)
	}
	return page, next, nil
}
