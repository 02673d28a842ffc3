package ledger

import (
	"context"
	"sort"
	"strings"
	"time"

	"caja/internal/core"
	"caja/internal/log"
)

// NewTransaction carries the caller-provided fields of a ledger entry; the
// ledger assigns the id and timestamp. No validation happens here beyond what
// the caller already performed, the layer trusts its inputs.
type NewTransaction struct {
	SessionID       string
	Type            core.FlowType
	Description     string
	Amount          float64
	ResponsibleUser string
	SessionDate     string
	Category        string
	PaymentMethod   string
}

// TransactionFilters narrows GetTransactionsWithFilters. All provided filters
// apply conjunctively; zero values mean "no constraint". StartDate and
// EndDate are inclusive timestamp-string bounds; an EndDate given as a plain
// date is extended to the end of that day.
type TransactionFilters struct {
	StartDate  string
	EndDate    string
	Type       core.FlowType
	SearchTerm string
}

// AddTransaction appends a new entry with a fresh id and the current
// timestamp, persists the collection and broadcasts a transaction-collection
// change.
func (s *Service) AddTransaction(ctx context.Context, input NewTransaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transactions, err := readCollection[core.Transaction](ctx, s, KeyTransactions)
	if err != nil {
		return core.Transaction{}, err
	}

	transaction := core.Transaction{
		ID:              core.NewID(),
		SessionID:       input.SessionID,
		Type:            input.Type,
		Description:     input.Description,
		Category:        input.Category,
		PaymentMethod:   input.PaymentMethod,
		Amount:          input.Amount,
		Timestamp:       core.Now(),
		ResponsibleUser: input.ResponsibleUser,
		SessionDate:     input.SessionDate,
	}

	transactions = append(transactions, transaction)
	if err := writeCollection(ctx, s, KeyTransactions, transactions); err != nil {
		return core.Transaction{}, err
	}

	s.logger.InfoContext(ctx, "Transaction recorded",
		log.FieldOperation, log.OpCreate,
		log.FieldTransaction, transaction.ID,
		log.FieldSessionID, transaction.SessionID,
		"type", transaction.Type,
		log.FieldAmount, transaction.Amount)

	s.publish(KeyTransactions)
	return transaction, nil
}

// GetSessionTransactions returns all entries tagged with the session id,
// most recent first. An unknown session id yields an empty sequence.
func (s *Service) GetSessionTransactions(ctx context.Context, sessionID string) ([]core.Transaction, error) {
	transactions, err := readCollection[core.Transaction](ctx, s, KeyTransactions)
	if err != nil {
		return nil, err
	}

	matched := make([]core.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.SessionID == sessionID {
			matched = append(matched, t)
		}
	}
	sortByTimestampDesc(matched)
	return matched, nil
}

// SubscribeToSessionTransactions invokes the callback immediately with the
// session's transactions, then again on every transaction-collection change,
// re-filtered on each invocation. The returned function unsubscribes.
func (s *Service) SubscribeToSessionTransactions(ctx context.Context, sessionID string, callback func([]core.Transaction)) (func(), error) {
	transactions, err := s.GetSessionTransactions(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	callback(transactions)

	unsubscribe := s.notifier.Subscribe(func(Change) {
		transactions, err := s.GetSessionTransactions(context.Background(), sessionID)
		if err != nil {
			s.logger.Error("Re-read session transactions after change failed",
				log.FieldSessionID, sessionID,
				log.FieldError, err.Error())
			return
		}
		callback(transactions)
	}, KeyTransactions)

	return unsubscribe, nil
}

// GetTransactionsWithFilters returns all transactions matching every provided
// filter, most recent first. The search term matches case-insensitively
// against description or category.
func (s *Service) GetTransactionsWithFilters(ctx context.Context, filters TransactionFilters) ([]core.Transaction, error) {
	transactions, err := readCollection[core.Transaction](ctx, s, KeyTransactions)
	if err != nil {
		return nil, err
	}

	endBound := filters.EndDate
	if endBound != "" {
		if day, err := time.Parse(core.DateLayout, endBound); err == nil {
			endBound = day.Add(24*time.Hour - time.Millisecond).UTC().Format(core.TimestampLayout)
		}
	}
	term := strings.ToLower(filters.SearchTerm)

	matched := make([]core.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if filters.StartDate != "" && t.Timestamp < filters.StartDate {
			continue
		}
		if endBound != "" && t.Timestamp > endBound {
			continue
		}
		if filters.Type != "" && t.Type != filters.Type {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(t.Description), term) &&
			!strings.Contains(strings.ToLower(t.Category), term) {
			continue
		}
		matched = append(matched, t)
	}
	sortByTimestampDesc(matched)
	return matched, nil
}

func sortByTimestampDesc(transactions []core.Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		return core.ParseTimestamp(transactions[i].Timestamp).After(core.ParseTimestamp(transactions[j].Timestamp))
	})
}
