package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"caja/internal/core"
	"caja/internal/log"
)

// CreateBill records a new fixed expense, unpaid. Name, category and notes
// are trimmed.
func (s *Service) CreateBill(ctx context.Context, name string, amount float64, dueDate string, frequency core.Frequency, category, notes string) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bills, err := readCollection[core.Bill](ctx, s, KeyBills)
	if err != nil {
		return core.Bill{}, err
	}

	bill := core.Bill{
		ID:        core.NewID(),
		Name:      strings.TrimSpace(name),
		Amount:    amount,
		DueDate:   dueDate,
		Frequency: frequency,
		Category:  strings.TrimSpace(category),
		Notes:     strings.TrimSpace(notes),
		IsPaid:    false,
		CreatedAt: core.Now(),
	}

	bills = append(bills, bill)
	if err := writeCollection(ctx, s, KeyBills, bills); err != nil {
		return core.Bill{}, err
	}

	s.logger.InfoContext(ctx, "Bill created",
		log.FieldOperation, log.OpCreate,
		log.FieldBillID, bill.ID,
		log.FieldAmount, bill.Amount)

	s.publish(KeyBills)
	return bill, nil
}

// UpdateBill applies a partial merge over the existing record. String fields
// are trimmed. Returns ErrNotFound if the id is absent.
func (s *Service) UpdateBill(ctx context.Context, billID string, update core.BillUpdate) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bills, err := readCollection[core.Bill](ctx, s, KeyBills)
	if err != nil {
		return core.Bill{}, err
	}

	idx := billIndex(bills, billID)
	if idx == -1 {
		return core.Bill{}, fmt.Errorf("update bill %s: %w", billID, ErrNotFound)
	}

	bill := bills[idx]
	if update.Name != nil {
		bill.Name = strings.TrimSpace(*update.Name)
	}
	if update.Amount != nil {
		bill.Amount = *update.Amount
	}
	if update.DueDate != nil {
		bill.DueDate = *update.DueDate
	}
	if update.Frequency != nil {
		bill.Frequency = *update.Frequency
	}
	if update.Category != nil {
		bill.Category = strings.TrimSpace(*update.Category)
	}
	if update.Notes != nil {
		bill.Notes = strings.TrimSpace(*update.Notes)
	}
	bills[idx] = bill

	if err := writeCollection(ctx, s, KeyBills, bills); err != nil {
		return core.Bill{}, err
	}

	s.logger.InfoContext(ctx, "Bill updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldBillID, billID)

	s.publish(KeyBills)
	return bill, nil
}

// DeleteBill removes the bill from the collection. Returns ErrNotFound if the
// id is absent. Transactions created when the bill was paid are untouched.
func (s *Service) DeleteBill(ctx context.Context, billID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bills, err := readCollection[core.Bill](ctx, s, KeyBills)
	if err != nil {
		return err
	}

	idx := billIndex(bills, billID)
	if idx == -1 {
		return fmt.Errorf("delete bill %s: %w", billID, ErrNotFound)
	}

	bills = append(bills[:idx], bills[idx+1:]...)
	if err := writeCollection(ctx, s, KeyBills, bills); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Bill deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldBillID, billID)

	s.publish(KeyBills)
	return nil
}

// ToggleBillPaid flips the bill's paid flag. When flipping unpaid to paid and
// createTransactionOnMarkPaid is set, an outflow transaction for the bill's
// amount is recorded in the general ledger, using the bill's category or the
// fixed-expense default. Flipping paid to unpaid never retracts that
// transaction; the coupling is one-way (see DESIGN.md). Returns ErrNotFound
// if the id is absent.
func (s *Service) ToggleBillPaid(ctx context.Context, billID string, createTransactionOnMarkPaid bool) (core.Bill, error) {
	s.mu.Lock()
	bills, err := readCollection[core.Bill](ctx, s, KeyBills)
	if err != nil {
		s.mu.Unlock()
		return core.Bill{}, err
	}

	idx := billIndex(bills, billID)
	if idx == -1 {
		s.mu.Unlock()
		return core.Bill{}, fmt.Errorf("toggle bill %s: %w", billID, ErrNotFound)
	}

	bill := bills[idx]
	markingPaid := !bill.IsPaid
	bill.IsPaid = !bill.IsPaid
	bills[idx] = bill

	if err := writeCollection(ctx, s, KeyBills, bills); err != nil {
		s.mu.Unlock()
		return core.Bill{}, err
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Bill paid flag toggled",
		log.FieldOperation, log.OpToggle,
		log.FieldBillID, billID,
		"is_paid", bill.IsPaid)

	s.publish(KeyBills)

	if markingPaid && createTransactionOnMarkPaid {
		category := bill.Category
		if category == "" {
			category = core.FixedExpenseCategory
		}
		_, err := s.AddTransaction(ctx, NewTransaction{
			SessionID:       core.GeneralSessionID,
			Type:            core.Outflow,
			Description:     "Pago gasto fijo: " + bill.Name,
			Amount:          bill.Amount,
			ResponsibleUser: "sistema",
			SessionDate:     time.Now().UTC().Format(core.DateLayout),
			Category:        category,
		})
		if err != nil {
			return core.Bill{}, fmt.Errorf("record bill payment: %w", err)
		}
	}

	return bill, nil
}

// GetAllBills returns the whole bill collection in insertion order.
func (s *Service) GetAllBills(ctx context.Context) ([]core.Bill, error) {
	bills, err := readCollection[core.Bill](ctx, s, KeyBills)
	if err != nil {
		return nil, err
	}
	if bills == nil {
		bills = []core.Bill{}
	}
	return bills, nil
}

// SubscribeToBills invokes the callback immediately with all bills, then on
// every bill-collection change. The returned function unsubscribes.
func (s *Service) SubscribeToBills(ctx context.Context, callback func([]core.Bill)) (func(), error) {
	bills, err := s.GetAllBills(ctx)
	if err != nil {
		return nil, err
	}
	callback(bills)

	unsubscribe := s.notifier.Subscribe(func(Change) {
		bills, err := s.GetAllBills(context.Background())
		if err != nil {
			s.logger.Error("Re-read bills after change failed", log.FieldError, err.Error())
			return
		}
		callback(bills)
	}, KeyBills)

	return unsubscribe, nil
}

func billIndex(bills []core.Bill, billID string) int {
	for i := range bills {
		if bills[i].ID == billID {
			return i
		}
	}
	return -1
}
