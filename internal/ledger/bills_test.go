package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"

	"caja/internal/core"
)

func TestCreateBill(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	bill, err := service.CreateBill(ctx, "  Alquiler local  ", 500, "2026-04-01", core.Monthly, " Gastos Fijos ", "  contrato anual  ")
	if err != nil {
		t.Fatalf("CreateBill() error = %v", err)
	}
	if bill.ID == "" || bill.CreatedAt == "" {
		t.Error("identity fields not assigned")
	}
	if bill.Name != "Alquiler local" || bill.Category != "Gastos Fijos" || bill.Notes != "contrato anual" {
		t.Errorf("string fields not trimmed: %+v", bill)
	}
	if bill.IsPaid {
		t.Error("new bill must start unpaid")
	}

	bills, err := service.GetAllBills(ctx)
	if err != nil {
		t.Fatalf("GetAllBills() error = %v", err)
	}
	if len(bills) != 1 || bills[0].ID != bill.ID {
		t.Errorf("GetAllBills() = %+v", bills)
	}
}

func TestUpdateBill(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	bill, err := service.CreateBill(ctx, "Internet", 45, "2026-03-10", core.Monthly, "Servicios Públicos", "")
	if err != nil {
		t.Fatalf("CreateBill() error = %v", err)
	}

	newAmount := 50.0
	newNotes := " subió la tarifa "
	updated, err := service.UpdateBill(ctx, bill.ID, core.BillUpdate{
		Amount: &newAmount,
		Notes:  &newNotes,
	})
	if err != nil {
		t.Fatalf("UpdateBill() error = %v", err)
	}
	if updated.Amount != 50 {
		t.Errorf("amount = %v, want 50", updated.Amount)
	}
	if updated.Notes != "subió la tarifa" {
		t.Errorf("notes = %q, want trimmed", updated.Notes)
	}
	// Untouched fields survive the partial merge
	if updated.Name != "Internet" || updated.Frequency != core.Monthly || updated.DueDate != "2026-03-10" {
		t.Errorf("unrelated fields changed: %+v", updated)
	}

	_, err = service.UpdateBill(ctx, "missing", core.BillUpdate{Amount: &newAmount})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateBill(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteBill(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	bill, err := service.CreateBill(ctx, "Internet", 45, "2026-03-10", core.Monthly, "", "")
	if err != nil {
		t.Fatalf("CreateBill() error = %v", err)
	}
	if err := service.DeleteBill(ctx, bill.ID); err != nil {
		t.Fatalf("DeleteBill() error = %v", err)
	}

	bills, err := service.GetAllBills(ctx)
	if err != nil {
		t.Fatalf("GetAllBills() error = %v", err)
	}
	if len(bills) != 0 {
		t.Errorf("GetAllBills() = %+v, want empty", bills)
	}

	if err := service.DeleteBill(ctx, bill.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteBill(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteBillLeavesTransactionsIntact(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	bill, err := service.CreateBill(ctx, "Internet", 40, "2026-03-15", core.Monthly, "", "")
	if err != nil {
		t.Fatalf("CreateBill() error = %v", err)
	}
	if _, err := service.ToggleBillPaid(ctx, bill.ID, true); err != nil {
		t.Fatalf("ToggleBillPaid() error = %v", err)
	}
	if err := service.DeleteBill(ctx, bill.ID); err != nil {
		t.Fatalf("DeleteBill() error = %v", err)
	}

	general, err := service.GetSessionTransactions(ctx, core.GeneralSessionID)
	if err != nil {
		t.Fatalf("GetSessionTransactions() error = %v", err)
	}
	if len(general) != 1 {
		t.Errorf("got %d general transactions after bill deletion, want 1", len(general))
	}
}

func TestToggleBillPaidCreatesOneTransaction(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	bill, err := service.CreateBill(ctx, "Alquiler", 500, "2026-04-01", core.Monthly, "Gastos Fijos", "")
	if err != nil {
		t.Fatalf("CreateBill() error = %v", err)
	}

	toggled, err := service.ToggleBillPaid(ctx, bill.ID, true)
	if err != nil {
		t.Fatalf("ToggleBillPaid() error = %v", err)
	}
	if !toggled.IsPaid {
		t.Error("bill not marked paid")
	}

	general, err := service.GetSessionTransactions(ctx, core.GeneralSessionID)
	if err != nil {
		t.Fatalf("GetSessionTransactions() error = %v", err)
	}
	if len(general) != 1 {
		t.Fatalf("got %d general transactions, want 1", len(general))
	}
	tx := general[0]
	if tx.Type != core.Outflow {
		t.Errorf("type = %q, want outflow", tx.Type)
	}
	if tx.Amount != 500 {
		t.Errorf("amount = %v, want 500", tx.Amount)
	}
	if tx.Category != "Gastos Fijos" {
		t.Errorf("category = %q, want bill category", tx.Category)
	}
	if !strings.Contains(tx.Description, "Alquiler") {
		t.Errorf("description = %q, want bill name included", tx.Description)
	}

	// Unmarking never retracts the spawned transaction
	unmarked, err := service.ToggleBillPaid(ctx, bill.ID, true)
	if err != nil {
		t.Fatalf("ToggleBillPaid() error = %v", err)
	}
	if unmarked.IsPaid {
		t.Error("bill still marked paid after second toggle")
	}
	general, err = service.GetSessionTransactions(ctx, core.GeneralSessionID)
	if err != nil {
		t.Fatalf("GetSessionTransactions() error = %v", err)
	}
	if len(general) != 1 {
		t.Errorf("got %d general transactions after unmark, want 1", len(general))
	}

	// Re-marking without the flag records nothing new
	if _, err := service.ToggleBillPaid(ctx, bill.ID, false); err != nil {
		t.Fatalf("ToggleBillPaid() error = %v", err)
	}
	general, err = service.GetSessionTransactions(ctx, core.GeneralSessionID)
	if err != nil {
		t.Fatalf("GetSessionTransactions() error = %v", err)
	}
	if len(general) != 1 {
		t.Errorf("got %d general transactions after flagless re-mark, want 1", len(general))
	}
}

func TestToggleBillPaidDefaultCategory(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	bill, err := service.CreateBill(ctx, "Seguro", 80, "2026-05-01", core.Yearly, "", "")
	if err != nil {
		t.Fatalf("CreateBill() error = %v", err)
	}
	if _, err := service.ToggleBillPaid(ctx, bill.ID, true); err != nil {
		t.Fatalf("ToggleBillPaid() error = %v", err)
	}

	general, err := service.GetSessionTransactions(ctx, core.GeneralSessionID)
	if err != nil {
		t.Fatalf("GetSessionTransactions() error = %v", err)
	}
	if len(general) != 1 {
		t.Fatalf("got %d general transactions, want 1", len(general))
	}
	if general[0].Category != core.FixedExpenseCategory {
		t.Errorf("category = %q, want %q", general[0].Category, core.FixedExpenseCategory)
	}
}

func TestToggleBillPaidUnknownID(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	_, err := service.ToggleBillPaid(ctx, "missing", true)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ToggleBillPaid() error = %v, want ErrNotFound", err)
	}
}

func TestSubscribeToBills(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	var calls [][]core.Bill
	unsubscribe, err := service.SubscribeToBills(ctx, func(bills []core.Bill) {
		calls = append(calls, bills)
	})
	if err != nil {
		t.Fatalf("SubscribeToBills() error = %v", err)
	}
	defer unsubscribe()

	if len(calls) != 1 || len(calls[0]) != 0 {
		t.Fatalf("expected one immediate empty callback, got %d", len(calls))
	}

	if _, err := service.CreateBill(ctx, "Internet", 45, "2026-03-10", core.Monthly, "", ""); err != nil {
		t.Fatalf("CreateBill() error = %v", err)
	}
	if len(calls) != 2 || len(calls[1]) != 1 {
		t.Fatalf("expected callback after create, got %d calls", len(calls))
	}
}
