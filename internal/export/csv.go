// Package export renders already-fetched ledger records as reports: CSV for
// download, and (in the google subpackage) closed-session rows appended to a
// spreadsheet. It never reads the store itself; callers supply the records.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"caja/internal/core"
)

var csvHeader = []string{
	"Fecha", "Hora", "Sesión", "Tipo", "Descripción", "Categoría", "Monto", "Usuario",
}

// WriteTransactionsCSV writes the transaction report, one row per record in
// the order given. Amounts are rendered with two decimals; stored values are
// untouched.
func WriteTransactionsCSV(w io.Writer, transactions []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, t := range transactions {
		ts := core.ParseTimestamp(t.Timestamp)
		kind := "Gasto"
		if t.Type == core.Inflow {
			kind = "Ingreso"
		}
		row := []string{
			formatDay(ts),
			ts.Format("15:04"),
			t.SessionDate,
			kind,
			t.Description,
			t.Category,
			fmt.Sprintf("%.2f", t.Amount),
			t.ResponsibleUser,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ReportFilename names a downloaded report after the current date.
func ReportFilename(now time.Time) string {
	return "transactions_report_" + now.Format(core.DateLayout) + ".csv"
}

func formatDay(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(core.DateLayout)
}
