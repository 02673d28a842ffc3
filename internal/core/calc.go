// Package core holds the domain model of the cash register and the pure
// derived-total calculations used when reconciling a session.
package core

// TotalInflows sums the amounts of all inflow transactions. Empty input
// yields 0.
func TotalInflows(transactions []Transaction) float64 {
	var sum float64
	for _, t := range transactions {
		if t.Type == Inflow {
			sum += t.Amount
		}
	}
	return sum
}

// TotalOutflows sums the amounts of all outflow transactions. Empty input
// yields 0.
func TotalOutflows(transactions []Transaction) float64 {
	var sum float64
	for _, t := range transactions {
		if t.Type == Outflow {
			sum += t.Amount
		}
	}
	return sum
}

// ExpectedClosing projects the ending cash amount from the opening amount and
// the recorded flows.
func ExpectedClosing(openingAmount, totalInflows, totalOutflows float64) float64 {
	return openingAmount + totalInflows - totalOutflows
}

// Difference is the reconciliation discrepancy: counted cash minus expected
// closing. A nil counted amount means "no discrepancy yet" and yields 0.
func Difference(countedAmount *float64, expectedAmount float64) float64 {
	if countedAmount == nil {
		return 0
	}
	return *countedAmount - expectedAmount
}

// SessionMetrics bundles the four derived totals frozen onto a session at
// close time.
type SessionMetrics struct {
	TotalInflows    float64
	TotalOutflows   float64
	ExpectedClosing float64
	Difference      float64
}

// CalculateSessionMetrics derives all closing totals for a session from its
// transactions and an optionally counted closing amount.
func CalculateSessionMetrics(openingAmount float64, countedAmount *float64, transactions []Transaction) SessionMetrics {
	inflows := TotalInflows(transactions)
	outflows := TotalOutflows(transactions)
	expected := ExpectedClosing(openingAmount, inflows, outflows)
	return SessionMetrics{
		TotalInflows:    inflows,
		TotalOutflows:   outflows,
		ExpectedClosing: expected,
		Difference:      Difference(countedAmount, expected),
	}
}
