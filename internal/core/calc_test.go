package core

import "testing"

func ptr(v float64) *float64 { return &v }

func TestCalculateSessionMetrics(t *testing.T) {
	tests := []struct {
		name         string
		opening      float64
		counted      *float64
		transactions []Transaction
		wantInflows  float64
		wantOutflows float64
		wantExpected float64
		wantDiff     float64
	}{
		{
			name:         "no transactions",
			opening:      100,
			counted:      ptr(100),
			wantExpected: 100,
		},
		{
			name:    "mixed flows",
			opening: 100,
			counted: ptr(130),
			transactions: []Transaction{
				{Type: Inflow, Amount: 50},
				{Type: Outflow, Amount: 20},
			},
			wantInflows:  50,
			wantOutflows: 20,
			wantExpected: 130,
			wantDiff:     0,
		},
		{
			name:    "shortfall",
			opening: 100,
			counted: ptr(120),
			transactions: []Transaction{
				{Type: Inflow, Amount: 50},
				{Type: Outflow, Amount: 20},
			},
			wantInflows:  50,
			wantOutflows: 20,
			wantExpected: 130,
			wantDiff:     -10,
		},
		{
			name:    "nil counted amount yields zero difference",
			opening: 100,
			counted: nil,
			transactions: []Transaction{
				{Type: Inflow, Amount: 25.5},
			},
			wantInflows:  25.5,
			wantExpected: 125.5,
			wantDiff:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateSessionMetrics(tt.opening, tt.counted, tt.transactions)
			if got.TotalInflows != tt.wantInflows {
				t.Errorf("TotalInflows = %v, want %v", got.TotalInflows, tt.wantInflows)
			}
			if got.TotalOutflows != tt.wantOutflows {
				t.Errorf("TotalOutflows = %v, want %v", got.TotalOutflows, tt.wantOutflows)
			}
			if got.ExpectedClosing != tt.wantExpected {
				t.Errorf("ExpectedClosing = %v, want %v", got.ExpectedClosing, tt.wantExpected)
			}
			if got.Difference != tt.wantDiff {
				t.Errorf("Difference = %v, want %v", got.Difference, tt.wantDiff)
			}
		})
	}
}

func TestFlowPartition(t *testing.T) {
	// Every transaction is either an inflow or an outflow, so the two totals
	// together must account for every amount.
	transactions := []Transaction{
		{Type: Inflow, Amount: 10},
		{Type: Outflow, Amount: 4},
		{Type: Inflow, Amount: 6},
		{Type: Outflow, Amount: 1.5},
	}

	var total float64
	for _, tx := range transactions {
		total += tx.Amount
	}

	if got := TotalInflows(transactions) + TotalOutflows(transactions); got != total {
		t.Errorf("inflows + outflows = %v, want %v", got, total)
	}
}

func TestTotalsIgnoreUnknownTypes(t *testing.T) {
	transactions := []Transaction{
		{Type: Inflow, Amount: 10},
		{Type: FlowType("transfer"), Amount: 99},
	}
	if got := TotalInflows(transactions); got != 10 {
		t.Errorf("TotalInflows = %v, want 10", got)
	}
	if got := TotalOutflows(transactions); got != 0 {
		t.Errorf("TotalOutflows = %v, want 0", got)
	}
}

func TestDifference(t *testing.T) {
	if got := Difference(nil, 130); got != 0 {
		t.Errorf("Difference(nil) = %v, want 0", got)
	}
	if got := Difference(ptr(130), 130); got != 0 {
		t.Errorf("Difference(130, 130) = %v, want 0", got)
	}
	if got := Difference(ptr(125), 130); got != -5 {
		t.Errorf("Difference(125, 130) = %v, want -5", got)
	}
}
