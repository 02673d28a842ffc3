package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Inflow  FlowType = "inflow"
	Outflow FlowType = "outflow"
)

const (
	SessionOpen   SessionStatus = "open"
	SessionClosed SessionStatus = "closed"
)

const (
	Once    Frequency = "once"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// GeneralSessionID tags transactions that are not tied to a formal cash
// session, e.g. outflows spawned by paying a fixed expense.
const GeneralSessionID = "general"

// FixedExpenseCategory is the fallback category for transactions created
// when a bill without its own category is marked paid.
const FixedExpenseCategory = "Gastos Fijos"

type (
	FlowType      string
	SessionStatus string
	Frequency     string

	// Transaction is a single ledger entry. Entries are append-only: once
	// recorded they are never mutated in place.
	Transaction struct {
		ID              string   `json:"id"`
		SessionID       string   `json:"sessionId"`
		Type            FlowType `json:"type"`
		Description     string   `json:"description"`
		Category        string   `json:"category,omitempty"`
		PaymentMethod   string   `json:"paymentMethod,omitempty"`
		Amount          float64  `json:"amount"`
		Timestamp       string   `json:"timestamp"`
		ResponsibleUser string   `json:"responsibleUser"`
		SessionDate     string   `json:"sessionDate"`
	}

	// CashSession is an accounting period bracketed by an opening amount and
	// a closing reconciliation. The closing fields are nil while the session
	// is open and frozen once it closes.
	CashSession struct {
		ID                   string        `json:"id"`
		OpeningAmount        float64       `json:"openingAmount"`
		CountedClosingAmount *float64      `json:"countedClosingAmount,omitempty"`
		ResponsibleUser      string        `json:"responsibleUser"`
		StartTime            string        `json:"startTime"`
		EndTime              string        `json:"endTime,omitempty"`
		Status               SessionStatus `json:"status"`
		CreatedAt            string        `json:"createdAt"`
		TotalInflows         *float64      `json:"totalInflows,omitempty"`
		TotalOutflows        *float64      `json:"totalOutflows,omitempty"`
		ExpectedClosing      *float64      `json:"expectedClosing,omitempty"`
		Difference           *float64      `json:"difference,omitempty"`
	}

	// Bill is a recurring or one-off fixed expense tracked independently of
	// the session ledger.
	Bill struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Amount    float64   `json:"amount"`
		DueDate   string    `json:"dueDate"`
		Frequency Frequency `json:"frequency"`
		Category  string    `json:"category,omitempty"`
		Notes     string    `json:"notes,omitempty"`
		IsPaid    bool      `json:"isPaid"`
		CreatedAt string    `json:"createdAt"`
	}

	// BillUpdate carries a partial-field replace for an existing bill.
	// Nil fields are left untouched.
	BillUpdate struct {
		Name      *string    `json:"name,omitempty"`
		Amount    *float64   `json:"amount,omitempty"`
		DueDate   *string    `json:"dueDate,omitempty"`
		Frequency *Frequency `json:"frequency,omitempty"`
		Category  *string    `json:"category,omitempty"`
		Notes     *string    `json:"notes,omitempty"`
	}

	// CategoryConfig is UI-owned configuration consumed by the ledger: which
	// categories are offered for each flow type. Uniqueness is the caller's
	// concern, not enforced here.
	CategoryConfig struct {
		Enabled           bool     `json:"enabled"`
		InflowCategories  []string `json:"inflowCategories"`
		OutflowCategories []string `json:"outflowCategories"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidFlowType  = errors.New("invalid flow type")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
)

// DefaultCategoryConfig returns the stock category set used before the
// operator customizes anything.
func DefaultCategoryConfig() CategoryConfig {
	return CategoryConfig{
		Enabled:          true,
		InflowCategories: []string{"Ventas", "Servicios", "Otros Ingresos"},
		OutflowCategories: []string{
			"Gastos Operativos", "Salarios", "Suministros",
			"Servicios Públicos", "Mantenimiento", "Transporte", "Otros Gastos",
		},
	}
}

func (ft FlowType) IsValid() bool {
	return ft == Inflow || ft == Outflow
}

func (f Frequency) IsValid() bool {
	switch f {
	case Once, Monthly, Yearly:
		return true
	default:
		return false
	}
}

// Validate checks boundary input for a transaction. The ledger itself trusts
// its callers; this is for the HTTP layer.
func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidFlowType
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if b.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !b.Frequency.IsValid() {
		return ErrInvalidFrequency
	}
	return nil
}

// IsOpen reports whether the session is still accepting transactions.
func (s CashSession) IsOpen() bool {
	return s.Status == SessionOpen
}

// TimestampLayout is the wire format for instants. Fixed-width fractional
// seconds keep stored timestamps lexicographically ordered.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// DateLayout is the wire format for calendar dates (session dates, due dates).
const DateLayout = "2006-01-02"

// Now returns the current instant in the wire format.
func Now() string {
	return time.Now().UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a stored instant. Returns the zero time on failure so
// records with unparseable timestamps sort last instead of breaking reads.
func ParseTimestamp(s string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}
