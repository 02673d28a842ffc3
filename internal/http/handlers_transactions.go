package http

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"caja/internal/core"
	"caja/internal/export"
	"caja/internal/ledger"
)

type createTransactionRequest struct {
	SessionID       string  `json:"sessionId"`
	Type            string  `json:"type"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	PaymentMethod   string  `json:"paymentMethod"`
	Amount          float64 `json:"amount"`
	ResponsibleUser string  `json:"responsibleUser"`
	SessionDate     string  `json:"sessionDate"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createTransaction(w, r)
	case http.MethodGet:
		s.listSessionTransactions(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		writeError(w, http.StatusUnprocessableEntity, "amount must be a finite number")
		return
	}
	candidate := core.Transaction{
		Type:        core.FlowType(req.Type),
		Description: req.Description,
		Amount:      req.Amount,
	}
	if err := candidate.Validate(); err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidFlowType):
			writeError(w, http.StatusUnprocessableEntity, "type must be inflow or outflow")
		case errors.Is(err, core.ErrEmptyDescription):
			writeError(w, http.StatusUnprocessableEntity, "description is required")
		case errors.Is(err, core.ErrInvalidAmount):
			writeError(w, http.StatusUnprocessableEntity, "amount must be positive")
		default:
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		}
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeError(w, http.StatusUnprocessableEntity, "session id is required")
		return
	}
	if strings.TrimSpace(req.ResponsibleUser) == "" {
		writeError(w, http.StatusUnprocessableEntity, "responsible user is required")
		return
	}

	sessionDate := strings.TrimSpace(req.SessionDate)
	if sessionDate == "" {
		sessionDate = time.Now().UTC().Format(core.DateLayout)
	}

	transaction, err := s.service.AddTransaction(r.Context(), ledger.NewTransaction{
		SessionID:       strings.TrimSpace(req.SessionID),
		Type:            core.FlowType(req.Type),
		Description:     strings.TrimSpace(req.Description),
		Category:        strings.TrimSpace(req.Category),
		PaymentMethod:   strings.TrimSpace(req.PaymentMethod),
		Amount:          req.Amount,
		ResponsibleUser: strings.TrimSpace(req.ResponsibleUser),
		SessionDate:     sessionDate,
	})
	if err != nil {
		writeServiceError(w, r, err, "record transaction")
		return
	}
	writeJSON(w, http.StatusCreated, transaction)
}

func (s *Server) listSessionTransactions(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	transactions, err := s.service.GetSessionTransactions(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, r, err, "list session transactions")
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

// handleTransactionReport serves the filtered report, as JSON by default or as
// a CSV download when format=csv. Results are cached per query until the next
// transaction change.
func (s *Server) handleTransactionReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	q := r.URL.Query()
	flowType := strings.TrimSpace(q.Get("type"))
	if flowType != "" && !core.FlowType(flowType).IsValid() {
		writeError(w, http.StatusBadRequest, "type must be inflow or outflow")
		return
	}
	filters := ledger.TransactionFilters{
		StartDate:  strings.TrimSpace(q.Get("start")),
		EndDate:    strings.TrimSpace(q.Get("end")),
		Type:       core.FlowType(flowType),
		SearchTerm: strings.TrimSpace(q.Get("q")),
	}

	cacheKey := filters.StartDate + "|" + filters.EndDate + "|" + flowType + "|" + strings.ToLower(filters.SearchTerm)
	transactions, found := s.reportCache.Get(cacheKey)
	if !found {
		var err error
		transactions, err = s.service.GetTransactionsWithFilters(r.Context(), filters)
		if err != nil {
			writeServiceError(w, r, err, "filter transactions")
			return
		}
		s.reportCache.Set(cacheKey, transactions)
	}

	if strings.EqualFold(q.Get("format"), "csv") {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.ReportFilename(time.Now())+`"`)
		if err := export.WriteTransactionsCSV(w, transactions); err != nil {
			// Headers already went out; all we can do is log.
			slog.ErrorContext(r.Context(), "CSV report write failed", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}
