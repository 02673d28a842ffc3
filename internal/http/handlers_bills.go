package http

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"caja/internal/core"
)

type createBillRequest struct {
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	DueDate   string  `json:"dueDate"`
	Frequency string  `json:"frequency"`
	Category  string  `json:"category"`
	Notes     string  `json:"notes"`
}

type togglePaidRequest struct {
	CreateTransaction bool `json:"createTransaction"`
}

func (s *Server) handleBills(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		bills, err := s.service.GetAllBills(r.Context())
		if err != nil {
			writeServiceError(w, r, err, "list bills")
			return
		}
		writeJSON(w, http.StatusOK, bills)
	case http.MethodPost:
		s.createBill(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) createBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		writeError(w, http.StatusUnprocessableEntity, "amount must be a finite number")
		return
	}
	candidate := core.Bill{
		Name:      req.Name,
		Amount:    req.Amount,
		Frequency: core.Frequency(req.Frequency),
	}
	if err := candidate.Validate(); err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyName):
			writeError(w, http.StatusUnprocessableEntity, "name is required")
		case errors.Is(err, core.ErrInvalidAmount):
			writeError(w, http.StatusUnprocessableEntity, "amount must be positive")
		case errors.Is(err, core.ErrInvalidFrequency):
			writeError(w, http.StatusUnprocessableEntity, "frequency must be once, monthly or yearly")
		default:
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		}
		return
	}

	bill, err := s.service.CreateBill(r.Context(), req.Name, req.Amount, strings.TrimSpace(req.DueDate),
		core.Frequency(req.Frequency), req.Category, req.Notes)
	if err != nil {
		writeServiceError(w, r, err, "create bill")
		return
	}
	writeJSON(w, http.StatusCreated, bill)
}

// handleBillByID routes /api/bills/{id} and /api/bills/{id}/pay.
func (s *Server) handleBillByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/bills/")
	billID, action, _ := strings.Cut(rest, "/")
	if billID == "" {
		writeError(w, http.StatusNotFound, "bill id is required")
		return
	}

	switch action {
	case "":
		switch r.Method {
		case http.MethodPut:
			s.updateBill(w, r, billID)
		case http.MethodDelete:
			if err := s.service.DeleteBill(r.Context(), billID); err != nil {
				writeServiceError(w, r, err, "delete bill")
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			methodNotAllowed(w, "PUT, DELETE")
		}
	case "pay":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "POST")
			return
		}
		s.toggleBillPaid(w, r, billID)
	default:
		writeError(w, http.StatusNotFound, "unknown bill action")
	}
}

func (s *Server) updateBill(w http.ResponseWriter, r *http.Request, billID string) {
	var update core.BillUpdate
	if err := decodeBody(r, &update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		writeError(w, http.StatusUnprocessableEntity, "name cannot be empty")
		return
	}
	if update.Amount != nil && (math.IsNaN(*update.Amount) || math.IsInf(*update.Amount, 0) || *update.Amount <= 0) {
		writeError(w, http.StatusUnprocessableEntity, "amount must be positive")
		return
	}
	if update.Frequency != nil && !update.Frequency.IsValid() {
		writeError(w, http.StatusUnprocessableEntity, "frequency must be once, monthly or yearly")
		return
	}

	bill, err := s.service.UpdateBill(r.Context(), billID, update)
	if err != nil {
		writeServiceError(w, r, err, "update bill")
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (s *Server) toggleBillPaid(w http.ResponseWriter, r *http.Request, billID string) {
	req := togglePaidRequest{CreateTransaction: true}
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	bill, err := s.service.ToggleBillPaid(r.Context(), billID, req.CreateTransaction)
	if err != nil {
		writeServiceError(w, r, err, "toggle bill paid")
		return
	}
	writeJSON(w, http.StatusOK, bill)
}
