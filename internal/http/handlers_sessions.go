package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"caja/internal/core"
	"caja/internal/ledger"
)

type createSessionRequest struct {
	OpeningAmount   float64 `json:"openingAmount"`
	ResponsibleUser string  `json:"responsibleUser"`
}

type closeSessionRequest struct {
	SessionID     string  `json:"sessionId"`
	CountedAmount float64 `json:"countedAmount"`
}

type closedSessionsResponse struct {
	Sessions   []core.CashSession `json:"sessions"`
	NextCursor string             `json:"nextCursor,omitempty"`
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req createSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if math.IsNaN(req.OpeningAmount) || math.IsInf(req.OpeningAmount, 0) || req.OpeningAmount < 0 {
		writeError(w, http.StatusUnprocessableEntity, "opening amount must be a finite non-negative number")
		return
	}
	if strings.TrimSpace(req.ResponsibleUser) == "" {
		writeError(w, http.StatusUnprocessableEntity, "responsible user is required")
		return
	}

	session, err := s.service.CreateSession(r.Context(), req.OpeningAmount, strings.TrimSpace(req.ResponsibleUser))
	if err != nil {
		writeServiceError(w, r, err, "create session")
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleActiveSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	session, err := s.service.GetActiveSession(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "get active session")
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req closeSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusUnprocessableEntity, "session id is required")
		return
	}
	if math.IsNaN(req.CountedAmount) || math.IsInf(req.CountedAmount, 0) {
		writeError(w, http.StatusUnprocessableEntity, "counted amount must be a finite number")
		return
	}

	if err := s.service.CloseSession(r.Context(), req.SessionID, req.CountedAmount); err != nil {
		writeServiceError(w, r, err, "close session")
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleClosedSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	limit := 0
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

	sessions, next, err := s.service.GetClosedSessions(r.Context(), limit, cursor)
	if err != nil {
		if errors.Is(err, ledger.ErrBadCursor) {
			writeError(w, http.StatusBadRequest, "invalid cursor")
			return
		}
		writeServiceError(w, r, err, "list closed sessions")
		return
	}
	writeJSON(w, http.StatusOK, closedSessionsResponse{Sessions: sessions, NextCursor: next})
}
