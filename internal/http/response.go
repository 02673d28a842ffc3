package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"caja/internal/ledger"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorBody{Error: message})
}

// writeServiceError maps ledger errors onto status codes: NotFound is the
// caller's mistake, everything else is ours.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, ledger.ErrNotFound) {
		writeError(w, http.StatusNotFound, message+": not found")
		return
	}
	slog.ErrorContext(r.Context(), "Ledger operation failed",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path)
	writeError(w, http.StatusInternalServerError, message)
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// decodeBody parses a JSON request body into dst, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
