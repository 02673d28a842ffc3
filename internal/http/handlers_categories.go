package http

import (
	"net/http"
	"strings"

	"caja/internal/core"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		config, err := s.service.CategoryConfig(r.Context())
		if err != nil {
			writeServiceError(w, r, err, "read category config")
			return
		}
		writeJSON(w, http.StatusOK, config)
	case http.MethodPut:
		s.saveCategories(w, r)
	default:
		methodNotAllowed(w, "GET, PUT")
	}
}

func (s *Server) saveCategories(w http.ResponseWriter, r *http.Request) {
	var config core.CategoryConfig
	if err := decodeBody(r, &config); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	config.InflowCategories = cleanCategories(config.InflowCategories)
	config.OutflowCategories = cleanCategories(config.OutflowCategories)

	if err := s.service.SaveCategoryConfig(r.Context(), config); err != nil {
		writeServiceError(w, r, err, "save category config")
		return
	}
	writeJSON(w, http.StatusOK, config)
}

// cleanCategories trims entries and drops blanks, keeping order.
func cleanCategories(categories []string) []string {
	cleaned := make([]string, 0, len(categories))
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return cleaned
}
