package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// handleDoorHistory returns the most recent transitions of one door.
func (s *Server) handleDoorHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeUnavailable(w, "history store not configured")
		return
	}

	g, err := s.inventory.Find(chi.URLParam(r, "door"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	limit, err := parseHistoryLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	entries, err := s.history.List(r.Context(), g.Path, limit)
	if err != nil {
		s.logger.Error("listing door history failed", "door", g.Path, "error", err)
		writeInternalError(w, "failed to list history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"door":    g.Path,
		"entries": entries,
		"count":   len(entries),
	})
}

// parseHistoryLimit parses ?limit=, defaulting to 50 and capping at 500.
func parseHistoryLimit(raw string) (int, error) {
	if raw == "" {
		return defaultHistoryLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	return min(n, maxHistoryLimit), nil
}
