package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-assist/internal/history"
)

// handleListInteractions returns a paged slice of the interaction history.
//
// Query parameters: mode (assistant, supervisor, autonomic), limit, offset.
func (s *Server) handleListInteractions(w http.ResponseWriter, r *http.Request) {
	filter := history.Filter{
		Mode: r.URL.Query().Get("mode"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			writeBadRequest(w, "offset must be a non-negative integer")
			return
		}
		filter.Offset = offset
	}

	result, err := s.history.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing interactions failed", "error", err)
		writeInternalError(w, "failed to list interactions")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetInteraction returns one recorded interaction by ID.
func (s *Server) handleGetInteraction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	interaction, err := s.history.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeNotFound(w, "interaction not found")
			return
		}
		s.logger.Error("fetching interaction failed", "id", id, "error", err)
		writeInternalError(w, "failed to fetch interaction")
		return
	}

	writeJSON(w, http.StatusOK, interaction)
}
