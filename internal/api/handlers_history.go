package api

import (
	"net/http"
	"strconv"

	"github.com/RobinCoderZhao/pdfcompare/internal/history"
)

func (s *Server) handleListHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries, err := s.historyStore.List(r.Context(), getUserID(r), limit)
		if err != nil {
			s.logger.Error("failed to list history", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to load history")
			return
		}
		if entries == nil {
			entries = []history.Entry{}
		}
		respondJSON(w, http.StatusOK, map[string]any{"comparisons": entries})
	}
}

func (s *Server) handleGetHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid comparison id")
			return
		}
		entry, err := s.historyStore.Get(r.Context(), getUserID(r), id)
		if err != nil {
			s.logger.Error("failed to load comparison", "error", err, "id", id)
			respondError(w, http.StatusInternalServerError, "Failed to load comparison")
			return
		}
		if entry == nil {
			respondError(w, http.StatusNotFound, "Comparison not found")
			return
		}
		respondJSON(w, http.StatusOK, entry)
	}
}
