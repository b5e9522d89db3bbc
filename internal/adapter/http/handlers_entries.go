package adapthttp

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"scaletrack/internal/domain"

	"github.com/google/uuid"
)

type entryRequest struct {
	Weight     float64    `json:"weight"`
	RecordedAt *time.Time `json:"recordedAt,omitempty"`
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	switch r.Method {
	case http.MethodGet:
		limit := intQuery(r, "limit", 30)
		entries, err := s.entries.List(r.Context(), user.ID, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)

	case http.MethodPost:
		var req entryRequest
		if err := parseJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		var recordedAt time.Time
		if req.RecordedAt != nil {
			recordedAt = *req.RecordedAt
		}
		entry, err := s.entries.Record(r.Context(), user.ID, req.Weight, recordedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleEntryByID(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	id, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/entries/"))
	if err != nil {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req entryRequest
		if err := parseJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		var recordedAt time.Time
		if req.RecordedAt != nil {
			recordedAt = *req.RecordedAt
		}
		entry, err := s.entries.Update(r.Context(), user.ID, id, req.Weight, recordedAt)
		if errors.Is(err, domain.ErrEntryNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)

	case http.MethodDelete:
		err := s.entries.Delete(r.Context(), user.ID, id)
		if errors.Is(err, domain.ErrEntryNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
