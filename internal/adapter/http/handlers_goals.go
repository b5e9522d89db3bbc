package adapthttp

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"scaletrack/internal/app"
	"scaletrack/internal/domain"

	"github.com/google/uuid"
)

func (s *Server) handleGoal(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	switch r.Method {
	case http.MethodGet:
		goal, err := s.goals.Active(r.Context(), user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if goal == nil {
			http.Error(w, "no active goal", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, goal)

	case http.MethodPost:
		var req struct {
			TargetWeight float64    `json:"targetWeight"`
			TargetDate   *time.Time `json:"targetDate,omitempty"`
		}
		if err := parseJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		goal, err := s.goals.Create(r.Context(), user.ID, req.TargetWeight, req.TargetDate)
		switch {
		case errors.Is(err, domain.ErrActiveGoalExists):
			writeError(w, http.StatusConflict, err)
		case errors.Is(err, app.ErrNoEntries), errors.Is(err, app.ErrTargetEqualsStart):
			writeError(w, http.StatusBadRequest, err)
		case err != nil:
			writeError(w, http.StatusBadRequest, err)
		default:
			writeJSON(w, http.StatusCreated, goal)
		}

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGoalByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user := userFromContext(r)

	id, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/goal/"))
	if err != nil {
		http.Error(w, "invalid goal id", http.StatusBadRequest)
		return
	}

	err = s.goals.Delete(r.Context(), user.ID, id)
	if errors.Is(err, domain.ErrGoalNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user := userFromContext(r)

	achievements, err := s.goals.Achievements(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, achievements)
}
