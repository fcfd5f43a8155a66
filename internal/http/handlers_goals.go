package http

import (
	"net/http"
	"strconv"

	"fintrack/internal/core"

	"github.com/gorilla/mux"
)

type goalRequest struct {
	Name           string   `json:"name"`
	TargetAmount   float64  `json:"target_amount"`
	CurrentSavings *float64 `json:"current_savings"`
	Deadline       *string  `json:"deadline"`
}

func (g goalRequest) toGoal(userID int64) core.Goal {
	goal := core.Goal{
		Name:         g.Name,
		TargetAmount: g.TargetAmount,
		Deadline:     g.Deadline,
		UserID:       userID,
	}
	// current_savings defaults to zero when omitted.
	if g.CurrentSavings != nil {
		goal.CurrentSavings = *g.CurrentSavings
	}
	return goal
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	goal := req.toGoal(user.ID)
	if err := goal.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.CreateGoal(r.Context(), goal)
	if err != nil {
		writeStoreError(w, r, err, "Goal not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid goal id")
		return
	}

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	goal := req.toGoal(user.ID)
	goal.ID = id
	if err := goal.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.store.UpdateGoal(r.Context(), goal)
	if err != nil {
		writeStoreError(w, r, err, "Goal not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid goal id")
		return
	}

	if err := s.store.DeleteGoal(r.Context(), user.ID, id); err != nil {
		writeStoreError(w, r, err, "Goal not found")
		return
	}
	writeMessage(w, http.StatusOK, "Goal deleted")
}
