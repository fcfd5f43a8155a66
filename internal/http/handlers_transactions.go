package http

import (
	"net/http"
	"strconv"

	"fintrack/internal/core"

	"github.com/gorilla/mux"
)

type transactionRequest struct {
	Type       string  `json:"type"`
	CategoryID string  `json:"category_id"`
	Amount     float64 `json:"amount"`
	Date       string  `json:"date"`
}

// buildTransaction validates the payload and captures the category snapshot.
// The snapshot is taken here, at write time; the stored copy never changes
// when the category is edited later.
func (s *Server) buildTransaction(r *http.Request, user core.User, req transactionRequest) (core.Transaction, int, string) {
	tx := core.Transaction{
		Type:       core.TransactionType(req.Type),
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Date:       req.Date,
		UserID:     user.ID,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, http.StatusBadRequest, err.Error()
	}

	cat, err := s.store.GetCategory(r.Context(), user.ID, req.CategoryID)
	if err != nil {
		return core.Transaction{}, http.StatusNotFound, "Category not found"
	}

	tx.CategoryID = cat.ID
	tx.CategoryName = cat.Name
	tx.CategoryColor = cat.Color
	return tx, 0, ""
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, status, msg := s.buildTransaction(r, user, req)
	if status != 0 {
		writeError(w, status, msg)
		return
	}

	created, err := s.store.CreateTransaction(r.Context(), tx)
	if err != nil {
		writeStoreError(w, r, err, "Transaction not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, status, msg := s.buildTransaction(r, user, req)
	if status != 0 {
		writeError(w, status, msg)
		return
	}
	tx.ID = id

	updated, err := s.store.UpdateTransaction(r.Context(), tx)
	if err != nil {
		writeStoreError(w, r, err, "Transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	if err := s.store.DeleteTransaction(r.Context(), user.ID, id); err != nil {
		writeStoreError(w, r, err, "Transaction not found")
		return
	}
	writeMessage(w, http.StatusOK, "Transaction deleted")
}
