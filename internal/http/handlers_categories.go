package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"

	"github.com/gorilla/mux"
)

type categoryRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.ID) == "" {
		writeError(w, http.StatusBadRequest, "Category id is required")
		return
	}
	if err := (core.Category{Name: req.Name, Color: req.Color}).Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.CreateCategory(r.Context(), user.ID, req.ID, req.Name, req.Color)
	if err != nil {
		writeStoreError(w, r, err, "Category not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id := mux.Vars(r)["id"]

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := (core.Category{Name: req.Name, Color: req.Color}).Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.store.UpdateCategory(r.Context(), user.ID, id, req.Name, req.Color)
	if err != nil {
		writeStoreError(w, r, err, "Category not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id := mux.Vars(r)["id"]

	if err := s.store.DeleteCategory(r.Context(), user.ID, id); err != nil {
		writeStoreError(w, r, err, "Category not found")
		return
	}
	writeMessage(w, http.StatusOK, "Category deleted")
}
