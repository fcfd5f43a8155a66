package http

import (
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/auth"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		slog.ErrorContext(r.Context(), "Password hashing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	user, err := s.store.CreateUser(r.Context(), creds.Username, hash)
	if err != nil {
		writeStoreError(w, r, err, "User not found")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"userId":  user.ID,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Unknown username and wrong password take the same path so the
	// response reveals nothing about which part failed.
	user, err := s.store.GetUserByUsername(r.Context(), strings.TrimSpace(creds.Username))
	if err != nil || !auth.CheckPassword(creds.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		slog.ErrorContext(r.Context(), "Token issuance failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	slog.InfoContext(r.Context(), "User logged in", "user_id", user.ID, "username", user.Username)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Login successful",
		"userId":   user.ID,
		"username": user.Username,
		"token":    token,
	})
}
