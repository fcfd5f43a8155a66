package http

import (
	"log/slog"
	"net/http"
	"strconv"
)

// handleData returns the caller's full dataset in one shot; the frontend
// loads it once after login.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	transactions, err := s.store.ListTransactions(r.Context(), user.ID)
	if err != nil {
		writeStoreError(w, r, err, "Data not found")
		return
	}
	categories, err := s.store.ListCategories(r.Context(), user.ID)
	if err != nil {
		writeStoreError(w, r, err, "Data not found")
		return
	}
	goals, err := s.store.ListGoals(r.Context(), user.ID)
	if err != nil {
		writeStoreError(w, r, err, "Data not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": transactions,
		"categories":   categories,
		"goals":        goals,
	})
}

// handleDeleteAccount removes the caller's user row; all owned categories,
// transactions and goals cascade with it.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.store.DeleteUser(r.Context(), user.ID); err != nil {
		writeStoreError(w, r, err, "User not found")
		return
	}
	// The identity cache would otherwise keep the user alive until TTL.
	s.users.Delete(strconv.FormatInt(user.ID, 10))

	slog.InfoContext(r.Context(), "Account deleted", "user_id", user.ID)
	writeMessage(w, http.StatusOK, "Account deleted")
}
