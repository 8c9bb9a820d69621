package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/appointment-tracker/backend/internal/api/middleware"
	"github.com/appointment-tracker/backend/internal/storage/models"
	"github.com/appointment-tracker/backend/internal/store"
)

// ThemeResponse carries the current theme token.
type ThemeResponse struct {
	Theme string `json:"theme"`
}

// GetTheme returns the current theme preference.
func GetTheme(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ThemeResponse{Theme: string(st.State().Theme)})
	}
}

// SetTheme updates the theme preference. Only the two recognized tokens are
// accepted.
func SetTheme(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ThemeResponse
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		theme, ok := models.ParseTheme(req.Theme)
		if !ok {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Theme must be light or dark")
			return
		}

		st.Dispatch(store.Action{Type: store.ActionSetTheme, Theme: theme})
		writeJSON(w, http.StatusOK, ThemeResponse{Theme: string(theme)})
	}
}
