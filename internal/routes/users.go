package routes

import (
	"encoding/json"
	"net/http"

	"adaptrack-server/internal/repos"
	pkghttpx "adaptrack-server/pkg/httpx"
)

// Preferences handles GET /users/preferences
func Preferences(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := currentUser(r)
		u, err := d.Repo.Users.GetByID(r.Context(), userID)
		if err != nil {
			writeError(w, r, pkghttpx.Internal("failed to load preferences", err))
			return
		}
		prefs := u.Preferences
		if prefs == nil {
			prefs = map[string]any{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"preferences": prefs})
	}
}

// UpdatePreferences handles PUT /users/preferences
func UpdatePreferences(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := currentUser(r)
		var prefs map[string]any
		if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid json", err))
			return
		}
		if err := repos.ValidatePreferences(prefs); err != nil {
			writeError(w, r, pkghttpx.BadRequest(err.Error(), err))
			return
		}
		if err := d.Repo.Users.UpdatePreferences(r.Context(), userID, prefs); err != nil {
			writeError(w, r, pkghttpx.Internal("failed to update preferences", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "preferences updated", "preferences": prefs})
	}
}
