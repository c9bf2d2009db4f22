package routes

import (
	"net/http"
	"strconv"

	pkghttpx "adaptrack-server/pkg/httpx"
)

// Recommendations handles GET /recommendations?limit=
func Recommendations(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := currentUser(r)
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeError(w, r, pkghttpx.BadRequest("limit must be a positive integer", err))
				return
			}
			limit = n
		}
		recs, err := d.Recommend.ForUser(r.Context(), userID, limit)
		if err != nil {
			writeError(w, r, pkghttpx.Internal("failed to compute recommendations", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
	}
}
