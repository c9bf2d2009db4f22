package routes

import (
	"encoding/json"
	"net/http"

	"adaptrack-server/internal/model"
	pkghttpx "adaptrack-server/pkg/httpx"
)

// CreateReview handles POST /reviews
// Resubmitting for the same subject updates the existing review in place.
func CreateReview(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type reviewReq struct {
			MovieID *int64  `json:"movie_id"`
			BookID  *int64  `json:"book_id"`
			Rating  float64 `json:"rating"`
			Comment string  `json:"comment"`
		}

		userID, _ := currentUser(r)
		var req reviewReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid json", err))
			return
		}
		if (req.MovieID == nil) == (req.BookID == nil) {
			writeError(w, r, pkghttpx.BadRequest("exactly one of movie_id or book_id is required", nil))
			return
		}
		if req.Rating < model.MinRating || req.Rating > model.MaxRating {
			writeError(w, r, pkghttpx.BadRequest("rating must be between 0 and 5", nil))
			return
		}
		rv, err := d.Repo.Reviews.Upsert(r.Context(), userID, req.MovieID, req.BookID, req.Rating, req.Comment)
		if err != nil {
			writeError(w, r, pkghttpx.Internal("failed to save review", err))
			return
		}
		writeJSON(w, http.StatusCreated, rv)
	}
}
