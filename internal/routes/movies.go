package routes

import (
	"net/http"
	"strconv"

	"adaptrack-server/internal/model"
	"adaptrack-server/internal/repos"
	pkghttpx "adaptrack-server/pkg/httpx"
)

// Movies handles GET /movies?genre=&year=&min_rating=
func Movies(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := repos.MovieFilter{Genre: q.Get("genre")}
		if v := q.Get("year"); v != "" {
			year, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, r, pkghttpx.BadRequest("year must be an integer", err))
				return
			}
			f.Year = year
		}
		if v := q.Get("min_rating"); v != "" {
			min, err := strconv.ParseFloat(v, 64)
			if err != nil {
				writeError(w, r, pkghttpx.BadRequest("min_rating must be a number", err))
				return
			}
			f.MinRating = &min
		}
		movies, err := d.Repo.Movies.Filter(r.Context(), f)
		if err != nil {
			writeError(w, r, pkghttpx.Internal("failed to list movies", err))
			return
		}
		if movies == nil {
			movies = []model.Movie{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"movies": movies})
	}
}

// MovieReviews handles GET /movies/{id}/reviews
func MovieReviews(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid movie id", err))
			return
		}
		reviews, err := d.Repo.Reviews.ListByMovie(r.Context(), id)
		if err != nil {
			writeError(w, r, pkghttpx.Internal("failed to list reviews", err))
			return
		}
		if reviews == nil {
			reviews = []repos.ReviewWithUser{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
	}
}
