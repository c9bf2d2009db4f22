package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"adaptrack-server/internal/model"
	"adaptrack-server/internal/repos"
	"adaptrack-server/pkg/gbooks"
	pkghttpx "adaptrack-server/pkg/httpx"
	"adaptrack-server/pkg/tmdb"
)

// SearchAdaptations handles GET /search/adaptations?query=
func SearchAdaptations(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("query"))
		if query == "" {
			writeError(w, r, pkghttpx.BadRequest("query is required", nil))
			return
		}
		res, err := d.Matcher.Search(r.Context(), query)
		if err != nil {
			writeError(w, r, pkghttpx.Internal("search failed", err))
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// AdaptationDetails handles GET /adaptations/details?movie_id=&book_id=
// movie_id is a TMDb movie id, book_id a Google Books volume id. Both
// records are fetched live; an unavailable catalog fails the request.
func AdaptationDetails(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tmdbID, err := strconv.ParseInt(r.URL.Query().Get("movie_id"), 10, 64)
		if err != nil {
			writeError(w, r, pkghttpx.BadRequest("movie_id must be an integer", err))
			return
		}
		volumeID := strings.TrimSpace(r.URL.Query().Get("book_id"))
		if volumeID == "" {
			writeError(w, r, pkghttpx.BadRequest("book_id is required", nil))
			return
		}
		details, err := d.Matcher.FetchDetails(r.Context(), tmdbID, volumeID)
		if err != nil {
			if errors.Is(err, tmdb.ErrNotFound) || errors.Is(err, gbooks.ErrNotFound) {
				writeError(w, r, pkghttpx.NotFound("catalog record not found", err))
				return
			}
			writeError(w, r, pkghttpx.BadGateway("catalog unavailable", err))
			return
		}
		writeJSON(w, http.StatusOK, details)
	}
}

// ConfirmAdaptation handles POST /adaptations
func ConfirmAdaptation(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type confirmReq struct {
			MovieTMDBID int64          `json:"movie_tmdb_id"`
			BookID      int64          `json:"book_id"`
			Book        *gbooks.Volume `json:"book"`
		}

		ctx := r.Context()
		var req confirmReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid json", err))
			return
		}
		if req.MovieTMDBID == 0 {
			writeError(w, r, pkghttpx.BadRequest("movie_tmdb_id is required", nil))
			return
		}
		if req.BookID == 0 && req.Book == nil {
			writeError(w, r, pkghttpx.BadRequest("book_id or book is required", nil))
			return
		}
		a, err := d.Matcher.Confirm(ctx, req.MovieTMDBID, repos.BookRef{ID: req.BookID, Volume: req.Book})
		if err != nil {
			switch {
			case errors.Is(err, repos.ErrDuplicate):
				writeError(w, r, pkghttpx.Conflict("adaptation already confirmed", err))
			case errors.Is(err, repos.ErrNotFound):
				writeError(w, r, pkghttpx.NotFound("book not found", err))
			case errors.Is(err, tmdb.ErrNotFound):
				writeError(w, r, pkghttpx.NotFound("movie not found", err))
			default:
				writeError(w, r, pkghttpx.Internal("failed to confirm adaptation", err))
			}
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

// BookAdaptations handles GET /books/{id}/adaptations
func BookAdaptations(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid book id", err))
			return
		}
		book, err := d.Repo.Books.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, repos.ErrNotFound) {
				writeError(w, r, pkghttpx.NotFound("book not found", err))
				return
			}
			writeError(w, r, pkghttpx.Internal("failed to load book", err))
			return
		}
		adaptations, err := d.Repo.Adaptations.ListByBook(r.Context(), id)
		if err != nil {
			writeError(w, r, pkghttpx.Internal("failed to list adaptations", err))
			return
		}
		if adaptations == nil {
			adaptations = []model.Adaptation{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"book": book, "adaptations": adaptations})
	}
}

// AdaptationByID handles GET /adaptations/{id}
func AdaptationByID(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid adaptation id", err))
			return
		}
		a, movie, book, err := d.Repo.Adaptations.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, repos.ErrNotFound) {
				writeError(w, r, pkghttpx.NotFound("adaptation not found", err))
				return
			}
			writeError(w, r, pkghttpx.Internal("failed to load adaptation", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"adaptation": a,
			"movie":      movie,
			"book":       book,
		})
	}
}
