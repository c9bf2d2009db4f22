package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"adaptrack-server/internal/lists"
	"adaptrack-server/internal/model"
	"adaptrack-server/internal/repos"
	pkghttpx "adaptrack-server/pkg/httpx"
	"adaptrack-server/pkg/tmdb"
)

// Watchlist handles GET /watchlist
func Watchlist(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := currentUser(r)
		items, err := d.Repo.Lists.WatchlistByUser(r.Context(), userID)
		if err != nil {
			writeError(w, r, pkghttpx.Internal("failed to list watchlist", err))
			return
		}
		if items == nil {
			items = []model.WatchlistItem{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"watchlist": items})
	}
}

// WatchlistAdd handles POST /watchlist
// The movie is given either as an internal id or as a raw catalog record to
// be created on first sight. Duplicate adds are informational no-ops.
func WatchlistAdd(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type addReq struct {
			MovieID     int64          `json:"movie_id"`
			Movie       *tmdb.Movie    `json:"movie"`
			NotifyPrefs map[string]any `json:"notification_preferences"`
		}

		userID, _ := currentUser(r)
		var req addReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid json", err))
			return
		}
		if req.MovieID == 0 && req.Movie == nil {
			writeError(w, r, pkghttpx.BadRequest("movie_id or movie is required", nil))
			return
		}
		movie, outcome, err := d.Lists.AddToWatchlist(r.Context(), userID,
			lists.MovieSubject{ID: req.MovieID, Record: req.Movie}, req.NotifyPrefs)
		if err != nil {
			if errors.Is(err, repos.ErrNotFound) {
				writeError(w, r, pkghttpx.NotFound("movie not found", err))
				return
			}
			writeError(w, r, pkghttpx.Internal("failed to add to watchlist", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"movie":   movie,
			"changed": outcome.Changed,
			"message": outcome.Message,
		})
	}
}

// WatchlistRemove handles DELETE /watchlist/{movieID}
func WatchlistRemove(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := currentUser(r)
		movieID, err := pathID(r, "movieID")
		if err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid movie id", err))
			return
		}
		outcome, err := d.Lists.RemoveFromWatchlist(r.Context(), userID, movieID)
		if err != nil {
			writeError(w, r, pkghttpx.Internal("failed to remove from watchlist", err))
			return
		}
		writeJSON(w, http.StatusOK, outcome)
	}
}

// MarkWatched handles POST /watchlist/{movieID}/watched
// The movie moves to watch history; its watchlist entry, if any, is removed
// in the same transaction.
func MarkWatched(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := currentUser(r)
		movieID, err := pathID(r, "movieID")
		if err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid movie id", err))
			return
		}
		movie, outcome, err := d.Lists.MarkWatched(r.Context(), userID, lists.MovieSubject{ID: movieID})
		if err != nil {
			if errors.Is(err, repos.ErrNotFound) {
				writeError(w, r, pkghttpx.NotFound("movie not found", err))
				return
			}
			writeError(w, r, pkghttpx.Internal("failed to mark watched", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"movie":   movie,
			"changed": outcome.Changed,
			"message": outcome.Message,
		})
	}
}

// MoveWatchlistEntryWatched handles POST /watchlist/entries/{entryID}/watched
// The entry is resolved to its movie and marked watched in one step.
func MoveWatchlistEntryWatched(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := currentUser(r)
		entryID, err := pathID(r, "entryID")
		if err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid entry id", err))
			return
		}
		movie, outcome, err := d.Lists.MoveWatchlistEntryToHistory(r.Context(), userID, entryID)
		if err != nil {
			if errors.Is(err, repos.ErrNotFound) {
				writeError(w, r, pkghttpx.NotFound("watchlist entry not found", err))
				return
			}
			writeError(w, r, pkghttpx.Internal("failed to move entry to history", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"movie":   movie,
			"changed": outcome.Changed,
			"message": outcome.Message,
		})
	}
}

// WatchHistory handles GET /history/watched
func WatchHistory(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := currentUser(r)
		items, err := d.Repo.Lists.WatchHistoryByUser(r.Context(), userID)
		if err != nil {
			writeError(w, r, pkghttpx.Internal("failed to list watch history", err))
			return
		}
		if items == nil {
			items = []model.WatchHistoryItem{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"history": items})
	}
}

// WatchHistoryRemove handles DELETE /history/watched/{movieID}
func WatchHistoryRemove(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := currentUser(r)
		movieID, err := pathID(r, "movieID")
		if err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid movie id", err))
			return
		}
		outcome, err := d.Lists.RemoveFromWatchHistory(r.Context(), userID, movieID)
		if err != nil {
			writeError(w, r, pkghttpx.Internal("failed to remove from watch history", err))
			return
		}
		writeJSON(w, http.StatusOK, outcome)
	}
}
