package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"adaptrack-server/internal/lists"
	"adaptrack-server/internal/model"
	"adaptrack-server/internal/repos"
	"adaptrack-server/pkg/gbooks"
	pkghttpx "adaptrack-server/pkg/httpx"
)

// ReadingList handles GET /readinglist
func ReadingList(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := currentUser(r)
		items, err := d.Repo.Lists.ReadingListByUser(r.Context(), userID)
		if err != nil {
			writeError(w, r, pkghttpx.Internal("failed to list reading list", err))
			return
		}
		if items == nil {
			items = []model.ReadingListItem{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"reading_list": items})
	}
}

// ReadingListAdd handles POST /readinglist
func ReadingListAdd(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type addReq struct {
			BookID int64          `json:"book_id"`
			Book   *gbooks.Volume `json:"book"`
		}

		userID, _ := currentUser(r)
		var req addReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid json", err))
			return
		}
		if req.BookID == 0 && req.Book == nil {
			writeError(w, r, pkghttpx.BadRequest("book_id or book is required", nil))
			return
		}
		book, outcome, err := d.Lists.AddToReadingList(r.Context(), userID,
			lists.BookSubject{ID: req.BookID, Record: req.Book})
		if err != nil {
			if errors.Is(err, repos.ErrNotFound) {
				writeError(w, r, pkghttpx.NotFound("book not found", err))
				return
			}
			writeError(w, r, pkghttpx.Internal("failed to add to reading list", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"book":    book,
			"changed": outcome.Changed,
			"message": outcome.Message,
		})
	}
}

// ReadingListRemove handles DELETE /readinglist/{bookID}
func ReadingListRemove(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := currentUser(r)
		bookID, err := pathID(r, "bookID")
		if err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid book id", err))
			return
		}
		outcome, err := d.Lists.RemoveFromReadingList(r.Context(), userID, bookID)
		if err != nil {
			writeError(w, r, pkghttpx.Internal("failed to remove from reading list", err))
			return
		}
		writeJSON(w, http.StatusOK, outcome)
	}
}

// MarkRead handles POST /readinglist/{bookID}/read
func MarkRead(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := currentUser(r)
		bookID, err := pathID(r, "bookID")
		if err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid book id", err))
			return
		}
		book, outcome, err := d.Lists.MarkRead(r.Context(), userID, lists.BookSubject{ID: bookID})
		if err != nil {
			if errors.Is(err, repos.ErrNotFound) {
				writeError(w, r, pkghttpx.NotFound("book not found", err))
				return
			}
			writeError(w, r, pkghttpx.Internal("failed to mark read", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"book":    book,
			"changed": outcome.Changed,
			"message": outcome.Message,
		})
	}
}

// MoveReadingListEntryRead handles POST /readinglist/entries/{entryID}/read
func MoveReadingListEntryRead(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := currentUser(r)
		entryID, err := pathID(r, "entryID")
		if err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid entry id", err))
			return
		}
		book, outcome, err := d.Lists.MoveReadingListEntryToHistory(r.Context(), userID, entryID)
		if err != nil {
			if errors.Is(err, repos.ErrNotFound) {
				writeError(w, r, pkghttpx.NotFound("reading list entry not found", err))
				return
			}
			writeError(w, r, pkghttpx.Internal("failed to move entry to history", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"book":    book,
			"changed": outcome.Changed,
			"message": outcome.Message,
		})
	}
}

// ReadHistory handles GET /history/read
func ReadHistory(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := currentUser(r)
		items, err := d.Repo.Lists.ReadHistoryByUser(r.Context(), userID)
		if err != nil {
			writeError(w, r, pkghttpx.Internal("failed to list read history", err))
			return
		}
		if items == nil {
			items = []model.ReadHistoryItem{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"history": items})
	}
}

// ReadHistoryRemove handles DELETE /history/read/{bookID}
func ReadHistoryRemove(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := currentUser(r)
		bookID, err := pathID(r, "bookID")
		if err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid book id", err))
			return
		}
		outcome, err := d.Lists.RemoveFromReadHistory(r.Context(), userID, bookID)
		if err != nil {
			writeError(w, r, pkghttpx.Internal("failed to remove from read history", err))
			return
		}
		writeJSON(w, http.StatusOK, outcome)
	}
}
