package repos

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"adaptrack-server/internal/model"
)

// ListsRepo owns the four per-user collections: watchlist, reading list,
// watch history, read history. Uniqueness is enforced by constraints, and
// the want->history transition runs in a single transaction so a want row
// and a history row never coexist for the same (user, subject).
type ListsRepo struct {
	db *pgxpool.Pool
}

// WatchlistAdd inserts a watchlist row. added=false means the pair already
// existed; the caller reports that as an informational no-op.
func (r *ListsRepo) WatchlistAdd(ctx context.Context, userID, movieID int64, notifyPrefs map[string]any) (bool, error) {
	var prefs any
	if notifyPrefs != nil {
		b, err := json.Marshal(notifyPrefs)
		if err != nil {
			return false, err
		}
		prefs = b
	}
	tag, err := r.db.Exec(ctx,
		`INSERT INTO watchlist (user_id, movie_id, notification_preferences)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, movie_id) DO NOTHING`,
		userID, movieID, prefs)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// WatchlistRemove deletes by (user, movie). removed=false is the reported
// no-op for an absent entry.
func (r *ListsRepo) WatchlistRemove(ctx context.Context, userID, movieID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM watchlist WHERE user_id = $1 AND movie_id = $2`, userID, movieID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ListsRepo) WatchlistByUser(ctx context.Context, userID int64) ([]model.WatchlistItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT w.id, w.user_id, w.movie_id, w.added_at, w.notification_preferences,
		        m.id, m.title, m.tmdb_id, m.release_date, m.overview, m.poster_path, m.genres, m.average_rating
		 FROM watchlist w JOIN movies m ON m.id = w.movie_id
		 WHERE w.user_id = $1
		 ORDER BY w.added_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.WatchlistItem
	for rows.Next() {
		var it model.WatchlistItem
		var prefs []byte
		var m model.Movie
		var tmdbID, release, overview, poster, rating = newMovieScanTargets()
		if err := rows.Scan(&it.ID, &it.UserID, &it.MovieID, &it.AddedAt, &prefs,
			&m.ID, &m.Title, tmdbID, release, overview, poster, &m.Genres, rating); err != nil {
			return nil, err
		}
		fillMovie(&m, tmdbID, release, overview, poster, rating)
		if len(prefs) > 0 {
			_ = json.Unmarshal(prefs, &it.NotifyPrefs)
		}
		it.Movie = &m
		out = append(out, it)
	}
	return out, rows.Err()
}

// WatchlistEntry resolves a want-list entry row to its movie id, scoped to
// the owning user.
func (r *ListsRepo) WatchlistEntry(ctx context.Context, userID, entryID int64) (int64, error) {
	var movieID int64
	err := r.db.QueryRow(ctx,
		`SELECT movie_id FROM watchlist WHERE id = $1 AND user_id = $2`, entryID, userID,
	).Scan(&movieID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return movieID, err
}

// WatchHistoryAdd records a movie as watched and removes any watchlist row
// for the same (user, movie) in the same transaction. added=false means the
// movie was already marked; the cleanup still runs so the exclusion
// invariant holds either way.
func (r *ListsRepo) WatchHistoryAdd(ctx context.Context, userID, movieID int64) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO watch_history (user_id, movie_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, movie_id) DO NOTHING`,
		userID, movieID)
	if err != nil {
		return false, err
	}
	added := tag.RowsAffected() > 0
	if _, err := tx.Exec(ctx,
		`DELETE FROM watchlist WHERE user_id = $1 AND movie_id = $2`, userID, movieID); err != nil {
		return false, err
	}
	return added, tx.Commit(ctx)
}

func (r *ListsRepo) WatchHistoryRemove(ctx context.Context, userID, movieID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM watch_history WHERE user_id = $1 AND movie_id = $2`, userID, movieID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ListsRepo) WatchHistoryByUser(ctx context.Context, userID int64) ([]model.WatchHistoryItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT h.id, h.user_id, h.movie_id, h.watched_at,
		        m.id, m.title, m.tmdb_id, m.release_date, m.overview, m.poster_path, m.genres, m.average_rating
		 FROM watch_history h JOIN movies m ON m.id = h.movie_id
		 WHERE h.user_id = $1
		 ORDER BY h.watched_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.WatchHistoryItem
	for rows.Next() {
		var it model.WatchHistoryItem
		var m model.Movie
		var tmdbID, release, overview, poster, rating = newMovieScanTargets()
		if err := rows.Scan(&it.ID, &it.UserID, &it.MovieID, &it.WatchedAt,
			&m.ID, &m.Title, tmdbID, release, overview, poster, &m.Genres, rating); err != nil {
			return nil, err
		}
		fillMovie(&m, tmdbID, release, overview, poster, rating)
		it.Movie = &m
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *ListsRepo) ReadingListAdd(ctx context.Context, userID, bookID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO reading_list (user_id, book_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, book_id) DO NOTHING`,
		userID, bookID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ListsRepo) ReadingListRemove(ctx context.Context, userID, bookID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM reading_list WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ListsRepo) ReadingListByUser(ctx context.Context, userID int64) ([]model.ReadingListItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT l.id, l.user_id, l.book_id, l.added_at,
		        b.id, b.title, b.author, b.google_books_id, b.isbn, b.publication_date, b.description, b.cover_image_url, b.page_count, b.external_rating
		 FROM reading_list l JOIN books b ON b.id = l.book_id
		 WHERE l.user_id = $1
		 ORDER BY l.added_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ReadingListItem
	for rows.Next() {
		var it model.ReadingListItem
		var b model.Book
		if err := scanJoinedBook(rows, &it.ID, &it.UserID, &it.BookID, &it.AddedAt, &b); err != nil {
			return nil, err
		}
		it.Book = &b
		out = append(out, it)
	}
	return out, rows.Err()
}

// ReadingListEntry mirrors WatchlistEntry for reading-list rows.
func (r *ListsRepo) ReadingListEntry(ctx context.Context, userID, entryID int64) (int64, error) {
	var bookID int64
	err := r.db.QueryRow(ctx,
		`SELECT book_id FROM reading_list WHERE id = $1 AND user_id = $2`, entryID, userID,
	).Scan(&bookID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return bookID, err
}

// ReadHistoryAdd mirrors WatchHistoryAdd for books.
func (r *ListsRepo) ReadHistoryAdd(ctx context.Context, userID, bookID int64) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO read_history (user_id, book_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, book_id) DO NOTHING`,
		userID, bookID)
	if err != nil {
		return false, err
	}
	added := tag.RowsAffected() > 0
	if _, err := tx.Exec(ctx,
		`DELETE FROM reading_list WHERE user_id = $1 AND book_id = $2`, userID, bookID); err != nil {
		return false, err
	}
	return added, tx.Commit(ctx)
}

func (r *ListsRepo) ReadHistoryRemove(ctx context.Context, userID, bookID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM read_history WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ListsRepo) ReadHistoryByUser(ctx context.Context, userID int64) ([]model.ReadHistoryItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT h.id, h.user_id, h.book_id, h.read_at,
		        b.id, b.title, b.author, b.google_books_id, b.isbn, b.publication_date, b.description, b.cover_image_url, b.page_count, b.external_rating
		 FROM read_history h JOIN books b ON b.id = h.book_id
		 WHERE h.user_id = $1
		 ORDER BY h.read_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ReadHistoryItem
	for rows.Next() {
		var it model.ReadHistoryItem
		var b model.Book
		if err := scanJoinedBook(rows, &it.ID, &it.UserID, &it.BookID, &it.ReadAt, &b); err != nil {
			return nil, err
		}
		it.Book = &b
		out = append(out, it)
	}
	return out, rows.Err()
}

// WatchersOf returns the ids of users whose watchlists reference the movie.
// The notification fan-out treats these rows as the movie's subscribers.
func (r *ListsRepo) WatchersOf(ctx context.Context, movieID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id FROM watchlist WHERE movie_id = $1 ORDER BY user_id`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
