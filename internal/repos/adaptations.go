package repos

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"adaptrack-server/internal/model"
	"adaptrack-server/pkg/gbooks"
	"adaptrack-server/pkg/tmdb"
)

type AdaptationsRepo struct {
	db *pgxpool.Pool
}

const adaptationCols = `id, book_id, movie_id, title, overview, release_date, tmdb_id, poster_path, created_at`

func scanAdaptation(row pgx.Row) (model.Adaptation, error) {
	var a model.Adaptation
	var overview, poster pgtype.Text
	var release pgtype.Date
	err := row.Scan(&a.ID, &a.BookID, &a.MovieID, &a.Title, &overview, &release, &a.TMDBID, &poster, &a.CreatedAt)
	if err != nil {
		return a, err
	}
	a.Overview = textPtr(overview)
	a.ReleaseDate = datePtr(release)
	a.PosterPath = textPtr(poster)
	return a, nil
}

// BookRef names the book side of a confirmation: either an already-known
// internal row or a raw catalog volume still to be created.
type BookRef struct {
	ID     int64
	Volume *gbooks.Volume
}

// Confirm persists a user-confirmed adaptation and returns it with the
// resolved movie and book rows. Book and movie are resolved (find-or-create)
// and the adaptation inserted inside one transaction, so a failed commit
// leaves no partial state. A second confirmation of the same (book, external
// movie id) pair reports ErrDuplicate.
func (r *AdaptationsRepo) Confirm(ctx context.Context, movieRec tmdb.Movie, bookRef BookRef) (model.Adaptation, model.Movie, model.Book, error) {
	var a model.Adaptation
	var movie model.Movie
	var book model.Book
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return a, movie, book, err
	}
	defer tx.Rollback(ctx)

	if bookRef.Volume != nil {
		book, err = findOrCreateBook(ctx, tx, *bookRef.Volume)
	} else {
		book, err = scanBook(tx.QueryRow(ctx, `SELECT `+bookCols+` FROM books WHERE id = $1`, bookRef.ID))
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
		}
	}
	if err != nil {
		return a, movie, book, err
	}

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM adaptations WHERE book_id = $1 AND tmdb_id = $2)`,
		book.ID, movieRec.ID,
	).Scan(&exists); err != nil {
		return a, movie, book, err
	}
	if exists {
		return a, movie, book, ErrDuplicate
	}

	movie, err = findOrCreateMovie(ctx, tx, movieRec)
	if err != nil {
		return a, movie, book, err
	}

	a, err = scanAdaptation(tx.QueryRow(ctx,
		`INSERT INTO adaptations (book_id, movie_id, title, overview, release_date, tmdb_id, poster_path)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+adaptationCols,
		book.ID, movie.ID, movieRec.Title, textVal(movieRec.Overview),
		dateVal(ParseLenientDate(movieRec.ReleaseDate)), movieRec.ID, textVal(movieRec.PosterPath)))
	if err != nil {
		if isUniqueViolation(err) {
			return a, movie, book, ErrDuplicate
		}
		return a, movie, book, err
	}
	return a, movie, book, tx.Commit(ctx)
}

// Get returns the adaptation with its linked movie and book rows.
func (r *AdaptationsRepo) Get(ctx context.Context, id int64) (model.Adaptation, model.Movie, model.Book, error) {
	a, err := scanAdaptation(r.db.QueryRow(ctx, `SELECT `+adaptationCols+` FROM adaptations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
		}
		return a, model.Movie{}, model.Book{}, err
	}
	m, err := scanMovie(r.db.QueryRow(ctx, `SELECT `+movieCols+` FROM movies WHERE id = $1`, a.MovieID))
	if err != nil {
		return a, m, model.Book{}, err
	}
	b, err := scanBook(r.db.QueryRow(ctx, `SELECT `+bookCols+` FROM books WHERE id = $1`, a.BookID))
	return a, m, b, err
}

// ListByBook returns all confirmed adaptations for a book, oldest first.
func (r *AdaptationsRepo) ListByBook(ctx context.Context, bookID int64) ([]model.Adaptation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+adaptationCols+` FROM adaptations WHERE book_id = $1 ORDER BY created_at`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Adaptation
	for rows.Next() {
		a, err := scanAdaptation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
