package repos

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"adaptrack-server/internal/model"
	"adaptrack-server/pkg/tmdb"
)

type MoviesRepo struct {
	db *pgxpool.Pool
}

const movieCols = `id, title, tmdb_id, release_date, overview, poster_path, genres, average_rating`

func scanMovie(row pgx.Row) (model.Movie, error) {
	var m model.Movie
	var tmdbID pgtype.Int8
	var release pgtype.Date
	var overview, poster pgtype.Text
	var rating pgtype.Float8
	err := row.Scan(&m.ID, &m.Title, &tmdbID, &release, &overview, &poster, &m.Genres, &rating)
	if err != nil {
		return m, err
	}
	m.TMDBID = int8Ptr(tmdbID)
	m.ReleaseDate = datePtr(release)
	m.Overview = textPtr(overview)
	m.PosterPath = textPtr(poster)
	m.AverageRating = float8Ptr(rating)
	return m, nil
}

// FindOrCreate resolves a raw catalog record to an internal row, keyed by
// TMDb id. Safe to call repeatedly: a second call with a known external id
// returns the existing row unchanged. Racing inserts converge through the
// unique index on tmdb_id.
func (r *MoviesRepo) FindOrCreate(ctx context.Context, rec tmdb.Movie) (model.Movie, error) {
	return findOrCreateMovie(ctx, r.db, rec)
}

func findOrCreateMovie(ctx context.Context, q DBTX, rec tmdb.Movie) (model.Movie, error) {
	m, err := getMovieByTMDBID(ctx, q, rec.ID)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return m, err
	}
	row := q.QueryRow(ctx,
		`INSERT INTO movies (title, tmdb_id, release_date, overview, poster_path, genres)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (tmdb_id) DO NOTHING
		 RETURNING `+movieCols,
		rec.Title, rec.ID, dateVal(ParseLenientDate(rec.ReleaseDate)),
		textVal(rec.Overview), textVal(rec.PosterPath), genresVal(rec.Genres))
	m, err = scanMovie(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the race; the row exists now.
		return getMovieByTMDBID(ctx, q, rec.ID)
	}
	return m, err
}

func getMovieByTMDBID(ctx context.Context, q DBTX, tmdbID int64) (model.Movie, error) {
	m, err := scanMovie(q.QueryRow(ctx, `SELECT `+movieCols+` FROM movies WHERE tmdb_id = $1`, tmdbID))
	if errors.Is(err, pgx.ErrNoRows) {
		return m, ErrNotFound
	}
	return m, err
}

func (r *MoviesRepo) GetByID(ctx context.Context, id int64) (model.Movie, error) {
	m, err := scanMovie(r.db.QueryRow(ctx, `SELECT `+movieCols+` FROM movies WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return m, ErrNotFound
	}
	return m, err
}

// Filter lists movies narrowed by optional genre, release year, and minimum
// aggregate rating.
type MovieFilter struct {
	Genre     string
	Year      int
	MinRating *float64
}

func (r *MoviesRepo) Filter(ctx context.Context, f MovieFilter) ([]model.Movie, error) {
	q := `SELECT ` + movieCols + ` FROM movies WHERE TRUE`
	args := []any{}
	if f.Genre != "" {
		args = append(args, f.Genre)
		q += ` AND $` + strconv.Itoa(len(args)) + ` = ANY(genres)`
	}
	if f.Year != 0 {
		args = append(args, f.Year)
		q += ` AND EXTRACT(YEAR FROM release_date) = $` + strconv.Itoa(len(args))
	}
	if f.MinRating != nil {
		args = append(args, *f.MinRating)
		q += ` AND average_rating >= $` + strconv.Itoa(len(args))
	}
	q += ` ORDER BY title`
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// RefreshDetails overwrites catalog-sourced fields from a fresh detail
// record and reports whether anything changed. Used by the periodic refresh
// job to decide whether to publish a content-updated event.
func (r *MoviesRepo) RefreshDetails(ctx context.Context, id int64, rec tmdb.Movie) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE movies
		 SET title = $2, release_date = $3, overview = $4, poster_path = $5, genres = $6
		 WHERE id = $1
		   AND (title, release_date, overview, poster_path, genres)
		       IS DISTINCT FROM ($2, $3::date, $4, $5, $6::text[])`,
		id, rec.Title, dateVal(ParseLenientDate(rec.ReleaseDate)),
		textVal(rec.Overview), textVal(rec.PosterPath), genresVal(rec.Genres))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Watchlisted returns the distinct movies referenced by any user's
// watchlist, the refresh job's working set.
func (r *MoviesRepo) Watchlisted(ctx context.Context) ([]model.Movie, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT ON (m.id)
		        m.id, m.title, m.tmdb_id, m.release_date, m.overview, m.poster_path, m.genres, m.average_rating
		 FROM movies m JOIN watchlist w ON w.movie_id = m.id
		 ORDER BY m.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// NotWatchedBy returns movies absent from the user's watch history, the
// recommendation candidate pool.
func (r *MoviesRepo) NotWatchedBy(ctx context.Context, userID int64) ([]model.Movie, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+movieCols+` FROM movies m
		 WHERE NOT EXISTS (
		   SELECT 1 FROM watch_history h WHERE h.movie_id = m.id AND h.user_id = $1
		 )
		 ORDER BY m.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func genresVal(genres []string) []string {
	if genres == nil {
		return []string{}
	}
	return genres
}
