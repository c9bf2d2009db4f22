package repos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"adaptrack-server/internal/model"
)

type ReviewsRepo struct {
	db *pgxpool.Pool
}

const reviewCols = `id, user_id, movie_id, book_id, rating, comment, created_at`

func scanReview(row pgx.Row) (model.Review, error) {
	var rv model.Review
	var movieID, bookID pgtype.Int8
	err := row.Scan(&rv.ID, &rv.UserID, &movieID, &bookID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	if err != nil {
		return rv, err
	}
	rv.MovieID = int8Ptr(movieID)
	rv.BookID = int8Ptr(bookID)
	return rv, nil
}

// Upsert stores a review for exactly one of movieID/bookID. A second review
// for the same (user, subject) updates the existing row instead of
// duplicating it, and the movie's aggregate rating is recomputed in the same
// transaction.
func (r *ReviewsRepo) Upsert(ctx context.Context, userID int64, movieID, bookID *int64, rating float64, comment string) (model.Review, error) {
	var rv model.Review
	if (movieID == nil) == (bookID == nil) {
		return rv, fmt.Errorf("review must reference exactly one of movie or book")
	}
	if rating < model.MinRating || rating > model.MaxRating {
		return rv, fmt.Errorf("rating %.1f outside range %.0f-%.0f", rating, model.MinRating, model.MaxRating)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return rv, err
	}
	defer tx.Rollback(ctx)

	if movieID != nil {
		rv, err = scanReview(tx.QueryRow(ctx,
			`INSERT INTO reviews (user_id, movie_id, rating, comment)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (user_id, movie_id) WHERE movie_id IS NOT NULL
			 DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, created_at = now()
			 RETURNING `+reviewCols,
			userID, *movieID, rating, comment))
		if err == nil {
			_, err = tx.Exec(ctx,
				`UPDATE movies SET average_rating = (SELECT AVG(rating) FROM reviews WHERE movie_id = $1) WHERE id = $1`,
				*movieID)
		}
	} else {
		rv, err = scanReview(tx.QueryRow(ctx,
			`INSERT INTO reviews (user_id, book_id, rating, comment)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (user_id, book_id) WHERE book_id IS NOT NULL
			 DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, created_at = now()
			 RETURNING `+reviewCols,
			userID, *bookID, rating, comment))
	}
	if err != nil {
		return rv, err
	}
	return rv, tx.Commit(ctx)
}

// ListByMovie returns reviews for a movie, newest first, with reviewer
// usernames.
func (r *ReviewsRepo) ListByMovie(ctx context.Context, movieID int64) ([]ReviewWithUser, error) {
	rows, err := r.db.Query(ctx,
		`SELECT r.id, r.user_id, r.movie_id, r.book_id, r.rating, r.comment, r.created_at, u.username
		 FROM reviews r JOIN users u ON u.id = r.user_id
		 WHERE r.movie_id = $1
		 ORDER BY r.created_at DESC`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ReviewWithUser
	for rows.Next() {
		var rw ReviewWithUser
		var mID, bID pgtype.Int8
		if err := rows.Scan(&rw.ID, &rw.UserID, &mID, &bID, &rw.Rating, &rw.Comment, &rw.CreatedAt, &rw.Username); err != nil {
			return nil, err
		}
		rw.MovieID = int8Ptr(mID)
		rw.BookID = int8Ptr(bID)
		out = append(out, rw)
	}
	return out, rows.Err()
}

// ListByUser returns a user's reviews, used for recommendation weighting.
func (r *ReviewsRepo) ListByUser(ctx context.Context, userID int64) ([]model.Review, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+reviewCols+` FROM reviews WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

type ReviewWithUser struct {
	model.Review
	Username string `json:"username"`
}
