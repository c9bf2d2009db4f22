package repos

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"adaptrack-server/internal/model"
	"adaptrack-server/pkg/gbooks"
)

type BooksRepo struct {
	db *pgxpool.Pool
}

const bookCols = `id, title, author, google_books_id, isbn, publication_date, description, cover_image_url, page_count, external_rating`

func scanBook(row pgx.Row) (model.Book, error) {
	var b model.Book
	var gbID, isbn, desc, cover pgtype.Text
	var pub pgtype.Date
	var pages pgtype.Int4
	var rating pgtype.Float8
	err := row.Scan(&b.ID, &b.Title, &b.Author, &gbID, &isbn, &pub, &desc, &cover, &pages, &rating)
	if err != nil {
		return b, err
	}
	b.GoogleBooksID = textPtr(gbID)
	b.ISBN = textPtr(isbn)
	b.PublicationDate = datePtr(pub)
	b.Description = textPtr(desc)
	b.CoverImageURL = textPtr(cover)
	b.PageCount = int4Ptr(pages)
	b.ExternalRating = float8Ptr(rating)
	return b, nil
}

// FindOrCreate resolves a raw catalog volume to an internal row, keyed by
// Google Books id, with the same idempotence contract as movies.
func (r *BooksRepo) FindOrCreate(ctx context.Context, rec gbooks.Volume) (model.Book, error) {
	return findOrCreateBook(ctx, r.db, rec)
}

func findOrCreateBook(ctx context.Context, q DBTX, rec gbooks.Volume) (model.Book, error) {
	b, err := getBookByGoogleID(ctx, q, rec.ID)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return b, err
	}
	var extRating pgtype.Float8
	if rec.AverageRating > 0 {
		extRating = pgtype.Float8{Float64: rec.AverageRating, Valid: true}
	}
	var pages pgtype.Int4
	if rec.PageCount > 0 {
		pages = pgtype.Int4{Int32: int32(rec.PageCount), Valid: true}
	}
	row := q.QueryRow(ctx,
		`INSERT INTO books (title, author, google_books_id, isbn, publication_date, description, cover_image_url, page_count, external_rating)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (google_books_id) DO NOTHING
		 RETURNING `+bookCols,
		rec.Title, strings.Join(rec.Authors, ", "), rec.ID, textVal(rec.ISBN),
		dateVal(ParseLenientDate(rec.PublishedDate)), textVal(rec.Description),
		textVal(rec.Thumbnail), pages, extRating)
	b, err = scanBook(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return getBookByGoogleID(ctx, q, rec.ID)
	}
	return b, err
}

func getBookByGoogleID(ctx context.Context, q DBTX, googleID string) (model.Book, error) {
	b, err := scanBook(q.QueryRow(ctx, `SELECT `+bookCols+` FROM books WHERE google_books_id = $1`, googleID))
	if errors.Is(err, pgx.ErrNoRows) {
		return b, ErrNotFound
	}
	return b, err
}

func (r *BooksRepo) GetByID(ctx context.Context, id int64) (model.Book, error) {
	b, err := scanBook(r.db.QueryRow(ctx, `SELECT `+bookCols+` FROM books WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return b, ErrNotFound
	}
	return b, err
}
