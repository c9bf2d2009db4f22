package repos

import (
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"adaptrack-server/internal/model"
)

// dateFormats tried in order when parsing external catalog dates. Catalogs
// return full dates, year-month, or bare years depending on the record.
var dateFormats = []string{"2006-01-02", "2006-01", "2006"}

// ParseLenientDate parses an external catalog date string, falling back
// through full-date, year-month, and year-only formats. Unparseable input
// yields nil, never an error.
func ParseLenientDate(s string) *time.Time {
	for _, f := range dateFormats {
		if t, err := time.Parse(f, s); err == nil {
			return &t
		}
	}
	return nil
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func textVal(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func datePtr(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func dateVal(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

func float8Ptr(f pgtype.Float8) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func float8Val(f *float64) pgtype.Float8 {
	if f == nil {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: *f, Valid: true}
}

func int4Ptr(i pgtype.Int4) *int {
	if !i.Valid {
		return nil
	}
	v := int(i.Int32)
	return &v
}

func int8Ptr(i pgtype.Int8) *int64 {
	if !i.Valid {
		return nil
	}
	v := i.Int64
	return &v
}

// Scan targets for movie columns joined into list/history rows.
func newMovieScanTargets() (*pgtype.Int8, *pgtype.Date, *pgtype.Text, *pgtype.Text, *pgtype.Float8) {
	return &pgtype.Int8{}, &pgtype.Date{}, &pgtype.Text{}, &pgtype.Text{}, &pgtype.Float8{}
}

func fillMovie(m *model.Movie, tmdbID *pgtype.Int8, release *pgtype.Date, overview, poster *pgtype.Text, rating *pgtype.Float8) {
	m.TMDBID = int8Ptr(*tmdbID)
	m.ReleaseDate = datePtr(*release)
	m.Overview = textPtr(*overview)
	m.PosterPath = textPtr(*poster)
	m.AverageRating = float8Ptr(*rating)
}

// scanJoinedBook scans leading row columns followed by the full book column
// set into b.
func scanJoinedBook(rows pgx.Rows, lead1, lead2, lead3 *int64, leadTime *time.Time, b *model.Book) error {
	var gbID, isbn, desc, cover pgtype.Text
	var pub pgtype.Date
	var pages pgtype.Int4
	var rating pgtype.Float8
	if err := rows.Scan(lead1, lead2, lead3, leadTime,
		&b.ID, &b.Title, &b.Author, &gbID, &isbn, &pub, &desc, &cover, &pages, &rating); err != nil {
		return err
	}
	b.GoogleBooksID = textPtr(gbID)
	b.ISBN = textPtr(isbn)
	b.PublicationDate = datePtr(pub)
	b.Description = textPtr(desc)
	b.CoverImageURL = textPtr(cover)
	b.PageCount = int4Ptr(pages)
	b.ExternalRating = float8Ptr(rating)
	return nil
}
