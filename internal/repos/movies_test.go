package repos

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"adaptrack-server/pkg/tmdb"
)

// stubDB feeds canned rows to QueryRow in order and records the SQL, so the
// find-or-create branches can be walked without a database.
type stubDB struct {
	rows []pgx.Row
	sql  []string
}

func (s *stubDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (s *stubDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected Query")
}

func (s *stubDB) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	s.sql = append(s.sql, sql)
	if len(s.rows) == 0 {
		return errRow{pgx.ErrNoRows}
	}
	r := s.rows[0]
	s.rows = s.rows[1:]
	return r
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// movieRow fills the column set scanMovie expects.
type movieRow struct {
	id     int64
	title  string
	tmdbID int64
	genres []string
}

func (r movieRow) Scan(dest ...any) error {
	*dest[0].(*int64) = r.id
	*dest[1].(*string) = r.title
	*dest[2].(*pgtype.Int8) = pgtype.Int8{Int64: r.tmdbID, Valid: true}
	*dest[6].(*[]string) = r.genres
	return nil
}

func TestFindOrCreateMovieReturnsExisting(t *testing.T) {
	db := &stubDB{rows: []pgx.Row{movieRow{id: 7, title: "Dune", tmdbID: 438631}}}

	m, err := findOrCreateMovie(context.Background(), db, tmdb.Movie{ID: 438631, Title: "Dune"})
	if err != nil {
		t.Fatalf("findOrCreateMovie: %v", err)
	}
	if m.ID != 7 || m.Title != "Dune" {
		t.Fatalf("got %+v, want existing row 7", m)
	}
	if m.TMDBID == nil || *m.TMDBID != 438631 {
		t.Fatalf("tmdb id not carried: %+v", m.TMDBID)
	}
	if len(db.sql) != 1 || !strings.HasPrefix(db.sql[0], "SELECT") {
		t.Fatalf("want a single lookup, got %q", db.sql)
	}
}

func TestFindOrCreateMovieInsertsWhenAbsent(t *testing.T) {
	db := &stubDB{rows: []pgx.Row{
		errRow{pgx.ErrNoRows},
		movieRow{id: 8, title: "Dune", tmdbID: 438631},
	}}

	m, err := findOrCreateMovie(context.Background(), db, tmdb.Movie{ID: 438631, Title: "Dune"})
	if err != nil {
		t.Fatalf("findOrCreateMovie: %v", err)
	}
	if m.ID != 8 {
		t.Fatalf("got id %d, want inserted row 8", m.ID)
	}
	if len(db.sql) != 2 || !strings.Contains(db.sql[1], "INSERT INTO movies") {
		t.Fatalf("want lookup then insert, got %q", db.sql)
	}
}

func TestFindOrCreateMovieLostRaceRereads(t *testing.T) {
	// The ON CONFLICT DO NOTHING insert returns no row when a concurrent
	// writer won; the existing row must come back from the re-read.
	db := &stubDB{rows: []pgx.Row{
		errRow{pgx.ErrNoRows},
		errRow{pgx.ErrNoRows},
		movieRow{id: 9, title: "Dune", tmdbID: 438631},
	}}

	m, err := findOrCreateMovie(context.Background(), db, tmdb.Movie{ID: 438631, Title: "Dune"})
	if err != nil {
		t.Fatalf("findOrCreateMovie: %v", err)
	}
	if m.ID != 9 {
		t.Fatalf("got id %d, want row from re-read", m.ID)
	}
	if len(db.sql) != 3 || !strings.HasPrefix(db.sql[2], "SELECT") {
		t.Fatalf("want lookup, insert, re-read, got %q", db.sql)
	}
}

func TestFindOrCreateMoviePropagatesLookupError(t *testing.T) {
	boom := errors.New("connection reset")
	db := &stubDB{rows: []pgx.Row{errRow{boom}}}

	_, err := findOrCreateMovie(context.Background(), db, tmdb.Movie{ID: 438631, Title: "Dune"})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want lookup error passed through", err)
	}
	if len(db.sql) != 1 {
		t.Fatalf("no insert should be attempted, got %q", db.sql)
	}
}
