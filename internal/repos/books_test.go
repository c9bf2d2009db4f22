package repos

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"adaptrack-server/pkg/gbooks"
)

// bookRow fills the column set scanBook expects.
type bookRow struct {
	id       int64
	title    string
	author   string
	googleID string
}

func (r bookRow) Scan(dest ...any) error {
	*dest[0].(*int64) = r.id
	*dest[1].(*string) = r.title
	*dest[2].(*string) = r.author
	*dest[3].(*pgtype.Text) = pgtype.Text{String: r.googleID, Valid: true}
	return nil
}

func TestFindOrCreateBookReturnsExisting(t *testing.T) {
	db := &stubDB{rows: []pgx.Row{bookRow{id: 3, title: "Dune", author: "Frank Herbert", googleID: "gb1"}}}

	b, err := findOrCreateBook(context.Background(), db, gbooks.Volume{ID: "gb1", Title: "Dune"})
	if err != nil {
		t.Fatalf("findOrCreateBook: %v", err)
	}
	if b.ID != 3 || b.Title != "Dune" {
		t.Fatalf("got %+v, want existing row 3", b)
	}
	if len(db.sql) != 1 || !strings.HasPrefix(db.sql[0], "SELECT") {
		t.Fatalf("want a single lookup, got %q", db.sql)
	}
}

func TestFindOrCreateBookLostRaceRereads(t *testing.T) {
	db := &stubDB{rows: []pgx.Row{
		errRow{pgx.ErrNoRows},
		errRow{pgx.ErrNoRows},
		bookRow{id: 4, title: "Dune", author: "Frank Herbert", googleID: "gb1"},
	}}

	b, err := findOrCreateBook(context.Background(), db, gbooks.Volume{ID: "gb1", Title: "Dune"})
	if err != nil {
		t.Fatalf("findOrCreateBook: %v", err)
	}
	if b.ID != 4 {
		t.Fatalf("got id %d, want row from re-read", b.ID)
	}
	if len(db.sql) != 3 || !strings.Contains(db.sql[1], "INSERT INTO books") {
		t.Fatalf("want lookup, insert, re-read, got %q", db.sql)
	}
}
