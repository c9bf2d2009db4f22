package repos

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so find-or-create
// logic can run standalone or inside a caller's transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Conditions repositories report to callers. Duplicates are informational
// no-ops at the API boundary, not hard errors.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

type Repository struct {
	db *pgxpool.Pool

	Users       *UsersRepo
	Movies      *MoviesRepo
	Books       *BooksRepo
	Adaptations *AdaptationsRepo
	Reviews     *ReviewsRepo
	Lists       *ListsRepo
}

func New(db *pgxpool.Pool) *Repository {
	r := &Repository{db: db}
	r.Users = &UsersRepo{db: db}
	r.Movies = &MoviesRepo{db: db}
	r.Books = &BooksRepo{db: db}
	r.Adaptations = &AdaptationsRepo{db: db}
	r.Reviews = &ReviewsRepo{db: db}
	r.Lists = &ListsRepo{db: db}
	return r
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation. Idempotence invariants lean on constraints rather than
// check-then-insert, so racing writers converge here.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
