package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"adaptrack-server/internal/model"
)

var ErrBadCredentials = errors.New("invalid username or password")

type UsersRepo struct {
	db *pgxpool.Pool
}

// Create registers a user with a bcrypt password hash. Username and email
// collisions surface as ErrDuplicate.
func (r *UsersRepo) Create(ctx context.Context, username, email, password string) (model.User, error) {
	var u model.User
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return u, err
	}
	err = r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, username, email, created_at`,
		username, email, string(hash),
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return u, ErrDuplicate
		}
		return u, err
	}
	return u, nil
}

// Authenticate checks the password against the stored hash. Unknown user and
// wrong password collapse into the same error.
func (r *UsersRepo) Authenticate(ctx context.Context, username, password string) (model.User, error) {
	var u model.User
	var prefs []byte
	err := r.db.QueryRow(ctx,
		`SELECT id, username, email, password_hash, preferences, created_at
		 FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &prefs, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return u, ErrBadCredentials
		}
		return u, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return model.User{}, ErrBadCredentials
	}
	u.Preferences = decodePrefs(prefs)
	u.PasswordHash = ""
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	var prefs []byte
	err := r.db.QueryRow(ctx,
		`SELECT id, username, email, preferences, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.Email, &prefs, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return u, ErrNotFound
		}
		return u, err
	}
	u.Preferences = decodePrefs(prefs)
	return u, nil
}

// UpdatePreferences validates and stores the typed preference map. Values
// are restricted to primitives and string lists so the stored shape cannot
// drift silently.
func (r *UsersRepo) UpdatePreferences(ctx context.Context, userID int64, prefs map[string]any) error {
	if err := ValidatePreferences(prefs); err != nil {
		return err
	}
	b, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `UPDATE users SET preferences = $1 WHERE id = $2`, b, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns every user with preferences decoded. User counts are small
// in this system; the adaptation fan-out filters in memory.
func (r *UsersRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx, `SELECT id, username, email, preferences, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		var prefs []byte
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &prefs, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Preferences = decodePrefs(prefs)
		out = append(out, u)
	}
	return out, rows.Err()
}

// ValidatePreferences enforces the typed preference shape: string keys,
// values limited to string, bool, number, or a list of strings.
func ValidatePreferences(prefs map[string]any) error {
	for k, v := range prefs {
		switch val := v.(type) {
		case string, bool, float64, int, int64:
		case []string:
		case []any:
			for _, e := range val {
				if _, ok := e.(string); !ok {
					return fmt.Errorf("preference %q: list values must be strings", k)
				}
			}
		default:
			return fmt.Errorf("preference %q: unsupported value type %T", k, v)
		}
	}
	return nil
}

func decodePrefs(b []byte) map[string]any {
	if len(b) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}
