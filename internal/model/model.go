package model

import "time"

// Media kinds referenced by reviews, list rows, and content events.
const (
	KindMovie = "movie"
	KindBook  = "book"
)

// Rating bounds for reviews.
const (
	MinRating = 0.0
	MaxRating = 5.0
)

type User struct {
	ID           int64          `json:"id"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	Preferences  map[string]any `json:"preferences,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// PreferredGenres extracts the preferred_genres preference as a string set.
func (u *User) PreferredGenres() []string {
	if u.Preferences == nil {
		return nil
	}
	raw, ok := u.Preferences["preferred_genres"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, g := range v {
			if s, ok := g.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

type Movie struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	TMDBID        *int64     `json:"tmdb_id,omitempty"`
	ReleaseDate   *time.Time `json:"release_date,omitempty"`
	Overview      *string    `json:"overview,omitempty"`
	PosterPath    *string    `json:"poster_path,omitempty"`
	Genres        []string   `json:"genres,omitempty"`
	AverageRating *float64   `json:"average_rating,omitempty"`
}

type Book struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	GoogleBooksID   *string    `json:"google_books_id,omitempty"`
	ISBN            *string    `json:"isbn,omitempty"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	Description     *string    `json:"description,omitempty"`
	CoverImageURL   *string    `json:"cover_image_url,omitempty"`
	PageCount       *int       `json:"page_count,omitempty"`
	ExternalRating  *float64   `json:"external_rating,omitempty"`
}

// Adaptation links one Book to one Movie, with movie metadata denormalized
// at confirmation time. At most one row exists per (BookID, TMDBID).
type Adaptation struct {
	ID          int64      `json:"id"`
	BookID      int64      `json:"book_id"`
	MovieID     int64      `json:"movie_id"`
	Title       string     `json:"title"`
	Overview    *string    `json:"overview,omitempty"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	TMDBID      int64      `json:"tmdb_id"`
	PosterPath  *string    `json:"poster_path,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Review references either a movie or a book, never both. One active review
// exists per (user, subject); resubmission updates in place.
type Review struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	MovieID   *int64    `json:"movie_id,omitempty"`
	BookID    *int64    `json:"book_id,omitempty"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type WatchlistItem struct {
	ID          int64          `json:"id"`
	UserID      int64          `json:"user_id"`
	MovieID     int64          `json:"movie_id"`
	AddedAt     time.Time      `json:"added_at"`
	NotifyPrefs map[string]any `json:"notification_preferences,omitempty"`
	Movie       *Movie         `json:"movie,omitempty"`
}

type ReadingListItem struct {
	ID      int64     `json:"id"`
	UserID  int64     `json:"user_id"`
	BookID  int64     `json:"book_id"`
	AddedAt time.Time `json:"added_at"`
	Book    *Book     `json:"book,omitempty"`
}

type WatchHistoryItem struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	MovieID   int64     `json:"movie_id"`
	WatchedAt time.Time `json:"watched_at"`
	Movie     *Movie    `json:"movie,omitempty"`
}

type ReadHistoryItem struct {
	ID     int64     `json:"id"`
	UserID int64     `json:"user_id"`
	BookID int64     `json:"book_id"`
	ReadAt time.Time `json:"read_at"`
	Book   *Book     `json:"book,omitempty"`
}

// Notification lives only in the in-process registry; it is not persisted
// and is lost on restart.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}
