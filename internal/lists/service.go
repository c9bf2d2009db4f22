// Package lists manages the four per-user collections: watchlist and
// reading list (want), watch history and read history (consumed). Adds are
// idempotent, and marking an item consumed removes its want entry in the
// same logical operation.
package lists

import (
	"context"

	"github.com/rs/zerolog/log"

	"adaptrack-server/internal/model"
	"adaptrack-server/internal/recommend"
	"adaptrack-server/pkg/cache"
	"adaptrack-server/pkg/gbooks"
	"adaptrack-server/pkg/tmdb"
)

// Store is the membership storage contract, satisfied by repos.ListsRepo.
type Store interface {
	WatchlistAdd(ctx context.Context, userID, movieID int64, notifyPrefs map[string]any) (bool, error)
	WatchlistRemove(ctx context.Context, userID, movieID int64) (bool, error)
	WatchlistEntry(ctx context.Context, userID, entryID int64) (int64, error)
	WatchHistoryAdd(ctx context.Context, userID, movieID int64) (bool, error)
	WatchHistoryRemove(ctx context.Context, userID, movieID int64) (bool, error)

	ReadingListAdd(ctx context.Context, userID, bookID int64) (bool, error)
	ReadingListRemove(ctx context.Context, userID, bookID int64) (bool, error)
	ReadingListEntry(ctx context.Context, userID, entryID int64) (int64, error)
	ReadHistoryAdd(ctx context.Context, userID, bookID int64) (bool, error)
	ReadHistoryRemove(ctx context.Context, userID, bookID int64) (bool, error)
}

// MovieStore resolves movie subjects, satisfied by repos.MoviesRepo.
type MovieStore interface {
	FindOrCreate(ctx context.Context, rec tmdb.Movie) (model.Movie, error)
	GetByID(ctx context.Context, id int64) (model.Movie, error)
}

// BookStore resolves book subjects, satisfied by repos.BooksRepo.
type BookStore interface {
	FindOrCreate(ctx context.Context, rec gbooks.Volume) (model.Book, error)
	GetByID(ctx context.Context, id int64) (model.Book, error)
}

// Outcome reports whether a mutation changed anything and the message shown
// to the user. Duplicate adds and absent removals are no-ops, not errors, so
// retries are always safe.
type Outcome struct {
	Changed bool   `json:"changed"`
	Message string `json:"message"`
}

type Service struct {
	store  Store
	movies MovieStore
	books  BookStore
	cache  cache.Cache
}

func New(store Store, movies MovieStore, books BookStore, c cache.Cache) *Service {
	return &Service{store: store, movies: movies, books: books, cache: c}
}

// MovieSubject identifies a movie by internal id or by a raw catalog record
// still to be created. Exactly one side is set.
type MovieSubject struct {
	ID     int64
	Record *tmdb.Movie
}

// BookSubject is the book-side equivalent of MovieSubject.
type BookSubject struct {
	ID     int64
	Record *gbooks.Volume
}

func (s *Service) resolveMovie(ctx context.Context, subject MovieSubject) (model.Movie, error) {
	if subject.Record != nil {
		return s.movies.FindOrCreate(ctx, *subject.Record)
	}
	return s.movies.GetByID(ctx, subject.ID)
}

func (s *Service) resolveBook(ctx context.Context, subject BookSubject) (model.Book, error) {
	if subject.Record != nil {
		return s.books.FindOrCreate(ctx, *subject.Record)
	}
	return s.books.GetByID(ctx, subject.ID)
}

// AddToWatchlist resolves the subject and inserts the want entry. A
// duplicate add leaves the existing row untouched.
func (s *Service) AddToWatchlist(ctx context.Context, userID int64, subject MovieSubject, notifyPrefs map[string]any) (model.Movie, Outcome, error) {
	movie, err := s.resolveMovie(ctx, subject)
	if err != nil {
		return model.Movie{}, Outcome{}, err
	}
	added, err := s.store.WatchlistAdd(ctx, userID, movie.ID, notifyPrefs)
	if err != nil {
		return movie, Outcome{}, err
	}
	s.invalidateRecommendations(ctx, userID)
	if !added {
		return movie, Outcome{Message: "already in watchlist"}, nil
	}
	return movie, Outcome{Changed: true, Message: "added to watchlist"}, nil
}

// MarkWatched records the movie as watched. The store removes any watchlist
// entry for the same pair in the same transaction, so the subject is never
// in both collections.
func (s *Service) MarkWatched(ctx context.Context, userID int64, subject MovieSubject) (model.Movie, Outcome, error) {
	movie, err := s.resolveMovie(ctx, subject)
	if err != nil {
		return model.Movie{}, Outcome{}, err
	}
	added, err := s.store.WatchHistoryAdd(ctx, userID, movie.ID)
	if err != nil {
		return movie, Outcome{}, err
	}
	s.invalidateRecommendations(ctx, userID)
	if !added {
		return movie, Outcome{Message: "already marked as watched"}, nil
	}
	return movie, Outcome{Changed: true, Message: "marked as watched"}, nil
}

// MoveWatchlistEntryToHistory resolves a want-list entry row to its movie
// and marks it watched, relying on MarkWatched's want-list cleanup.
func (s *Service) MoveWatchlistEntryToHistory(ctx context.Context, userID, entryID int64) (model.Movie, Outcome, error) {
	movieID, err := s.store.WatchlistEntry(ctx, userID, entryID)
	if err != nil {
		return model.Movie{}, Outcome{}, err
	}
	return s.MarkWatched(ctx, userID, MovieSubject{ID: movieID})
}

func (s *Service) RemoveFromWatchlist(ctx context.Context, userID, movieID int64) (Outcome, error) {
	removed, err := s.store.WatchlistRemove(ctx, userID, movieID)
	if err != nil {
		return Outcome{}, err
	}
	if !removed {
		return Outcome{Message: "not in watchlist"}, nil
	}
	s.invalidateRecommendations(ctx, userID)
	return Outcome{Changed: true, Message: "removed from watchlist"}, nil
}

func (s *Service) RemoveFromWatchHistory(ctx context.Context, userID, movieID int64) (Outcome, error) {
	removed, err := s.store.WatchHistoryRemove(ctx, userID, movieID)
	if err != nil {
		return Outcome{}, err
	}
	if !removed {
		return Outcome{Message: "not in watch history"}, nil
	}
	s.invalidateRecommendations(ctx, userID)
	return Outcome{Changed: true, Message: "removed from watch history"}, nil
}

func (s *Service) AddToReadingList(ctx context.Context, userID int64, subject BookSubject) (model.Book, Outcome, error) {
	book, err := s.resolveBook(ctx, subject)
	if err != nil {
		return model.Book{}, Outcome{}, err
	}
	added, err := s.store.ReadingListAdd(ctx, userID, book.ID)
	if err != nil {
		return book, Outcome{}, err
	}
	if !added {
		return book, Outcome{Message: "already in reading list"}, nil
	}
	return book, Outcome{Changed: true, Message: "added to reading list"}, nil
}

func (s *Service) MarkRead(ctx context.Context, userID int64, subject BookSubject) (model.Book, Outcome, error) {
	book, err := s.resolveBook(ctx, subject)
	if err != nil {
		return model.Book{}, Outcome{}, err
	}
	added, err := s.store.ReadHistoryAdd(ctx, userID, book.ID)
	if err != nil {
		return book, Outcome{}, err
	}
	if !added {
		return book, Outcome{Message: "already marked as read"}, nil
	}
	return book, Outcome{Changed: true, Message: "marked as read"}, nil
}

// MoveReadingListEntryToHistory mirrors MoveWatchlistEntryToHistory for
// reading-list rows.
func (s *Service) MoveReadingListEntryToHistory(ctx context.Context, userID, entryID int64) (model.Book, Outcome, error) {
	bookID, err := s.store.ReadingListEntry(ctx, userID, entryID)
	if err != nil {
		return model.Book{}, Outcome{}, err
	}
	return s.MarkRead(ctx, userID, BookSubject{ID: bookID})
}

func (s *Service) RemoveFromReadingList(ctx context.Context, userID, bookID int64) (Outcome, error) {
	removed, err := s.store.ReadingListRemove(ctx, userID, bookID)
	if err != nil {
		return Outcome{}, err
	}
	if !removed {
		return Outcome{Message: "not in reading list"}, nil
	}
	return Outcome{Changed: true, Message: "removed from reading list"}, nil
}

func (s *Service) RemoveFromReadHistory(ctx context.Context, userID, bookID int64) (Outcome, error) {
	removed, err := s.store.ReadHistoryRemove(ctx, userID, bookID)
	if err != nil {
		return Outcome{}, err
	}
	if !removed {
		return Outcome{Message: "not in read history"}, nil
	}
	return Outcome{Changed: true, Message: "removed from read history"}, nil
}

func (s *Service) invalidateRecommendations(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, recommend.CacheKey(userID)); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("recommendation cache invalidation failed")
	}
}
