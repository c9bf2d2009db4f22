// Package match discovers book-to-movie adaptation candidates by searching
// both external catalogs concurrently and pairing results whose titles
// relate by substring.
package match

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"adaptrack-server/internal/model"
	"adaptrack-server/internal/notify"
	"adaptrack-server/internal/repos"
	"adaptrack-server/pkg/gbooks"
	"adaptrack-server/pkg/tmdb"
)

type MovieSearcher interface {
	SearchMovies(ctx context.Context, query string) ([]tmdb.Movie, error)
	GetMovie(ctx context.Context, id int64) (tmdb.Movie, error)
}

type BookSearcher interface {
	SearchVolumes(ctx context.Context, query string) ([]gbooks.Volume, error)
	GetVolume(ctx context.Context, id string) (gbooks.Volume, error)
}

// AdaptationStore persists confirmed pairs. Satisfied by
// repos.AdaptationsRepo.
type AdaptationStore interface {
	Confirm(ctx context.Context, movieRec tmdb.Movie, bookRef repos.BookRef) (model.Adaptation, model.Movie, model.Book, error)
}

// Publisher receives an event for each confirmed adaptation.
type Publisher interface {
	Publish(ev any)
}

// Pair is one adaptation candidate: a movie and a book whose titles relate.
type Pair struct {
	Movie tmdb.Movie    `json:"movie"`
	Book  gbooks.Volume `json:"book"`
}

// SearchResult carries both raw catalogs alongside the paired candidates so
// the caller can still render unmatched results.
type SearchResult struct {
	Query  string          `json:"query"`
	Movies []tmdb.Movie    `json:"movies"`
	Books  []gbooks.Volume `json:"books"`
	Pairs  []Pair          `json:"adaptation_candidates"`
	Count  int             `json:"count"`
}

type Matcher struct {
	movies    MovieSearcher
	books     BookSearcher
	store     AdaptationStore
	publisher Publisher
}

func New(movies MovieSearcher, books BookSearcher, store AdaptationStore, publisher Publisher) *Matcher {
	return &Matcher{movies: movies, books: books, store: store, publisher: publisher}
}

// Search queries both catalogs in parallel and pairs the results. A failure
// in either catalog degrades to that catalog's results being empty, which
// also empties the candidate pairs; the response itself still succeeds.
func (m *Matcher) Search(ctx context.Context, query string) (SearchResult, error) {
	res := SearchResult{Query: query}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		movies, err := m.movies.SearchMovies(ctx, query)
		if err != nil {
			log.Warn().Err(err).Str("query", query).Msg("movie catalog search failed")
			return
		}
		res.Movies = movies
	}()
	go func() {
		defer wg.Done()
		books, err := m.books.SearchVolumes(ctx, query)
		if err != nil {
			log.Warn().Err(err).Str("query", query).Msg("book catalog search failed")
			return
		}
		res.Books = books
	}()
	wg.Wait()

	res.Pairs = pairCandidates(res.Movies, res.Books)
	if res.Movies == nil {
		res.Movies = []tmdb.Movie{}
	}
	if res.Books == nil {
		res.Books = []gbooks.Volume{}
	}
	if res.Pairs == nil {
		res.Pairs = []Pair{}
	}
	res.Count = len(res.Pairs)
	return res, nil
}

// pairCandidates emits a pair for every (movie, book) whose lowercased
// titles contain one another in either direction. Blank titles never match.
func pairCandidates(movies []tmdb.Movie, books []gbooks.Volume) []Pair {
	var pairs []Pair
	for _, mv := range movies {
		mt := strings.ToLower(strings.TrimSpace(mv.Title))
		if mt == "" {
			continue
		}
		for _, bk := range books {
			bt := strings.ToLower(strings.TrimSpace(bk.Title))
			if bt == "" {
				continue
			}
			if strings.Contains(mt, bt) || strings.Contains(bt, mt) {
				pairs = append(pairs, Pair{Movie: mv, Book: bk})
			}
		}
	}
	return pairs
}

// Confirm fetches the movie's full catalog record, persists the adaptation,
// and publishes an event for notification fan-out. Persistence errors pass
// through untouched so the handler can map duplicates.
func (m *Matcher) Confirm(ctx context.Context, tmdbID int64, bookRef repos.BookRef) (model.Adaptation, error) {
	rec, err := m.movies.GetMovie(ctx, tmdbID)
	if err != nil {
		return model.Adaptation{}, err
	}
	a, movie, book, err := m.store.Confirm(ctx, rec, bookRef)
	if err != nil {
		return a, err
	}
	if m.publisher != nil {
		m.publisher.Publish(notify.AdaptationCreated{BookTitle: book.Title, Movie: movie})
	}
	return a, nil
}

// Details pairs live detail records for an already-confirmed adaptation and
// derives the gap in years between book publication and movie release.
type Details struct {
	Movie           tmdb.Movie    `json:"movie"`
	Book            gbooks.Volume `json:"book"`
	ReleaseGapYears *int          `json:"release_gap_years,omitempty"`
}

// FetchDetails pulls both catalog records live. The release gap is absent
// whenever either side's date lacks a parseable year.
func (m *Matcher) FetchDetails(ctx context.Context, tmdbID int64, volumeID string) (Details, error) {
	var d Details
	var wg sync.WaitGroup
	var movieErr, bookErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		d.Movie, movieErr = m.movies.GetMovie(ctx, tmdbID)
	}()
	go func() {
		defer wg.Done()
		d.Book, bookErr = m.books.GetVolume(ctx, volumeID)
	}()
	wg.Wait()
	if movieErr != nil {
		return d, movieErr
	}
	if bookErr != nil {
		return d, bookErr
	}
	d.ReleaseGapYears = releaseGapYears(d.Book.PublishedDate, d.Movie.ReleaseDate)
	return d, nil
}

// releaseGapYears is movieYear minus bookYear, or nil when either date has
// no leading four-digit year.
func releaseGapYears(bookDate, movieDate string) *int {
	by, ok1 := leadingYear(bookDate)
	my, ok2 := leadingYear(movieDate)
	if !ok1 || !ok2 {
		return nil
	}
	gap := my - by
	return &gap
}

func leadingYear(date string) (int, bool) {
	if len(date) < 4 {
		return 0, false
	}
	var y int
	for _, r := range date[:4] {
		if r < '0' || r > '9' {
			return 0, false
		}
		y = y*10 + int(r-'0')
	}
	return y, true
}
