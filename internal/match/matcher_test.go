package match

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adaptrack-server/internal/model"
	"adaptrack-server/internal/notify"
	"adaptrack-server/internal/repos"
	"adaptrack-server/pkg/gbooks"
	"adaptrack-server/pkg/tmdb"
)

type fakeMovies struct {
	results []tmdb.Movie
	detail  tmdb.Movie
	err     error
}

func (f *fakeMovies) SearchMovies(_ context.Context, _ string) ([]tmdb.Movie, error) {
	return f.results, f.err
}

func (f *fakeMovies) GetMovie(_ context.Context, _ int64) (tmdb.Movie, error) {
	return f.detail, f.err
}

type fakeBooks struct {
	results []gbooks.Volume
	detail  gbooks.Volume
	err     error
}

func (f *fakeBooks) SearchVolumes(_ context.Context, _ string) ([]gbooks.Volume, error) {
	return f.results, f.err
}

func (f *fakeBooks) GetVolume(_ context.Context, _ string) (gbooks.Volume, error) {
	return f.detail, f.err
}

type fakeStore struct {
	adaptation model.Adaptation
	movie      model.Movie
	book       model.Book
	err        error
}

func (f *fakeStore) Confirm(_ context.Context, _ tmdb.Movie, _ repos.BookRef) (model.Adaptation, model.Movie, model.Book, error) {
	return f.adaptation, f.movie, f.book, f.err
}

type capturePublisher struct {
	events []any
}

func (p *capturePublisher) Publish(ev any) { p.events = append(p.events, ev) }

func TestSearchPairsBySubstring(t *testing.T) {
	movies := &fakeMovies{results: []tmdb.Movie{
		{ID: 1, Title: "Dune"},
		{ID: 2, Title: "Arrival"},
	}}
	books := &fakeBooks{results: []gbooks.Volume{
		{ID: "a", Title: "Dune Messiah"},
		{ID: "b", Title: "Stories of Your Life and Others"},
	}}
	m := New(movies, books, nil, nil)

	res, err := m.Search(context.Background(), "dune")
	require.NoError(t, err)

	require.Len(t, res.Pairs, 1)
	assert.Equal(t, "Dune", res.Pairs[0].Movie.Title)
	assert.Equal(t, "Dune Messiah", res.Pairs[0].Book.Title)
}

func TestSearchPairsBothDirections(t *testing.T) {
	movies := &fakeMovies{results: []tmdb.Movie{{ID: 1, Title: "The Lord of the Rings: The Fellowship of the Ring"}}}
	books := &fakeBooks{results: []gbooks.Volume{{ID: "a", Title: "The Fellowship of the Ring"}}}
	m := New(movies, books, nil, nil)

	res, err := m.Search(context.Background(), "fellowship")
	require.NoError(t, err)
	require.Len(t, res.Pairs, 1)
}

func TestSearchBlankTitlesNeverPair(t *testing.T) {
	movies := &fakeMovies{results: []tmdb.Movie{{ID: 1, Title: "  "}}}
	books := &fakeBooks{results: []gbooks.Volume{{ID: "a", Title: "Dune"}}}
	m := New(movies, books, nil, nil)

	res, err := m.Search(context.Background(), "dune")
	require.NoError(t, err)
	assert.Empty(t, res.Pairs)
}

func TestSearchOneCatalogFailureYieldsNoPairs(t *testing.T) {
	movies := &fakeMovies{results: []tmdb.Movie{{ID: 1, Title: "Dune"}}}
	books := &fakeBooks{err: errors.New("upstream down")}
	m := New(movies, books, nil, nil)

	res, err := m.Search(context.Background(), "dune")
	require.NoError(t, err)

	assert.Len(t, res.Movies, 1)
	assert.Empty(t, res.Books)
	assert.Empty(t, res.Pairs)
}

func TestConfirmPublishesEvent(t *testing.T) {
	store := &fakeStore{
		adaptation: model.Adaptation{ID: 7, BookID: 3, MovieID: 5, Title: "Dune", TMDBID: 438631},
		movie:      model.Movie{ID: 5, Title: "Dune", Genres: []string{"Science Fiction"}},
		book:       model.Book{ID: 3, Title: "Dune"},
	}
	pub := &capturePublisher{}
	m := New(&fakeMovies{detail: tmdb.Movie{ID: 438631, Title: "Dune"}}, &fakeBooks{}, store, pub)

	a, err := m.Confirm(context.Background(), 438631, repos.BookRef{ID: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(7), a.ID)

	require.Len(t, pub.events, 1)
	ev, ok := pub.events[0].(notify.AdaptationCreated)
	require.True(t, ok)
	assert.Equal(t, "Dune", ev.BookTitle)
	assert.Equal(t, []string{"Science Fiction"}, ev.Movie.Genres)
}

func TestConfirmDuplicatePassesThrough(t *testing.T) {
	store := &fakeStore{err: repos.ErrDuplicate}
	pub := &capturePublisher{}
	m := New(&fakeMovies{detail: tmdb.Movie{ID: 1}}, &fakeBooks{}, store, pub)

	_, err := m.Confirm(context.Background(), 1, repos.BookRef{ID: 3})
	assert.ErrorIs(t, err, repos.ErrDuplicate)
	assert.Empty(t, pub.events)
}

func TestFetchDetailsReleaseGap(t *testing.T) {
	m := New(
		&fakeMovies{detail: tmdb.Movie{ID: 438631, Title: "Dune", ReleaseDate: "2021-09-15"}},
		&fakeBooks{detail: gbooks.Volume{ID: "a", Title: "Dune", PublishedDate: "1965"}},
		nil, nil)

	d, err := m.FetchDetails(context.Background(), 438631, "a")
	require.NoError(t, err)
	require.NotNil(t, d.ReleaseGapYears)
	assert.Equal(t, 56, *d.ReleaseGapYears)
}

func TestFetchDetailsGapAbsentOnUnparseableDate(t *testing.T) {
	m := New(
		&fakeMovies{detail: tmdb.Movie{ID: 1, ReleaseDate: "2021-09-15"}},
		&fakeBooks{detail: gbooks.Volume{ID: "a", PublishedDate: "unknown"}},
		nil, nil)

	d, err := m.FetchDetails(context.Background(), 1, "a")
	require.NoError(t, err)
	assert.Nil(t, d.ReleaseGapYears)
}

func TestFetchDetailsUpstreamError(t *testing.T) {
	m := New(
		&fakeMovies{err: tmdb.ErrNotFound},
		&fakeBooks{detail: gbooks.Volume{ID: "a"}},
		nil, nil)

	_, err := m.FetchDetails(context.Background(), 1, "a")
	assert.ErrorIs(t, err, tmdb.ErrNotFound)
}
