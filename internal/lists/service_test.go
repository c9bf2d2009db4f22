package lists

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adaptrack-server/internal/model"
	"adaptrack-server/internal/repos"
	"adaptrack-server/pkg/gbooks"
	"adaptrack-server/pkg/tmdb"
)

// fakeStore tracks membership in maps keyed by (user, subject) and mirrors
// the real store's transition semantics: history add removes the want row.
type fakeStore struct {
	watchlist    map[[2]int64]bool
	watchHistory map[[2]int64]bool
	readingList  map[[2]int64]bool
	readHistory  map[[2]int64]bool

	// entries maps a synthetic row id to its subject id.
	watchlistEntries   map[int64]int64
	readingListEntries map[int64]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		watchlist:          map[[2]int64]bool{},
		watchHistory:       map[[2]int64]bool{},
		readingList:        map[[2]int64]bool{},
		readHistory:        map[[2]int64]bool{},
		watchlistEntries:   map[int64]int64{},
		readingListEntries: map[int64]int64{},
	}
}

func add(m map[[2]int64]bool, u, s int64) bool {
	k := [2]int64{u, s}
	if m[k] {
		return false
	}
	m[k] = true
	return true
}

func remove(m map[[2]int64]bool, u, s int64) bool {
	k := [2]int64{u, s}
	if !m[k] {
		return false
	}
	delete(m, k)
	return true
}

func (f *fakeStore) WatchlistAdd(_ context.Context, u, m int64, _ map[string]any) (bool, error) {
	return add(f.watchlist, u, m), nil
}
func (f *fakeStore) WatchlistRemove(_ context.Context, u, m int64) (bool, error) {
	return remove(f.watchlist, u, m), nil
}
func (f *fakeStore) WatchlistEntry(_ context.Context, _ int64, entryID int64) (int64, error) {
	movieID, ok := f.watchlistEntries[entryID]
	if !ok {
		return 0, repos.ErrNotFound
	}
	return movieID, nil
}
func (f *fakeStore) WatchHistoryAdd(_ context.Context, u, m int64) (bool, error) {
	added := add(f.watchHistory, u, m)
	remove(f.watchlist, u, m)
	return added, nil
}
func (f *fakeStore) WatchHistoryRemove(_ context.Context, u, m int64) (bool, error) {
	return remove(f.watchHistory, u, m), nil
}
func (f *fakeStore) ReadingListAdd(_ context.Context, u, b int64) (bool, error) {
	return add(f.readingList, u, b), nil
}
func (f *fakeStore) ReadingListRemove(_ context.Context, u, b int64) (bool, error) {
	return remove(f.readingList, u, b), nil
}
func (f *fakeStore) ReadingListEntry(_ context.Context, _ int64, entryID int64) (int64, error) {
	bookID, ok := f.readingListEntries[entryID]
	if !ok {
		return 0, repos.ErrNotFound
	}
	return bookID, nil
}
func (f *fakeStore) ReadHistoryAdd(_ context.Context, u, b int64) (bool, error) {
	added := add(f.readHistory, u, b)
	remove(f.readingList, u, b)
	return added, nil
}
func (f *fakeStore) ReadHistoryRemove(_ context.Context, u, b int64) (bool, error) {
	return remove(f.readHistory, u, b), nil
}

type fakeMovieStore struct {
	byID    map[int64]model.Movie
	created []tmdb.Movie
}

func (f *fakeMovieStore) FindOrCreate(_ context.Context, rec tmdb.Movie) (model.Movie, error) {
	f.created = append(f.created, rec)
	return model.Movie{ID: 100 + rec.ID, Title: rec.Title}, nil
}

func (f *fakeMovieStore) GetByID(_ context.Context, id int64) (model.Movie, error) {
	m, ok := f.byID[id]
	if !ok {
		return model.Movie{}, repos.ErrNotFound
	}
	return m, nil
}

type fakeBookStore struct {
	byID map[int64]model.Book
}

func (f *fakeBookStore) FindOrCreate(_ context.Context, rec gbooks.Volume) (model.Book, error) {
	return model.Book{ID: 200, Title: rec.Title}, nil
}

func (f *fakeBookStore) GetByID(_ context.Context, id int64) (model.Book, error) {
	b, ok := f.byID[id]
	if !ok {
		return model.Book{}, repos.ErrNotFound
	}
	return b, nil
}

func newService(store *fakeStore) (*Service, *fakeMovieStore, *fakeBookStore) {
	movies := &fakeMovieStore{byID: map[int64]model.Movie{1: {ID: 1, Title: "Dune"}}}
	books := &fakeBookStore{byID: map[int64]model.Book{2: {ID: 2, Title: "Dune"}}}
	return New(store, movies, books, nil), movies, books
}

func TestAddToWatchlistIdempotent(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newService(store)
	ctx := context.Background()

	_, out, err := svc.AddToWatchlist(ctx, 1, MovieSubject{ID: 1}, nil)
	require.NoError(t, err)
	assert.True(t, out.Changed)

	_, out, err = svc.AddToWatchlist(ctx, 1, MovieSubject{ID: 1}, nil)
	require.NoError(t, err)
	assert.False(t, out.Changed)
	assert.Equal(t, "already in watchlist", out.Message)
}

func TestAddToWatchlistCreatesFromRecord(t *testing.T) {
	store := newFakeStore()
	svc, movies, _ := newService(store)

	m, out, err := svc.AddToWatchlist(context.Background(), 1,
		MovieSubject{Record: &tmdb.Movie{ID: 438631, Title: "Dune"}}, nil)
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, "Dune", m.Title)
	require.Len(t, movies.created, 1)
}

func TestAddToWatchlistUnknownMovie(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newService(store)

	_, _, err := svc.AddToWatchlist(context.Background(), 1, MovieSubject{ID: 99}, nil)
	assert.ErrorIs(t, err, repos.ErrNotFound)
}

func TestMarkWatchedRemovesWantEntry(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newService(store)
	ctx := context.Background()

	_, _, err := svc.AddToWatchlist(ctx, 1, MovieSubject{ID: 1}, nil)
	require.NoError(t, err)

	_, out, err := svc.MarkWatched(ctx, 1, MovieSubject{ID: 1})
	require.NoError(t, err)
	assert.True(t, out.Changed)

	assert.False(t, store.watchlist[[2]int64{1, 1}], "want entry removed")
	assert.True(t, store.watchHistory[[2]int64{1, 1}])
}

func TestMarkWatchedTwiceIsNoOp(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newService(store)
	ctx := context.Background()

	_, _, err := svc.MarkWatched(ctx, 1, MovieSubject{ID: 1})
	require.NoError(t, err)
	_, out, err := svc.MarkWatched(ctx, 1, MovieSubject{ID: 1})
	require.NoError(t, err)
	assert.False(t, out.Changed)
	assert.Equal(t, "already marked as watched", out.Message)
}

func TestRemoveAbsentIsNoOp(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newService(store)

	out, err := svc.RemoveFromWatchlist(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.False(t, out.Changed)
	assert.Equal(t, "not in watchlist", out.Message)
}

func TestMoveWatchlistEntryToHistory(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newService(store)
	ctx := context.Background()

	_, _, err := svc.AddToWatchlist(ctx, 1, MovieSubject{ID: 1}, nil)
	require.NoError(t, err)
	store.watchlistEntries[10] = 1

	m, out, err := svc.MoveWatchlistEntryToHistory(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, "Dune", m.Title)
	assert.False(t, store.watchlist[[2]int64{1, 1}])
	assert.True(t, store.watchHistory[[2]int64{1, 1}])
}

func TestMoveUnknownEntry(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newService(store)

	_, _, err := svc.MoveWatchlistEntryToHistory(context.Background(), 1, 99)
	assert.ErrorIs(t, err, repos.ErrNotFound)
}

func TestMarkReadRemovesReadingListEntry(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newService(store)
	ctx := context.Background()

	_, _, err := svc.AddToReadingList(ctx, 1, BookSubject{ID: 2})
	require.NoError(t, err)

	b, out, err := svc.MarkRead(ctx, 1, BookSubject{ID: 2})
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, "Dune", b.Title)

	assert.False(t, store.readingList[[2]int64{1, 2}])
	assert.True(t, store.readHistory[[2]int64{1, 2}])
}
