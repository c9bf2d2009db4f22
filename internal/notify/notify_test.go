package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adaptrack-server/internal/model"
)

type fakeWatchers struct {
	byMovie map[int64][]int64
}

func (f *fakeWatchers) WatchersOf(_ context.Context, movieID int64) ([]int64, error) {
	return f.byMovie[movieID], nil
}

type fakeUsers struct {
	users []model.User
}

func (f *fakeUsers) ListAll(_ context.Context) ([]model.User, error) {
	return f.users, nil
}

func userWithGenres(id int64, genres ...string) model.User {
	u := model.User{ID: id}
	if len(genres) > 0 {
		gs := make([]any, len(genres))
		for i, g := range genres {
			gs[i] = g
		}
		u.Preferences = map[string]any{"preferred_genres": gs}
	}
	return u
}

func TestRegistryAddAndRead(t *testing.T) {
	reg := NewRegistry()
	reg.Add(1, "first", "oldest")
	reg.Add(1, "second", "newest")

	all := reg.ForUser(1, false)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].Title, "newest first")
	assert.Equal(t, 2, reg.UnreadCount(1))

	changed := reg.MarkAllRead(1)
	assert.Equal(t, 2, changed)
	assert.Equal(t, 0, reg.UnreadCount(1))
	assert.Empty(t, reg.ForUser(1, true))

	// second pass is a no-op
	assert.Equal(t, 0, reg.MarkAllRead(1))
}

func TestRegistryIsolatesUsers(t *testing.T) {
	reg := NewRegistry()
	reg.Add(1, "t", "m")
	assert.Empty(t, reg.ForUser(2, false))
}

func TestContentUpdatedNotifiesWatchers(t *testing.T) {
	reg := NewRegistry()
	watchers := &fakeWatchers{byMovie: map[int64][]int64{5: {1, 2}}}
	d := NewDispatcher(reg, watchers, &fakeUsers{}, false)

	d.handle(context.Background(), ContentUpdated{Kind: model.KindMovie, ID: 5, Title: "Dune"})

	assert.Equal(t, 1, reg.UnreadCount(1))
	assert.Equal(t, 1, reg.UnreadCount(2))
	assert.Equal(t, 0, reg.UnreadCount(3))
	assert.Contains(t, reg.ForUser(1, false)[0].Message, "Dune")
}

func TestAdaptationCreatedTargetsGenrePreferences(t *testing.T) {
	reg := NewRegistry()
	users := &fakeUsers{users: []model.User{
		userWithGenres(1, "Science Fiction"),
		userWithGenres(2, "Romance"),
		userWithGenres(3),
	}}
	d := NewDispatcher(reg, &fakeWatchers{}, users, false)

	d.handle(context.Background(), AdaptationCreated{
		BookTitle: "Dune",
		Movie:     model.Movie{Title: "Dune", Genres: []string{"Science Fiction", "Adventure"}},
	})

	assert.Equal(t, 1, reg.UnreadCount(1), "matching genre notified")
	assert.Equal(t, 0, reg.UnreadCount(2), "non-matching genre silent")
	assert.Equal(t, 0, reg.UnreadCount(3), "no preferences silent by default")
}

func TestAdaptationCreatedNotifyWithoutPrefs(t *testing.T) {
	reg := NewRegistry()
	users := &fakeUsers{users: []model.User{
		userWithGenres(1, "Romance"),
		userWithGenres(2),
	}}
	d := NewDispatcher(reg, &fakeWatchers{}, users, true)

	d.handle(context.Background(), AdaptationCreated{
		BookTitle: "Dune",
		Movie:     model.Movie{Title: "Dune", Genres: []string{"Science Fiction"}},
	})

	assert.Equal(t, 0, reg.UnreadCount(1), "non-matching preference still silent")
	assert.Equal(t, 1, reg.UnreadCount(2), "no-preference user included when configured")
}

func TestPublishCountsDropsWhenBufferFull(t *testing.T) {
	d := NewDispatcher(NewRegistry(), &fakeWatchers{}, &fakeUsers{}, false)

	// No consumer running, so everything past the buffer is dropped.
	overflow := cap(d.events) + 5
	for i := 0; i < overflow; i++ {
		d.Publish(ContentUpdated{Kind: model.KindMovie, ID: int64(i)})
	}

	assert.Equal(t, int64(5), d.Dropped())
	assert.Len(t, d.events, cap(d.events), "buffer kept full, not corrupted")
}

func TestDispatcherRunDrainsOnCancel(t *testing.T) {
	reg := NewRegistry()
	watchers := &fakeWatchers{byMovie: map[int64][]int64{5: {1}}}
	d := NewDispatcher(reg, watchers, &fakeUsers{}, false)

	ctx, cancel := context.WithCancel(context.Background())
	d.Publish(ContentUpdated{Kind: model.KindMovie, ID: 5, Title: "Dune"})
	cancel()
	go d.Run(ctx)
	d.Wait()

	assert.Equal(t, 1, reg.UnreadCount(1))
}
