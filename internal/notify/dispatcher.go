package notify

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"adaptrack-server/internal/model"
)

// ContentUpdated signals that a tracked item's catalog details changed.
type ContentUpdated struct {
	Kind  string
	ID    int64
	Title string
}

// AdaptationCreated signals a newly confirmed book-to-movie adaptation.
type AdaptationCreated struct {
	BookTitle string
	Movie     model.Movie
}

// WatcherStore resolves a movie to the users tracking it.
type WatcherStore interface {
	WatchersOf(ctx context.Context, movieID int64) ([]int64, error)
}

// UserStore lists users for genre-preference targeting.
type UserStore interface {
	ListAll(ctx context.Context) ([]model.User, error)
}

// Dispatcher consumes published events on a single goroutine and routes
// notifications into the registry. Publishing never blocks request handling:
// events past the buffer are dropped with a warning.
type Dispatcher struct {
	registry *Registry
	watchers WatcherStore
	users    UserStore

	// notifyWithoutPrefs widens adaptation fan-out to users who never set
	// genre preferences.
	notifyWithoutPrefs bool

	events  chan any
	done    chan struct{}
	dropped atomic.Int64
}

func NewDispatcher(registry *Registry, watchers WatcherStore, users UserStore, notifyWithoutPrefs bool) *Dispatcher {
	return &Dispatcher{
		registry:           registry,
		watchers:           watchers,
		users:              users,
		notifyWithoutPrefs: notifyWithoutPrefs,
		events:             make(chan any, 256),
		done:               make(chan struct{}),
	}
}

// Run consumes events until ctx is canceled, then drains the buffer.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case ev := <-d.events:
					d.handle(context.Background(), ev)
				default:
					return
				}
			}
		case ev := <-d.events:
			d.handle(ctx, ev)
		}
	}
}

// Wait blocks until Run has returned.
func (d *Dispatcher) Wait() {
	<-d.done
}

func (d *Dispatcher) Publish(ev any) {
	select {
	case d.events <- ev:
	default:
		n := d.dropped.Add(1)
		log.Warn().Type("event", ev).Int64("dropped_total", n).Msg("notification event dropped, buffer full")
	}
}

// Dropped reports how many events have been discarded because the buffer
// was full.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

func (d *Dispatcher) handle(ctx context.Context, ev any) {
	switch e := ev.(type) {
	case ContentUpdated:
		d.handleContentUpdated(ctx, e)
	case AdaptationCreated:
		d.handleAdaptationCreated(ctx, e)
	default:
		log.Error().Type("event", ev).Msg("unknown notification event")
	}
}

// handleContentUpdated notifies every user whose watchlist references the
// updated movie. Book updates have no tracking collection keyed for fan-out
// yet, so they only log.
func (d *Dispatcher) handleContentUpdated(ctx context.Context, ev ContentUpdated) {
	if ev.Kind != model.KindMovie {
		log.Debug().Str("kind", ev.Kind).Int64("id", ev.ID).Msg("content update without subscribers")
		return
	}
	userIDs, err := d.watchers.WatchersOf(ctx, ev.ID)
	if err != nil {
		log.Error().Err(err).Int64("movie_id", ev.ID).Msg("watcher lookup failed")
		return
	}
	for _, uid := range userIDs {
		d.registry.Add(uid, "Content updated",
			fmt.Sprintf("Details for %q on your watchlist were updated.", ev.Title))
	}
	log.Info().Int64("movie_id", ev.ID).Int("recipients", len(userIDs)).Msg("content update fanned out")
}

// handleAdaptationCreated notifies users whose preferred genres overlap the
// movie's genres. Users without preferences are included only when the
// dispatcher was configured to do so.
func (d *Dispatcher) handleAdaptationCreated(ctx context.Context, ev AdaptationCreated) {
	users, err := d.users.ListAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("user listing failed, adaptation fan-out skipped")
		return
	}
	var recipients int
	for i := range users {
		prefs := users[i].PreferredGenres()
		if len(prefs) == 0 {
			if !d.notifyWithoutPrefs {
				continue
			}
		} else if !overlaps(prefs, ev.Movie.Genres) {
			continue
		}
		d.registry.Add(users[i].ID, "New adaptation",
			fmt.Sprintf("%q has been adapted into the movie %q.", ev.BookTitle, ev.Movie.Title))
		recipients++
	}
	log.Info().Str("book", ev.BookTitle).Str("movie", ev.Movie.Title).
		Int("recipients", recipients).Msg("adaptation fanned out")
}

func overlaps(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := set[s]; ok {
			return true
		}
	}
	return false
}
