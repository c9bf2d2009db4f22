// Package jobs runs background maintenance loops.
package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"adaptrack-server/internal/model"
	"adaptrack-server/internal/notify"
	"adaptrack-server/pkg/tmdb"
)

type MovieStore interface {
	Watchlisted(ctx context.Context) ([]model.Movie, error)
	RefreshDetails(ctx context.Context, id int64, rec tmdb.Movie) (bool, error)
}

type MovieFetcher interface {
	GetMovie(ctx context.Context, id int64) (tmdb.Movie, error)
}

type Publisher interface {
	Publish(ev any)
}

// Refresher re-fetches catalog details for every watchlisted movie on a
// fixed interval and publishes a content-updated event for each movie whose
// stored details actually changed.
type Refresher struct {
	movies    MovieStore
	catalog   MovieFetcher
	publisher Publisher
	interval  time.Duration
}

func NewRefresher(movies MovieStore, catalog MovieFetcher, publisher Publisher, interval time.Duration) *Refresher {
	return &Refresher{movies: movies, catalog: catalog, publisher: publisher, interval: interval}
}

// Run blocks until ctx is canceled. The first sweep starts one full interval
// after startup so boot is not delayed by catalog traffic.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	log.Info().Dur("interval", r.interval).Msg("watchlist refresh job started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("watchlist refresh job stopped")
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Refresher) sweep(ctx context.Context) {
	movies, err := r.movies.Watchlisted(ctx)
	if err != nil {
		log.Error().Err(err).Msg("watchlisted movie listing failed")
		return
	}
	var updated int
	for _, m := range movies {
		if ctx.Err() != nil {
			return
		}
		if m.TMDBID == nil {
			continue
		}
		rec, err := r.catalog.GetMovie(ctx, *m.TMDBID)
		if err != nil {
			log.Warn().Err(err).Int64("movie_id", m.ID).Int64("tmdb_id", *m.TMDBID).
				Msg("catalog refresh fetch failed")
			continue
		}
		changed, err := r.movies.RefreshDetails(ctx, m.ID, rec)
		if err != nil {
			log.Error().Err(err).Int64("movie_id", m.ID).Msg("catalog refresh write failed")
			continue
		}
		if changed {
			updated++
			if r.publisher != nil {
				r.publisher.Publish(notify.ContentUpdated{
					Kind:  model.KindMovie,
					ID:    m.ID,
					Title: rec.Title,
				})
			}
		}
	}
	log.Info().Int("checked", len(movies)).Int("updated", updated).Msg("watchlist refresh sweep done")
}
