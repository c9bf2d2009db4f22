// Package recommend scores unwatched movies against genre affinities
// learned from a user's watch history and reviews.
package recommend

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"adaptrack-server/internal/model"
	"adaptrack-server/pkg/cache"
)

const (
	// defaultRating weights a watched movie the user never reviewed.
	defaultRating = 3.0
	// DefaultLimit caps the recommendation list when the caller does not
	// ask for a specific size.
	DefaultLimit = 10
	cacheTTL     = 5 * time.Minute
)

// CacheKey is the per-user cache slot. List mutations delete this key so
// stale recommendations never outlive a history change by more than the TTL.
func CacheKey(userID int64) string {
	return "recommendations:user:" + strconv.FormatInt(userID, 10)
}

type HistoryStore interface {
	WatchHistoryByUser(ctx context.Context, userID int64) ([]model.WatchHistoryItem, error)
}

type ReviewStore interface {
	ListByUser(ctx context.Context, userID int64) ([]model.Review, error)
}

type CandidateStore interface {
	NotWatchedBy(ctx context.Context, userID int64) ([]model.Movie, error)
}

// Recommendation is a scored candidate movie. Score is the sum of the
// user's affinities for the movie's genres.
type Recommendation struct {
	Movie model.Movie `json:"movie"`
	Score float64     `json:"score"`
}

type Service struct {
	history    HistoryStore
	reviews    ReviewStore
	candidates CandidateStore
	cache      cache.Cache
}

func New(history HistoryStore, reviews ReviewStore, candidates CandidateStore, c cache.Cache) *Service {
	return &Service{history: history, reviews: reviews, candidates: candidates, cache: c}
}

// ForUser returns up to limit scored candidates, highest first. Results are
// cached per user; a cache miss recomputes from history, reviews, and the
// unwatched candidate pool. A user with no watch history gets an empty list.
func (s *Service) ForUser(ctx context.Context, userID int64, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	key := CacheKey(userID)
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var recs []Recommendation
			if err := json.Unmarshal([]byte(raw), &recs); err == nil {
				return clip(recs, limit), nil
			}
		}
	}

	recs, err := s.compute(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if b, err := json.Marshal(recs); err == nil {
			if err := s.cache.Set(ctx, key, string(b), cacheTTL); err != nil {
				log.Warn().Err(err).Int64("user_id", userID).Msg("recommendation cache write failed")
			}
		}
	}
	return clip(recs, limit), nil
}

func (s *Service) compute(ctx context.Context, userID int64) ([]Recommendation, error) {
	history, err := s.history.WatchHistoryByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return []Recommendation{}, nil
	}
	reviews, err := s.reviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	affinity := genreAffinity(history, reviews)
	if len(affinity) == 0 {
		return []Recommendation{}, nil
	}

	pool, err := s.candidates.NotWatchedBy(ctx, userID)
	if err != nil {
		return nil, err
	}

	var recs []Recommendation
	for _, m := range pool {
		var score float64
		for _, g := range m.Genres {
			score += affinity[g]
		}
		if score > 0 {
			recs = append(recs, Recommendation{Movie: m, Score: score})
		}
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if recs == nil {
		recs = []Recommendation{}
	}
	return recs, nil
}

// genreAffinity sums per-genre weights across watched movies. Each movie
// contributes the user's review rating for it, or defaultRating when the
// movie was never reviewed.
func genreAffinity(history []model.WatchHistoryItem, reviews []model.Review) map[string]float64 {
	ratingByMovie := make(map[int64]float64, len(reviews))
	for _, rv := range reviews {
		if rv.MovieID != nil {
			ratingByMovie[*rv.MovieID] = rv.Rating
		}
	}
	affinity := make(map[string]float64)
	for _, it := range history {
		if it.Movie == nil {
			continue
		}
		weight := defaultRating
		if r, ok := ratingByMovie[it.MovieID]; ok {
			weight = r
		}
		for _, g := range it.Movie.Genres {
			affinity[g] += weight
		}
	}
	return affinity
}

func clip(recs []Recommendation, limit int) []Recommendation {
	if len(recs) > limit {
		return recs[:limit]
	}
	return recs
}
