package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNotFound is returned by GetMovie when TMDb has no movie for the id.
var ErrNotFound = errors.New("tmdb: movie not found")

// Client talks to the TMDb v3 API. Every call is a live fetch; no retry, no
// caching.
type Client struct {
	APIKey   string
	BaseURL  string
	Language string
	Client   *http.Client
}

// Movie is the raw search/detail record as TMDb returns it. ReleaseDate is
// kept as the raw string; lenient parsing happens at the repository.
type Movie struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	ReleaseDate string   `json:"release_date"`
	Overview    string   `json:"overview"`
	PosterPath  string   `json:"poster_path"`
	VoteAverage float64  `json:"vote_average"`
	Popularity  float64  `json:"popularity"`
	Genres      []string `json:"genres,omitempty"`
	Runtime     int      `json:"runtime,omitempty"`
}

type searchResp struct {
	Page    int          `json:"page"`
	Results []searchItem `json:"results"`
}

type searchItem struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	Popularity  float64 `json:"popularity"`
	GenreIDs    []int64 `json:"genre_ids"`
}

type detailResp struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	Popularity  float64 `json:"popularity"`
	Runtime     int     `json:"runtime"`
	Genres      []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// genreNames maps TMDb's fixed movie genre ids to display names so search
// results carry genre tags without a second lookup.
var genreNames = map[int64]string{
	28: "Action", 12: "Adventure", 16: "Animation", 35: "Comedy",
	80: "Crime", 99: "Documentary", 18: "Drama", 10751: "Family",
	14: "Fantasy", 36: "History", 27: "Horror", 10402: "Music",
	9648: "Mystery", 10749: "Romance", 878: "Science Fiction",
	10770: "TV Movie", 53: "Thriller", 10752: "War", 37: "Western",
}

func New(apiKey, language string) *Client {
	if language == "" {
		language = "en-US"
	}
	return &Client{
		APIKey:   apiKey,
		BaseURL:  "https://api.themoviedb.org/3",
		Language: language,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SearchMovies returns raw search results in TMDb's own order.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]Movie, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("missing TMDB API key")
	}
	u, _ := url.Parse(c.BaseURL + "/search/movie")
	q := u.Query()
	q.Set("api_key", c.APIKey)
	q.Set("query", query)
	q.Set("language", c.Language)
	u.RawQuery = q.Encode()

	var sr searchResp
	if err := c.getJSON(ctx, u.String(), &sr); err != nil {
		return nil, err
	}
	out := make([]Movie, 0, len(sr.Results))
	for _, it := range sr.Results {
		genres := make([]string, 0, len(it.GenreIDs))
		for _, id := range it.GenreIDs {
			if name, ok := genreNames[id]; ok {
				genres = append(genres, name)
			}
		}
		out = append(out, Movie{
			ID:          it.ID,
			Title:       it.Title,
			ReleaseDate: it.ReleaseDate,
			Overview:    it.Overview,
			PosterPath:  it.PosterPath,
			VoteAverage: it.VoteAverage,
			Popularity:  it.Popularity,
			Genres:      genres,
		})
	}
	return out, nil
}

// GetMovie fetches full details for one movie.
func (c *Client) GetMovie(ctx context.Context, id int64) (Movie, error) {
	var out Movie
	if c.APIKey == "" {
		return out, fmt.Errorf("missing TMDB API key")
	}
	u, _ := url.Parse(c.BaseURL + "/movie/" + strconv.FormatInt(id, 10))
	q := u.Query()
	q.Set("api_key", c.APIKey)
	q.Set("language", c.Language)
	u.RawQuery = q.Encode()

	var dr detailResp
	if err := c.getJSON(ctx, u.String(), &dr); err != nil {
		return out, err
	}
	genres := make([]string, 0, len(dr.Genres))
	for _, g := range dr.Genres {
		genres = append(genres, g.Name)
	}
	return Movie{
		ID:          dr.ID,
		Title:       dr.Title,
		ReleaseDate: dr.ReleaseDate,
		Overview:    dr.Overview,
		PosterPath:  dr.PosterPath,
		VoteAverage: dr.VoteAverage,
		Popularity:  dr.Popularity,
		Runtime:     dr.Runtime,
		Genres:      genres,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
