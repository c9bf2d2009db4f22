package gbooks

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

// ErrNotFound is returned by GetVolume when no volume exists for the id.
var ErrNotFound = errors.New("gbooks: volume not found")

// Client talks to the Google Books volumes API. Same contract as pkg/tmdb:
// one live call per invocation, no retry, no caching.
type Client struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	Client     *http.Client
}

// Volume is the flattened raw record for a Google Books volume.
// PublishedDate stays a raw string; the catalog returns full dates,
// year-month, or bare years and the repository parses leniently.
type Volume struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	PublishedDate string   `json:"published_date"`
	Description   string   `json:"description"`
	Categories    []string `json:"categories"`
	Thumbnail     string   `json:"thumbnail"`
	PageCount     int      `json:"page_count"`
	AverageRating float64  `json:"average_rating"`
	ISBN          string   `json:"isbn"`
}

type volumeInfo struct {
	Title               string   `json:"title"`
	Authors             []string `json:"authors"`
	PublishedDate       string   `json:"publishedDate"`
	Description         string   `json:"description"`
	Categories          []string `json:"categories"`
	PageCount           int      `json:"pageCount"`
	AverageRating       float64  `json:"averageRating"`
	IndustryIdentifiers []struct {
		Type       string `json:"type"`
		Identifier string `json:"identifier"`
	} `json:"industryIdentifiers"`
	ImageLinks struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"imageLinks"`
}

type volumeItem struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type searchResp struct {
	TotalItems int          `json:"totalItems"`
	Items      []volumeItem `json:"items"`
}

func New(apiKey string) *Client {
	return &Client{
		APIKey:     apiKey,
		BaseURL:    "https://www.googleapis.com/books/v1",
		MaxResults: 10,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// SearchVolumes returns raw results in the catalog's relevance order.
func (c *Client) SearchVolumes(ctx context.Context, query string) ([]Volume, error) {
	u, _ := url.Parse(c.BaseURL + "/volumes")
	q := u.Query()
	q.Set("q", query)
	if c.MaxResults > 0 {
		q.Set("maxResults", strconv.Itoa(c.MaxResults))
	}
	if c.APIKey != "" {
		q.Set("key", c.APIKey)
	}
	u.RawQuery = q.Encode()

	var sr searchResp
	if err := c.getJSON(ctx, u.String(), &sr); err != nil {
		return nil, err
	}
	out := make([]Volume, 0, len(sr.Items))
	for _, it := range sr.Items {
		out = append(out, flatten(it))
	}
	return out, nil
}

// GetVolume fetches full details for one volume.
func (c *Client) GetVolume(ctx context.Context, id string) (Volume, error) {
	u, _ := url.Parse(c.BaseURL + "/volumes/" + url.PathEscape(id))
	if c.APIKey != "" {
		q := u.Query()
		q.Set("key", c.APIKey)
		u.RawQuery = q.Encode()
	}
	var it volumeItem
	if err := c.getJSON(ctx, u.String(), &it); err != nil {
		return Volume{}, err
	}
	return flatten(it), nil
}

func flatten(it volumeItem) Volume {
	vi := it.VolumeInfo
	isbn := ""
	for _, ident := range vi.IndustryIdentifiers {
		isbn = ident.Identifier
		if ident.Type == "ISBN_13" {
			break
		}
	}
	return Volume{
		ID:            it.ID,
		Title:         vi.Title,
		Authors:       vi.Authors,
		PublishedDate: vi.PublishedDate,
		Description:   vi.Description,
		Categories:    vi.Categories,
		Thumbnail:     vi.ImageLinks.Thumbnail,
		PageCount:     vi.PageCount,
		AverageRating: vi.AverageRating,
		ISBN:          isbn,
	}
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
		return fmt.Errorf("gbooks status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
