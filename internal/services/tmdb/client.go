// Package tmdb implements the enrichment client against The Movie Database
// search API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"newsreel/internal/config"
	"newsreel/internal/enrich"
	"newsreel/internal/media"
	"newsreel/internal/services"
)

// searchResult represents a single TMDB search match.
type searchResult struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
}

// searchResponse models the TMDB paginated search response.
type searchResponse struct {
	Page         int            `json:"page"`
	Results      []searchResult `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

const (
	retryAttempts = 3
	retryDelay    = 500 * time.Millisecond
)

// Client provides access to the TMDB API for digest enrichment.
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	httpClient   *http.Client
}

var _ enrich.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a TMDB client from configuration.
func New(cfg config.TMDB, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		imageBaseURL: strings.TrimRight(strings.TrimSpace(cfg.ImageBaseURL), "/"),
		language:     strings.TrimSpace(cfg.Language),
		httpClient:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Lookup searches TMDB for the title and returns a tagged result. When
// several matches come back the most popular one wins. A clean empty answer
// is OutcomeNotFound; transport and decode problems surface as
// ErrLookupFailed so the caller can count them against the run.
func (c *Client) Lookup(ctx context.Context, title string, year int, kind media.Kind) (enrich.Result, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return enrich.Result{Outcome: enrich.OutcomeNotFound}, nil
	}

	endpoint, err := url.Parse(c.baseURL + c.searchPath(kind))
	if err != nil {
		return enrich.Result{}, services.Wrap(services.ErrLookupFailed, "tmdb", "parse url", title, err)
	}
	params := url.Values{}
	params.Set("query", title)
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	if year > 0 {
		if kind == media.KindMovie {
			params.Set("primary_release_year", strconv.Itoa(year))
		} else {
			params.Set("first_air_date_year", strconv.Itoa(year))
		}
	}
	endpoint.RawQuery = params.Encode()

	payload, err := c.search(ctx, endpoint.String())
	if err != nil {
		return enrich.Result{}, services.Wrap(services.ErrLookupFailed, "tmdb", "search", title, err)
	}
	if len(payload.Results) == 0 {
		return enrich.Result{Outcome: enrich.OutcomeNotFound}, nil
	}

	best := payload.Results[0]
	for _, candidate := range payload.Results[1:] {
		if candidate.Popularity > best.Popularity {
			best = candidate
		}
	}
	return c.toResult(best), nil
}

func (c *Client) search(ctx context.Context, endpoint string) (*searchResponse, error) {
	var payload searchResponse
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("build request: %w", err))
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("execute request: %w", err)
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusOK:
			case resp.StatusCode >= http.StatusInternalServerError, resp.StatusCode == http.StatusTooManyRequests:
				return fmt.Errorf("tmdb search returned %d", resp.StatusCode)
			default:
				return retry.Unrecoverable(fmt.Errorf("tmdb search returned %d", resp.StatusCode))
			}

			payload = searchResponse{}
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode tmdb response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) searchPath(kind media.Kind) string {
	if kind == media.KindEpisode {
		return "/search/tv"
	}
	return "/search/movie"
}

func (c *Client) toResult(match searchResult) enrich.Result {
	result := enrich.Result{
		Outcome:  enrich.OutcomeFound,
		Synopsis: match.Overview,
	}
	if match.PosterPath != "" && c.imageBaseURL != "" {
		result.PosterURL = c.imageBaseURL + "/" + strings.TrimLeft(match.PosterPath, "/")
	}
	if match.VoteCount > 0 {
		result.Rating = match.VoteAverage
		result.HasRating = true
	}
	return result
}
