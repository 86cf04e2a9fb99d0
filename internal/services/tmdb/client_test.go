package tmdb_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"newsreel/internal/config"
	"newsreel/internal/enrich"
	"newsreel/internal/media"
	"newsreel/internal/services"
	"newsreel/internal/services/tmdb"
)

func newClient(t *testing.T, baseURL string) *tmdb.Client {
	t.Helper()
	client, err := tmdb.New(config.TMDB{
		APIKey:       "tmdb-secret",
		BaseURL:      baseURL,
		ImageBaseURL: "https://image.tmdb.org/t/p/w500",
		Language:     "en-US",
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestLookupMoviePicksMostPopular(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path: %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("query") != "Heat" || q.Get("api_key") != "tmdb-secret" {
			t.Errorf("unexpected query: %v", q)
		}
		if q.Get("primary_release_year") != "1995" {
			t.Errorf("year filter missing: %v", q)
		}
		fmt.Fprint(w, `{"total_results":2,"results":[
			{"id":1,"title":"Heat","overview":"less popular","popularity":3.0,"poster_path":"/a.jpg","vote_average":6.1,"vote_count":10},
			{"id":2,"title":"Heat","overview":"the crime saga","popularity":9.5,"poster_path":"/b.jpg","vote_average":8.3,"vote_count":5000}
		]}`)
	}))
	defer server.Close()

	result, err := newClient(t, server.URL).Lookup(context.Background(), "Heat", 1995, media.KindMovie)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if !result.Found() {
		t.Fatalf("expected found result, got %+v", result)
	}
	if result.Synopsis != "the crime saga" {
		t.Fatalf("popularity tie-break wrong: %+v", result)
	}
	if result.PosterURL != "https://image.tmdb.org/t/p/w500/b.jpg" {
		t.Fatalf("unexpected poster url: %q", result.PosterURL)
	}
	if !result.HasRating || result.Rating != 8.3 {
		t.Fatalf("unexpected rating: %+v", result)
	}
}

func TestLookupSeriesUsesTVSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/tv" {
			t.Errorf("unexpected path: %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("first_air_date_year"); got != "2008" {
			t.Errorf("unexpected year param: %q", got)
		}
		fmt.Fprint(w, `{"total_results":1,"results":[{"id":7,"name":"Breaking Bad","overview":"chemistry","popularity":88.0,"vote_average":9.2,"vote_count":12000}]}`)
	}))
	defer server.Close()

	result, err := newClient(t, server.URL).Lookup(context.Background(), "Breaking Bad", 2008, media.KindEpisode)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if !result.Found() || result.Synopsis != "chemistry" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.PosterURL != "" {
		t.Fatalf("result without poster_path must not carry a poster url: %q", result.PosterURL)
	}
}

func TestLookupEmptyAnswerIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total_results":0,"results":[]}`)
	}))
	defer server.Close()

	result, err := newClient(t, server.URL).Lookup(context.Background(), "Nonexistent", 0, media.KindMovie)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if result.Outcome != enrich.OutcomeNotFound {
		t.Fatalf("expected not-found outcome, got %+v", result)
	}
}

func TestLookupTransportFailureWrapsErrLookupFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newClient(t, server.URL).Lookup(context.Background(), "Heat", 0, media.KindMovie)
	if !errors.Is(err, services.ErrLookupFailed) {
		t.Fatalf("expected ErrLookupFailed, got %v", err)
	}
	if strings.Contains(err.Error(), "tmdb-secret") {
		t.Fatalf("error leaks api key: %v", err)
	}
}

func TestLookupRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"total_results":1,"results":[{"id":1,"title":"Heat","overview":"ok","popularity":1.0}]}`)
	}))
	defer server.Close()

	result, err := newClient(t, server.URL).Lookup(context.Background(), "Heat", 0, media.KindMovie)
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if !result.Found() {
		t.Fatalf("unexpected result: %+v", result)
	}
	if calls.Load() < 2 {
		t.Fatalf("expected at least 2 calls, got %d", calls.Load())
	}
}

func TestLookupMalformedBodyFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": "not a list"`)
	}))
	defer server.Close()

	_, err := newClient(t, server.URL).Lookup(context.Background(), "Heat", 0, media.KindMovie)
	if !errors.Is(err, services.ErrLookupFailed) {
		t.Fatalf("expected ErrLookupFailed, got %v", err)
	}
}

func TestLookupBlankTitleIsNotFoundWithoutRequest(t *testing.T) {
	client := newClient(t, "http://127.0.0.1:9")
	result, err := client.Lookup(context.Background(), "   ", 0, media.KindMovie)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if result.Outcome != enrich.OutcomeNotFound {
		t.Fatalf("expected not-found, got %+v", result)
	}
}
