package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsreel/internal/media"
	"newsreel/internal/services"
)

type stubSource struct {
	items map[string][]media.RawItem
	err   error
	calls []string
}

func (s *stubSource) FetchRecent(ctx context.Context, folder string, since time.Time) ([]media.RawItem, error) {
	s.calls = append(s.calls, folder)
	if s.err != nil {
		return nil, s.err
	}
	return s.items[folder], nil
}

func newTestCollector(source LibrarySource, now time.Time) *Collector {
	c := New(source, nil)
	c.now = func() time.Time { return now }
	return c
}

func movieItem(id, name, folder string, added time.Time) media.RawItem {
	return media.RawItem{ID: id, Kind: media.KindMovie, Name: name, AddedAt: added, LibraryFolder: folder}
}

func episodeItem(id, series, folder string, added time.Time) media.RawItem {
	return media.RawItem{
		ID: id, Kind: media.KindEpisode, Name: id, AddedAt: added,
		LibraryFolder: folder, SeriesID: series, SeriesName: series,
	}
}

func TestCollectFiltersWindowAndFolders(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	source := &stubSource{items: map[string][]media.RawItem{
		"Films": {
			movieItem("m1", "Recent", "Films", now.AddDate(0, 0, -2)),
			movieItem("m2", "Too Old", "Films", now.AddDate(0, 0, -40)),
			movieItem("m3", "Future", "Films", now.Add(time.Hour)),
			movieItem("m4", "Wrong Folder", "Anime", now.AddDate(0, 0, -1)),
		},
		"TV": {
			episodeItem("e1", "Show A", "TV", now.AddDate(0, 0, -3)),
		},
	}}
	c := newTestCollector(source, now)

	movies, episodes, err := c.Collect(context.Background(), 30, []string{"Films"}, []string{"TV"})
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(movies) != 1 || movies[0].ID != "m1" {
		t.Fatalf("movies = %+v", movies)
	}
	if len(episodes) != 1 || episodes[0].ID != "e1" {
		t.Fatalf("episodes = %+v", episodes)
	}
}

func TestCollectDeduplicatesByIDFirstWins(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	first := movieItem("m1", "First", "Films", now.AddDate(0, 0, -1))
	dup := movieItem("m1", "Duplicate", "Films", now.AddDate(0, 0, -2))
	source := &stubSource{items: map[string][]media.RawItem{
		"Films": {first, dup, movieItem("m2", "Second", "Films", now.AddDate(0, 0, -3))},
	}}
	c := newTestCollector(source, now)

	movies, _, err := c.Collect(context.Background(), 7, []string{"Films"}, nil)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("expected 2 movies after dedup, got %d", len(movies))
	}
	if movies[0].Name != "First" || movies[1].Name != "Second" {
		t.Fatalf("order or dedup winner wrong: %+v", movies)
	}
	ids := make(map[string]int)
	for _, m := range movies {
		ids[m.ID]++
	}
	for id, n := range ids {
		if n > 1 {
			t.Fatalf("id %q appears %d times", id, n)
		}
	}
}

func TestCollectDeduplicatesAcrossFolders(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	shared := movieItem("m1", "Shared", "Films", now.AddDate(0, 0, -1))
	sharedCopy := shared
	sharedCopy.LibraryFolder = "Classics"
	source := &stubSource{items: map[string][]media.RawItem{
		"Films":    {shared},
		"Classics": {sharedCopy},
	}}
	c := newTestCollector(source, now)

	movies, _, err := c.Collect(context.Background(), 7, []string{"Films", "Classics"}, nil)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(movies) != 1 {
		t.Fatalf("expected cross-folder dedup, got %+v", movies)
	}
}

func TestCollectPropagatesSourceUnavailable(t *testing.T) {
	source := &stubSource{err: errors.New("connection refused")}
	c := newTestCollector(source, time.Now())

	_, _, err := c.Collect(context.Background(), 7, []string{"Films"}, nil)
	if !errors.Is(err, services.ErrSourceUnavailable) {
		t.Fatalf("expected source unavailable, got %v", err)
	}
}

func TestCollectRejectsNonPositiveWindow(t *testing.T) {
	c := newTestCollector(&stubSource{}, time.Now())
	_, _, err := c.Collect(context.Background(), 0, []string{"Films"}, nil)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCollectEmptyFoldersIsNotAnError(t *testing.T) {
	source := &stubSource{}
	c := newTestCollector(source, time.Now())
	movies, episodes, err := c.Collect(context.Background(), 7, nil, nil)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(movies) != 0 || len(episodes) != 0 {
		t.Fatal("expected empty result")
	}
	if len(source.calls) != 0 {
		t.Fatalf("no folders configured, but source was called: %v", source.calls)
	}
}
