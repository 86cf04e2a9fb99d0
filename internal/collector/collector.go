package collector

import (
	"context"
	"log/slog"
	"time"

	"newsreel/internal/logging"
	"newsreel/internal/media"
	"newsreel/internal/services"
)

// LibrarySource fetches raw items added to one library folder since the
// given time. Implementations handle transport-level retries; an error
// returned here means those retries are exhausted and the run cannot
// proceed.
type LibrarySource interface {
	FetchRecent(ctx context.Context, folder string, since time.Time) ([]media.RawItem, error)
}

// Collector queries the library source for the observation window and
// filters the result down to watched folders.
type Collector struct {
	source LibrarySource
	logger *slog.Logger
	now    func() time.Time
}

// New constructs a Collector. A nil logger disables logging.
func New(source LibrarySource, logger *slog.Logger) *Collector {
	return &Collector{
		source: source,
		logger: logging.NewComponentLogger(logger, "collector"),
		now:    time.Now,
	}
}

// Collect returns the movies and episodes added within the trailing
// windowDays, restricted to the watched folder sets for their kind.
// Items are deduplicated by ID, first occurrence wins, order of first
// appearance preserved. Items whose folder matches neither set are
// excluded without error.
func (c *Collector) Collect(ctx context.Context, windowDays int, filmFolders, tvFolders []string) ([]media.RawItem, []media.RawItem, error) {
	if windowDays <= 0 {
		return nil, nil, services.Wrap(services.ErrConfiguration, "collect", "window", "observed period must be positive", nil)
	}
	now := c.now()
	since := now.AddDate(0, 0, -windowDays)

	filmSet := folderSet(filmFolders)
	tvSet := folderSet(tvFolders)

	seen := make(map[string]struct{})
	var movies, episodes []media.RawItem

	appendItems := func(items []media.RawItem, wantKind media.Kind, watched map[string]struct{}) {
		for _, item := range items {
			if item.Kind != wantKind {
				continue
			}
			if _, ok := watched[item.LibraryFolder]; !ok {
				continue
			}
			if item.AddedAt.Before(since) || item.AddedAt.After(now) {
				continue
			}
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			if wantKind == media.KindMovie {
				movies = append(movies, item)
			} else {
				episodes = append(episodes, item)
			}
		}
	}

	for _, folder := range filmFolders {
		items, err := c.source.FetchRecent(ctx, folder, since)
		if err != nil {
			return nil, nil, services.Wrap(services.ErrSourceUnavailable, "collect", "fetch film folder", folder, err)
		}
		appendItems(items, media.KindMovie, filmSet)
	}
	for _, folder := range tvFolders {
		items, err := c.source.FetchRecent(ctx, folder, since)
		if err != nil {
			return nil, nil, services.Wrap(services.ErrSourceUnavailable, "collect", "fetch tv folder", folder, err)
		}
		appendItems(items, media.KindEpisode, tvSet)
	}

	c.logger.Info("collected recent items",
		logging.Int("movies", len(movies)),
		logging.Int("episodes", len(episodes)),
		logging.Int("window_days", windowDays))
	return movies, episodes, nil
}

func folderSet(folders []string) map[string]struct{} {
	set := make(map[string]struct{}, len(folders))
	for _, f := range folders {
		if f == "" {
			continue
		}
		set[f] = struct{}{}
	}
	return set
}
