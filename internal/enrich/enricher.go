package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"newsreel/internal/logging"
	"newsreel/internal/media"
)

const defaultWorkers = 4

// Client wraps the secondary metadata source. Implementations handle
// transport retries; an error here means the lookup is lost for this run.
type Client interface {
	Lookup(ctx context.Context, title string, year int, kind media.Kind) (Result, error)
}

// Enricher builds the digest by attaching metadata to movies and shows.
type Enricher struct {
	client  Client
	logger  *slog.Logger
	workers int
	now     func() time.Time
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithWorkers bounds the lookup fan-out.
func WithWorkers(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithClock overrides the digest timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Enricher) {
		if now != nil {
			e.now = now
		}
	}
}

// New constructs an Enricher. A nil logger disables logging.
func New(client Client, logger *slog.Logger, opts ...Option) *Enricher {
	e := &Enricher{
		client:  client,
		logger:  logging.NewComponentLogger(logger, "enrich"),
		workers: defaultWorkers,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich issues one lookup per distinct case-normalized title through the
// run-scoped cache and assembles the frozen digest. Lookup failures leave
// the item without enrichment fields and are counted, never fatal. Output
// ordering follows the inputs exactly, so identical inputs and client
// responses yield a byte-identical digest.
func (e *Enricher) Enrich(ctx context.Context, movies []media.RawItem, shows []media.EnrichedShow) (media.Digest, int, error) {
	cache := NewCache()
	var failures atomic.Int64

	digest := media.Digest{GeneratedAt: e.now()}
	if len(movies) > 0 {
		digest.Movies = make([]media.EnrichedMovie, len(movies))
	}
	if len(shows) > 0 {
		digest.Shows = make([]media.EnrichedShow, len(shows))
	}

	p := pool.New().WithContext(ctx).WithMaxGoroutines(e.workers).WithCancelOnError()

	for i, item := range movies {
		digest.Movies[i] = media.EnrichedMovie{
			ID:              item.ID,
			Name:            item.Name,
			Year:            item.Year,
			AddedAt:         item.AddedAt,
			ServerPosterURL: item.ServerPosterURL,
		}
		idx, raw := i, item
		p.Go(func(ctx context.Context) error {
			result, err := e.lookup(ctx, cache, raw.Name, raw.Year, media.KindMovie)
			if err != nil {
				return err
			}
			if result.Found() {
				digest.Movies[idx].Enrichment = toEnrichment(result)
			} else {
				failures.Add(1)
			}
			return nil
		})
	}

	for i, show := range shows {
		digest.Shows[i] = show
		idx, skeleton := i, show
		p.Go(func(ctx context.Context) error {
			result, err := e.lookup(ctx, cache, skeleton.SeriesName, skeleton.Year, media.KindEpisode)
			if err != nil {
				return err
			}
			if result.Found() {
				digest.Shows[idx].Enrichment = toEnrichment(result)
			} else {
				failures.Add(1)
			}
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		// Only context cancellation escapes the per-item policy; in-flight
		// lookup results are abandoned, not awaited past the deadline.
		return media.Digest{}, 0, err
	}

	e.logger.Info("enrichment complete",
		logging.Int("movies", len(digest.Movies)),
		logging.Int("shows", len(digest.Shows)),
		logging.Int("distinct_lookups", cache.Len()),
		logging.Int64("failures", failures.Load()))
	return digest, int(failures.Load()), nil
}

// lookup consults the cache, issuing at most one remote call per
// normalized key for the whole run.
func (e *Enricher) lookup(ctx context.Context, cache *Cache, title string, year int, kind media.Kind) (Result, error) {
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	key := cacheKey(title, year, kind)
	result, err := cache.Do(ctx, key, func() Result {
		lookup, lookupErr := e.client.Lookup(ctx, title, year, kind)
		if lookupErr != nil {
			e.logger.Warn("metadata lookup failed",
				logging.String("title", title),
				logging.String("kind", string(kind)),
				logging.Error(lookupErr))
			return Result{Outcome: OutcomeFailed}
		}
		return lookup
	})
	if err != nil {
		return Result{}, err
	}
	// A failure caused by run cancellation is a dead run, not a per-item
	// miss; surface the context error so the caller can abandon the digest.
	if result.Outcome == OutcomeFailed && ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	return result, nil
}

func cacheKey(title string, year int, kind media.Kind) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(title)), " ")
	return fmt.Sprintf("%s|%s|%d", kind, normalized, year)
}

func toEnrichment(r Result) media.Enrichment {
	return media.Enrichment{
		PosterURL: r.PosterURL,
		Synopsis:  r.Synopsis,
		Rating:    r.Rating,
		HasRating: r.HasRating,
	}
}
