// Package pipeline orchestrates one newsletter run: collect, group, enrich,
// sanitize, render. One call, one digest, one HTML document.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"newsreel/internal/collector"
	"newsreel/internal/enrich"
	"newsreel/internal/grouper"
	"newsreel/internal/logging"
	"newsreel/internal/media"
	"newsreel/internal/render"
	"newsreel/internal/services"
)

// LibraryCounter is the optional totals capability of a library source.
// Sources that implement it contribute whole-library counts to the
// newsletter footer; sources that don't simply render no totals line.
type LibraryCounter interface {
	LibraryTotals(ctx context.Context, filmFolders, tvFolders []string) (media.LibraryTotals, error)
}

// Stats summarizes a completed run.
type Stats struct {
	MoviesCount        int
	ShowsCount         int
	EnrichmentFailures int
}

// RenderedDigest is the run result handed to the delivery shell.
type RenderedDigest struct {
	RunID    string
	HTML     string
	Subject  string
	Stats    Stats
	Findings []string
	Duration time.Duration
}

// Empty reports whether the run found nothing new. An empty digest is a
// successful run, not a failure.
func (r RenderedDigest) Empty() bool {
	return r.Stats.MoviesCount == 0 && r.Stats.ShowsCount == 0
}

// Clean reports whether the render audit accepted the output as-is.
func (r RenderedDigest) Clean() bool { return len(r.Findings) == 0 }

// Options bundle the per-run settings drawn from configuration.
type Options struct {
	WindowDays   int
	FilmFolders  []string
	TVFolders    []string
	TemplateName string
	Statics      render.Statics
	RunTimeout   time.Duration
	Workers      int
}

// Pipeline wires the run stages together.
type Pipeline struct {
	source    collector.LibrarySource
	collector *collector.Collector
	enricher  *enrich.Enricher
	renderer  *render.Renderer
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// New builds a pipeline from its stage collaborators.
func New(source collector.LibrarySource, client enrich.Client, renderer *render.Renderer, opts Options, logger *slog.Logger) *Pipeline {
	enrichOpts := []enrich.Option{}
	if opts.Workers > 0 {
		enrichOpts = append(enrichOpts, enrich.WithWorkers(opts.Workers))
	}
	return &Pipeline{
		source:    source,
		collector: collector.New(source, logger),
		enricher:  enrich.New(client, logger, enrichOpts...),
		renderer:  renderer,
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
		now:       time.Now,
	}
}

// Run executes one newsletter pipeline pass under the configured timeout.
// A timeout produces ErrRunTimedOut and no HTML at all; partial enrichment
// never fails the run and is reported through Stats.
func (p *Pipeline) Run(ctx context.Context) (RenderedDigest, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := p.logger.With(logging.String("run_id", runID))

	if p.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.RunTimeout)
		defer cancel()
	}

	started := p.now()
	logger.Info("run started",
		logging.Args(
			logging.Int("window_days", p.opts.WindowDays),
			logging.Int("film_folders", len(p.opts.FilmFolders)),
			logging.Int("tv_folders", len(p.opts.TVFolders)),
		)...)

	movies, episodes, err := p.collector.Collect(ctx, p.opts.WindowDays, p.opts.FilmFolders, p.opts.TVFolders)
	if err != nil {
		return RenderedDigest{RunID: runID}, p.classify(ctx, err)
	}
	logger.Info("collected",
		logging.Args(logging.Int("movies", len(movies)), logging.Int("episodes", len(episodes)))...)

	shows := grouper.Group(episodes)

	digest, failures, err := p.enricher.Enrich(ctx, movies, shows)
	if err != nil {
		return RenderedDigest{RunID: runID}, p.classify(ctx, err)
	}
	if failures > 0 {
		logger.Warn("enrichment incomplete", logging.Args(logging.Int("failures", failures))...)
	}

	if counter, ok := p.source.(LibraryCounter); ok {
		totals, totalsErr := counter.LibraryTotals(ctx, p.opts.FilmFolders, p.opts.TVFolders)
		switch {
		case totalsErr != nil && ctx.Err() != nil:
			return RenderedDigest{RunID: runID}, p.classify(ctx, totalsErr)
		case totalsErr != nil:
			// Footer decoration only; the newsletter goes out without it.
			logger.Warn("library totals unavailable", logging.Args(logging.Error(totalsErr))...)
		default:
			digest.Totals = totals
		}
	}

	output, err := p.renderer.Render(p.opts.TemplateName, digest, p.opts.Statics)
	if err != nil {
		return RenderedDigest{RunID: runID}, p.classify(ctx, err)
	}
	if !output.Clean() {
		logger.Warn("render audit replaced output",
			logging.Args(logging.Int("findings", len(output.Findings)))...)
	}

	result := RenderedDigest{
		RunID:   runID,
		HTML:    output.HTML,
		Subject: p.opts.Statics.Subject,
		Stats: Stats{
			MoviesCount:        len(digest.Movies),
			ShowsCount:         len(digest.Shows),
			EnrichmentFailures: failures,
		},
		Findings: output.Findings,
		Duration: p.now().Sub(started),
	}
	logger.Info("run finished",
		logging.Args(
			logging.Int("movies", result.Stats.MoviesCount),
			logging.Int("shows", result.Stats.ShowsCount),
			logging.Int("enrichment_failures", result.Stats.EnrichmentFailures),
			logging.Duration("duration", result.Duration),
			logging.Bool("empty", result.Empty()),
		)...)
	return result, nil
}

// classify maps a stage error to the run-level taxonomy. Deadline expiry
// takes precedence so callers see ErrRunTimedOut rather than whichever
// stage happened to observe the cancellation first.
func (p *Pipeline) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrRunTimedOut, "pipeline", "run", "run exceeded its time budget", err)
	}
	return err
}
