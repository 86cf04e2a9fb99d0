package media

import "time"

// Enrichment carries the optional secondary-source metadata attached to a
// movie or show. Fields are individually optional; a partial result is
// attached as-is.
type Enrichment struct {
	PosterURL string
	Synopsis  string
	Rating    float64
	HasRating bool
}

// EnrichedMovie is a movie entry in the digest. ServerPosterURL is
// primary-source data carried alongside the enrichment; the render
// context falls back to it when the enrichment has no poster.
type EnrichedMovie struct {
	ID              string
	Name            string
	Year            int
	AddedAt         time.Time
	ServerPosterURL string
	Enrichment
}

// Episode is one episode under a season in the digest.
type Episode struct {
	ID            string
	Name          string
	EpisodeNumber int
	NumberKnown   bool
	AddedAt       time.Time
	Synopsis      string
}

// Season groups the episodes of one season of a show.
type Season struct {
	SeasonNumber int
	// Unknown marks the sentinel season holding episodes whose season or
	// episode number the server did not report. It sorts after all known
	// seasons.
	Unknown  bool
	Episodes []Episode
}

// EnrichedShow is a show entry in the digest with its seasons ordered
// ascending by season number.
type EnrichedShow struct {
	SeriesID   string
	SeriesName string
	Year       int
	// LatestAddedAt is the AddedAt of the show's most recently added
	// episode; shows in a digest are ordered by it, newest first.
	LatestAddedAt   time.Time
	ServerPosterURL string
	Seasons         []Season
	Enrichment
}

// LibraryTotals counts what the watched folders hold in total, not just
// what was added during the window.
type LibraryTotals struct {
	Movies int
	Series int
}

// Digest is the aggregated, enriched, per-run artifact rendered into the
// newsletter. It is built once per run and never shared across runs.
type Digest struct {
	Movies      []EnrichedMovie
	Shows       []EnrichedShow
	Totals      LibraryTotals
	GeneratedAt time.Time
}

// Empty reports whether the digest carries no content. An empty digest is
// valid output, not an error.
func (d Digest) Empty() bool { return len(d.Movies) == 0 && len(d.Shows) == 0 }
