package media

import (
	"strings"
	"time"
)

// Kind identifies the media type of a library item.
type Kind string

const (
	KindMovie   Kind = "movie"
	KindEpisode Kind = "episode"
)

// ParseKind maps a media-server item type string to a Kind.
func ParseKind(value string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "movie":
		return KindMovie, true
	case "episode":
		return KindEpisode, true
	default:
		return "", false
	}
}

// RawItem is one item returned by the media-server API. ID is the item's
// stable identity on the server and the dedup key for a run; the same ID
// never appears twice in a digest.
type RawItem struct {
	ID            string
	Kind          Kind
	Name          string
	AddedAt       time.Time
	LibraryFolder string
	Year          int
	// Synopsis is the server's own overview text for the item.
	Synopsis string
	// ServerPosterURL points at the server-hosted primary image. It is the
	// poster of last resort when the secondary source has none.
	ServerPosterURL string

	// Episode-only fields. Season/episode numbers are pointers because the
	// server may omit them; a nil number routes the episode to the
	// sentinel "unknown" season during grouping.
	SeriesID      string
	SeriesName    string
	SeasonNumber  *int
	EpisodeNumber *int
}

// IsEpisode reports whether the item is a TV episode.
func (r RawItem) IsEpisode() bool { return r.Kind == KindEpisode }
