package sanitize

import (
	"time"

	"newsreel/internal/media"
)

// Digest is the fully sanitized render context built from a media.Digest.
// Every string leaf has passed EscapeText+ClampLength and every URL leaf
// has passed URL validation; no leaf is skipped. This is the only digest
// shape the renderer accepts.
type Digest struct {
	Movies      []Movie
	Shows       []Show
	Totals      media.LibraryTotals
	GeneratedAt time.Time
}

// Movie is a sanitized movie entry.
type Movie struct {
	Name      SafeText
	Year      int
	AddedAt   time.Time
	PosterURL SafeText
	Synopsis  SafeText
	Rating    float64
	HasRating bool
}

// Episode is a sanitized episode entry.
type Episode struct {
	Name          SafeText
	EpisodeNumber int
	NumberKnown   bool
	Synopsis      SafeText
}

// Season is a sanitized season entry.
type Season struct {
	SeasonNumber int
	Unknown      bool
	Episodes     []Episode
}

// Show is a sanitized show entry.
type Show struct {
	Name      SafeText
	Year      int
	PosterURL SafeText
	Synopsis  SafeText
	Rating    float64
	HasRating bool
	Seasons   []Season
}

// Statics are the sanitized static template fields supplied by
// configuration. Configuration is operator-controlled but still passes
// through the same pipeline; the sanitizer trusts nothing.
type Statics struct {
	Language         SafeText
	Subject          SafeText
	Title            SafeText
	Subtitle         SafeText
	ServerURL        SafeText
	ServerOwnerName  SafeText
	UnsubscribeEmail SafeText
}

// ForDigest deep-sanitizes a media digest. Ordering is preserved exactly;
// sanitation never reorders, drops, or adds items.
func ForDigest(d media.Digest) Digest {
	out := Digest{Totals: d.Totals, GeneratedAt: d.GeneratedAt}
	if len(d.Movies) > 0 {
		out.Movies = make([]Movie, 0, len(d.Movies))
	}
	for _, m := range d.Movies {
		poster := posterOrFallback(m.PosterURL, m.ServerPosterURL)
		out.Movies = append(out.Movies, Movie{
			Name:      Text(m.Name, MaxTitleLen),
			Year:      m.Year,
			AddedAt:   m.AddedAt,
			PosterURL: poster,
			Synopsis:  Text(m.Synopsis, MaxSynopsisLen),
			Rating:    m.Rating,
			HasRating: m.HasRating,
		})
	}
	if len(d.Shows) > 0 {
		out.Shows = make([]Show, 0, len(d.Shows))
	}
	for _, s := range d.Shows {
		poster := posterOrFallback(s.PosterURL, s.ServerPosterURL)
		show := Show{
			Name:      Text(s.SeriesName, MaxTitleLen),
			Year:      s.Year,
			PosterURL: poster,
			Synopsis:  Text(s.Synopsis, MaxSynopsisLen),
			Rating:    s.Rating,
			HasRating: s.HasRating,
		}
		for _, season := range s.Seasons {
			cleaned := Season{
				SeasonNumber: season.SeasonNumber,
				Unknown:      season.Unknown,
			}
			for _, ep := range season.Episodes {
				cleaned.Episodes = append(cleaned.Episodes, Episode{
					Name:          Text(ep.Name, MaxTitleLen),
					EpisodeNumber: ep.EpisodeNumber,
					NumberKnown:   ep.NumberKnown,
					Synopsis:      Text(ep.Synopsis, MaxEpisodeSynopsisLen),
				})
			}
			show.Seasons = append(show.Seasons, cleaned)
		}
		out.Shows = append(out.Shows, show)
	}
	return out
}

// posterOrFallback validates the enrichment poster, falling back to the
// server-hosted image when the enrichment has none. Both candidates pass
// the same URL validation; an invalid fallback yields no poster at all.
func posterOrFallback(primary, fallback string) SafeText {
	if clean, ok := URL(primary); ok {
		return clean
	}
	clean, _ := URL(fallback)
	return clean
}

// ForStatics sanitizes the static template fields. The unsubscribe address
// is dropped unless it validates as an email; the server URL is dropped
// unless its scheme is allowed.
func ForStatics(language, subject, title, subtitle, serverURL, ownerName, unsubscribeEmail string) Statics {
	cleanURL, _ := URL(serverURL)
	cleanEmail, _ := Email(unsubscribeEmail)
	return Statics{
		Language:         Text(language, 16),
		Subject:          Text(subject, MaxTitleLen),
		Title:            Text(title, MaxTitleLen),
		Subtitle:         Text(subtitle, MaxTitleLen),
		ServerURL:        cleanURL,
		ServerOwnerName:  Text(ownerName, MaxTitleLen),
		UnsubscribeEmail: cleanEmail,
	}
}

// ByteSize returns the total size in bytes of all sanitized string leaves,
// used by the renderer's context ceiling.
func (d Digest) ByteSize() int {
	total := 0
	for _, m := range d.Movies {
		total += len(m.Name) + len(m.PosterURL) + len(m.Synopsis)
	}
	for _, s := range d.Shows {
		total += len(s.Name) + len(s.PosterURL) + len(s.Synopsis)
		for _, season := range s.Seasons {
			for _, ep := range season.Episodes {
				total += len(ep.Name) + len(ep.Synopsis)
			}
		}
	}
	return total
}

// ByteSize returns the total size in bytes of the static fields.
func (s Statics) ByteSize() int {
	return len(s.Language) + len(s.Subject) + len(s.Title) + len(s.Subtitle) +
		len(s.ServerURL) + len(s.ServerOwnerName) + len(s.UnsubscribeEmail)
}
