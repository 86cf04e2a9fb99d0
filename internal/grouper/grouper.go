package grouper

import (
	"sort"

	"newsreel/internal/media"
)

// Group builds show skeletons from episode items; enrichment fields stay
// unset. Input order only matters for the unknown-season sentinel and the
// duplicate-episode rule (first occurrence wins); everything else is
// re-sorted deterministically.
func Group(episodes []media.RawItem) []media.EnrichedShow {
	type seasonAccum struct {
		episodes []media.Episode
		taken    map[int]struct{}
	}
	type showAccum struct {
		item    media.RawItem
		order   int
		seasons map[int]*seasonAccum
		unknown []media.Episode
	}

	shows := make(map[string]*showAccum)
	orderCounter := 0

	for _, ep := range episodes {
		if !ep.IsEpisode() {
			continue
		}
		key := ep.SeriesID
		if key == "" {
			key = ep.SeriesName
		}
		acc, ok := shows[key]
		if !ok {
			acc = &showAccum{item: ep, order: orderCounter, seasons: make(map[int]*seasonAccum)}
			orderCounter++
			shows[key] = acc
		}
		if ep.AddedAt.After(acc.item.AddedAt) {
			acc.item.AddedAt = ep.AddedAt
			if ep.Year != 0 {
				acc.item.Year = ep.Year
			}
		}

		if ep.SeasonNumber == nil || ep.EpisodeNumber == nil {
			acc.unknown = append(acc.unknown, media.Episode{
				ID:       ep.ID,
				Name:     ep.Name,
				AddedAt:  ep.AddedAt,
				Synopsis: ep.Synopsis,
			})
			continue
		}

		seasonNum := *ep.SeasonNumber
		season, ok := acc.seasons[seasonNum]
		if !ok {
			season = &seasonAccum{taken: make(map[int]struct{})}
			acc.seasons[seasonNum] = season
		}
		// Later duplicate episode numbers within a season are dropped.
		if _, dup := season.taken[*ep.EpisodeNumber]; dup {
			continue
		}
		season.taken[*ep.EpisodeNumber] = struct{}{}
		season.episodes = append(season.episodes, media.Episode{
			ID:            ep.ID,
			Name:          ep.Name,
			EpisodeNumber: *ep.EpisodeNumber,
			NumberKnown:   true,
			AddedAt:       ep.AddedAt,
			Synopsis:      ep.Synopsis,
		})
	}

	result := make([]media.EnrichedShow, 0, len(shows))
	for _, acc := range shows {
		show := media.EnrichedShow{
			SeriesID:        acc.item.SeriesID,
			SeriesName:      acc.item.SeriesName,
			Year:            acc.item.Year,
			LatestAddedAt:   acc.item.AddedAt,
			ServerPosterURL: acc.item.ServerPosterURL,
		}

		numbers := make([]int, 0, len(acc.seasons))
		for num := range acc.seasons {
			numbers = append(numbers, num)
		}
		sort.Ints(numbers)
		for _, num := range numbers {
			season := acc.seasons[num]
			sort.SliceStable(season.episodes, func(i, j int) bool {
				return season.episodes[i].EpisodeNumber < season.episodes[j].EpisodeNumber
			})
			show.Seasons = append(show.Seasons, media.Season{
				SeasonNumber: num,
				Episodes:     season.episodes,
			})
		}

		if len(acc.unknown) > 0 {
			sort.SliceStable(acc.unknown, func(i, j int) bool {
				return acc.unknown[i].AddedAt.Before(acc.unknown[j].AddedAt)
			})
			sentinel := 0
			if len(numbers) > 0 {
				sentinel = numbers[len(numbers)-1] + 1
			}
			show.Seasons = append(show.Seasons, media.Season{
				SeasonNumber: sentinel,
				Unknown:      true,
				Episodes:     acc.unknown,
			})
		}

		result = append(result, show)
	}

	// Newest show activity first, name ascending as deterministic tiebreak.
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].LatestAddedAt.Equal(result[j].LatestAddedAt) {
			return result[i].LatestAddedAt.After(result[j].LatestAddedAt)
		}
		return result[i].SeriesName < result[j].SeriesName
	})
	return result
}
