package mediaserver

import (
	"strings"
	"time"

	"newsreel/internal/media"
)

type itemsResponse struct {
	Items            []itemDTO `json:"Items"`
	TotalRecordCount int       `json:"TotalRecordCount"`
}

type itemDTO struct {
	ID                string `json:"Id"`
	Name              string `json:"Name"`
	Type              string `json:"Type"`
	LocationType      string `json:"LocationType"`
	DateCreated       string `json:"DateCreated"`
	Overview          string `json:"Overview"`
	ProductionYear    int    `json:"ProductionYear"`
	SeriesID          string `json:"SeriesId"`
	SeriesName        string `json:"SeriesName"`
	IndexNumber       *int   `json:"IndexNumber"`
	ParentIndexNumber *int   `json:"ParentIndexNumber"`
}

// posterItemID names the item whose primary image stands in for this
// entry. Episodes borrow their series poster.
func (d itemDTO) posterItemID() string {
	if strings.EqualFold(d.Type, "Episode") && d.SeriesID != "" {
		return d.SeriesID
	}
	return d.ID
}

func (d itemDTO) virtual() bool {
	return strings.EqualFold(d.LocationType, "Virtual")
}

// addedAt parses the server's DateCreated value. Jellyfin emits RFC 3339
// with seven fractional digits; older Emby builds omit the zone suffix.
func (d itemDTO) addedAt() (time.Time, bool) {
	raw := strings.TrimSpace(d.DateCreated)
	if raw == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, true
	}
	if ts, err := time.ParseInLocation("2006-01-02T15:04:05", strings.SplitN(raw, ".", 2)[0], time.Local); err == nil {
		return ts, true
	}
	return time.Time{}, false
}

func (d itemDTO) toRawItem(folder string) (media.RawItem, bool) {
	kind, ok := media.ParseKind(d.Type)
	if !ok {
		return media.RawItem{}, false
	}
	added, ok := d.addedAt()
	if !ok {
		return media.RawItem{}, false
	}
	return media.RawItem{
		ID:            d.ID,
		Kind:          kind,
		Name:          d.Name,
		AddedAt:       added,
		LibraryFolder: folder,
		Year:          d.ProductionYear,
		Synopsis:      strings.TrimSpace(d.Overview),
		SeriesID:      d.SeriesID,
		SeriesName:    d.SeriesName,
		SeasonNumber:  d.ParentIndexNumber,
		EpisodeNumber: d.IndexNumber,
	}, true
}
