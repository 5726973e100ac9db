package mapview

import (
	"slices"
	"strings"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"beacon-admin/types"
)

type Marker struct {
	ID            int64        `json:"id"`
	FeederID      int64        `json:"feeder_id"`
	Title         string       `json:"title"`
	Status        types.Status `json:"status"`
	Color         string       `json:"color"`
	AreasAffected []string     `json:"areas_affected"`
	ETA           *time.Time   `json:"eta"`
	Lat           float64      `json:"lat"`
	Lng           float64      `json:"lng"`
	Images        []string     `json:"images"`
}

func (m Marker) searchText() string {
	return strings.ToLower(m.Title + " " + strings.Join(m.AreasAffected, " "))
}

// ColorFor is the pin colour of a status.
func ColorFor(status types.Status) string {
	switch status {
	case types.StatusOngoing:
		return "orange"
	case types.StatusCompleted:
		return "green"
	}
	return "red"
}

// Markers keeps open announcements with coordinates created on the local
// calendar day of day in loc.
func Markers(anns []types.Announcement, day time.Time, loc *time.Location) []Marker {
	if loc == nil {
		loc = time.UTC
	}
	d := day.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	markers := []Marker{}
	for _, a := range anns {
		if !a.HasCoords() || a.Status == types.StatusCompleted {
			continue
		}
		if a.CreatedAt.Before(start) || !a.CreatedAt.Before(end) {
			continue
		}
		markers = append(markers, Marker{
			ID:            a.ID,
			FeederID:      a.FeederID,
			Title:         a.Title(),
			Status:        a.Status,
			Color:         ColorFor(a.Status),
			AreasAffected: a.AreasAffected,
			ETA:           a.EstimatedRestorationAt,
			Lat:           *a.Latitude,
			Lng:           *a.Longitude,
			Images:        a.Images,
		})
	}
	return markers
}

// MarkerFilter selects visible markers. No selected feeders, or every
// known feeder selected, shows all feeders.
type MarkerFilter struct {
	Feeders     []int64
	KnownFeeder int
	Search      string
}

func (f MarkerFilter) allFeeders() bool {
	return len(f.Feeders) == 0 || (f.KnownFeeder > 0 && len(f.Feeders) == f.KnownFeeder)
}

func FilterMarkers(markers []Marker, f MarkerFilter) []Marker {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := []Marker{}
	for _, m := range markers {
		if !f.allFeeders() && !slices.Contains(f.Feeders, m.FeederID) {
			continue
		}
		if search != "" && !strings.Contains(m.searchText(), search) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Focus is the first visible marker matching search, the one the map jumps to.
func Focus(visible []Marker, search string) *Marker {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return nil
	}
	for i := range visible {
		if strings.Contains(visible[i].searchText(), search) {
			return &visible[i]
		}
	}
	return nil
}

func MarkerFeatures(markers []Marker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range markers {
		f := geojson.NewPointFeature([]float64{m.Lng, m.Lat})
		f.ID = m.ID
		f.SetProperty("title", m.Title)
		f.SetProperty("status", string(m.Status))
		f.SetProperty("color", m.Color)
		f.SetProperty("feeder_id", m.FeederID)
		f.SetProperty("areas_affected", m.AreasAffected)
		if m.ETA != nil {
			f.SetProperty("eta", m.ETA.UTC().Format(time.RFC3339))
		}
		fc.AddFeature(f)
	}
	return fc
}
