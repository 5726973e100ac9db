// Package mapview turns reports and announcements into map layers: weighted
// heat points, announcement markers and clustered hotspots, each renderable
// as GeoJSON.
package mapview

import (
	"errors"
	"strings"

	geojson "github.com/paulmach/go.geojson"

	"beacon-admin/types"
)

type HeatFilter string

const (
	HeatPending         HeatFilter = "pending"
	HeatReportedOngoing HeatFilter = "reported_ongoing"
	HeatAll             HeatFilter = "all"
)

var ErrUnknownFilter = errors.New("heat filter must be pending, reported_ongoing or all")

func ParseHeatFilter(s string) (HeatFilter, error) {
	switch f := HeatFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return HeatPending, nil
	case HeatPending, HeatReportedOngoing, HeatAll:
		return f, nil
	}
	return "", ErrUnknownFilter
}

// Heat weights by lower cased status. Unknown announcement statuses weigh 2.
var statusWeight = map[string]int{
	"pending":  1,
	"reported": 2,
	"ongoing":  3,
}

func weightOf(status types.Status) int {
	if w, ok := statusWeight[strings.ToLower(string(status))]; ok {
		return w
	}
	return 2
}

type HeatPoint struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Weight int     `json:"weight"`
}

// HeatPoints builds the heat layer for filter from pending reports and
// Reported or Ongoing announcements. Items without coordinates are skipped.
func HeatPoints(filter HeatFilter, pending []types.Report, active []types.Announcement) []HeatPoint {
	points := []HeatPoint{}
	if filter == HeatPending || filter == HeatAll {
		for _, r := range pending {
			if r.Status != types.StatusPending || !r.HasCoords() {
				continue
			}
			points = append(points, HeatPoint{Lat: *r.Latitude, Lng: *r.Longitude, Weight: weightOf(r.Status)})
		}
	}
	if filter == HeatReportedOngoing || filter == HeatAll {
		for _, a := range active {
			if a.Status != types.StatusReported && a.Status != types.StatusOngoing {
				continue
			}
			if !a.HasCoords() {
				continue
			}
			points = append(points, HeatPoint{Lat: *a.Latitude, Lng: *a.Longitude, Weight: weightOf(a.Status)})
		}
	}
	return points
}

// HeatFeatures renders points as a GeoJSON collection with a weight property.
func HeatFeatures(points []HeatPoint) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range points {
		f := geojson.NewPointFeature([]float64{p.Lng, p.Lat})
		f.SetProperty("weight", p.Weight)
		fc.AddFeature(f)
	}
	return fc
}
