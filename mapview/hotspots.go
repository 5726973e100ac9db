package mapview

import (
	"math"
	"slices"
)

const (
	earthRadiusKM = 6371.0

	// DefaultHotspotRadiusKM links heat points closer than this into one hotspot.
	DefaultHotspotRadiusKM = 0.5

	mediumWeightThreshold   = 5
	highWeightThreshold     = 10
	criticalWeightThreshold = 20
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// Hotspot is a cluster of nearby heat points.
type Hotspot struct {
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Points   int      `json:"points"`
	Weight   int      `json:"weight"`
	Severity Severity `json:"severity"`
	Bounds   Bounds   `json:"bounds"`
}

// BoundsOf is the bounding box of points. ok is false for no points.
func BoundsOf(points []HeatPoint) (Bounds, bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b := Bounds{MinLat: points[0].Lat, MaxLat: points[0].Lat, MinLng: points[0].Lng, MaxLng: points[0].Lng}
	for _, p := range points[1:] {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLng = math.Min(b.MinLng, p.Lng)
		b.MaxLng = math.Max(b.MaxLng, p.Lng)
	}
	return b, true
}

// Hotspots groups points transitively within radiusKM of each other,
// heaviest cluster first.
func Hotspots(points []HeatPoint, radiusKM float64) []Hotspot {
	if radiusKM <= 0 {
		radiusKM = DefaultHotspotRadiusKM
	}
	visited := make([]bool, len(points))
	spots := []Hotspot{}

	for seed := range points {
		if visited[seed] {
			continue
		}
		visited[seed] = true
		cluster := []HeatPoint{}
		queue := []int{seed}

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			cluster = append(cluster, points[cur])

			for i := range points {
				if visited[i] {
					continue
				}
				if haversineDistance(points[cur].Lat, points[cur].Lng, points[i].Lat, points[i].Lng) <= radiusKM {
					visited[i] = true
					queue = append(queue, i)
				}
			}
		}
		spots = append(spots, newHotspot(cluster))
	}

	slices.SortStableFunc(spots, func(a, b Hotspot) int { return b.Weight - a.Weight })
	return spots
}

func newHotspot(cluster []HeatPoint) Hotspot {
	var sumLat, sumLng float64
	h := Hotspot{Points: len(cluster)}
	for _, p := range cluster {
		sumLat += p.Lat
		sumLng += p.Lng
		h.Weight += p.Weight
	}
	h.Lat = sumLat / float64(len(cluster))
	h.Lng = sumLng / float64(len(cluster))
	h.Bounds, _ = BoundsOf(cluster)

	switch {
	case h.Weight >= criticalWeightThreshold:
		h.Severity = SeverityCritical
	case h.Weight >= highWeightThreshold:
		h.Severity = SeverityHigh
	case h.Weight >= mediumWeightThreshold:
		h.Severity = SeverityMedium
	default:
		h.Severity = SeverityLow
	}
	return h
}

// haversineDistance calculates the great-circle distance between two points
// on the earth (specified in decimal degrees).
func haversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	radLat1 := lat1 * math.Pi / 180
	radLat2 := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(radLat1)*math.Cos(radLat2)*math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
