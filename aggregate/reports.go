package aggregate

import (
	"fmt"
	"sort"
	"time"

	"beacon-admin/types"
)

const undeterminedCause = "Undetermined"

// PendingReports keeps only reports still waiting for an announcement.
func PendingReports(reports []types.Report) []types.Report {
	out := []types.Report{}
	for _, r := range reports {
		if r.Status == types.StatusPending {
			out = append(out, r)
		}
	}
	return out
}

type FeederTile struct {
	FeederID    int64        `json:"feeder_id"`
	Name        string       `json:"name"`
	ReportCount int          `json:"report_count"`
	Status      types.Status `json:"status"`
}

// PendingByFeeder builds one tile per feeder with its pending report count.
// Reports on feeders missing from the reference list still get a tile so the
// tile counts always add up to the pending total.
func PendingByFeeder(reports []types.Report, feeders []types.Feeder) []FeederTile {
	counts := make(map[int64]int)
	for _, r := range PendingReports(reports) {
		counts[r.Feeder]++
	}

	tiles := []FeederTile{}
	known := make(map[int64]bool)
	for _, f := range feeders {
		known[f.ID] = true
		tiles = append(tiles, newFeederTile(f.ID, f.DisplayName(), counts[f.ID]))
	}

	var unknown []int64
	for id := range counts {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	for _, id := range unknown {
		tiles = append(tiles, newFeederTile(id, fmt.Sprintf("Feeder %d", id), counts[id]))
	}
	return tiles
}

func newFeederTile(id int64, name string, count int) FeederTile {
	status := types.StatusCompleted
	if count > 0 {
		status = types.StatusPending
	}
	return FeederTile{FeederID: id, Name: name, ReportCount: count, Status: status}
}

// BarangayGroup is one row of the per-feeder barangay grid.
type BarangayGroup struct {
	Barangay    string       `json:"barangay"`
	FeederID    int64        `json:"feeder_id"`
	Volume      int          `json:"volume"`
	CommonCause string       `json:"common_cause"`
	Status      types.Status `json:"status"`
	ReportCount int          `json:"report_count"`
	Coordinates string       `json:"coordinates"`
	ReportIDs   []int64      `json:"report_ids"`
	LatestAt    time.Time    `json:"latest_at"`
	withImages  bool
}

func (g BarangayGroup) SortID() (int64, string) { return 0, g.Barangay }
func (g BarangayGroup) ItemStatus() string      { return string(g.Status) }
func (g BarangayGroup) ItemFeeder() int64       { return g.FeederID }
func (g BarangayGroup) Timestamp() time.Time    { return g.LatestAt }
func (g BarangayGroup) GroupSize() int          { return g.ReportCount }
func (g BarangayGroup) HasImages() bool         { return g.withImages }
func (g BarangayGroup) HasCoords() bool         { return g.Coordinates != "" }

func (g BarangayGroup) SearchFields() []string {
	return []string{g.Barangay, g.CommonCause, g.Coordinates}
}

// GroupByBarangay groups a feeder's pending reports by barangay. The most
// common cause wins on count; on a tie the cause seen first wins. The first
// report with coordinates sets the group's coordinates.
func GroupByBarangay(reports []types.Report, feederID int64) []BarangayGroup {
	type causeCount struct {
		cause string
		count int
	}
	type group struct {
		BarangayGroup
		causes []causeCount
	}

	var order []string
	groups := make(map[string]*group)

	for _, r := range PendingReports(reports) {
		if r.Feeder != feederID {
			continue
		}
		g, ok := groups[r.Barangay]
		if !ok {
			g = &group{BarangayGroup: BarangayGroup{
				Barangay: r.Barangay,
				FeederID: feederID,
				Status:   types.StatusPending,
			}}
			groups[r.Barangay] = g
			order = append(order, r.Barangay)
		}

		g.ReportCount++
		g.Volume += r.Volume
		g.ReportIDs = append(g.ReportIDs, r.ID)
		if r.CreatedAt.After(g.LatestAt) {
			g.LatestAt = r.CreatedAt
		}
		if r.HasImages() {
			g.withImages = true
		}
		if g.Coordinates == "" && r.HasCoords() {
			g.Coordinates = fmt.Sprintf("%.4f, %.4f", *r.Latitude, *r.Longitude)
		}

		cause := r.Cause
		if cause == "" {
			cause = undeterminedCause
		}
		found := false
		for i := range g.causes {
			if g.causes[i].cause == cause {
				g.causes[i].count++
				found = true
				break
			}
		}
		if !found {
			g.causes = append(g.causes, causeCount{cause: cause, count: 1})
		}
	}

	out := make([]BarangayGroup, 0, len(order))
	for _, name := range order {
		g := groups[name]
		g.CommonCause = "N/A"
		best := 0
		for _, c := range g.causes {
			if c.count > best {
				g.CommonCause = c.cause
				best = c.count
			}
		}
		out = append(out, g.BarangayGroup)
	}
	return out
}

// ReportsInBarangay returns the pending reports filed for one barangay.
func ReportsInBarangay(reports []types.Report, barangay string) []types.Report {
	out := []types.Report{}
	for _, r := range PendingReports(reports) {
		if r.Barangay == barangay {
			out = append(out, r)
		}
	}
	return out
}
