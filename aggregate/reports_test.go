package aggregate

import (
	"testing"
	"time"

	"beacon-admin/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func sampleReports() []types.Report {
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	return []types.Report{
		{ID: 1, Feeder: 7, Barangay: "A", Cause: "Flood", Volume: 2, Status: types.StatusPending, CreatedAt: base},
		{ID: 2, Feeder: 7, Barangay: "A", Cause: "Vegetation", Volume: 1, Status: types.StatusPending, CreatedAt: base.Add(time.Hour),
			Latitude: ptr(16.41234), Longitude: ptr(120.59876)},
		{ID: 3, Feeder: 7, Barangay: "B", Status: types.StatusPending, CreatedAt: base, Images: []string{"x"}},
		{ID: 4, Feeder: 7, Barangay: "A", Cause: "Flood", Status: types.StatusAnnounced, CreatedAt: base},
		{ID: 5, Feeder: 2, Barangay: "C", Cause: "Flood", Status: types.StatusPending, CreatedAt: base},
		{ID: 6, Feeder: 99, Barangay: "D", Status: types.StatusPending, CreatedAt: base},
	}
}

func TestPendingByFeederSumsToPendingTotal(t *testing.T) {
	reports := sampleReports()
	feeders := []types.Feeder{{ID: 2, Name: "North"}, {ID: 7}, {ID: 8, Name: "Idle"}}

	tiles := PendingByFeeder(reports, feeders)

	sum := 0
	for _, tile := range tiles {
		sum += tile.ReportCount
	}
	assert.Equal(t, len(PendingReports(reports)), sum)

	require.Len(t, tiles, 4)
	assert.Equal(t, FeederTile{FeederID: 2, Name: "North", ReportCount: 1, Status: types.StatusPending}, tiles[0])
	assert.Equal(t, FeederTile{FeederID: 7, Name: "FD-7", ReportCount: 3, Status: types.StatusPending}, tiles[1])
	assert.Equal(t, FeederTile{FeederID: 8, Name: "Idle", ReportCount: 0, Status: types.StatusCompleted}, tiles[2])
	assert.Equal(t, "Feeder 99", tiles[3].Name)
}

func TestGroupByBarangay(t *testing.T) {
	groups := GroupByBarangay(sampleReports(), 7)

	require.Len(t, groups, 2)

	a := groups[0]
	assert.Equal(t, "A", a.Barangay)
	assert.Equal(t, 2, a.ReportCount)
	assert.Equal(t, 3, a.Volume)
	// Flood and Vegetation tie at one pending report each; Flood was seen first.
	assert.Equal(t, "Flood", a.CommonCause)
	assert.Equal(t, "16.4123, 120.5988", a.Coordinates)
	assert.Equal(t, []int64{1, 2}, a.ReportIDs)
	assert.False(t, a.HasImages())

	b := groups[1]
	assert.Equal(t, "Undetermined", b.CommonCause)
	assert.True(t, b.HasImages())
	assert.False(t, b.HasCoords())
}

func TestReportsInBarangay(t *testing.T) {
	reports := ReportsInBarangay(sampleReports(), "A")

	ids := []int64{}
	for _, r := range reports {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestBuildCharts(t *testing.T) {
	created := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)
	anns := []types.Announcement{
		{ID: 1, FeederID: 1, Cause: "Vegetation", AreasAffected: []string{"A", "B"}, Status: types.StatusCompleted,
			CreatedAt: created, RestoredAt: ptr(created.Add(2 * time.Hour))},
		{ID: 2, FeederID: 1, Cause: "", AreasAffected: []string{"A"}, Status: types.StatusCompleted,
			CreatedAt: created.AddDate(0, 1, 0), RestoredAt: ptr(created.AddDate(0, 1, 0).Add(4 * time.Hour))},
		{ID: 3, FeederID: 2, Cause: "Vegetation", Status: types.StatusOngoing, CreatedAt: created},
		{ID: 4, FeederID: 2, Status: types.StatusCompleted, CreatedAt: created, RestoredAt: ptr(created.Add(-time.Hour))},
	}
	feeders := []types.Feeder{{ID: 1, Name: "Feeder One"}}

	charts := BuildCharts(anns, feeders, ChartOptions{})

	assert.Equal(t, []KeyCount{{"Feeder 2", 2}, {"Feeder One", 2}}, charts.FeederCounts)
	assert.Equal(t, []GroupMean{{Key: "Feeder One", Hours: 3, Samples: 2}}, charts.RestorationByFeeder)
	assert.Equal(t, []KeyCount{{"Unknown", 2}, {"Vegetation", 2}}, charts.RootCauses)
	assert.Equal(t, []KeyCount{{"A", 2}, {"B", 1}}, charts.AffectedAreas)
	assert.Equal(t, []GroupMean{{Key: "2025-01", Hours: 2, Samples: 1}, {Key: "2025-02", Hours: 4, Samples: 1}}, charts.MonthlyMTTR)
	require.NotNil(t, charts.Peak)
	assert.Equal(t, 3, charts.Peak.Count)
	assert.Equal(t, 10, charts.Peak.Hour)

	selected := BuildCharts(anns, feeders, ChartOptions{Feeders: FeederSet{1}, RestorationFeeders: FeederSet{2}})
	assert.Equal(t, []KeyCount{{"Feeder One", 2}}, selected.FeederCounts)
	assert.Empty(t, selected.RestorationByFeeder)
}

func TestBuildChartsEmpty(t *testing.T) {
	charts := BuildCharts(nil, nil, ChartOptions{})

	assert.Empty(t, charts.FeederCounts)
	assert.Empty(t, charts.MonthlyMTTR)
	assert.Empty(t, charts.PeakTimes)
	assert.Nil(t, charts.Peak)
}
