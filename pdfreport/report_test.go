package pdfreport

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"beacon-admin/aggregate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCharts() aggregate.Charts {
	return aggregate.Charts{
		FeederCounts:        []aggregate.KeyCount{{Key: "Feeder 1", Count: 4}, {Key: "Feeder 2", Count: 9}},
		RestorationByFeeder: []aggregate.GroupMean{{Key: "Feeder 1", Hours: 2.5, Samples: 3}},
		RootCauses:          []aggregate.KeyCount{{Key: "Vegetation", Count: 5}},
		AffectedAreas:       []aggregate.KeyCount{{Key: "Legarda", Count: 3}, {Key: "Irisan", Count: 1}},
		PeakTimes:           []aggregate.Bubble{{X: 14, Y: 2, R: 10, Count: 4}},
		Peak:                &aggregate.BucketCount{Bucket: aggregate.Bucket{Weekday: 2, Hour: 14}, Count: 4},
		MonthlyMTTR: []aggregate.GroupMean{
			{Key: "2025-01", Hours: 5, Samples: 2},
			{Key: "2025-02", Hours: 3, Samples: 2},
		},
	}
}

func TestFileName(t *testing.T) {
	day := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "Beacon_Report_Juan_Dela_Cruz_2025-04-02.pdf", FileName("Juan Dela Cruz", day))
	assert.Equal(t, "Beacon_Report_Admin_2025-04-02.pdf", FileName("  ", day))
	assert.Equal(t, "Beacon_Report_ab_2025-04-02.pdf", FileName(`a"/b`, day))
}

func TestRenderWritesPDF(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, Report{
		Admin:       "Ops Desk",
		GeneratedAt: time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC),
		Tiles: []aggregate.Tile{
			aggregate.NewTile("total", "Total Reports", 12, 10, false),
			aggregate.NewTile("active", "Active Outages", 3, 6, false),
			aggregate.NewTile("completed", "Completed Repairs", 4, 2, true),
		},
		Charts: sampleCharts(),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	// summary plus one chart on the first page, two charts per page after
	assert.Contains(t, buf.String(), "/Count 4")
}

func TestRenderEmptyCharts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Report{GeneratedAt: time.Now()}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestChartsArePNG(t *testing.T) {
	c := sampleCharts()
	for _, b := range blocks {
		raw, err := b.draw(c)
		require.NoError(t, err, b.title)
		img, err := png.Decode(bytes.NewReader(raw))
		require.NoError(t, err, b.title)
		assert.Equal(t, chartWidth, img.Bounds().Dx())
		assert.Equal(t, chartHeight, img.Bounds().Dy())
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Legarda", truncate("Legarda", 10))
	assert.Equal(t, "Bonifac..", truncate("Bonifacio Street", 9))
}
