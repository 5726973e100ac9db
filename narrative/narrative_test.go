package narrative

import (
	"testing"

	"beacon-admin/aggregate"

	"github.com/stretchr/testify/assert"
)

func TestRootCauses(t *testing.T) {
	tests := []struct {
		name   string
		counts []aggregate.KeyCount
		want   string
	}{
		{"empty", nil, Insufficient},
		{"vegetation", []aggregate.KeyCount{{Key: "Vegetation contact", Count: 4}, {Key: "Storm", Count: 2}},
			"Recommendation: Increase tree trimming schedule in high-risk corridors."},
		{"equipment", []aggregate.KeyCount{{Key: "Storm", Count: 1}, {Key: "Equipment failure", Count: 3}},
			"Recommendation: Audit aging transformers and schedule preventive maintenance."},
		{"other", []aggregate.KeyCount{{Key: "Lightning", Count: 3}},
			"Recommendation: Investigate high frequency of 'Lightning' outages."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RootCauses(tt.counts))
		})
	}
}

func TestFirstMaximumWins(t *testing.T) {
	counts := []aggregate.KeyCount{{Key: "Irisan", Count: 3}, {Key: "Pinsao", Count: 3}}
	assert.Contains(t, AffectedAreas(counts), "Analysis: Irisan is the most frequently affected community.")
	assert.Contains(t, FeederCounts(counts), "Irisan accounts for the highest volume of reports (3).")
}

func TestRestoration(t *testing.T) {
	means := []aggregate.GroupMean{{Key: "Feeder 1", Hours: 2.5}, {Key: "Feeder 9", Hours: 12}}
	assert.Contains(t, Restoration(means), "Feeder 9 has the slowest recovery time (12.00 hrs avg).")
	assert.Equal(t, Insufficient, Restoration(nil))
}

func TestPeakTime(t *testing.T) {
	peak := &aggregate.BucketCount{Bucket: aggregate.Bucket{Weekday: 1, Hour: 14}, Count: 5}
	assert.Contains(t, PeakTime(peak), "observed on Mons around 14:00 hours.")
	assert.Equal(t, Insufficient, PeakTime(nil))
}

func TestTrend(t *testing.T) {
	down := []aggregate.GroupMean{{Key: "2025-01", Hours: 8}, {Key: "2025-02", Hours: 9}, {Key: "2025-03", Hours: 4}}
	up := []aggregate.GroupMean{{Key: "2025-01", Hours: 2}, {Key: "2025-02", Hours: 5}}
	flat := []aggregate.GroupMean{{Key: "2025-01", Hours: 3}}

	assert.Contains(t, Trend(down), "trending DOWN")
	assert.Contains(t, Trend(up), "trending UP")
	assert.Equal(t, "Analysis: Repair times are stable.", Trend(flat))
	assert.Equal(t, Insufficient, Trend(nil))
}

func TestAllOnEmptyCharts(t *testing.T) {
	got := All(aggregate.Charts{})
	assert.Len(t, got, len(Kinds))
	for k, text := range got {
		assert.Equal(t, Insufficient, text, string(k))
	}
	assert.Equal(t, "Data available in chart.", For("unknown", aggregate.Charts{}))
}
