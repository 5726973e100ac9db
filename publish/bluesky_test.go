package publish

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"beacon-admin/types"
)

func TestPostText(t *testing.T) {
	eta := time.Date(2025, 4, 2, 7, 0, 0, 0, time.UTC)
	a := types.Announcement{
		FeederID:               7,
		Type:                   types.Unscheduled,
		Cause:                  "Fallen tree",
		Location:               "Purok 5",
		AreasAffected:          []string{"Irisan", "Pinsao"},
		Status:                 types.StatusReported,
		EstimatedRestorationAt: &eta,
	}
	manila := time.FixedZone("PHT", 8*3600)

	got := PostText(a, manila)
	assert.Equal(t, "Unscheduled power interruption: Purok 5 (Feeder 7)\n"+
		"Areas: Irisan, Pinsao\n"+
		"Cause: Fallen tree\n"+
		"Estimated restoration: Apr 2, 3:00 PM\n"+
		"Status: Reported", got)
}

func TestPostTextTitleFallsBackToCause(t *testing.T) {
	a := types.Announcement{Type: types.Scheduled, Cause: "Line maintenance", Status: types.StatusOngoing}
	got := PostText(a, time.UTC)
	assert.True(t, strings.HasPrefix(got, "Scheduled power interruption: Line maintenance\n"), got)
	assert.NotContains(t, got, "Cause:")
}

func TestPostTextTruncates(t *testing.T) {
	areas := make([]string, 80)
	for i := range areas {
		areas[i] = "Barangay"
	}
	got := PostText(types.Announcement{AreasAffected: areas, Status: types.StatusReported}, time.UTC)
	assert.Equal(t, maxPostRunes, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
}
