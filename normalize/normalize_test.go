package normalize

import (
	"testing"

	"beacon-admin/types"

	"github.com/stretchr/testify/assert"
)

func TestImagesDeduplicatesLegacyAndJoinedSources(t *testing.T) {
	row := types.AnnouncementRow{
		Picture:  "https://img/a.png",
		Pictures: []string{"https://img/b.png", "https://img/a.png"},
		AnnouncementImages: []types.AnnouncementImage{
			{AnnouncementID: 1, ImageURL: "https://img/a.png"},
			{AnnouncementID: 1, ImageURL: "https://img/c.png"},
		},
	}

	assert.Equal(t, []string{"https://img/a.png", "https://img/c.png", "https://img/b.png"}, Images(row))
}

func TestImagesMissingFieldsYieldEmptySlice(t *testing.T) {
	images := Images(types.AnnouncementRow{})
	assert.NotNil(t, images)
	assert.Empty(t, images)
}

func TestAnnouncementIsIdempotent(t *testing.T) {
	row := types.AnnouncementRow{
		Announcement: types.Announcement{ID: 4, Cause: "Flood"},
		Picture:      "https://img/x.png",
		AnnouncementImages: []types.AnnouncementImage{
			{ImageURL: "https://img/y.png"},
		},
	}

	once := Announcement(row)
	twice := Announcement(types.AnnouncementRow{Announcement: once})

	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"https://img/y.png", "https://img/x.png"}, twice.Images)
}

func TestAnnouncementsNilInput(t *testing.T) {
	assert.Empty(t, Announcements(nil))
}
