// Package normalize merges the image sources of announcement rows into the
// single Images list every view reads.
package normalize

import "beacon-admin/types"

// Images returns the union of every image source on the row, first seen
// order kept. Already merged Images come first so the call is idempotent.
func Images(row types.AnnouncementRow) []string {
	seen := make(map[string]bool)
	images := []string{}

	add := func(url string) {
		if url == "" || seen[url] {
			return
		}
		seen[url] = true
		images = append(images, url)
	}

	for _, url := range row.Images {
		add(url)
	}
	for _, img := range row.AnnouncementImages {
		add(img.ImageURL)
	}
	for _, url := range row.Pictures {
		add(url)
	}
	add(row.Picture)

	return images
}

func Announcement(row types.AnnouncementRow) types.Announcement {
	a := row.Announcement
	a.Images = Images(row)
	return a
}

// Announcements normalizes every row. A nil input yields an empty slice.
func Announcements(rows []types.AnnouncementRow) []types.Announcement {
	out := make([]types.Announcement, 0, len(rows))
	for _, row := range rows {
		out = append(out, Announcement(row))
	}
	return out
}
