package types

import "time"

type OutageType string

const (
	Scheduled   OutageType = "scheduled"
	Unscheduled OutageType = "unscheduled"
)

// Announcement is the public outage notice curated by an administrator.
// Barangay repeats AreasAffected[0] so the public app can show a primary area.
type Announcement struct {
	ID                     int64      `firestore:"id" json:"id"`
	FeederID               int64      `firestore:"feeder_id" json:"feeder_id"`
	Type                   OutageType `firestore:"type" json:"type"`
	Cause                  string     `firestore:"cause" json:"cause"`
	Location               string     `firestore:"location" json:"location"`
	AreasAffected          []string   `firestore:"areas_affected" json:"areas_affected"`
	Barangay               string     `firestore:"barangay" json:"barangay"`
	Status                 Status     `firestore:"status" json:"status"`
	Description            string     `firestore:"description" json:"description"`
	EstimatedRestorationAt *time.Time `firestore:"estimated_restoration_at" json:"estimated_restoration_at"`
	ScheduledAt            *time.Time `firestore:"scheduled_at" json:"scheduled_at"`
	RestoredAt             *time.Time `firestore:"restored_at" json:"restored_at"`
	Latitude               *float64   `firestore:"latitude" json:"latitude"`
	Longitude              *float64   `firestore:"longitude" json:"longitude"`
	CreatedAt              time.Time  `firestore:"created_at" json:"created_at"`
	UpdatedAt              *time.Time `firestore:"updated_at" json:"updated_at"`

	// Images is filled by the normalizer, never stored on the document.
	Images []string `firestore:"-" json:"images"`
}

// AnnouncementRow is an announcement as read from the backend, before the
// image sources are merged into Images.
type AnnouncementRow struct {
	Announcement

	// Legacy image columns from the old outages table.
	Pictures []string `firestore:"pictures"`
	Picture  string   `firestore:"picture"`

	// Joined from the announcement_images collection.
	AnnouncementImages []AnnouncementImage `firestore:"-"`
}

type AnnouncementImage struct {
	ID             string `firestore:"-" json:"id"`
	AnnouncementID int64  `firestore:"announcement_id" json:"announcement_id"`
	ImageURL       string `firestore:"image_url" json:"image_url"`
}

// AnnouncementInput is the column set written by the modal form on insert or update.
type AnnouncementInput struct {
	FeederID               int64
	Type                   OutageType
	Cause                  string
	Location               string
	AreasAffected          []string
	Status                 Status
	Description            string
	EstimatedRestorationAt *time.Time
	ScheduledAt            *time.Time
	RestoredAt             *time.Time
	Latitude               *float64
	Longitude              *float64
}

// PrimaryBarangay is the first affected area, stored alongside the full list.
func (in AnnouncementInput) PrimaryBarangay() string {
	if len(in.AreasAffected) == 0 {
		return ""
	}
	return in.AreasAffected[0]
}

// Title is the heading shown on cards and map popups.
func (a Announcement) Title() string {
	if a.Location != "" {
		return a.Location
	}
	if a.Cause != "" {
		return a.Cause
	}
	return "Outage"
}

func (a Announcement) SortID() (int64, string) { return a.ID, "" }
func (a Announcement) ItemStatus() string      { return string(a.Status) }
func (a Announcement) ItemFeeder() int64       { return a.FeederID }
func (a Announcement) Timestamp() time.Time    { return a.CreatedAt }
func (a Announcement) GroupSize() int          { return len(a.AreasAffected) }
func (a Announcement) HasImages() bool         { return len(a.Images) > 0 }
func (a Announcement) HasCoords() bool         { return a.Latitude != nil && a.Longitude != nil }

func (a Announcement) SearchFields() []string {
	fields := []string{a.Location, a.Cause, a.Description}
	return append(fields, a.AreasAffected...)
}
