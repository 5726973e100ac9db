package types

import (
	"fmt"
	"strconv"
	"time"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusReported  Status = "Reported"
	StatusOngoing   Status = "Ongoing"
	StatusCompleted Status = "Completed"
	StatusAnnounced Status = "Announced"
)

// Report is a citizen submitted outage signal. Reports are created by the
// public intake app; this service only reads them and flips their status.
type Report struct {
	ID          int64      `firestore:"id" json:"id"`
	Feeder      int64      `firestore:"feeder" json:"feeder"`
	Barangay    string     `firestore:"barangay" json:"barangay"`
	Latitude    *float64   `firestore:"latitude" json:"latitude"`
	Longitude   *float64   `firestore:"longitude" json:"longitude"`
	Cause       string     `firestore:"cause" json:"cause"`
	Volume      int        `firestore:"volume" json:"volume"`
	Description string     `firestore:"description" json:"description"`
	Images      []string   `firestore:"images" json:"images"`
	Status      Status     `firestore:"status" json:"status"`
	CreatedAt   time.Time  `firestore:"created_at" json:"created_at"`
	AnnouncedAt *time.Time `firestore:"announced_at,omitempty" json:"announced_at,omitempty"`
}

func (r Report) SortID() (int64, string) { return r.ID, "" }
func (r Report) ItemStatus() string      { return string(r.Status) }
func (r Report) ItemFeeder() int64       { return r.Feeder }
func (r Report) Timestamp() time.Time    { return r.CreatedAt }
func (r Report) GroupSize() int          { return 1 }
func (r Report) HasImages() bool         { return len(r.Images) > 0 }
func (r Report) HasCoords() bool         { return r.Latitude != nil && r.Longitude != nil }

// SearchFields is what the individual reports grid matches free text against.
func (r Report) SearchFields() []string {
	fields := []string{r.Description, r.Cause, strconv.FormatInt(r.ID, 10)}
	if r.HasCoords() {
		fields = append(fields, fmt.Sprintf("%v,%v", *r.Latitude, *r.Longitude))
	}
	return fields
}
