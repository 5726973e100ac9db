package modal

import (
	"context"
	"fmt"
	"io"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"beacon-admin/metrics"
	"beacon-admin/types"

	"github.com/apex/log"
	"github.com/google/uuid"
)

// Upload is a newly attached image file.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Fields are the editable values of the form.
type Fields struct {
	Type                   types.OutageType `json:"type" binding:"required,oneof=scheduled unscheduled"`
	Cause                  string           `json:"cause"`
	Location               string           `json:"location"`
	Status                 types.Status     `json:"status" binding:"required,oneof=Reported Ongoing Completed"`
	Description            string           `json:"description"`
	EstimatedRestorationAt *time.Time       `json:"estimated_restoration_at"`
	ScheduledAt            *time.Time       `json:"scheduled_at"`
	AffectedAreas          []string         `json:"affected_areas"`
	Coordinates            string           `json:"coordinates"`
	ExistingImages         []string         `json:"existing_images"`
}

// Submission carries the ids the form was opened for. For the reports
// context these are report ids, for outages announcement ids.
type Submission struct {
	Context  Context  `json:"context" binding:"required,oneof=reports outages"`
	IDs      []int64  `json:"ids"`
	FeederID *int64   `json:"feeder_id"`
	Fields   Fields   `json:"fields"`
	Uploads  []Upload `json:"-"`
}

type Result struct {
	AnnouncementID int64        `json:"announcement_id,omitempty"`
	Updated        []int64      `json:"updated"`
	Images         []string     `json:"images"`
	Warnings       []string     `json:"warnings"`
	Notice         types.Notice `json:"notice"`
}

func (s Submission) validate() error {
	if s.Context != ContextReports && s.Context != ContextOutages {
		return ErrInvalidContext
	}
	if s.Context == ContextOutages && len(s.IDs) == 0 {
		return ErrNoItems
	}
	if s.Fields.Type != types.Scheduled && s.Fields.Type != types.Unscheduled {
		return ErrInvalidType
	}
	if !slices.Contains(Statuses, s.Fields.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// Submit uploads new images, then inserts or updates the announcement.
// An upload failure aborts before any row is touched. Failures after the
// main row was written come back as warnings on a successful result.
func (b *Builder) Submit(ctx context.Context, sub Submission) (*Result, error) {
	if err := sub.validate(); err != nil {
		return nil, err
	}
	lat, lng, err := ParseCoordinates(sub.Fields.Coordinates)
	if err != nil {
		return nil, err
	}

	uploaded, err := b.upload(ctx, sub.Uploads)
	if err != nil {
		return nil, err
	}
	images := uniqueURLs(append(slices.Clone(sub.Fields.ExistingImages), uploaded...))

	now := b.now().UTC()
	in := types.AnnouncementInput{
		FeederID:               deref(sub.FeederID),
		Type:                   sub.Fields.Type,
		Cause:                  strings.TrimSpace(sub.Fields.Cause),
		Location:               strings.TrimSpace(sub.Fields.Location),
		AreasAffected:          slices.Clone(sub.Fields.AffectedAreas),
		Status:                 sub.Fields.Status,
		Description:            strings.TrimSpace(sub.Fields.Description),
		EstimatedRestorationAt: sub.Fields.EstimatedRestorationAt,
		ScheduledAt:            sub.Fields.ScheduledAt,
		Latitude:               lat,
		Longitude:              lng,
	}
	if in.AreasAffected == nil {
		in.AreasAffected = []string{}
	}
	if in.Status == types.StatusCompleted {
		in.RestoredAt = &now
	}

	res := &Result{Images: images, Updated: []int64{}, Warnings: []string{}}
	var targets []int64

	switch sub.Context {
	case ContextReports:
		id, err := b.Gateway.InsertAnnouncement(ctx, in, now)
		if err != nil {
			return nil, fmt.Errorf("create announcement: %w", err)
		}
		res.AnnouncementID = id
		targets = []int64{id}

		if len(images) > 0 {
			if err := b.Gateway.InsertAnnouncementImages(ctx, id, images); err != nil {
				log.WithError(err).WithField("announcement", id).Error("modal: failed to save announcement images")
				res.Warnings = append(res.Warnings, "Announcement created, but failed to save images.")
			}
		}
		if len(sub.IDs) > 0 {
			if err := b.Gateway.MarkReportsAnnounced(ctx, sub.IDs, now); err != nil {
				log.WithError(err).WithField("reports", sub.IDs).Error("modal: failed to mark reports announced")
				res.Warnings = append(res.Warnings, "Announcement created, but failed to update report status.")
			} else {
				res.Updated = slices.Clone(sub.IDs)
			}
		}
		if len(sub.IDs) > 0 {
			res.Notice = types.Success("Reports converted to announcement successfully!")
		} else {
			res.Notice = types.Success("Announcement created successfully!")
		}

	case ContextOutages:
		if err := b.Gateway.UpdateAnnouncements(ctx, sub.IDs, in, now); err != nil {
			return nil, fmt.Errorf("update announcement: %w", err)
		}
		targets = slices.Clone(sub.IDs)
		res.Updated = slices.Clone(sub.IDs)

		if err := b.Gateway.ReplaceAnnouncementImages(ctx, sub.IDs, images); err != nil {
			log.WithError(err).WithField("announcements", sub.IDs).Error("modal: failed to replace announcement images")
			res.Warnings = append(res.Warnings, "Outage updated, but failed to save images.")
		}
		res.Notice = types.Success("Outage updated successfully!")
	}

	if in.Latitude == nil && in.Location != "" && b.Geocoder != nil {
		b.geocode(ctx, targets, in, res)
	}

	if sub.Context == ContextReports && b.Publisher != nil {
		a := announcementFrom(res.AnnouncementID, in, images, now)
		if err := b.Publisher.PublishAnnouncement(ctx, a); err != nil {
			metrics.PublishTotal.WithLabelValues("error").Inc()
			log.WithError(err).WithField("announcement", res.AnnouncementID).Warn("modal: failed to publish announcement")
			res.Warnings = append(res.Warnings, "Announcement saved, but posting it publicly failed.")
		} else {
			metrics.PublishTotal.WithLabelValues("ok").Inc()
		}
	}

	if b.Refresh != nil {
		b.Refresh(ctx, sub.Context)
	}
	return res, nil
}

func (b *Builder) upload(ctx context.Context, uploads []Upload) ([]string, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	if b.Images == nil {
		return nil, fmt.Errorf("%w: no image store configured", ErrUpload)
	}
	urls := make([]string, 0, len(uploads))
	for _, up := range uploads {
		name := ObjectName(b.now(), up.Filename)
		url, err := b.Images.Upload(ctx, name, up.ContentType, up.Body)
		if err != nil {
			// objects uploaded before the failure are left in the bucket
			return nil, fmt.Errorf("%w: %s: %v", ErrUpload, up.Filename, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (b *Builder) geocode(ctx context.Context, ids []int64, in types.AnnouncementInput, res *Result) {
	address := in.Location
	if len(in.AreasAffected) > 0 {
		address += ", " + in.AreasAffected[0]
	}
	lat, lng, err := b.Geocoder.Geocode(ctx, address)
	if err == nil {
		err = b.Gateway.SetAnnouncementCoordinates(ctx, ids, lat, lng)
	}
	if err != nil {
		log.WithError(err).WithField("address", address).Warn("modal: failed to geocode announcement")
		res.Warnings = append(res.Warnings, "Announcement saved, but its location could not be placed on the map.")
	}
}

// ObjectName is the storage path of an uploaded image.
func ObjectName(now time.Time, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		base = "image"
	}
	return fmt.Sprintf("public/%d-%s-%s", now.UnixMilli(), uuid.NewString()[:8], base)
}

// ParseCoordinates reads "lat, lng". Blank text means no coordinates.
func ParseCoordinates(text string) (*float64, *float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, nil
	}
	latStr, lngStr, ok := strings.Cut(text, ",")
	if !ok {
		return nil, nil, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, nil, ErrInvalidCoordinates
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil || lng < -180 || lng > 180 {
		return nil, nil, ErrInvalidCoordinates
	}
	return &lat, &lng, nil
}

func FormatCoordinates(lat, lng *float64) string {
	if lat == nil || lng == nil {
		return ""
	}
	return fmt.Sprintf("%g, %g", *lat, *lng)
}

func announcementFrom(id int64, in types.AnnouncementInput, images []string, now time.Time) types.Announcement {
	a := types.Announcement{
		ID:                     id,
		FeederID:               in.FeederID,
		Type:                   in.Type,
		Cause:                  in.Cause,
		Location:               in.Location,
		AreasAffected:          in.AreasAffected,
		Status:                 in.Status,
		Description:            in.Description,
		EstimatedRestorationAt: in.EstimatedRestorationAt,
		ScheduledAt:            in.ScheduledAt,
		Latitude:               in.Latitude,
		Longitude:              in.Longitude,
		CreatedAt:              now,
		Images:                 images,
	}
	a.Barangay = in.PrimaryBarangay()
	return a
}

func uniqueURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u != "" && !slices.Contains(out, u) {
			out = append(out, u)
		}
	}
	return out
}

func deref(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
