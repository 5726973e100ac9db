// Package modal builds the announcement form for a set of selected reports
// or outages and applies its submission.
package modal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"beacon-admin/types"

	"github.com/apex/log"
)

type Context string

const (
	ContextReports Context = "reports"
	ContextOutages Context = "outages"
)

type View string

const (
	ViewBarangays   View = "barangays"
	ViewIndividuals View = "individuals"
)

type AreaState string

const (
	AreasOK           AreaState = "ok"
	NoAreasConfigured AreaState = "no_areas_configured"
)

var (
	ErrNoItems            = errors.New("no items selected")
	ErrNoData             = errors.New("no data found for the selected items")
	ErrInvalidContext     = errors.New("context must be reports or outages")
	ErrInvalidType        = errors.New("outage type must be scheduled or unscheduled")
	ErrInvalidStatus      = errors.New("status must be Reported, Ongoing or Completed")
	ErrInvalidCoordinates = errors.New("coordinates must be \"lat, lng\"")
	ErrUpload             = errors.New("image upload failed")
)

// Gateway is the part of the data store the form reads and writes.
type Gateway interface {
	ReportsByStatus(ctx context.Context, status types.Status) ([]types.Report, error)
	AnnouncementsByID(ctx context.Context, ids []int64) ([]types.Announcement, error)
	FeederBarangayNames(ctx context.Context, feederID int64) ([]string, error)
	ListBarangays(ctx context.Context) ([]types.Barangay, error)
	ListTeams(ctx context.Context) ([]types.DispatchTeam, error)

	InsertAnnouncement(ctx context.Context, in types.AnnouncementInput, createdAt time.Time) (int64, error)
	UpdateAnnouncements(ctx context.Context, ids []int64, in types.AnnouncementInput, updatedAt time.Time) error
	InsertAnnouncementImages(ctx context.Context, announcementID int64, urls []string) error
	ReplaceAnnouncementImages(ctx context.Context, ids []int64, urls []string) error
	SetAnnouncementCoordinates(ctx context.Context, ids []int64, lat, lng float64) error
	MarkReportsAnnounced(ctx context.Context, ids []int64, at time.Time) error
}

type ImageUploader interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lng float64, err error)
}

type Publisher interface {
	PublishAnnouncement(ctx context.Context, a types.Announcement) error
}

// Builder opens and submits the form. Images, Geocoder, Publisher and
// Refresh are optional.
type Builder struct {
	Gateway   Gateway
	Images    ImageUploader
	Geocoder  Geocoder
	Publisher Publisher
	Refresh   func(ctx context.Context, c Context)
	Now       func() time.Time
}

func NewBuilder(gw Gateway, images ImageUploader) *Builder {
	return &Builder{Gateway: gw, Images: images, Now: time.Now}
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

// Request names the selection the form is opened for. In the barangay view
// of the reports grid the selection is a list of barangay names.
type Request struct {
	Context   Context  `json:"context" binding:"required,oneof=reports outages"`
	View      View     `json:"view" binding:"omitempty,oneof=barangays individuals"`
	IDs       []int64  `json:"ids"`
	Barangays []string `json:"barangays"`
	FeederID  *int64   `json:"feeder_id"`
	Manual    bool     `json:"manual"`
}

type AreaOption struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

type Prefill struct {
	Type                   types.OutageType `json:"type"`
	Cause                  string           `json:"cause"`
	Location               string           `json:"location"`
	Status                 types.Status     `json:"status"`
	Description            string           `json:"description"`
	EstimatedRestorationAt *time.Time       `json:"estimated_restoration_at"`
	ScheduledAt            *time.Time       `json:"scheduled_at"`
	Coordinates            string           `json:"coordinates"`
}

// Form is the view-model the dashboard renders inside the modal.
type Form struct {
	Context       Context              `json:"context"`
	Bulk          bool                 `json:"bulk"`
	Manual        bool                 `json:"manual"`
	Title         string               `json:"title"`
	SubmitLabel   string               `json:"submit_label"`
	FeederID      *int64               `json:"feeder_id"`
	AreaInfo      string               `json:"area_info"`
	AreaState     AreaState            `json:"area_state"`
	Areas         []AreaOption         `json:"areas"`
	Statuses      []types.Status       `json:"statuses"`
	Teams         []types.DispatchTeam `json:"teams"`
	Prefill       Prefill              `json:"prefill"`
	Images        []string             `json:"images"`
	AssociatedIDs []int64              `json:"associated_ids"`
}

// Statuses an administrator may set from the form.
var Statuses = []types.Status{types.StatusReported, types.StatusOngoing, types.StatusCompleted}

// Open resolves the selection and builds the form.
func (b *Builder) Open(ctx context.Context, req Request) (*Form, error) {
	if req.Context != ContextReports && req.Context != ContextOutages {
		return nil, ErrInvalidContext
	}
	selected := len(req.IDs)
	if req.Context == ContextReports && req.View == ViewBarangays {
		selected = len(req.Barangays)
	}
	if selected == 0 && !req.Manual {
		return nil, ErrNoItems
	}

	form := &Form{
		Context:       req.Context,
		Bulk:          selected > 1,
		Manual:        req.Manual && selected == 0,
		FeederID:      req.FeederID,
		Images:        []string{},
		AssociatedIDs: []int64{},
		Statuses:      Statuses,
	}
	selectedAreas := []string{}

	var pending []types.Report
	switch req.Context {
	case ContextReports:
		var err error
		pending, err = b.Gateway.ReportsByStatus(ctx, types.StatusPending)
		if err != nil {
			return nil, fmt.Errorf("load pending reports: %w", err)
		}
		selectedAreas = b.openReports(req, pending, form)
	case ContextOutages:
		areas, err := b.openOutages(ctx, req, form)
		if err != nil {
			return nil, err
		}
		selectedAreas = areas
	}

	if !form.Manual && len(form.AssociatedIDs) == 0 {
		return nil, ErrNoData
	}

	if teams, err := b.Gateway.ListTeams(ctx); err != nil {
		log.WithError(err).Warn("modal: failed to load dispatch teams")
		form.Teams = []types.DispatchTeam{}
	} else {
		form.Teams = teams
	}

	options := b.resolveAreas(ctx, req.Context, form.FeederID, selectedAreas, pending)
	if len(options) == 0 {
		form.AreaState = NoAreasConfigured
		form.AreaInfo = "No barangays configured"
	} else {
		form.AreaState = AreasOK
		form.AreaInfo = fmt.Sprintf("Feeder %s - %d barangays", feederLabel(form.FeederID), len(options))
	}
	form.Areas = make([]AreaOption, 0, len(options))
	for _, name := range options {
		form.Areas = append(form.Areas, AreaOption{Name: name, Selected: slices.Contains(selectedAreas, name)})
	}

	form.Title, form.SubmitLabel = titles(req.Context, form.Bulk, form.Manual)
	return form, nil
}

func (b *Builder) openReports(req Request, pending []types.Report, form *Form) []string {
	selectedAreas := []string{}
	var first *types.Report

	if req.View == ViewBarangays {
		selectedAreas = append(selectedAreas, req.Barangays...)
		for i, r := range pending {
			if !slices.Contains(req.Barangays, r.Barangay) {
				continue
			}
			if first == nil {
				first = &pending[i]
			}
			form.AssociatedIDs = append(form.AssociatedIDs, r.ID)
		}
		if form.FeederID == nil && first != nil {
			form.FeederID = &first.Feeder
		}
		// barangay rows carry no cause or description of their own
		form.Prefill = Prefill{Type: types.Unscheduled, Status: types.StatusReported}
		return selectedAreas
	}

	for i, r := range pending {
		if !slices.Contains(req.IDs, r.ID) {
			continue
		}
		if first == nil {
			first = &pending[i]
		}
		form.AssociatedIDs = append(form.AssociatedIDs, r.ID)
		if r.Barangay != "" && !slices.Contains(selectedAreas, r.Barangay) {
			selectedAreas = append(selectedAreas, r.Barangay)
		}
		if form.FeederID == nil && r.Feeder != 0 {
			form.FeederID = &pending[i].Feeder
		}
		for _, img := range r.Images {
			if !slices.Contains(form.Images, img) {
				form.Images = append(form.Images, img)
			}
		}
	}

	form.Prefill = Prefill{Type: types.Unscheduled, Status: types.StatusReported}
	if first != nil {
		form.Prefill.Cause = first.Cause
		form.Prefill.Description = first.Description
		form.Prefill.Coordinates = FormatCoordinates(first.Latitude, first.Longitude)
	}
	return selectedAreas
}

func (b *Builder) openOutages(ctx context.Context, req Request, form *Form) ([]string, error) {
	selectedAreas := []string{}
	form.Prefill = Prefill{Type: types.Unscheduled, Status: types.StatusReported}
	if len(req.IDs) == 0 {
		return selectedAreas, nil
	}

	anns, err := b.Gateway.AnnouncementsByID(ctx, req.IDs)
	if err != nil {
		return nil, fmt.Errorf("load announcements: %w", err)
	}
	if len(anns) == 0 {
		return selectedAreas, nil
	}

	form.AssociatedIDs = slices.Clone(req.IDs)
	for i, a := range anns {
		for _, area := range a.AreasAffected {
			if !slices.Contains(selectedAreas, area) {
				selectedAreas = append(selectedAreas, area)
			}
		}
		if form.FeederID == nil && a.FeederID != 0 {
			form.FeederID = &anns[i].FeederID
		}
	}

	first := anns[0]
	form.Images = append(form.Images, first.Images...)
	form.Prefill = Prefill{
		Type:                   first.Type,
		Cause:                  first.Cause,
		Location:               first.Location,
		Status:                 first.Status,
		Description:            first.Description,
		EstimatedRestorationAt: first.EstimatedRestorationAt,
		ScheduledAt:            first.ScheduledAt,
		Coordinates:            FormatCoordinates(first.Latitude, first.Longitude),
	}
	if form.Prefill.Type != types.Scheduled {
		form.Prefill.Type = types.Unscheduled
	}
	if !slices.Contains(Statuses, form.Prefill.Status) {
		form.Prefill.Status = types.StatusReported
	}
	return selectedAreas, nil
}

// resolveAreas walks the fallback chain: the feeder's configured barangays,
// then the areas already on the selection, then barangays of pending
// reports on the same feeder, then every barangay. An empty result means
// nothing is configured anywhere.
func (b *Builder) resolveAreas(ctx context.Context, c Context, feederID *int64, selected []string, pending []types.Report) []string {
	if feederID != nil {
		names, err := b.Gateway.FeederBarangayNames(ctx, *feederID)
		if err != nil {
			log.WithError(err).WithField("feeder", *feederID).Warn("modal: failed to load feeder barangays")
		}
		if names = sortedUnique(names); len(names) > 0 {
			return names
		}
	}

	if len(selected) > 0 {
		return sortedUnique(selected)
	}

	if c == ContextReports && feederID != nil {
		var names []string
		for _, r := range pending {
			if r.Feeder == *feederID {
				names = append(names, r.Barangay)
			}
		}
		if names = sortedUnique(names); len(names) > 0 {
			return names
		}
	}

	all, err := b.Gateway.ListBarangays(ctx)
	if err != nil {
		log.WithError(err).Warn("modal: failed to load barangays")
		return nil
	}
	names := make([]string, 0, len(all))
	for _, brgy := range all {
		names = append(names, brgy.Name)
	}
	return sortedUnique(names)
}

func sortedUnique(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func feederLabel(id *int64) string {
	if id == nil {
		return "N/A"
	}
	return fmt.Sprint(*id)
}

func titles(c Context, bulk, manual bool) (title, submit string) {
	switch {
	case manual:
		return "New Announcement", "Post Announcement"
	case bulk:
		return "Bulk Update / Announce", "Post Bulk Announcement"
	case c == ContextReports:
		return "Update Report / Announce", "Update Announcement"
	default:
		return "Update Outage / Announce", "Update Announcement"
	}
}
