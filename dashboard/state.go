// Package dashboard holds the last fetched reports and announcements that
// every admin screen is derived from, and pushes refreshes to dashboards.
package dashboard

import (
	"context"
	"errors"

	"github.com/apex/log"

	"beacon-admin/aggregate"
	"beacon-admin/mapview"
	"beacon-admin/metrics"
	"beacon-admin/modal"
	"beacon-admin/types"
	"beacon-admin/views"
	"beacon-admin/websocket"
)

const (
	ReportsView       = "reports"
	AnnouncementsView = "announcements"
)

type Source interface {
	ListReports(ctx context.Context) ([]types.Report, error)
	ListAnnouncements(ctx context.Context) ([]types.Announcement, error)
}

type Broadcaster interface {
	Broadcast(msg websocket.Message)
}

// Update is the payload pushed after a view refresh.
type Update struct {
	Pending int                 `json:"pending"`
	Active  int                 `json:"active"`
	Heat    []mapview.HeatPoint `json:"heat"`
}

type State struct {
	Reports       *views.View[types.Report]
	Announcements *views.View[types.Announcement]

	source Source
	hub    Broadcaster
}

// New wires both views to metrics and, when hub is not nil, to the broadcast.
func New(source Source, hub Broadcaster) *State {
	s := &State{
		Reports:       views.New[types.Report](ReportsView),
		Announcements: views.New[types.Announcement](AnnouncementsView),
		source:        source,
		hub:           hub,
	}
	s.Reports.OnCommit = func(snap views.Snapshot[types.Report]) { s.committed(snap.Name, snap.Seq) }
	s.Reports.OnStale = func(views.Token) { metrics.ViewRefreshTotal.WithLabelValues(ReportsView, "stale").Inc() }
	s.Announcements.OnCommit = func(snap views.Snapshot[types.Announcement]) { s.committed(snap.Name, snap.Seq) }
	s.Announcements.OnStale = func(views.Token) { metrics.ViewRefreshTotal.WithLabelValues(AnnouncementsView, "stale").Inc() }
	return s
}

func (s *State) committed(view string, seq views.Token) {
	metrics.ViewRefreshTotal.WithLabelValues(view, "applied").Inc()
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(websocket.Message{Type: "refresh", View: view, Seq: uint64(seq), Data: s.Update()})
}

// RefreshReports fetches all reports. A stale result is not an error: the
// newer fetch already holds fresher data and the snapshot reflects it.
func (s *State) RefreshReports(ctx context.Context) (views.Snapshot[types.Report], error) {
	snap, err := s.Reports.Refresh(ctx, s.source.ListReports)
	return snap, s.refreshErr(ReportsView, err)
}

func (s *State) RefreshAnnouncements(ctx context.Context) (views.Snapshot[types.Announcement], error) {
	snap, err := s.Announcements.Refresh(ctx, s.source.ListAnnouncements)
	return snap, s.refreshErr(AnnouncementsView, err)
}

func (s *State) refreshErr(view string, err error) error {
	if err == nil || errors.Is(err, views.ErrStale) {
		return nil
	}
	metrics.ViewRefreshTotal.WithLabelValues(view, "error").Inc()
	log.WithError(err).WithField("view", view).Error("failed to refresh view")
	return err
}

// RefreshAll refreshes both views, keeping whichever succeeded.
func (s *State) RefreshAll(ctx context.Context) error {
	_, rerr := s.RefreshReports(ctx)
	_, aerr := s.RefreshAnnouncements(ctx)
	return errors.Join(rerr, aerr)
}

// RefreshAfterSubmit is the modal refresh hook. Converting reports touches
// both collections; editing outages only announcements.
func (s *State) RefreshAfterSubmit(ctx context.Context, c modal.Context) {
	if c == modal.ContextReports {
		s.RefreshReports(ctx)
	}
	s.RefreshAnnouncements(ctx)
}

// Active is announcements still Reported or Ongoing.
func Active(anns []types.Announcement) []types.Announcement {
	out := []types.Announcement{}
	for _, a := range anns {
		if a.Status == types.StatusReported || a.Status == types.StatusOngoing {
			out = append(out, a)
		}
	}
	return out
}

// Heat builds the heat layer from the current snapshots.
func (s *State) Heat(filter mapview.HeatFilter) []mapview.HeatPoint {
	pending := aggregate.PendingReports(s.Reports.Snapshot().Items)
	return mapview.HeatPoints(filter, pending, Active(s.Announcements.Snapshot().Items))
}

func (s *State) Update() Update {
	pending := aggregate.PendingReports(s.Reports.Snapshot().Items)
	active := Active(s.Announcements.Snapshot().Items)
	return Update{
		Pending: len(pending),
		Active:  len(active),
		Heat:    mapview.HeatPoints(mapview.HeatAll, pending, active),
	}
}
