package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"beacon-admin/aggregate"
	"beacon-admin/db"
	"beacon-admin/mapview"
	"beacon-admin/middleware"
	"beacon-admin/narrative"
	"beacon-admin/pdfreport"
	"beacon-admin/pipeline"
	"beacon-admin/types"
)

type StatsResponse struct {
	Date  string           `json:"date"`
	Tiles []aggregate.Tile `json:"tiles"`
}

// summaryTiles compares the UTC day of day against the day before. Completed
// repairs are counted on restored_at, the others on created_at.
func (h *Handler) summaryTiles(ctx context.Context, day time.Time) ([]aggregate.Tile, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	prev := start.AddDate(0, 0, -1)
	window := func(from time.Time) (time.Time, time.Time) { return from, from.Add(24*time.Hour - time.Second) }

	specs := []struct {
		key, label     string
		status         types.Status
		field          string
		higherIsBetter bool
	}{
		{"total", "Total Reports", "", "created_at", false},
		{"active", "Active Outages", types.StatusOngoing, "created_at", false},
		{"completed", "Completed Repairs", types.StatusCompleted, "restored_at", true},
	}

	tiles := make([]aggregate.Tile, 0, len(specs))
	for _, s := range specs {
		from, to := window(start)
		current, err := h.Store.CountAnnouncements(ctx, db.CountQuery{Status: s.status, Field: s.field, From: from, To: to})
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", s.key, err)
		}
		from, to = window(prev)
		previous, err := h.Store.CountAnnouncements(ctx, db.CountQuery{Status: s.status, Field: s.field, From: from, To: to})
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", s.key, err)
		}
		tiles = append(tiles, aggregate.NewTile(s.key, s.label, current, previous, s.higherIsBetter))
	}
	return tiles, nil
}

func (h *Handler) DashboardStats(c *gin.Context) {
	day, err := parseDay(c.Query("date"), h.now(), time.UTC)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid date.", err)
		return
	}
	tiles, err := h.summaryTiles(c.Request.Context(), day)
	if err != nil {
		log.WithError(err).Error("failed to load dashboard stats")
		respondError(c, http.StatusInternalServerError, "Failed to load dashboard stats.", err)
		return
	}
	c.JSON(http.StatusOK, StatsResponse{Date: day.Format(time.DateOnly), Tiles: tiles})
}

func (h *Handler) RecentAnnouncements(c *gin.Context) {
	anns, err := h.Store.RecentAnnouncements(c.Request.Context(), pipeline.RecentPageSize)
	if err != nil {
		log.WithError(err).Error("failed to load recent announcements")
		respondError(c, http.StatusInternalServerError, "Failed to load recent announcements.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": anns})
}

type ChartsResponse struct {
	Charts     aggregate.Charts          `json:"charts"`
	Narratives map[narrative.Kind]string `json:"narratives"`
	Feeders    []types.Feeder            `json:"feeders"`
}

func (h *Handler) buildCharts(ctx context.Context, feeders, restoration []int64) (ChartsResponse, error) {
	snap, err := h.State.RefreshAnnouncements(ctx)
	if err != nil {
		return ChartsResponse{}, err
	}
	list, err := h.Store.ListFeeders(ctx)
	if err != nil {
		return ChartsResponse{}, fmt.Errorf("list feeders: %w", err)
	}
	charts := aggregate.BuildCharts(snap.Items, list, aggregate.ChartOptions{
		Feeders:            feeders,
		RestorationFeeders: restoration,
		Location:           h.loc(),
	})
	return ChartsResponse{Charts: charts, Narratives: narrative.All(charts), Feeders: list}, nil
}

func (h *Handler) DashboardCharts(c *gin.Context) {
	feeders, err := parseIDList(c.Query("feeders"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid feeder selection.", err)
		return
	}
	restoration, err := parseIDList(c.Query("restoration_feeders"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid feeder selection.", err)
		return
	}
	resp, err := h.buildCharts(c.Request.Context(), feeders, restoration)
	if err != nil {
		log.WithError(err).Error("failed to build charts")
		respondError(c, http.StatusInternalServerError, "Failed to load charts.", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type HeatmapResponse struct {
	Filter   mapview.HeatFilter  `json:"filter"`
	Center   [2]float64          `json:"center"`
	Points   []mapview.HeatPoint `json:"points"`
	Hotspots []mapview.Hotspot   `json:"hotspots"`
	Bounds   *mapview.Bounds     `json:"bounds,omitempty"`
	GeoJSON  any                 `json:"geojson"`
}

func (h *Handler) DashboardHeatmap(c *gin.Context) {
	filter, err := mapview.ParseHeatFilter(c.Query("filter"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid heatmap filter.", err)
		return
	}
	if err := h.State.RefreshAll(c.Request.Context()); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load heatmap data.", err)
		return
	}

	points := h.State.Heat(filter)
	resp := HeatmapResponse{
		Filter:   filter,
		Center:   h.MapCenter,
		Points:   points,
		Hotspots: mapview.Hotspots(points, h.HotspotRadiusKM),
		GeoJSON:  mapview.HeatFeatures(points),
	}
	if b, ok := mapview.BoundsOf(points); ok {
		resp.Bounds = &b
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) adminName(ctx context.Context, uid string) string {
	if h.Profiles == nil || uid == "" {
		return ""
	}
	p, err := h.Profiles.Get(ctx, uid)
	if err != nil {
		log.WithError(err).WithField("uid", uid).Warn("failed to load admin profile for report")
		return ""
	}
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Email
}

func (h *Handler) ReportPDF(c *gin.Context) {
	ctx := c.Request.Context()
	day, err := parseDay(c.Query("date"), h.now(), time.UTC)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid date.", err)
		return
	}
	tiles, err := h.summaryTiles(ctx, day)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to generate report.", err)
		return
	}
	charts, err := h.buildCharts(ctx, nil, nil)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to generate report.", err)
		return
	}

	admin := h.adminName(ctx, middleware.GetUserIDFromContext(c))
	var buf bytes.Buffer
	err = pdfreport.Render(&buf, pdfreport.Report{
		Admin:       admin,
		GeneratedAt: h.now(),
		Location:    h.loc(),
		Tiles:       tiles,
		Charts:      charts.Charts,
	})
	if err != nil {
		log.WithError(err).Error("failed to render report pdf")
		respondError(c, http.StatusInternalServerError, "Failed to generate report.", err)
		return
	}

	name := pdfreport.FileName(admin, h.now().In(h.loc()))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
