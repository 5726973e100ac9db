package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"beacon-admin/mapview"
)

type MarkersResponse struct {
	Date    string           `json:"date"`
	Center  [2]float64       `json:"center"`
	Markers []mapview.Marker `json:"markers"`
	Focus   *mapview.Marker  `json:"focus"`
	Message string           `json:"message,omitempty"`
	GeoJSON any              `json:"geojson"`
}

const noMatchMessage = "No matching outage found in current view."

// MapMarkers lists open outages of the selected day, filtered by feeder and
// search text. The focus is the first match of the search.
func (h *Handler) MapMarkers(c *gin.Context) {
	ctx := c.Request.Context()
	day, err := parseDay(c.Query("date"), h.now(), h.loc())
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid date.", err)
		return
	}
	feeders, err := parseIDList(c.Query("feeders"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid feeder selection.", err)
		return
	}
	snap, err := h.State.RefreshAnnouncements(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load outages.", err)
		return
	}
	known, err := h.Store.ListFeeders(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load feeders.", err)
		return
	}

	search := c.Query("search")
	visible := mapview.FilterMarkers(mapview.Markers(snap.Items, day, h.loc()), mapview.MarkerFilter{
		Feeders:     feeders,
		KnownFeeder: len(known),
		Search:      search,
	})
	resp := MarkersResponse{
		Date:    day.Format("2006-01-02"),
		Center:  h.MapCenter,
		Markers: visible,
		Focus:   mapview.Focus(visible, search),
		GeoJSON: mapview.MarkerFeatures(visible),
	}
	if search != "" && resp.Focus == nil {
		resp.Message = noMatchMessage
	}
	c.JSON(http.StatusOK, resp)
}
