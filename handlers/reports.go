package handlers

import (
	"net/http"
	"strings"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"beacon-admin/aggregate"
	"beacon-admin/pipeline"
)

type FeederTilesResponse struct {
	Tiles        []aggregate.FeederTile `json:"tiles"`
	PendingTotal int                    `json:"pending_total"`
}

func (h *Handler) FeederTiles(c *gin.Context) {
	ctx := c.Request.Context()
	snap, err := h.State.RefreshReports(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load reports.", err)
		return
	}
	feeders, err := h.Store.ListFeeders(ctx)
	if err != nil {
		log.WithError(err).Error("failed to list feeders")
		respondError(c, http.StatusInternalServerError, "Failed to load feeders.", err)
		return
	}
	c.JSON(http.StatusOK, FeederTilesResponse{
		Tiles:        aggregate.PendingByFeeder(snap.Items, feeders),
		PendingTotal: len(aggregate.PendingReports(snap.Items)),
	})
}

// FeederBarangays is the barangay grid of one feeder.
func (h *Handler) FeederBarangays(c *gin.Context) {
	feederID, err := paramID(c, "feederId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid feeder.", err)
		return
	}
	q, err := gridQuery(c, pipeline.SortID, pipeline.ReportsPageSize)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid filter.", err)
		return
	}
	snap, err := h.State.RefreshReports(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load reports.", err)
		return
	}

	groups := aggregate.GroupByBarangay(snap.Items, feederID)
	c.JSON(http.StatusOK, pipeline.Apply(groups, q))
}

// BarangayReports is the individual report grid of one barangay.
func (h *Handler) BarangayReports(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		respondError(c, http.StatusBadRequest, "Invalid barangay.", nil)
		return
	}
	q, err := gridQuery(c, pipeline.SortID, pipeline.ReportsPageSize)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid filter.", err)
		return
	}
	snap, err := h.State.RefreshReports(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load reports.", err)
		return
	}

	reports := aggregate.ReportsInBarangay(snap.Items, name)
	c.JSON(http.StatusOK, pipeline.Apply(reports, q))
}

// Outages is the announcement grid, newest first unless sorted otherwise.
func (h *Handler) Outages(c *gin.Context) {
	q, err := gridQuery(c, pipeline.SortNewest, pipeline.ReportsPageSize)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid filter.", err)
		return
	}
	snap, err := h.State.RefreshAnnouncements(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load outages.", err)
		return
	}
	c.JSON(http.StatusOK, pipeline.Apply(snap.Items, q))
}
