package handlers

import (
	"net/http"
	"strings"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"beacon-admin/types"
)

type feederBody struct {
	Name string `json:"name" binding:"required,max=128"`
	Code string `json:"code" binding:"max=32"`
}

type teamBody struct {
	Name string `json:"name" binding:"required,max=128"`
}

func (h *Handler) ListFeeders(c *gin.Context) {
	feeders, err := h.Store.ListFeeders(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("failed to list feeders")
		respondError(c, http.StatusInternalServerError, "Failed to load feeders.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": feeders})
}

func (h *Handler) SaveFeeder(c *gin.Context) {
	var body feederBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "Feeder name is required.", err)
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		respondError(c, http.StatusBadRequest, "Feeder name is required.", nil)
		return
	}
	f := types.Feeder{Name: body.Name, Code: strings.TrimSpace(body.Code)}
	ctx := c.Request.Context()

	if c.Param("id") == "" {
		created, err := h.Store.InsertFeeder(ctx, f)
		if err != nil {
			log.WithError(err).Error("failed to insert feeder")
			respondError(c, http.StatusInternalServerError, "Error saving feeder.", err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"item": created, "notice": types.Success("Feeder added.")})
		return
	}

	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid feeder.", err)
		return
	}
	f.ID = id
	if err := h.Store.UpdateFeeder(ctx, f); err != nil {
		log.WithError(err).WithField("feeder", id).Error("failed to update feeder")
		respondError(c, http.StatusInternalServerError, "Error saving feeder.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": f, "notice": types.Success("Feeder updated.")})
}

func (h *Handler) DeleteFeeder(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid feeder.", err)
		return
	}
	if err := h.Store.DeleteFeeder(c.Request.Context(), id); err != nil {
		log.WithError(err).WithField("feeder", id).Error("failed to delete feeder")
		respondError(c, http.StatusInternalServerError, "Error deleting feeder.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notice": types.Success("Feeder deleted.")})
}

func (h *Handler) ListTeams(c *gin.Context) {
	teams, err := h.Store.ListTeams(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("failed to list teams")
		respondError(c, http.StatusInternalServerError, "Failed to load teams.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": teams})
}

func (h *Handler) SaveTeam(c *gin.Context) {
	var body teamBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "Team name is required.", err)
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		respondError(c, http.StatusBadRequest, "Team name is required.", nil)
		return
	}
	t := types.DispatchTeam{Name: body.Name}
	ctx := c.Request.Context()

	if c.Param("id") == "" {
		created, err := h.Store.InsertTeam(ctx, t)
		if err != nil {
			log.WithError(err).Error("failed to insert team")
			respondError(c, http.StatusInternalServerError, "Error saving team.", err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"item": created, "notice": types.Success("Team added.")})
		return
	}

	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid team.", err)
		return
	}
	t.ID = id
	if err := h.Store.UpdateTeam(ctx, t); err != nil {
		log.WithError(err).WithField("team", id).Error("failed to update team")
		respondError(c, http.StatusInternalServerError, "Error saving team.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": t, "notice": types.Success("Team updated.")})
}

func (h *Handler) DeleteTeam(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid team.", err)
		return
	}
	if err := h.Store.DeleteTeam(c.Request.Context(), id); err != nil {
		log.WithError(err).WithField("team", id).Error("failed to delete team")
		respondError(c, http.StatusInternalServerError, "Error deleting team.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notice": types.Success("Team deleted.")})
}
