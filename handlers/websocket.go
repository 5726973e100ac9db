package handlers

import (
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"beacon-admin/middleware"
)

// DashboardSocket upgrades to the refresh websocket.
func (h *Handler) DashboardSocket(c *gin.Context) {
	if h.Hub == nil {
		respondError(c, http.StatusServiceUnavailable, "Live updates are not available.", nil)
		return
	}
	uid := middleware.GetUserIDFromContext(c)
	if err := h.Hub.Serve(h.Upgrader, c.Writer, c.Request, uid); err != nil {
		// the upgrader already wrote the HTTP error
		log.WithError(err).WithField("uid", uid).Warn("websocket upgrade failed")
	}
}
