package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"beacon-admin/db"
	"beacon-admin/middleware"
	"beacon-admin/types"
)

const (
	defaultAvatarMaxBytes = 5 << 20
	notificationLimit     = 20
)

// Badge is the unread count as the bell shows it.
func Badge(count int) string {
	switch {
	case count <= 0:
		return ""
	case count > 9:
		return "9+"
	}
	return strconv.Itoa(count)
}

func (h *Handler) UnreadNotifications(c *gin.Context) {
	uid := middleware.GetUserIDFromContext(c)
	n, err := h.Store.CountUnreadNotifications(c.Request.Context(), uid)
	if err != nil {
		log.WithError(err).WithField("uid", uid).Error("failed to count notifications")
		respondError(c, http.StatusInternalServerError, "Failed to load notifications.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n, "badge": Badge(n)})
}

func (h *Handler) ListNotifications(c *gin.Context) {
	uid := middleware.GetUserIDFromContext(c)
	items, err := h.Store.ListNotifications(c.Request.Context(), uid, notificationLimit)
	if err != nil {
		log.WithError(err).WithField("uid", uid).Error("failed to list notifications")
		respondError(c, http.StatusInternalServerError, "Failed to load notifications.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	uid := middleware.GetUserIDFromContext(c)
	n, err := h.Store.MarkNotificationsRead(c.Request.Context(), uid)
	if err != nil {
		log.WithError(err).WithField("uid", uid).Error("failed to mark notifications read")
		respondError(c, http.StatusInternalServerError, "Failed to update notifications.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (h *Handler) GetProfile(c *gin.Context) {
	uid := middleware.GetUserIDFromContext(c)
	p, err := h.Profiles.Get(c.Request.Context(), uid)
	if err != nil {
		log.WithError(err).WithField("uid", uid).Error("failed to load profile")
		respondError(c, http.StatusInternalServerError, "Failed to load profile.", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	uid := middleware.GetUserIDFromContext(c)
	var upd types.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request.", err)
		return
	}
	p, err := h.Profiles.Update(c.Request.Context(), uid, upd)
	if err != nil {
		if errors.Is(err, db.ErrEmptyProfileUpdate) {
			respondError(c, http.StatusBadRequest, "Nothing to update.", err)
			return
		}
		log.WithError(err).WithField("uid", uid).Error("failed to update profile")
		respondError(c, http.StatusInternalServerError, "Failed to update profile.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p, "notice": types.Success("Profile updated successfully!")})
}

// AvatarObjectName is avatars/<uid>-<millis>.<ext>.
func AvatarObjectName(uid string, millis int64, filename string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "png"
	}
	return fmt.Sprintf("avatars/%s-%d.%s", uid, millis, strings.ToLower(ext))
}

func (h *Handler) UploadAvatar(c *gin.Context) {
	if h.Avatars == nil {
		respondError(c, http.StatusServiceUnavailable, "Profile pictures are not configured.", nil)
		return
	}
	uid := middleware.GetUserIDFromContext(c)
	fh, err := c.FormFile("avatar")
	if err != nil {
		respondError(c, http.StatusBadRequest, "No image selected.", err)
		return
	}
	limit := h.AvatarMaxBytes
	if limit <= 0 {
		limit = defaultAvatarMaxBytes
	}
	if fh.Size > limit {
		respondError(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Image file is too large. Please select a file under %dMB.", limit>>20), nil)
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Could not read the image.", err)
		return
	}
	defer f.Close()

	ctx := c.Request.Context()
	name := AvatarObjectName(uid, h.now().UnixMilli(), fh.Filename)
	url, err := h.Avatars.Upload(ctx, name, fh.Header.Get("Content-Type"), f)
	if err != nil {
		log.WithError(err).WithField("uid", uid).Error("failed to upload avatar")
		respondError(c, http.StatusBadGateway, "Failed to upload profile picture.", err)
		return
	}

	p, err := h.Profiles.Update(ctx, uid, types.ProfileUpdate{AvatarURL: &url})
	if err != nil {
		log.WithError(err).WithField("uid", uid).Error("failed to save avatar url")
		respondError(c, http.StatusInternalServerError, "Picture uploaded, but failed to save to profile.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p, "notice": types.Success("Profile picture updated!")})
}
