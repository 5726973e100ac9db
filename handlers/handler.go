// Package handlers is the HTTP surface of the admin dashboard. Every
// response is a typed view-model; the dashboard only renders it.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"

	"beacon-admin/dashboard"
	"beacon-admin/db"
	"beacon-admin/modal"
	"beacon-admin/pipeline"
	"beacon-admin/types"
	"beacon-admin/websocket"
)

// Store is the part of the gateway read and written directly by handlers.
type Store interface {
	CountAnnouncements(ctx context.Context, q db.CountQuery) (int, error)
	RecentAnnouncements(ctx context.Context, limit int) ([]types.Announcement, error)

	ListFeeders(ctx context.Context) ([]types.Feeder, error)
	InsertFeeder(ctx context.Context, f types.Feeder) (types.Feeder, error)
	UpdateFeeder(ctx context.Context, f types.Feeder) error
	DeleteFeeder(ctx context.Context, id int64) error

	ListTeams(ctx context.Context) ([]types.DispatchTeam, error)
	InsertTeam(ctx context.Context, t types.DispatchTeam) (types.DispatchTeam, error)
	UpdateTeam(ctx context.Context, t types.DispatchTeam) error
	DeleteTeam(ctx context.Context, id int64) error

	CountUnreadNotifications(ctx context.Context, uid string) (int, error)
	ListNotifications(ctx context.Context, uid string, limit int) ([]types.Notification, error)
	MarkNotificationsRead(ctx context.Context, uid string) (int, error)
}

type Profiles interface {
	Get(ctx context.Context, uid string) (types.Profile, error)
	Update(ctx context.Context, uid string, upd types.ProfileUpdate) (types.Profile, error)
}

type Modal interface {
	Open(ctx context.Context, req modal.Request) (*modal.Form, error)
	Submit(ctx context.Context, sub modal.Submission) (*modal.Result, error)
}

// Handler serves every route. Avatars and Hub are optional.
type Handler struct {
	Store    Store
	Profiles Profiles
	Modal    Modal
	State    *dashboard.State
	Avatars  modal.ImageUploader
	Hub      *websocket.Hub
	Upgrader gorilla.Upgrader

	Location        *time.Location
	AvatarMaxBytes  int64
	HotspotRadiusKM float64
	MapCenter       [2]float64
	Now             func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

func (h *Handler) loc() *time.Location {
	if h.Location == nil {
		return time.UTC
	}
	return h.Location
}

// respondError writes the toast text plus the underlying error.
func respondError(c *gin.Context, status int, msg string, err error) {
	body := gin.H{"error": msg, "notice": types.Failure(msg)}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(status, body)
}

var (
	errBadID   = errors.New("id must be a positive integer")
	errBadPage = errors.New("page must be an integer")
	errBadSort = errors.New("unknown sort key")
)

func paramID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

// parseIDList reads "1,2,3". Blank entries are skipped.
func parseIDList(s string) ([]int64, error) {
	ids := []int64{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, errBadID
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseDay reads YYYY-MM-DD in loc. Blank means today.
func parseDay(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		n := now.In(loc)
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc), nil
	}
	return time.ParseInLocation(time.DateOnly, s, loc)
}

func optionalDay(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// gridQuery reads the shared grid parameters and resets the page when the
// filters differ from the fingerprint the client last saw.
func gridQuery(c *gin.Context, defaultSort pipeline.SortKey, pageSize int) (pipeline.Query, error) {
	feeders, err := parseIDList(c.Query("feeders"))
	if err != nil {
		return pipeline.Query{}, err
	}
	from, err := optionalDay(c.Query("from"))
	if err != nil {
		return pipeline.Query{}, err
	}
	to, err := optionalDay(c.Query("to"))
	if err != nil {
		return pipeline.Query{}, err
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		return pipeline.Query{}, errBadPage
	}
	sort := pipeline.SortKey(c.DefaultQuery("sort", string(defaultSort)))
	if !sort.Valid() {
		return pipeline.Query{}, fmt.Errorf("%w: %q", errBadSort, sort)
	}

	q := pipeline.Query{
		Status:   c.Query("status"),
		Feeders:  feeders,
		Search:   c.Query("search"),
		From:     from,
		To:       to,
		Sort:     sort,
		Page:     page,
		PageSize: pageSize,
	}
	return q.ResetIfChanged(c.Query("fp")), nil
}

func (h *Handler) Health(c *gin.Context) {
	clients, seqs := 0, map[string]uint64{}
	if h.Hub != nil {
		clients, seqs = h.Hub.Stats()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"service":            "beacon-admin",
		"timestamp":          h.now().UTC().Format(time.RFC3339),
		"connected_clients":  clients,
		"last_broadcast_seq": seqs,
	})
}
