package routes

import (
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"beacon-admin/handlers"
	"beacon-admin/middleware"
)

// Options configures the router around the handler set.
type Options struct {
	ClientURL        string
	Verifier         middleware.TokenVerifier
	RecentAuthWindow time.Duration
}

func SetupRouter(h *handlers.Handler, opts Options) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS(opts.ClientURL))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// browsers cannot set headers on the upgrade, the token comes in ?token=
	r.GET("/ws/dashboard", middleware.Auth(opts.Verifier), h.DashboardSocket)

	api := r.Group("/api", middleware.Auth(opts.Verifier))
	// the PDF is already compressed
	api.GET("/dashboard/report.pdf", h.ReportPDF)

	zipped := api.Group("", gzip.Gzip(gzip.DefaultCompression))
	{
		zipped.GET("/dashboard/stats", h.DashboardStats)
		zipped.GET("/dashboard/recent", h.RecentAnnouncements)
		zipped.GET("/dashboard/charts", h.DashboardCharts)
		zipped.GET("/dashboard/heatmap", h.DashboardHeatmap)

		zipped.GET("/reports/feeders", h.FeederTiles)
		zipped.GET("/reports/feeders/:feederId/barangays", h.FeederBarangays)
		zipped.GET("/reports/barangays/:name", h.BarangayReports)
		zipped.GET("/outages", h.Outages)
		zipped.GET("/map/markers", h.MapMarkers)

		zipped.POST("/modal/open", h.OpenModal)
		zipped.POST("/modal/submit", h.SubmitModal)

		zipped.GET("/notifications", h.ListNotifications)
		zipped.GET("/notifications/unread", h.UnreadNotifications)
		zipped.PUT("/notifications/read", h.MarkNotificationsRead)

		zipped.GET("/profile", h.GetProfile)
		zipped.PUT("/profile", h.UpdateProfile)
		zipped.POST("/profile/avatar", h.UploadAvatar)

		zipped.GET("/settings/feeders", h.ListFeeders)
		zipped.GET("/settings/teams", h.ListTeams)
	}

	settings := zipped.Group("/settings", middleware.RecentAuth(opts.RecentAuthWindow, time.Now))
	{
		settings.POST("/feeders", h.SaveFeeder)
		settings.PUT("/feeders/:id", h.SaveFeeder)
		settings.DELETE("/feeders/:id", h.DeleteFeeder)

		settings.POST("/teams", h.SaveTeam)
		settings.PUT("/teams/:id", h.SaveTeam)
		settings.DELETE("/teams/:id", h.DeleteTeam)
	}

	return r
}
