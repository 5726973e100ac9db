package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/joho/godotenv"

	"beacon-admin/config"
	"beacon-admin/cronjobs"
	"beacon-admin/dashboard"
	"beacon-admin/db"
	"beacon-admin/geocode"
	"beacon-admin/handlers"
	"beacon-admin/metrics"
	"beacon-admin/modal"
	"beacon-admin/publish"
	"beacon-admin/routes"
	"beacon-admin/websocket"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Warn("no .env file, using the environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	metrics.Register()
	loc := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init firestore
	app, firestoreClient, err := db.InitFirebase(ctx, cfg.FirebaseCredentials, cfg.FirebaseProjectID)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize Firebase")
	}
	defer db.CloseFirestore()
	store := db.NewStore(firestoreClient)

	announcementImages, err := db.NewImageStore(ctx, app, cfg.AnnouncementBucket)
	if err != nil {
		log.WithError(err).Fatal("failed to open announcement image bucket")
	}
	avatars, err := db.NewImageStore(ctx, app, cfg.ProfilePicsBucket)
	if err != nil {
		log.WithError(err).Fatal("failed to open profile picture bucket")
	}
	profiles, authClient, err := db.NewProfiles(ctx, app)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize Firebase Auth")
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)
	state := dashboard.New(store, hub)

	builder := modal.NewBuilder(store, announcementImages)
	builder.Refresh = state.RefreshAfterSubmit
	if cfg.MapsCredentials != "" {
		mapsClient, err := geocode.InitMapsClient(cfg.MapsCredentials)
		if err != nil {
			log.WithError(err).Warn("geocoding disabled")
		} else {
			builder.Geocoder = geocode.New(mapsClient, "ph")
		}
	}
	if cfg.BlueskyEnabled() {
		builder.Publisher = publish.NewBluesky(cfg.BlueskyHost, cfg.BlueskyHandle, cfg.BlueskyAppPassword, loc)
		log.WithField("handle", cfg.BlueskyHandle).Info("publishing new announcements to Bluesky")
	}

	// Initialize cron jobs
	c, err := cronjobs.InitCronJobs(cfg.RefreshSchedule, state)
	if err != nil {
		log.WithError(err).Fatal("failed to schedule view refresh")
	}
	defer c.Stop()

	h := &handlers.Handler{
		Store:           store,
		Profiles:        profiles,
		Modal:           builder,
		State:           state,
		Avatars:         avatars,
		Hub:             hub,
		Upgrader:        websocket.Upgrader(cfg.ClientURL),
		Location:        loc,
		AvatarMaxBytes:  int64(cfg.AvatarMaxMB) << 20,
		HotspotRadiusKM: cfg.HotspotRadiusKM,
		MapCenter:       [2]float64{cfg.MapCenterLat, cfg.MapCenterLng},
	}
	r := routes.SetupRouter(h, routes.Options{
		ClientURL:        cfg.ClientURL,
		Verifier:         authClient,
		RecentAuthWindow: cfg.RecentAuthWindow,
	})

	go func() {
		if err := r.Run(":" + cfg.Port); err != nil {
			log.WithError(err).Fatal("failed to start server")
		}
	}()
	log.WithField("port", cfg.Port).Info("beacon admin started")

	<-ctx.Done()
	log.Info("shutting down")
}
