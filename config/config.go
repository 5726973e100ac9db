package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
)

// Config holds all configuration for the admin service.
type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	ClientURL string `env:"CLIENT_URL" envDefault:"*"`

	// Firebase
	FirebaseCredentials string `env:"FIREBASE_CREDENTIALS"` // base64 encoded service account JSON
	FirebaseProjectID   string `env:"FIREBASE_PROJECT_ID"`
	AnnouncementBucket  string `env:"ANNOUNCEMENT_IMAGES_BUCKET" envDefault:"announcements_images"`
	ProfilePicsBucket   string `env:"PROFILE_PICS_BUCKET" envDefault:"profile-pics"`

	// Optional integrations, disabled when empty
	MapsCredentials    string `env:"MAPS_CREDENTIALS"`
	BlueskyHandle      string `env:"BLUESKY_HANDLE"`
	BlueskyAppPassword string `env:"BLUESKY_APP_PASSWORD"`
	BlueskyHost        string `env:"BLUESKY_HOST" envDefault:"https://bsky.social"`

	RefreshSchedule string `env:"REFRESH_SCHEDULE" envDefault:"@every 30s"`
	// Settings writes require a sign-in this recent.
	RecentAuthWindow time.Duration `env:"RECENT_AUTH_WINDOW" envDefault:"5m"`

	MapCenterLat    float64 `env:"MAP_CENTER_LAT" envDefault:"16.4023"`
	MapCenterLng    float64 `env:"MAP_CENTER_LNG" envDefault:"120.5960"`
	HotspotRadiusKM float64 `env:"HOTSPOT_RADIUS_KM" envDefault:"0.5"`

	AvatarMaxMB int `env:"AVATAR_MAX_MB" envDefault:"5"`

	Timezone string `env:"TIMEZONE" envDefault:"Asia/Manila"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config. A malformed value is an error.
func Load() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) BlueskyEnabled() bool {
	return c.BlueskyHandle != "" && c.BlueskyAppPassword != ""
}
