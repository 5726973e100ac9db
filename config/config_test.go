package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	unset(t, "PORT", "CLIENT_URL", "REFRESH_SCHEDULE", "RECENT_AUTH_WINDOW", "MAP_CENTER_LAT",
		"TIMEZONE", "AVATAR_MAX_MB", "ANNOUNCEMENT_IMAGES_BUCKET", "PROFILE_PICS_BUCKET",
		"BLUESKY_HANDLE", "BLUESKY_APP_PASSWORD")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "*", cfg.ClientURL)
	assert.Equal(t, "@every 30s", cfg.RefreshSchedule)
	assert.Equal(t, 5*time.Minute, cfg.RecentAuthWindow)
	assert.Equal(t, "announcements_images", cfg.AnnouncementBucket)
	assert.Equal(t, "profile-pics", cfg.ProfilePicsBucket)
	assert.InDelta(t, 16.4023, cfg.MapCenterLat, 1e-9)
	assert.Equal(t, 5, cfg.AvatarMaxMB)
	assert.Equal(t, "Asia/Manila", cfg.Location().String())
	assert.False(t, cfg.BlueskyEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RECENT_AUTH_WINDOW", "90s")
	t.Setenv("AVATAR_MAX_MB", "2")
	t.Setenv("MAP_CENTER_LNG", "121.5")
	t.Setenv("BLUESKY_HANDLE", "beacon.bsky.social")
	t.Setenv("BLUESKY_APP_PASSWORD", "xxxx")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.RecentAuthWindow)
	assert.Equal(t, 2, cfg.AvatarMaxMB)
	assert.InDelta(t, 121.5, cfg.MapCenterLng, 1e-9)
	assert.True(t, cfg.BlueskyEnabled())
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"AVATAR_MAX_MB", "not-a-number"},
		{"RECENT_AUTH_WINDOW", "soon"},
		{"MAP_CENTER_LAT", "north"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus"}
	assert.Equal(t, time.UTC, cfg.Location())
}
