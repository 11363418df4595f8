package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"YOUTUBE_API_KEY", "YOUTUBE_CHANNEL_ID", "YOUTUBE_API_URL", "YOUTUBE_TIMEOUT",
		"PORT", "PAGINATION_MODE", "OVERLAP_POLICY", "SESSION_TTL", "ALLOWED_ORIGINS", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, PaginationAppend, cfg.PaginationMode)
	assert.Equal(t, OverlapAllow, cfg.OverlapPolicy)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Zero(t, cfg.YouTubeTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
}

// Missing credentials must not prevent startup; the remote call reports the failure.
func TestLoad_MissingCredentialsStillLoads(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
	assert.True(t, errors.Is(err, ErrMissingChannelID))
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("YOUTUBE_API_KEY", "K")
	t.Setenv("YOUTUBE_CHANNEL_ID", "C")
	t.Setenv("YOUTUBE_API_URL", "http://127.0.0.1:9999/")
	t.Setenv("YOUTUBE_TIMEOUT", "5s")
	t.Setenv("PORT", "9090")
	t.Setenv("PAGINATION_MODE", "replace-previous")
	t.Setenv("OVERLAP_POLICY", "reject")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "K", cfg.YouTubeAPIKey)
	assert.Equal(t, "C", cfg.YouTubeChannelID)
	assert.Equal(t, "http://127.0.0.1:9999/", cfg.YouTubeAPIURL)
	assert.Equal(t, 5*time.Second, cfg.YouTubeTimeout)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, PaginationReplacePrevious, cfg.PaginationMode)
	assert.Equal(t, OverlapReject, cfg.OverlapPolicy)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PAGINATION_MODE": "sideways",
		"OVERLAP_POLICY":  "queue",
		"SESSION_TTL":     "-1m",
		"YOUTUBE_TIMEOUT": "soon",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
