package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

var (
	// ErrMissingAPIKey is reported by Validate when YOUTUBE_API_KEY is empty
	ErrMissingAPIKey = errors.New("YouTube API key is required")
	// ErrMissingChannelID is reported by Validate when YOUTUBE_CHANNEL_ID is empty
	ErrMissingChannelID = errors.New("YouTube channel ID is required")
)

// PaginationMode selects how a page fetched with a cursor is merged into the view
type PaginationMode string

const (
	// PaginationAppend appends every cursor fetch, previous pages included
	PaginationAppend PaginationMode = "append"
	// PaginationReplacePrevious appends next pages and replaces on previous pages
	PaginationReplacePrevious PaginationMode = "replace-previous"
)

// OverlapPolicy selects what happens when a fetch starts while another is pending
type OverlapPolicy string

const (
	// OverlapAllow lets overlapping fetches race; the last one to finish wins
	OverlapAllow OverlapPolicy = "allow"
	// OverlapReject refuses a fetch while another one is in flight
	OverlapReject OverlapPolicy = "reject"
)

// Config holds the application configuration
type Config struct {
	YouTubeAPIKey    string
	YouTubeChannelID string
	YouTubeAPIURL    string
	YouTubeTimeout   time.Duration
	Port             string
	PaginationMode   PaginationMode
	OverlapPolicy    OverlapPolicy
	SessionTTL       time.Duration
	AllowedOrigins   []string
	LogLevel         string
}

// Load loads the configuration from environment variables.
// Missing credentials are not an error here; see Validate.
func Load() (*Config, error) {
	cfg := &Config{
		YouTubeAPIKey:    os.Getenv("YOUTUBE_API_KEY"),
		YouTubeChannelID: os.Getenv("YOUTUBE_CHANNEL_ID"),
		YouTubeAPIURL:    os.Getenv("YOUTUBE_API_URL"),
		Port:             envOr("PORT", "8080"),
		PaginationMode:   PaginationMode(envOr("PAGINATION_MODE", string(PaginationAppend))),
		OverlapPolicy:    OverlapPolicy(envOr("OVERLAP_POLICY", string(OverlapAllow))),
		AllowedOrigins:   splitList(envOr("ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:         envOr("LOG_LEVEL", "info"),
	}

	switch cfg.PaginationMode {
	case PaginationAppend, PaginationReplacePrevious:
	default:
		return nil, fmt.Errorf("invalid PAGINATION_MODE %q: must be %q or %q",
			cfg.PaginationMode, PaginationAppend, PaginationReplacePrevious)
	}

	switch cfg.OverlapPolicy {
	case OverlapAllow, OverlapReject:
	default:
		return nil, fmt.Errorf("invalid OVERLAP_POLICY %q: must be %q or %q",
			cfg.OverlapPolicy, OverlapAllow, OverlapReject)
	}

	var err error
	if cfg.YouTubeTimeout, err = durationEnv("YOUTUBE_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}

	return cfg, nil
}

// Validate checks that both credentials are present.
// The server still starts without them and the remote call fails instead.
func (c *Config) Validate() error {
	var errs []error
	if c.YouTubeAPIKey == "" {
		errs = append(errs, fmt.Errorf("%w: YOUTUBE_API_KEY environment variable is not set", ErrMissingAPIKey))
	}
	if c.YouTubeChannelID == "" {
		errs = append(errs, fmt.Errorf("%w: YOUTUBE_CHANNEL_ID environment variable is not set", ErrMissingChannelID))
	}
	return errors.Join(errs...)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
