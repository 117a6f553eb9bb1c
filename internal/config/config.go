// Package config loads application configuration from environment variables.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"
)

// Default origin allow-list for the external command channel.
var defaultAllowedOrigins = []string{
	"https://app.dialogbrain.com",
	"https://dialogbrain.com",
	"http://localhost:3000",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIBaseURL       string
	CookieDBPath     string
	DBPath           string
	InternalAddr     string
	ExternalAddr     string
	UserAgent        string
	DebounceQuiet    time.Duration
	FallbackInterval time.Duration
	AllowedOrigins   []string
	SecretKey        []byte // 32-byte AES-256 key; nil disables token storage
}

// Load reads configuration from environment variables and returns a validated
// Config. COOKIESYNC_API_BASE and COOKIESYNC_COOKIE_DB are required.
// COOKIESYNC_SECRET_KEY (base64, 32 bytes decoded) is optional; without it
// the daemon starts but cannot store an auth token, so every sync reports
// not_logged_in_to_extension until a key is configured.
// Optional variables with defaults: COOKIESYNC_DB_PATH (cookiesync.db),
// COOKIESYNC_INTERNAL_ADDR (127.0.0.1:8710), COOKIESYNC_EXTERNAL_ADDR
// (127.0.0.1:8711), COOKIESYNC_DEBOUNCE_QUIET (2s),
// COOKIESYNC_FALLBACK_INTERVAL (6h), COOKIESYNC_USER_AGENT,
// COOKIESYNC_ALLOWED_ORIGINS (comma-separated).
func Load() (*Config, error) {
	apiBase := os.Getenv("COOKIESYNC_API_BASE")
	if apiBase == "" {
		return nil, fmt.Errorf("COOKIESYNC_API_BASE is required")
	}
	apiBase = strings.TrimRight(apiBase, "/")

	cookieDB := os.Getenv("COOKIESYNC_COOKIE_DB")
	if cookieDB == "" {
		return nil, fmt.Errorf("COOKIESYNC_COOKIE_DB is required")
	}

	dbPath := "cookiesync.db"
	if v, ok := os.LookupEnv("COOKIESYNC_DB_PATH"); ok {
		dbPath = v
	}

	internalAddr := "127.0.0.1:8710"
	if v, ok := os.LookupEnv("COOKIESYNC_INTERNAL_ADDR"); ok {
		internalAddr = v
	}

	externalAddr := "127.0.0.1:8711"
	if v, ok := os.LookupEnv("COOKIESYNC_EXTERNAL_ADDR"); ok {
		externalAddr = v
	}

	userAgent := "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
	if v, ok := os.LookupEnv("COOKIESYNC_USER_AGENT"); ok {
		userAgent = v
	}

	debounceQuiet := 2 * time.Second
	if v, ok := os.LookupEnv("COOKIESYNC_DEBOUNCE_QUIET"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("COOKIESYNC_DEBOUNCE_QUIET has invalid duration %q", v)
		}
		debounceQuiet = parsed
	}

	fallbackInterval := 6 * time.Hour
	if v, ok := os.LookupEnv("COOKIESYNC_FALLBACK_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed < time.Second {
			return nil, fmt.Errorf("COOKIESYNC_FALLBACK_INTERVAL has invalid duration %q", v)
		}
		fallbackInterval = parsed
	}

	allowedOrigins := defaultAllowedOrigins
	if v, ok := os.LookupEnv("COOKIESYNC_ALLOWED_ORIGINS"); ok && v != "" {
		allowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
		if len(allowedOrigins) == 0 {
			return nil, fmt.Errorf("COOKIESYNC_ALLOWED_ORIGINS must contain at least one origin")
		}
	}

	var secretKey []byte
	if v, ok := os.LookupEnv("COOKIESYNC_SECRET_KEY"); ok && v != "" {
		decoded, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("COOKIESYNC_SECRET_KEY is not valid base64: %w", err)
		}
		if len(decoded) != 32 {
			return nil, fmt.Errorf("COOKIESYNC_SECRET_KEY must decode to 32 bytes, got %d", len(decoded))
		}
		secretKey = decoded
	}

	return &Config{
		APIBaseURL:       apiBase,
		CookieDBPath:     cookieDB,
		DBPath:           dbPath,
		InternalAddr:     internalAddr,
		ExternalAddr:     externalAddr,
		UserAgent:        userAgent,
		DebounceQuiet:    debounceQuiet,
		FallbackInterval: fallbackInterval,
		AllowedOrigins:   allowedOrigins,
		SecretKey:        secretKey,
	}, nil
}
