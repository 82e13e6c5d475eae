package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the recognized environment variables from spec §6.
type Config struct {
	LLMAPIKey string
	SQLURL    string
	SQLKey    string

	Port          string
	CORSOrigins   []string
	SessionWindow int
	SessionTTL    time.Duration
	CatalogPath   string
}

// Load reads Config from the process environment, applying the spec's
// defaults and failing fast on missing required credentials.
func Load() (*Config, error) {
	cfg := &Config{
		LLMAPIKey:     os.Getenv("LLM_API_KEY"),
		SQLURL:        os.Getenv("SQL_URL"),
		SQLKey:        os.Getenv("SQL_KEY"),
		Port:          envOrDefault("PORT", "8000"),
		SessionWindow: 3,
		SessionTTL:    60 * time.Minute,
		CatalogPath:   envOrDefault("CATALOG_PATH", "catalog.ndjson"),
	}

	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("config: LLM_API_KEY is required")
	}
	if cfg.SQLURL == "" {
		return nil, fmt.Errorf("config: SQL_URL is required")
	}

	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}

	if raw := os.Getenv("SESSION_WINDOW"); raw != "" {
		w, err := strconv.Atoi(raw)
		if err != nil || w < 0 {
			return nil, fmt.Errorf("config: invalid SESSION_WINDOW %q", raw)
		}
		cfg.SessionWindow = w
	}

	if raw := os.Getenv("SESSION_TTL_MIN"); raw != "" {
		t, err := strconv.Atoi(raw)
		if err != nil || t <= 0 {
			return nil, fmt.Errorf("config: invalid SESSION_TTL_MIN %q", raw)
		}
		cfg.SessionTTL = time.Duration(t) * time.Minute
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
