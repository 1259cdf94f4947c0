// Package config loads service settings from the environment with sane defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// HTTP server
	ListenAddr string

	// Content source settings
	NewsAPIKey      string
	NewsAPIBaseURL  string
	FeedsConfigPath string
	FetchTimeout    time.Duration
	FetchWorkers    int

	// Generation settings
	GeminiAPIKey     string
	GeminiModel      string
	SummarizeTimeout time.Duration
	MaxAIRequests    int // per day, 0 = unlimited

	// Curation settings
	SourcesConfigPath string
	TopN              int
	SourceCap         int
	AllowlistOnly     bool

	// Scraper settings
	ScrapeConcurrency int
	ScrapeMaxArticles int

	// Snapshot store
	SnapshotDir   string
	DatabaseURL   string // when set, Postgres is used instead of the file store
	MemoryTTL     time.Duration
	RetryAttempts int
	RetryDelay    time.Duration

	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:        ":8080",
		NewsAPIBaseURL:    "https://newsapi.org/v2/everything",
		FeedsConfigPath:   "configs/feeds.yaml",
		SourcesConfigPath: "configs/sources.yaml",
		FetchTimeout:      5 * time.Second,
		FetchWorkers:      4,
		GeminiModel:       "gemini-1.5-flash",
		SummarizeTimeout:  45 * time.Second,
		MaxAIRequests:     50,
		TopN:              10,
		SourceCap:         2,
		ScrapeConcurrency: 8,
		ScrapeMaxArticles: 10,
		SnapshotDir:       "data/snapshots",
		MemoryTTL:         5 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Second,
	}

	cfg.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.ListenAddr = getEnvOrDefault("LISTEN_ADDR", cfg.ListenAddr)
	cfg.NewsAPIBaseURL = getEnvOrDefault("NEWS_API_BASE_URL", cfg.NewsAPIBaseURL)
	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.SourcesConfigPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesConfigPath)
	cfg.SnapshotDir = getEnvOrDefault("SNAPSHOT_DIR", cfg.SnapshotDir)

	if m := os.Getenv("GEMINI_MODEL"); m != "" {
		cfg.GeminiModel = m
	}

	cfg.FetchWorkers = getEnvIntOrDefault("FETCH_WORKERS", cfg.FetchWorkers)
	cfg.MaxAIRequests = getEnvIntOrDefault("MAX_AI_REQUESTS", cfg.MaxAIRequests)
	cfg.TopN = getEnvIntOrDefault("TOP_N", cfg.TopN)
	cfg.SourceCap = getEnvIntOrDefault("SOURCE_CAP", cfg.SourceCap)
	cfg.ScrapeConcurrency = getEnvIntOrDefault("SCRAPE_CONCURRENCY", cfg.ScrapeConcurrency)
	cfg.ScrapeMaxArticles = getEnvIntOrDefault("SCRAPE_MAX_ARTICLES", cfg.ScrapeMaxArticles)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)

	if v := os.Getenv("FETCH_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.FetchTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("SUMMARIZE_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.SummarizeTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("RETRY_DELAY_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RetryDelay = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("MEMORY_TTL_MINUTES"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.MemoryTTL = time.Duration(val) * time.Minute
		}
	}

	if os.Getenv("ALLOWLIST_ONLY") == "true" {
		cfg.AllowlistOnly = true
	}
	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

// Validate checks structural settings. Missing API keys are not errors:
// the pipeline treats an absent key as "collaborator unavailable" and
// degrades instead of refusing to start.
func (c *Config) Validate() error {
	if c.TopN <= 0 {
		return fmt.Errorf("TOP_N must be positive")
	}
	if c.SourceCap <= 0 {
		return fmt.Errorf("SOURCE_CAP must be positive")
	}
	if c.FetchWorkers <= 0 {
		return fmt.Errorf("FETCH_WORKERS must be positive")
	}
	return nil
}
