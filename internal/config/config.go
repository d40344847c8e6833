package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config holds application configuration loaded from the environment
type Config struct {
	Port            string
	DBPath          string
	SheetCSVURL     string
	FetchTimeout    time.Duration
	RefreshInterval time.Duration
	Timezone        string // IANA name; raw sheet timestamps are interpreted here
	GeoCellLevel    int    // S2 level used to collapse map points
	RateLimit       int
	RateWindow      time.Duration
	DefaultPageSize int
}

// Load loads configuration from .env and the environment
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	return &Config{
		Port:            cast.ToString(coalesce("PORT", ":8080")),
		DBPath:          cast.ToString(coalesce("DB_PATH", "./data/visits.db")),
		SheetCSVURL:     cast.ToString(coalesce("SHEET_CSV_URL", "")),
		FetchTimeout:    duration("FETCH_TIMEOUT", 15*time.Second),
		RefreshInterval: duration("REFRESH_INTERVAL", 30*time.Second),
		Timezone:        cast.ToString(coalesce("TIMEZONE", "UTC")),
		GeoCellLevel:    cast.ToInt(coalesce("GEO_CELL_LEVEL", 13)),
		RateLimit:       cast.ToInt(coalesce("RATE_LIMIT", 120)),
		RateWindow:      duration("RATE_WINDOW", time.Minute),
		DefaultPageSize: cast.ToInt(coalesce("DEFAULT_PAGE_SIZE", 50)),
	}
}

// Location resolves the configured timezone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Invalid TIMEZONE %q, falling back to UTC: %v", c.Timezone, err)
		return time.UTC
	}
	return loc
}

func duration(key string, fallback time.Duration) time.Duration {
	raw := cast.ToString(coalesce(key, ""))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Invalid %s %q, using default %v: %v", key, raw, fallback, err)
		return fallback
	}
	return d
}

func coalesce(key string, value interface{}) interface{} {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return value
}
