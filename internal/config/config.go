package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/boreal-gis/site-atlas/internal/atlas"
)

var validate = validator.New()

type AppConfig struct {
	// Mode selects one-shot document generation or the HTTP server.
	Mode string `validate:"required,oneof=build serve"`

	// Build output for one-shot mode.
	OutputPath string `validate:"required"`
	Title      string

	// Site record sources. When none is configured the default workbook
	// path is used.
	WorkbookPath  string
	WorkbookSheet string
	CSVPath       string
	RemoteURL     string `validate:"omitempty,url"`

	// Boundaries is a GeoJSON file path or an http(s) URL.
	Boundaries string `validate:"required"`

	// SchemeFile optionally overrides the compiled-in region scheme.
	SchemeFile string

	// Normalization settings.
	Users       []string `validate:"required,min=1"`
	UserColumn  string
	Window      atlas.CoordWindow
	SpatialJoin bool

	Zoom int `validate:"gte=1,lte=19"`

	// RebuildInterval controls how often serve mode rebuilds the map.
	RebuildInterval time.Duration

	// In-memory store retention.
	StoreMaxHistory int           // max number of snapshots (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	// HTTPTimeout bounds outbound calls (remote exports, boundary fetch).
	HTTPTimeout time.Duration

	// GeocoderAPIKey enables coordinate fill-in for rows without lat/lon.
	GeocoderAPIKey string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Mode = strings.ToLower(getenvDefault("ATLAS_MODE", "build"))
	cfg.OutputPath = getenvDefault("ATLAS_OUTPUT", "site_heatmap.html")
	cfg.Title = getenvDefault("ATLAS_TITLE", "Site Heatmap")

	cfg.WorkbookPath = os.Getenv("ATLAS_WORKBOOK")
	cfg.WorkbookSheet = os.Getenv("ATLAS_SHEET")
	cfg.CSVPath = os.Getenv("ATLAS_CSV")
	cfg.RemoteURL = os.Getenv("ATLAS_REMOTE_URL")
	if cfg.WorkbookPath == "" && cfg.CSVPath == "" && cfg.RemoteURL == "" {
		// Default input is the site list export the tool is usually run
		// against.
		cfg.WorkbookPath = "10-20-2025_Site List.xlsx"
	}

	cfg.Boundaries = getenvDefault("ATLAS_BOUNDARIES", "ca.json")
	cfg.SchemeFile = os.Getenv("ATLAS_SCHEME_FILE")

	cfg.Users = splitList(getenvDefault("ATLAS_USERS", "DFO,Shared-DFO,SCH"))
	cfg.UserColumn = os.Getenv("ATLAS_USER_COLUMN")
	cfg.SpatialJoin = getenvBool("ATLAS_SPATIAL_JOIN", false)

	window := atlas.DefaultCoordWindow()
	cfg.Window = atlas.CoordWindow{
		MinLat: getenvFloat("ATLAS_MIN_LAT", window.MinLat),
		MaxLat: getenvFloat("ATLAS_MAX_LAT", window.MaxLat),
		MinLon: getenvFloat("ATLAS_MIN_LON", window.MinLon),
		MaxLon: getenvFloat("ATLAS_MAX_LON", window.MaxLon),
	}

	cfg.Zoom = getenvInt("ATLAS_ZOOM", 4)

	// Scheduler interval: default 15 minutes.
	intervalStr := getenvDefault("ATLAS_REBUILD_INTERVAL", "15m")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid ATLAS_REBUILD_INTERVAL: %w", err)
	}
	cfg.RebuildInterval = interval

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals

	maxAgeStr := getenvDefault("STORE_MAX_AGE", "24h")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	cfg.StoreMaxAge = maxAge

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.Port = getenvDefault("PORT", "8080")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Window.MinLat >= cfg.Window.MaxLat || cfg.Window.MinLon >= cfg.Window.MaxLon {
		return nil, fmt.Errorf("invalid coordinate window: min must be below max")
	}

	return cfg, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
