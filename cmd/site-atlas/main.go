package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	geojson "github.com/paulmach/go.geojson"

	httpapi "github.com/boreal-gis/site-atlas/internal/api/http"
	"github.com/boreal-gis/site-atlas/internal/atlas"
	"github.com/boreal-gis/site-atlas/internal/atlas/sources"
	"github.com/boreal-gis/site-atlas/internal/config"
	"github.com/boreal-gis/site-atlas/internal/geo"
	"github.com/boreal-gis/site-atlas/internal/render"
	"github.com/boreal-gis/site-atlas/internal/scheduler"
	"github.com/boreal-gis/site-atlas/internal/store"
)

// boundaryNameProperty is the feature property carrying the province name in
// the boundary GeoJSON.
const boundaryNameProperty = "name"

// buildTimeout bounds one full build, source fetches and geocoding included.
const buildTimeout = 2 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	scheme := geo.DefaultScheme()
	if cfg.SchemeFile != "" {
		scheme, err = geo.LoadScheme(cfg.SchemeFile)
		if err != nil {
			log.Fatalf("failed to load region scheme: %v", err)
		}
	}

	fc, err := loadBoundaries(cfg, httpClient)
	if err != nil {
		log.Fatalf("failed to load boundaries: %v", err)
	}
	provinces, err := geo.BuildProvinces(fc, scheme, boundaryNameProperty)
	if err != nil {
		log.Fatalf("failed to build provinces: %v", err)
	}
	regions := geo.Dissolve(provinces, scheme)
	if len(regions) == 0 {
		log.Fatalf("no regions could be dissolved from the boundary data")
	}

	normalizer := atlas.NewNormalizer(scheme, cfg.Users, cfg.Window)
	if cfg.SpatialJoin {
		normalizer = normalizer.WithSpatialIndex(geo.NewIndex(provinces))
	}

	columns := sources.DefaultColumns()
	if cfg.UserColumn != "" {
		columns.User = cfg.UserColumn
	}
	var srcs []atlas.Source
	if cfg.WorkbookPath != "" {
		srcs = append(srcs, sources.NewWorkbookSource(cfg.WorkbookPath, cfg.WorkbookSheet, columns))
	}
	if cfg.CSVPath != "" {
		srcs = append(srcs, sources.NewCSVSource(cfg.CSVPath, columns))
	}
	if cfg.RemoteURL != "" {
		srcs = append(srcs, sources.NewRemoteWorkbookSource(httpClient, cfg.RemoteURL, cfg.WorkbookSheet, columns))
	}

	renderer, err := render.New()
	if err != nil {
		log.Fatalf("failed to prepare renderer: %v", err)
	}

	// Geocoding is opt-in; without a key, rows missing coordinates are
	// excluded during normalization.
	var geocoder atlas.Geocoder
	if cfg.GeocoderAPIKey != "" {
		geocoder = atlas.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	}

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	service, err := atlas.NewService(atlas.ServiceConfig{
		Store:      memStore,
		Sources:    srcs,
		Renderer:   renderer,
		Geocoder:   geocoder,
		Normalizer: normalizer,
		Scheme:     scheme,
		Provinces:  provinces,
		Regions:    regions,
		Title:      cfg.Title,
		Zoom:       cfg.Zoom,
		Heat:       atlas.DefaultHeatOptions(),
	})
	if err != nil {
		log.Fatalf("failed to build service: %v", err)
	}

	if cfg.Mode == "build" {
		runBuild(cfg, service)
		return
	}
	runServe(cfg, service)
}

func loadBoundaries(cfg *config.AppConfig, client *http.Client) (*geojson.FeatureCollection, error) {
	if strings.HasPrefix(cfg.Boundaries, "http://") || strings.HasPrefix(cfg.Boundaries, "https://") {
		ctx, cancel := context.WithTimeout(context.Background(), buildTimeout)
		defer cancel()
		return sources.NewBoundaryFetcher(client, cfg.Boundaries).Fetch(ctx)
	}
	return sources.LoadBoundaryFile(cfg.Boundaries)
}

func runBuild(cfg *config.AppConfig, service *atlas.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), buildTimeout)
	defer cancel()

	snapshot, err := service.BuildAndStore(ctx)
	if err != nil {
		log.Fatalf("build failed: %v", err)
	}
	if err := os.WriteFile(cfg.OutputPath, snapshot.HTML, 0644); err != nil {
		log.Fatalf("failed to write %s: %v", cfg.OutputPath, err)
	}
	log.Printf("INFO: wrote %s (%d bytes, %d sites)", cfg.OutputPath, snapshot.HTMLBytes, snapshot.Counts.Accepted)
}

func runServe(cfg *config.AppConfig, service *atlas.Service) {
	// Initial build so the server has something to serve. Failure is not
	// fatal; the scheduler keeps retrying.
	ctx, cancel := context.WithTimeout(context.Background(), buildTimeout)
	if _, err := service.BuildAndStore(ctx); err != nil {
		log.Printf("initial build failed: %v", err)
	}
	cancel()

	// Scheduler that periodically rebuilds the map.
	sched := scheduler.New(cfg.RebuildInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "site-atlas",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		payload := fiber.Map{
			"status":  "ok",
			"service": "site-atlas",
		}
		if snapshot, err := service.Latest(); err == nil {
			payload["builtAt"] = snapshot.GeneratedAt
			payload["records"] = snapshot.Counts.Accepted
		}
		return c.JSON(payload)
	})

	// API routes.
	httpapi.RegisterRoutes(app, service)

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
