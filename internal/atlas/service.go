package atlas

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	geojson "github.com/paulmach/go.geojson"

	"github.com/boreal-gis/site-atlas/internal/drilldown"
	"github.com/boreal-gis/site-atlas/internal/geo"
)

// ServiceConfig wires a Service together. Geocoder is optional; everything
// else is required.
type ServiceConfig struct {
	Store      Store
	Sources    []Source
	Renderer   Renderer
	Geocoder   Geocoder
	Normalizer *Normalizer
	Scheme     *geo.RegionScheme
	Provinces  []geo.Province
	Regions    []geo.Region
	Title      string
	Zoom       int
	Heat       HeatOptions
}

// Service orchestrates one map build: fetch the site lists, normalize and
// aggregate them, plan the drill-down, render the document, and persist the
// snapshot.
type Service struct {
	store      Store
	sources    []Source
	renderer   Renderer
	geocoder   Geocoder
	normalizer *Normalizer
	scheme     *geo.RegionScheme
	provinces  []geo.Province
	regions    []geo.Region
	title      string
	zoom       int
	heat       HeatOptions
	homeCenter geo.Coordinate
}

// NewService creates a new Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	switch {
	case cfg.Store == nil:
		return nil, fmt.Errorf("store is required")
	case cfg.Renderer == nil:
		return nil, fmt.Errorf("renderer is required")
	case cfg.Normalizer == nil:
		return nil, fmt.Errorf("normalizer is required")
	case cfg.Scheme == nil:
		return nil, fmt.Errorf("region scheme is required")
	case len(cfg.Regions) == 0:
		return nil, fmt.Errorf("at least one dissolved region is required")
	}

	// When a build accepts no sites at all, the map falls back to the
	// center of the dissolved regions.
	var b geo.BBox
	for _, r := range cfg.Regions {
		b = b.Extend(r.Bounds.SouthWest)
		b = b.Extend(r.Bounds.NorthEast)
	}
	home := geo.Coordinate{
		Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
		Lon: (b.SouthWest.Lon + b.NorthEast.Lon) / 2,
	}

	return &Service{
		store:      cfg.Store,
		sources:    cfg.Sources,
		renderer:   cfg.Renderer,
		geocoder:   cfg.Geocoder,
		normalizer: cfg.Normalizer,
		scheme:     cfg.Scheme,
		provinces:  cfg.Provinces,
		regions:    cfg.Regions,
		title:      cfg.Title,
		zoom:       cfg.Zoom,
		heat:       cfg.Heat,
		homeCenter: home,
	}, nil
}

// BuildAndStore fetches from all sources concurrently, builds the map, and
// stores the finished snapshot. Individual source failures are logged and
// tolerated; the build only fails when every source fails.
func (s *Service) BuildAndStore(ctx context.Context) (Snapshot, error) {
	log.Printf("DEBUG: BuildAndStore called with %d sources", len(s.sources))
	if len(s.sources) == 0 {
		log.Printf("ERROR: No sources available to build the site map")
		return Snapshot{}, fmt.Errorf("no site sources configured")
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		raws     []RawRecord
		contribs []SourceContribution
	)

	for _, src := range s.sources {
		src := src
		wg.Add(1)
		go func() {
			defer wg.Done()

			rows, err := src.Fetch(ctx)
			if err != nil {
				// Log and continue; we want partial success when possible.
				log.Printf("source %s fetch failed: %v", src.Name(), err)
				return
			}

			mu.Lock()
			raws = append(raws, rows...)
			contribs = append(contribs, SourceContribution{
				SourceName: src.Name(),
				Records:    len(rows),
				FetchedAt:  time.Now().UTC(),
			})
			mu.Unlock()
		}()
	}

	wg.Wait()

	if len(contribs) == 0 {
		// Do not overwrite the last good snapshot with an empty build.
		return Snapshot{}, fmt.Errorf("every site source failed")
	}
	sort.Slice(contribs, func(i, j int) bool { return contribs[i].SourceName < contribs[j].SourceName })

	if s.geocoder != nil {
		s.fillMissingCoords(ctx, raws)
	}

	records, stats := s.normalizer.Normalize(raws)
	log.Printf("INFO: accepted %d of %d records, exclusions: %v", stats.Accepted, len(raws), stats.Reasons)

	counts := CountSites(records, s.scheme, stats.Excluded)
	bundles := BundleSites(records)
	center := MeanCenter(records, s.homeCenter)

	planner, err := drilldown.NewPlanner(s.regions, s.provinces, center, s.zoom)
	if err != nil {
		return Snapshot{}, fmt.Errorf("plan drill-down: %w", err)
	}

	view := MapView{
		Title:       s.title,
		Center:      center,
		Zoom:        s.zoom,
		Provinces:   s.provinces,
		Regions:     s.regions,
		Bundles:     bundles,
		Counts:      counts,
		Heat:        s.heat,
		Plan:        planner.Plan(),
		GeneratedAt: time.Now().UTC(),
	}

	html, err := s.renderer.Render(view)
	if err != nil {
		return Snapshot{}, fmt.Errorf("render map: %w", err)
	}

	snapshot := Snapshot{
		ID:          uuid.NewString(),
		GeneratedAt: view.GeneratedAt,
		HTML:        html,
		HTMLBytes:   len(html),
		Counts:      counts,
		Bundles:     bundles,
		Sources:     contribs,
	}
	s.store.SaveSnapshot(snapshot)
	return snapshot, nil
}

// fillMissingCoords geocodes rows whose coordinate cells were empty. Rows
// that still cannot be located are left for the normalizer to exclude.
func (s *Service) fillMissingCoords(ctx context.Context, raws []RawRecord) {
	for i := range raws {
		if raws[i].HasCoords {
			continue
		}
		province := raws[i].ProvinceCode
		if name, ok := s.scheme.NameForCode(province); ok {
			province = name
		}
		lat, lon, err := s.geocoder.Locate(ctx, raws[i].Site, province)
		if err != nil {
			log.Printf("geocode failed for %q (row %d from %s): %v", raws[i].Site, raws[i].Row, raws[i].Source, err)
			continue
		}
		raws[i].Lat, raws[i].Lon, raws[i].HasCoords = lat, lon, true
	}
}

// ErrUnknownRegion is returned when a counts filter names a region outside
// the dissolved set.
var ErrUnknownRegion = errors.New("unknown region")

// Latest delegates to the underlying store.
func (s *Service) Latest() (Snapshot, error) {
	return s.store.Latest()
}

// CountsFor returns the latest snapshot, optionally with its counts narrowed
// to one region and that region's member provinces.
func (s *Service) CountsFor(region string) (Snapshot, error) {
	snapshot, err := s.store.Latest()
	if err != nil {
		return Snapshot{}, err
	}
	if region == "" {
		return snapshot, nil
	}

	var members []string
	for _, r := range s.regions {
		if r.Name == region {
			members = r.Provinces
			break
		}
	}
	if members == nil {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}

	filtered := Counts{
		ByProvince: make(map[string]int, len(members)),
		ByRegion:   map[string]int{region: snapshot.Counts.ByRegion[region]},
		Accepted:   snapshot.Counts.Accepted,
		Excluded:   snapshot.Counts.Excluded,
	}
	for _, name := range members {
		filtered.ByProvince[name] = snapshot.Counts.ByProvince[name]
	}
	snapshot.Counts = filtered
	return snapshot, nil
}

// Builds delegates to the underlying store.
func (s *Service) Builds(from, to time.Time) ([]Snapshot, error) {
	return s.store.Range(from, to)
}

// HeatFor returns the latest build's heat samples for one province. A
// province with no sites yields an empty slice.
func (s *Service) HeatFor(province string) ([]HeatPoint, error) {
	snapshot, err := s.store.Latest()
	if err != nil {
		return nil, err
	}
	for _, b := range snapshot.Bundles {
		if b.Province == province {
			return b.Heat, nil
		}
	}
	return []HeatPoint{}, nil
}

// Boundaries returns the loaded geometry at the requested level as a
// GeoJSON feature collection.
func (s *Service) Boundaries(level string) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	switch level {
	case "province":
		for _, p := range s.provinces {
			fc.AddFeature(p.GeoJSON())
		}
	case "region":
		for _, r := range s.regions {
			fc.AddFeature(r.GeoJSON())
		}
	default:
		return nil, fmt.Errorf("unknown boundary level %q", level)
	}
	return fc, nil
}
