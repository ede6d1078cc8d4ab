package atlas

import (
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/boreal-gis/site-atlas/internal/common"
	"github.com/boreal-gis/site-atlas/internal/geo"
)

// Exclusion reasons reported in NormalizeStats.
const (
	ReasonUser            = "user"
	ReasonMissingCoords   = "missing-coords"
	ReasonOutOfWindow     = "out-of-window"
	ReasonUnknownProvince = "unknown-province"
)

// CoordWindow bounds the coordinate range a record may fall in. Anything
// outside is treated as a data error, not a site.
type CoordWindow struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// DefaultCoordWindow covers mainland Canada.
func DefaultCoordWindow() CoordWindow {
	return CoordWindow{MinLat: 41.7, MaxLat: 83.1, MinLon: -141.0, MaxLon: -52.6}
}

// Contains reports whether the point lies inside the window, borders
// included.
func (w CoordWindow) Contains(lat, lon float64) bool {
	return lat >= w.MinLat && lat <= w.MaxLat && lon >= w.MinLon && lon <= w.MaxLon
}

// NormalizeStats summarizes one normalization pass.
type NormalizeStats struct {
	Accepted int
	Excluded int
	Reasons  map[string]int
}

// Normalizer turns raw source rows into accepted site records. The filters
// run in a fixed order: user allowlist, coordinate presence, coordinate
// window, then province resolution. A record failing any filter is excluded
// and counted under the first reason that applied.
type Normalizer struct {
	scheme     *geo.RegionScheme
	validUsers map[string]struct{}
	window     CoordWindow
	spatial    *geo.Index
}

// NewNormalizer builds a normalizer for the given scheme, user allowlist and
// coordinate window.
func NewNormalizer(scheme *geo.RegionScheme, users []string, window CoordWindow) *Normalizer {
	allow := make(map[string]struct{}, len(users))
	for _, u := range users {
		allow[strings.TrimSpace(u)] = struct{}{}
	}
	return &Normalizer{
		scheme:     scheme,
		validUsers: allow,
		window:     window,
	}
}

// WithSpatialIndex enables a point-in-polygon fallback: records whose
// province code cannot be resolved are assigned to the province containing
// their coordinates instead of being excluded.
func (n *Normalizer) WithSpatialIndex(ix *geo.Index) *Normalizer {
	n.spatial = ix
	return n
}

// Normalize filters and resolves the raw rows. Category values are coerced
// to numbers the way the site exports are read: unparseable cells become 0.
func (n *Normalizer) Normalize(raws []RawRecord) ([]SiteRecord, NormalizeStats) {
	stats := NormalizeStats{Reasons: make(map[string]int)}
	exclude := func(reason string) {
		stats.Excluded++
		stats.Reasons[reason]++
	}

	records := make([]SiteRecord, 0, len(raws))
	for _, raw := range raws {
		user := strings.TrimSpace(raw.User)
		if _, ok := n.validUsers[user]; !ok {
			exclude(ReasonUser)
			continue
		}
		if !raw.HasCoords {
			exclude(ReasonMissingCoords)
			continue
		}
		if !n.window.Contains(raw.Lat, raw.Lon) {
			exclude(ReasonOutOfWindow)
			continue
		}

		name, ok := n.scheme.NameForCode(raw.ProvinceCode)
		if !ok && n.spatial != nil {
			name, ok = n.spatial.Locate(raw.Lat, raw.Lon)
		}
		if !ok {
			log.Printf("normalize: unknown province %q (row %d from %s)", raw.ProvinceCode, raw.Row, raw.Source)
			exclude(ReasonUnknownProvince)
			continue
		}
		region, ok := n.scheme.RegionForName(name)
		if !ok {
			log.Printf("normalize: province %q has no region (row %d from %s)", name, raw.Row, raw.Source)
			exclude(ReasonUnknownProvince)
			continue
		}

		records = append(records, SiteRecord{
			ID:       uuid.NewString(),
			Site:     strings.TrimSpace(raw.Site),
			User:     user,
			Province: name,
			Region:   region,
			Lat:      raw.Lat,
			Lon:      raw.Lon,
			Category: common.ParseNumeric(raw.Category),
		})
	}

	stats.Accepted = len(records)
	return records, stats
}
