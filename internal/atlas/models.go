package atlas

import (
	"encoding/json"
	"time"
)

// RawRecord is one row as read from a site list source, before any
// validation. Lat/Lon are only meaningful when HasCoords is set; sources
// leave it false for empty or unreadable coordinate cells.
type RawRecord struct {
	Site         string
	User         string
	ProvinceCode string
	Category     string
	Lat          float64
	Lon          float64
	HasCoords    bool
	Source       string
	Row          int
}

// SiteRecord is one accepted site after normalization.
type SiteRecord struct {
	ID       string  `json:"id"`
	Site     string  `json:"site"`
	User     string  `json:"user"`
	Province string  `json:"province"`
	Region   string  `json:"region"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Category float64 `json:"category"`
}

// Counts holds the site totals per province and per region. Every province
// and region in the scheme gets an entry, zero included, so the region total
// always equals the sum of its member provinces.
type Counts struct {
	ByProvince map[string]int `json:"byProvince"`
	ByRegion   map[string]int `json:"byRegion"`
	Accepted   int            `json:"accepted"`
	Excluded   int            `json:"excluded"`
}

// HeatPoint is one weighted heat sample. It marshals as the
// [lat, lon, weight] triple Leaflet.heat consumes.
type HeatPoint struct {
	Lat    float64
	Lon    float64
	Weight float64
}

// MarshalJSON renders the point as a plain coordinate triple.
func (h HeatPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{h.Lat, h.Lon, h.Weight})
}

// SiteBundle groups one province's sites with their heat samples. The map
// shows at most one bundle at a time.
type SiteBundle struct {
	Province string       `json:"province"`
	Region   string       `json:"region"`
	Sites    []SiteRecord `json:"sites"`
	Heat     []HeatPoint  `json:"heat"`
}

// GradientStop is one color stop of the heat gradient. Stops are kept as an
// ordered slice so the rendered gradient is stable run to run.
type GradientStop struct {
	At    float64 `json:"at"`
	Color string  `json:"color"`
}

// HeatOptions are the Leaflet.heat display settings.
type HeatOptions struct {
	Radius     int            `json:"radius"`
	Blur       int            `json:"blur"`
	MaxZoom    int            `json:"maxZoom"`
	MinOpacity float64        `json:"minOpacity"`
	Gradient   []GradientStop `json:"gradient"`
}

// DefaultHeatOptions returns the tuning the site maps ship with.
func DefaultHeatOptions() HeatOptions {
	return HeatOptions{
		Radius:     11,
		Blur:       10,
		MaxZoom:    6,
		MinOpacity: 0.4,
		Gradient: []GradientStop{
			{At: 0.2, Color: "green"},
			{At: 0.4, Color: "yellow"},
			{At: 0.6, Color: "orange"},
			{At: 1.0, Color: "red"},
		},
	}
}

// SourceContribution describes one source's share of a build.
type SourceContribution struct {
	SourceName string    `json:"source"`
	Records    int       `json:"records"`
	FetchedAt  time.Time `json:"fetchedAt"`
}

// Snapshot is one completed map build. HTML is the self-contained document;
// it is excluded from JSON because build listings only need the metadata.
type Snapshot struct {
	ID          string               `json:"id"`
	GeneratedAt time.Time            `json:"generatedAt"` // always UTC
	HTML        []byte               `json:"-"`
	HTMLBytes   int                  `json:"htmlBytes"`
	Counts      Counts               `json:"counts"`
	Bundles     []SiteBundle         `json:"-"`
	Sources     []SourceContribution `json:"sources,omitempty"`
}
