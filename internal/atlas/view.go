package atlas

import (
	"time"

	"github.com/boreal-gis/site-atlas/internal/drilldown"
	"github.com/boreal-gis/site-atlas/internal/geo"
)

// MapView is the complete input a renderer needs to produce the interactive
// document: boundaries, site bundles, counts, heat tuning, and the
// precomputed drill-down plan.
type MapView struct {
	Title       string
	Center      geo.Coordinate
	Zoom        int
	Provinces   []geo.Province
	Regions     []geo.Region
	Bundles     []SiteBundle
	Counts      Counts
	Heat        HeatOptions
	Plan        []drilldown.Transition
	GeneratedAt time.Time
}
