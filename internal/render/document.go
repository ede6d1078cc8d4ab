// Package render produces the self-contained drill-down map document. The
// page it emits carries no navigation logic of its own: every click looks up
// a precomputed effect list and replays it, so the map on screen always
// matches what the planner decided at build time.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"

	geojson "github.com/paulmach/go.geojson"

	"github.com/boreal-gis/site-atlas/internal/atlas"
	"github.com/boreal-gis/site-atlas/internal/drilldown"
)

const backLabel = "⬅ Back to Regions"

// Renderer executes the document template against a map view.
type Renderer struct {
	tmpl *template.Template
}

// New parses the document template once for reuse across builds.
func New() (*Renderer, error) {
	tmpl, err := template.New("atlas").Funcs(template.FuncMap{
		"toJSON": toJSON,
	}).Parse(documentTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse map template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render produces the finished HTML document for one build.
func (r *Renderer) Render(view atlas.MapView) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, buildViewData(view)); err != nil {
		return nil, fmt.Errorf("execute map template: %w", err)
	}
	return buf.Bytes(), nil
}

func toJSON(v interface{}) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}

// badge is one circular count marker.
type badge struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Color string  `json:"color"`
}

// bundle is one province's site overlay payload.
type bundle struct {
	Province string             `json:"province"`
	Sites    []atlas.SiteRecord `json:"sites"`
	Heat     []atlas.HeatPoint  `json:"heat"`
}

// heatJSON matches the option names Leaflet.heat reads.
type heatJSON struct {
	Radius     int               `json:"radius"`
	Blur       int               `json:"blur"`
	MaxZoom    int               `json:"maxZoom"`
	MinOpacity float64           `json:"minOpacity"`
	Gradient   map[string]string `json:"gradient"`
}

type viewData struct {
	Title          string
	BackLabel      string
	GeneratedAt    string
	Center         [2]float64
	Zoom           int
	Regions        *geojson.FeatureCollection
	Provinces      *geojson.FeatureCollection
	RegionBadges   []badge
	ProvinceBadges map[string][]badge
	Bundles        []bundle
	Plan           map[string][]drilldown.Effect
	Heat           heatJSON
}

func buildViewData(view atlas.MapView) viewData {
	regionsFC := geojson.NewFeatureCollection()
	colorByRegion := make(map[string]string, len(view.Regions))
	regionBadges := make([]badge, 0, len(view.Regions))
	for _, r := range view.Regions {
		regionsFC.AddFeature(r.GeoJSON())
		colorByRegion[r.Name] = r.Color
		// Regions without sites still get their badge, count 0.
		regionBadges = append(regionBadges, badge{
			Name:  r.Name,
			Count: view.Counts.ByRegion[r.Name],
			Lat:   r.Centroid.Lat,
			Lon:   r.Centroid.Lon,
			Color: r.Color,
		})
	}

	provincesFC := geojson.NewFeatureCollection()
	provinceBadges := make(map[string][]badge, len(view.Regions))
	for _, p := range view.Provinces {
		provincesFC.AddFeature(p.GeoJSON())
		provinceBadges[p.Region] = append(provinceBadges[p.Region], badge{
			Name:  p.Name,
			Count: view.Counts.ByProvince[p.Name],
			Lat:   p.Centroid.Lat,
			Lon:   p.Centroid.Lon,
			Color: colorByRegion[p.Region],
		})
	}

	bundles := make([]bundle, 0, len(view.Bundles))
	for _, b := range view.Bundles {
		bundles = append(bundles, bundle{Province: b.Province, Sites: b.Sites, Heat: b.Heat})
	}

	plan := make(map[string][]drilldown.Effect, len(view.Plan))
	for _, t := range view.Plan {
		plan[t.Event.Key()] = t.Effects
	}

	gradient := make(map[string]string, len(view.Heat.Gradient))
	for _, stop := range view.Heat.Gradient {
		gradient[strconv.FormatFloat(stop.At, 'g', -1, 64)] = stop.Color
	}

	return viewData{
		Title:          view.Title,
		BackLabel:      backLabel,
		GeneratedAt:    view.GeneratedAt.Format("Jan 2, 2006 15:04 UTC"),
		Center:         [2]float64{view.Center.Lat, view.Center.Lon},
		Zoom:           view.Zoom,
		Regions:        regionsFC,
		Provinces:      provincesFC,
		RegionBadges:   regionBadges,
		ProvinceBadges: provinceBadges,
		Bundles:        bundles,
		Plan:           plan,
		Heat: heatJSON{
			Radius:     view.Heat.Radius,
			Blur:       view.Heat.Blur,
			MaxZoom:    view.Heat.MaxZoom,
			MinOpacity: view.Heat.MinOpacity,
			Gradient:   gradient,
		},
	}
}
