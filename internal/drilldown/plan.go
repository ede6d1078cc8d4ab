package drilldown

import (
	"encoding/json"
	"fmt"

	"github.com/boreal-gis/site-atlas/internal/geo"
	"github.com/boreal-gis/site-atlas/internal/layers"
)

// EffectOp enumerates the operations a transition applies to the map.
type EffectOp int

const (
	OpHide EffectOp = iota
	OpShow
	OpStyleBoundaries
	OpFitBounds
	OpSetView
)

func (op EffectOp) String() string {
	switch op {
	case OpHide:
		return "hide"
	case OpShow:
		return "show"
	case OpStyleBoundaries:
		return "style-boundaries"
	case OpFitBounds:
		return "fit-bounds"
	case OpSetView:
		return "set-view"
	default:
		return "unknown"
	}
}

// Effect is one operation on the map. Which fields are meaningful depends on
// Op: Layer for show/hide, Region for boundary styling (empty means no region
// is active), Bounds for fit-bounds, Center and Zoom for set-view.
type Effect struct {
	Op     EffectOp
	Layer  layers.ID
	Region string
	Bounds geo.BBox
	Center geo.Coordinate
	Zoom   int
}

// MarshalJSON renders the effect in the compact form the page interpreter
// reads. Bounds and center come out as [lat, lon] pairs, which Leaflet
// accepts directly.
func (e Effect) MarshalJSON() ([]byte, error) {
	out := struct {
		Op     string         `json:"op"`
		Layer  string         `json:"layer,omitempty"`
		Region string         `json:"region,omitempty"`
		Bounds *[2][2]float64 `json:"bounds,omitempty"`
		Center *[2]float64    `json:"center,omitempty"`
		Zoom   int            `json:"zoom,omitempty"`
	}{
		Op:     e.Op.String(),
		Layer:  string(e.Layer),
		Region: e.Region,
		Zoom:   e.Zoom,
	}
	switch e.Op {
	case OpFitBounds:
		out.Bounds = &[2][2]float64{
			{e.Bounds.SouthWest.Lat, e.Bounds.SouthWest.Lon},
			{e.Bounds.NorthEast.Lat, e.Bounds.NorthEast.Lon},
		}
	case OpSetView:
		out.Center = &[2]float64{e.Center.Lat, e.Center.Lon}
	}
	return json.Marshal(out)
}

// Transition pairs an event with its destination state and the effects that
// realize it.
type Transition struct {
	Event   Event
	State   State
	Effects []Effect
}

// Planner precomputes the effect list for every reachable state. It keeps a
// layer registry so the set of overlays it toggles always matches the set the
// renderer emits.
type Planner struct {
	registry     *layers.Registry
	regions      []geo.Region
	provinces    []geo.Province
	home         geo.Coordinate
	zoom         int
	regionBounds map[string]geo.BBox
	provBounds   map[string]geo.BBox
	provRegion   map[string]string
}

// NewPlanner builds a planner over the dissolved regions and their
// provinces. Every province must belong to one of the given regions.
func NewPlanner(regions []geo.Region, provinces []geo.Province, home geo.Coordinate, zoom int) (*Planner, error) {
	p := &Planner{
		registry:     layers.NewRegistry(),
		regions:      regions,
		provinces:    provinces,
		home:         home,
		zoom:         zoom,
		regionBounds: make(map[string]geo.BBox, len(regions)),
		provBounds:   make(map[string]geo.BBox, len(provinces)),
		provRegion:   make(map[string]string, len(provinces)),
	}

	// Region counts are the root view's default overlay.
	if err := p.registry.Register(layers.RegionCounts, "region counts", true); err != nil {
		return nil, err
	}
	for _, r := range regions {
		id := layers.ProvinceCountsID(r.Name)
		if err := p.registry.Register(id, r.Name, false); err != nil {
			return nil, err
		}
		if err := p.registry.AddToGroup(layers.ProvinceCounts, id); err != nil {
			return nil, err
		}
		p.regionBounds[r.Name] = r.Bounds
	}
	for _, pr := range provinces {
		if _, ok := p.regionBounds[pr.Region]; !ok {
			return nil, fmt.Errorf("province %q belongs to unknown region %q", pr.Name, pr.Region)
		}
		id := layers.SitesID(pr.Name)
		if err := p.registry.Register(id, pr.Name, false); err != nil {
			return nil, err
		}
		if err := p.registry.AddToGroup(layers.Sites, id); err != nil {
			return nil, err
		}
		p.provBounds[pr.Name] = pr.Bounds
		p.provRegion[pr.Name] = pr.Region
	}
	return p, nil
}

// Registry exposes the planner's layer registry, chiefly for tests and for
// renderers that need the group memberships.
func (p *Planner) Registry() *layers.Registry {
	return p.registry
}

// EffectsFor returns the complete overlay configuration for a target state.
// The list depends only on the state, not on what was visible before, so
// applying it from any starting point converges on the same map. Hides are
// emitted before shows so exclusive overlays never overlap while the list is
// being applied.
func (p *Planner) EffectsFor(s State) []Effect {
	var wantCounts, wantSites layers.ID
	switch s.Level {
	case LevelRegion:
		wantCounts = layers.ProvinceCountsID(s.Region)
	case LevelProvince:
		wantCounts = layers.ProvinceCountsID(s.Region)
		wantSites = layers.SitesID(s.Province)
	}

	var fx []Effect
	if s.Level == LevelRoot {
		p.registry.Show(layers.RegionCounts)
	} else {
		p.registry.Hide(layers.RegionCounts)
		fx = append(fx, Effect{Op: OpHide, Layer: layers.RegionCounts})
	}
	p.registry.ShowExclusive(layers.ProvinceCounts, wantCounts)
	for _, id := range p.registry.GroupMembers(layers.ProvinceCounts) {
		if id != wantCounts {
			fx = append(fx, Effect{Op: OpHide, Layer: id})
		}
	}
	p.registry.ShowExclusive(layers.Sites, wantSites)
	for _, id := range p.registry.GroupMembers(layers.Sites) {
		if id != wantSites {
			fx = append(fx, Effect{Op: OpHide, Layer: id})
		}
	}

	if s.Level == LevelRoot {
		fx = append(fx, Effect{Op: OpShow, Layer: layers.RegionCounts})
	}
	if wantCounts != "" {
		fx = append(fx, Effect{Op: OpShow, Layer: wantCounts})
	}
	if wantSites != "" {
		fx = append(fx, Effect{Op: OpShow, Layer: wantSites})
	}

	fx = append(fx, Effect{Op: OpStyleBoundaries, Region: s.Region})

	switch s.Level {
	case LevelRoot:
		fx = append(fx, Effect{Op: OpSetView, Center: p.home, Zoom: p.zoom})
	case LevelRegion:
		fx = append(fx, Effect{Op: OpFitBounds, Bounds: p.regionBounds[s.Region]})
	case LevelProvince:
		fx = append(fx, Effect{Op: OpFitBounds, Bounds: p.provBounds[s.Province]})
	}
	return fx
}

// Plan enumerates every event the map can raise: back, one click per region,
// one click per province. The rendered page looks effects up by event key and
// never recomputes them.
func (p *Planner) Plan() []Transition {
	events := make([]Event, 0, 1+len(p.regions)+len(p.provinces))
	events = append(events, Event{Kind: ClickBack})
	for _, r := range p.regions {
		events = append(events, Event{Kind: ClickRegion, Region: r.Name})
	}
	for _, pr := range p.provinces {
		events = append(events, Event{Kind: ClickProvince, Region: pr.Region, Province: pr.Name})
	}

	transitions := make([]Transition, 0, len(events))
	for _, e := range events {
		s := Next(e)
		transitions = append(transitions, Transition{Event: e, State: s, Effects: p.EffectsFor(s)})
	}
	return transitions
}
