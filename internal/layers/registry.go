// Package layers tracks map overlay handles, their grouping, and which of
// them are visible. Visibility here is the model the drill-down planner works
// against; the rendered page replays the same operations on real Leaflet
// layers.
package layers

import (
	"fmt"
	"sort"
)

// ID identifies a registered overlay.
type ID string

// Group names a set of overlays of which at most one is shown at a time.
type Group string

const (
	// RegionCounts is the badge overlay with one count per region.
	RegionCounts ID = "region-counts"
)

const (
	// ProvinceCounts groups the per-region province badge overlays.
	ProvinceCounts Group = "province-counts"
	// Sites groups the per-province site overlays (markers plus heat).
	Sites Group = "sites"
)

// ProvinceCountsID returns the overlay id for a region's province badges.
func ProvinceCountsID(region string) ID {
	return ID("province-counts:" + region)
}

// SitesID returns the overlay id for a province's site overlay.
func SitesID(province string) ID {
	return ID("sites:" + province)
}

// Registry holds overlay handles and their visibility. Registration happens
// once while a map is assembled; the visibility operations are called many
// times after that and are safe to repeat. Show, Hide and ShowExclusive
// ignore ids that were never registered.
type Registry struct {
	handles map[ID]any
	groups  map[Group][]ID
	visible map[ID]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handles: make(map[ID]any),
		groups:  make(map[Group][]ID),
		visible: make(map[ID]bool),
	}
}

// Register adds an overlay under id with its starting visibility.
// Registering the same id twice is an error; overlay ids are stable names,
// not slots to overwrite.
func (r *Registry) Register(id ID, handle any, visible bool) error {
	if _, ok := r.handles[id]; ok {
		return fmt.Errorf("layer %q already registered", id)
	}
	r.handles[id] = handle
	if visible {
		r.visible[id] = true
	}
	return nil
}

// AddToGroup places a registered overlay into a group. Membership keeps
// insertion order.
func (r *Registry) AddToGroup(group Group, id ID) error {
	if _, ok := r.handles[id]; !ok {
		return fmt.Errorf("layer %q not registered", id)
	}
	for _, member := range r.groups[group] {
		if member == id {
			return nil
		}
	}
	r.groups[group] = append(r.groups[group], id)
	return nil
}

// Handle returns the handle registered under id.
func (r *Registry) Handle(id ID) (any, bool) {
	h, ok := r.handles[id]
	return h, ok
}

// Show marks an overlay visible. Unknown ids are ignored.
func (r *Registry) Show(id ID) {
	if _, ok := r.handles[id]; ok {
		r.visible[id] = true
	}
}

// Hide marks an overlay hidden. Unknown ids are ignored.
func (r *Registry) Hide(id ID) {
	if _, ok := r.handles[id]; ok {
		delete(r.visible, id)
	}
}

// ShowExclusive hides every member of the group except id, which it shows.
// Passing an id outside the group (or "") just hides the whole group.
func (r *Registry) ShowExclusive(group Group, id ID) {
	for _, member := range r.groups[group] {
		if member == id {
			r.visible[member] = true
		} else {
			delete(r.visible, member)
		}
	}
}

// Visible reports whether an overlay is currently shown.
func (r *Registry) Visible(id ID) bool {
	return r.visible[id]
}

// VisibleSet returns the shown overlay ids in sorted order.
func (r *Registry) VisibleSet() []ID {
	ids := make([]ID, 0, len(r.visible))
	for id := range r.visible {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// GroupMembers returns a copy of the group's membership in insertion order.
func (r *Registry) GroupMembers(group Group) []ID {
	members := r.groups[group]
	out := make([]ID, len(members))
	copy(out, members)
	return out
}
