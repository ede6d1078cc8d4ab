package geo

import (
	"log"
	"sort"

	"github.com/ctessum/geom"
)

// Dissolve merges province geometries into one polygon per region, so region
// outlines carry no interior province borders. Members are unioned in name
// order to keep the result deterministic. A member whose union fails is
// logged and left out of the outline; it still counts as part of the region
// everywhere else.
func Dissolve(provinces []Province, scheme *RegionScheme) []Region {
	byRegion := make(map[string][]Province)
	for _, p := range provinces {
		if p.Region == "" {
			log.Printf("dissolve: %q has no region, skipping", p.Name)
			continue
		}
		byRegion[p.Region] = append(byRegion[p.Region], p)
	}

	regions := make([]Region, 0, len(byRegion))
	for _, name := range scheme.RegionNames() {
		members := byRegion[name]
		if len(members) == 0 {
			log.Printf("dissolve: region %q has no boundary members", name)
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })

		var merged geom.Polygonal
		names := make([]string, 0, len(members))
		for _, m := range members {
			names = append(names, m.Name)
			if merged == nil {
				merged = m.Geometry
				continue
			}
			u := merged.Union(m.Geometry)
			if u == nil || len(u.Polygons()) == 0 {
				log.Printf("dissolve: union with %q failed, outline will miss it", m.Name)
				continue
			}
			merged = u
		}
		if merged == nil {
			continue
		}
		regions = append(regions, Region{
			Name:      name,
			Color:     scheme.ColorOf(name),
			Geometry:  merged,
			Centroid:  CentroidOf(merged),
			Bounds:    BoundsOf(merged),
			Provinces: names,
		})
	}
	return regions
}
