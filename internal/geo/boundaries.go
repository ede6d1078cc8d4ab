package geo

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/ctessum/geom"
	geojson "github.com/paulmach/go.geojson"
)

// Province is one administrative boundary joined to the region scheme.
type Province struct {
	Code     string
	Name     string
	Region   string
	Geometry geom.Polygonal
	Centroid Coordinate
	Bounds   BBox
}

// Region is a dissolved group of provinces.
type Region struct {
	Name      string
	Color     string
	Geometry  geom.Polygonal
	Centroid  Coordinate
	Bounds    BBox
	Provinces []string
}

// BuildProvinces joins a boundary feature collection with the scheme. The
// feature property named by nameProp must hold the full province name.
// Features whose name is outside the scheme, or whose geometry cannot be
// read, are logged and skipped rather than failing the whole build. The
// result is sorted by name so downstream output is deterministic.
func BuildProvinces(fc *geojson.FeatureCollection, scheme *RegionScheme, nameProp string) ([]Province, error) {
	if fc == nil {
		return nil, fmt.Errorf("nil feature collection")
	}
	provinces := make([]Province, 0, len(fc.Features))
	for i, f := range fc.Features {
		name := featureName(f, nameProp)
		if name == "" {
			log.Printf("boundaries: feature %d has no %q property, skipping", i, nameProp)
			continue
		}
		region, ok := scheme.RegionForName(name)
		if !ok {
			log.Printf("boundaries: %q is not in the region scheme, skipping", name)
			continue
		}
		poly, err := polygonalFromGeoJSON(f.Geometry)
		if err != nil {
			log.Printf("boundaries: %q: %v, skipping", name, err)
			continue
		}
		provinces = append(provinces, Province{
			Code:     scheme.CodeForName(name),
			Name:     name,
			Region:   region,
			Geometry: poly,
			Centroid: CentroidOf(poly),
			Bounds:   BoundsOf(poly),
		})
	}
	if len(provinces) == 0 {
		return nil, fmt.Errorf("no usable features in boundary collection")
	}
	sort.Slice(provinces, func(i, j int) bool { return provinces[i].Name < provinces[j].Name })
	return provinces, nil
}

func featureName(f *geojson.Feature, prop string) string {
	if f == nil || f.Properties == nil {
		return ""
	}
	v, ok := f.Properties[prop]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// GeoJSON renders the province back to a GeoJSON feature for API output.
func (p Province) GeoJSON() *geojson.Feature {
	f := geojson.NewFeature(geoJSONFromPolygonal(p.Geometry))
	f.SetProperty("name", p.Name)
	f.SetProperty("code", p.Code)
	f.SetProperty("region", p.Region)
	return f
}

// GeoJSON renders the region back to a GeoJSON feature for API output.
func (r Region) GeoJSON() *geojson.Feature {
	f := geojson.NewFeature(geoJSONFromPolygonal(r.Geometry))
	f.SetProperty("name", r.Name)
	f.SetProperty("color", r.Color)
	f.SetProperty("provinces", r.Provinces)
	return f
}
