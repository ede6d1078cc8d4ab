package geo

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	geojson "github.com/paulmach/go.geojson"
)

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BBox is a geographic bounding box given by its south-west and north-east
// corners, the order Leaflet's fitBounds expects.
type BBox struct {
	SouthWest Coordinate `json:"southWest"`
	NorthEast Coordinate `json:"northEast"`
}

// polygonalFromGeoJSON converts a GeoJSON Polygon or MultiPolygon geometry
// into a planar polygon, mapping longitude to X and latitude to Y.
func polygonalFromGeoJSON(g *geojson.Geometry) (geom.Polygonal, error) {
	switch {
	case g == nil:
		return nil, fmt.Errorf("missing geometry")
	case g.IsPolygon():
		return polygonFromRings(g.Polygon), nil
	case g.IsMultiPolygon():
		mp := make(geom.MultiPolygon, 0, len(g.MultiPolygon))
		for _, rings := range g.MultiPolygon {
			mp = append(mp, polygonFromRings(rings))
		}
		return mp, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

func polygonFromRings(rings [][][]float64) geom.Polygon {
	p := make(geom.Polygon, 0, len(rings))
	for _, ring := range rings {
		pts := make([]geom.Point, 0, len(ring))
		for _, pos := range ring {
			if len(pos) < 2 {
				continue
			}
			pts = append(pts, geom.Point{X: pos[0], Y: pos[1]})
		}
		p = append(p, pts)
	}
	return p
}

// geoJSONFromPolygonal converts a planar polygon back to a GeoJSON geometry,
// emitting a Polygon for single-part shapes and a MultiPolygon otherwise.
func geoJSONFromPolygonal(p geom.Polygonal) *geojson.Geometry {
	polys := p.Polygons()
	parts := make([][][][]float64, 0, len(polys))
	for _, poly := range polys {
		rings := make([][][]float64, 0, len(poly))
		for _, ring := range poly {
			coords := make([][]float64, 0, len(ring))
			for _, pt := range ring {
				coords = append(coords, []float64{pt.X, pt.Y})
			}
			rings = append(rings, coords)
		}
		parts = append(parts, rings)
	}
	if len(parts) == 1 {
		return geojson.NewPolygonGeometry(parts[0])
	}
	return geojson.NewMultiPolygonGeometry(parts...)
}

// CentroidOf returns the area-weighted centroid of a polygon. Multi-part
// shapes weight each part by its area, so a large mainland dominates small
// islands. Degenerate zero-area shapes fall back to the bounds center.
func CentroidOf(p geom.Polygonal) Coordinate {
	var sumX, sumY, sumA float64
	for _, poly := range p.Polygons() {
		a := math.Abs(poly.Area())
		if a == 0 {
			continue
		}
		c := poly.Centroid()
		sumX += c.X * a
		sumY += c.Y * a
		sumA += a
	}
	if sumA == 0 {
		b := p.Bounds()
		return Coordinate{Lat: (b.Min.Y + b.Max.Y) / 2, Lon: (b.Min.X + b.Max.X) / 2}
	}
	return Coordinate{Lat: sumY / sumA, Lon: sumX / sumA}
}

// BoundsOf returns the bounding box of a polygon in map coordinates.
func BoundsOf(p geom.Polygonal) BBox {
	b := p.Bounds()
	return BBox{
		SouthWest: Coordinate{Lat: b.Min.Y, Lon: b.Min.X},
		NorthEast: Coordinate{Lat: b.Max.Y, Lon: b.Max.X},
	}
}

// Extend grows the box to cover c and returns the result. The zero box is
// replaced rather than extended so callers can fold over coordinates.
func (b BBox) Extend(c Coordinate) BBox {
	if b == (BBox{}) {
		return BBox{SouthWest: c, NorthEast: c}
	}
	if c.Lat < b.SouthWest.Lat {
		b.SouthWest.Lat = c.Lat
	}
	if c.Lon < b.SouthWest.Lon {
		b.SouthWest.Lon = c.Lon
	}
	if c.Lat > b.NorthEast.Lat {
		b.NorthEast.Lat = c.Lat
	}
	if c.Lon > b.NorthEast.Lon {
		b.NorthEast.Lon = c.Lon
	}
	return b
}
