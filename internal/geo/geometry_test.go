package geo

import (
	"math"
	"testing"

	"github.com/ctessum/geom"
	geojson "github.com/paulmach/go.geojson"
)

func squareRing(x, y, size float64) [][]float64 {
	return [][]float64{
		{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y},
	}
}

func TestPolygonalFromGeoJSON(t *testing.T) {
	poly, err := polygonalFromGeoJSON(geojson.NewPolygonGeometry([][][]float64{squareRing(0, 0, 1)}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(poly.Polygons()); got != 1 {
		t.Fatalf("expected 1 part, got %d", got)
	}
	if a := math.Abs(poly.Polygons()[0].Area()); math.Abs(a-1) > 1e-9 {
		t.Fatalf("expected area 1, got %v", a)
	}

	mp, err := polygonalFromGeoJSON(geojson.NewMultiPolygonGeometry(
		[][][]float64{squareRing(0, 0, 1)},
		[][][]float64{squareRing(5, 5, 1)},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(mp.Polygons()); got != 2 {
		t.Fatalf("expected 2 parts, got %d", got)
	}

	if _, err := polygonalFromGeoJSON(geojson.NewPointGeometry([]float64{1, 2})); err == nil {
		t.Fatalf("expected error for point geometry")
	}
	if _, err := polygonalFromGeoJSON(nil); err == nil {
		t.Fatalf("expected error for nil geometry")
	}
}

func TestGeoJSONRoundTrip(t *testing.T) {
	single := geom.Polygon{{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0}}}
	g := geoJSONFromPolygonal(single)
	if !g.IsPolygon() {
		t.Fatalf("expected Polygon, got %q", g.Type)
	}

	multi := geom.MultiPolygon{single, {{{X: 5, Y: 5}, {X: 6, Y: 5}, {X: 6, Y: 6}, {X: 5, Y: 6}, {X: 5, Y: 5}}}}
	g = geoJSONFromPolygonal(multi)
	if !g.IsMultiPolygon() {
		t.Fatalf("expected MultiPolygon, got %q", g.Type)
	}
	if got := len(g.MultiPolygon); got != 2 {
		t.Fatalf("expected 2 parts, got %d", got)
	}
}

func TestCentroidOfWeightsByArea(t *testing.T) {
	// A 2x2 square at the origin and a 1x1 square far east. The big square
	// carries four times the weight.
	mp := geom.MultiPolygon{
		{{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}, {X: 0, Y: 0}}},
		{{{X: 10, Y: 0}, {X: 11, Y: 0}, {X: 11, Y: 1}, {X: 10, Y: 1}, {X: 10, Y: 0}}},
	}
	c := CentroidOf(mp)
	if math.Abs(c.Lon-2.9) > 1e-9 || math.Abs(c.Lat-0.9) > 1e-9 {
		t.Fatalf("expected centroid (0.9, 2.9), got (%v, %v)", c.Lat, c.Lon)
	}
}

func TestCentroidOfDegenerateFallsBackToBounds(t *testing.T) {
	line := geom.Polygon{{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 0}}}
	c := CentroidOf(line)
	if math.Abs(c.Lon-2) > 1e-9 || math.Abs(c.Lat) > 1e-9 {
		t.Fatalf("expected bounds center (0, 2), got (%v, %v)", c.Lat, c.Lon)
	}
}

func TestBBoxExtend(t *testing.T) {
	var b BBox
	b = b.Extend(Coordinate{Lat: 45, Lon: -70})
	if b.SouthWest != (Coordinate{Lat: 45, Lon: -70}) || b.NorthEast != (Coordinate{Lat: 45, Lon: -70}) {
		t.Fatalf("expected zero box to collapse to the point, got %+v", b)
	}
	b = b.Extend(Coordinate{Lat: 50, Lon: -80})
	b = b.Extend(Coordinate{Lat: 40, Lon: -60})
	if b.SouthWest != (Coordinate{Lat: 40, Lon: -80}) {
		t.Fatalf("unexpected south-west corner %+v", b.SouthWest)
	}
	if b.NorthEast != (Coordinate{Lat: 50, Lon: -60}) {
		t.Fatalf("unexpected north-east corner %+v", b.NorthEast)
	}
}
