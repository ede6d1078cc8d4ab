package atlas

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/boreal-gis/site-atlas/internal/geo"
)

var errFakeNotFound = errors.New("no snapshot")

type fakeStore struct {
	snapshots []Snapshot
}

func (f *fakeStore) SaveSnapshot(s Snapshot) { f.snapshots = append(f.snapshots, s) }

func (f *fakeStore) Latest() (Snapshot, error) {
	if len(f.snapshots) == 0 {
		return Snapshot{}, errFakeNotFound
	}
	return f.snapshots[len(f.snapshots)-1], nil
}

func (f *fakeStore) Range(from, to time.Time) ([]Snapshot, error) {
	return f.snapshots, nil
}

type fakeSource struct {
	name string
	rows []RawRecord
	err  error
}

func (f fakeSource) Name() string { return f.name }

func (f fakeSource) Fetch(ctx context.Context) ([]RawRecord, error) {
	return f.rows, f.err
}

type fakeRenderer struct {
	fail bool
	last *MapView
}

func (f *fakeRenderer) Render(view MapView) ([]byte, error) {
	if f.fail {
		return nil, fmt.Errorf("render exploded")
	}
	f.last = &view
	return []byte("<html>map</html>"), nil
}

type fakeGeocoder struct {
	lat, lon float64
	err      error
}

func (f fakeGeocoder) Locate(ctx context.Context, site, province string) (float64, float64, error) {
	return f.lat, f.lon, f.err
}

func fixtureGeo(t *testing.T) ([]geo.Province, []geo.Region) {
	t.Helper()
	fc := geojson.NewFeatureCollection()
	add := func(name string, x, y float64) {
		f := geojson.NewFeature(geojson.NewPolygonGeometry([][][]float64{{
			{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y},
		}}))
		f.SetProperty("name", name)
		fc.AddFeature(f)
	}
	add("Alberta", 0, 0)
	add("Saskatchewan", 1, 0)
	add("Yukon", 3, 3)
	add("Nova Scotia", 6, 0)

	provinces, err := geo.BuildProvinces(fc, geo.DefaultScheme(), "name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	regions := geo.Dissolve(provinces, geo.DefaultScheme())
	if len(regions) != 3 {
		t.Fatalf("expected 3 regions, got %d", len(regions))
	}
	return provinces, regions
}

func newTestService(t *testing.T, st Store, renderer Renderer, gc Geocoder, sources ...Source) *Service {
	t.Helper()
	provinces, regions := fixtureGeo(t)
	svc, err := NewService(ServiceConfig{
		Store:      st,
		Sources:    sources,
		Renderer:   renderer,
		Geocoder:   gc,
		Normalizer: NewNormalizer(geo.DefaultScheme(), []string{"DFO"}, testWindow),
		Scheme:     geo.DefaultScheme(),
		Provinces:  provinces,
		Regions:    regions,
		Title:      "Site Atlas",
		Zoom:       4,
		Heat:       DefaultHeatOptions(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

func TestBuildAndStorePartialSuccess(t *testing.T) {
	st := &fakeStore{}
	renderer := &fakeRenderer{}
	good := fakeSource{name: "workbook", rows: []RawRecord{
		{Site: "Depot A", User: "DFO", ProvinceCode: "AB", Category: "1", Lat: 0.5, Lon: 0.5, HasCoords: true},
		{Site: "Depot B", User: "DFO", ProvinceCode: "SK", Category: "2", Lat: 0.5, Lon: 1.5, HasCoords: true},
		{Site: "Depot C", User: "DFO", ProvinceCode: "YK", Category: "1", Lat: 3.5, Lon: 3.5, HasCoords: true},
	}}
	bad := fakeSource{name: "remote", err: fmt.Errorf("connection refused")}

	svc := newTestService(t, st, renderer, nil, good, bad)
	snapshot, err := svc.BuildAndStore(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snapshot.ID == "" {
		t.Fatalf("expected a snapshot id")
	}
	if snapshot.Counts.Accepted != 3 {
		t.Fatalf("expected 3 accepted records, got %d", snapshot.Counts.Accepted)
	}
	if len(snapshot.Sources) != 1 || snapshot.Sources[0].SourceName != "workbook" || snapshot.Sources[0].Records != 3 {
		t.Fatalf("unexpected contributions %+v", snapshot.Sources)
	}
	if len(snapshot.HTML) == 0 || snapshot.HTMLBytes != len(snapshot.HTML) {
		t.Fatalf("expected rendered HTML, got %d bytes (HTMLBytes=%d)", len(snapshot.HTML), snapshot.HTMLBytes)
	}
	if len(st.snapshots) != 1 {
		t.Fatalf("expected 1 stored snapshot, got %d", len(st.snapshots))
	}

	if renderer.last == nil {
		t.Fatalf("expected the renderer to receive a view")
	}
	view := *renderer.last
	// back + 3 regions + 4 provinces
	if len(view.Plan) != 8 {
		t.Fatalf("expected 8 plan transitions, got %d", len(view.Plan))
	}
	if view.Center.Lat == 0 && view.Center.Lon == 0 {
		t.Fatalf("expected a computed center, got %+v", view.Center)
	}
	if got := view.Counts.ByRegion["Green Region"]; got != 2 {
		t.Fatalf("expected 2 Green Region sites, got %d", got)
	}
}

func TestBuildAndStoreAllSourcesFail(t *testing.T) {
	st := &fakeStore{}
	svc := newTestService(t, st, &fakeRenderer{}, nil,
		fakeSource{name: "a", err: fmt.Errorf("boom")},
		fakeSource{name: "b", err: fmt.Errorf("boom")},
	)
	if _, err := svc.BuildAndStore(context.Background()); err == nil {
		t.Fatalf("expected error when every source fails")
	}
	if len(st.snapshots) != 0 {
		t.Fatalf("expected no snapshot stored, got %d", len(st.snapshots))
	}
}

func TestBuildAndStoreNoSources(t *testing.T) {
	svc := newTestService(t, &fakeStore{}, &fakeRenderer{}, nil)
	if _, err := svc.BuildAndStore(context.Background()); err == nil {
		t.Fatalf("expected error with no sources configured")
	}
}

func TestBuildAndStoreRenderFailure(t *testing.T) {
	st := &fakeStore{}
	src := fakeSource{name: "workbook", rows: []RawRecord{
		{Site: "Depot A", User: "DFO", ProvinceCode: "AB", Category: "1", Lat: 0.5, Lon: 0.5, HasCoords: true},
	}}
	svc := newTestService(t, st, &fakeRenderer{fail: true}, nil, src)
	if _, err := svc.BuildAndStore(context.Background()); err == nil {
		t.Fatalf("expected render error to fail the build")
	}
	if len(st.snapshots) != 0 {
		t.Fatalf("expected no snapshot stored after render failure")
	}
}

func TestBuildGeocodesMissingCoords(t *testing.T) {
	st := &fakeStore{}
	src := fakeSource{name: "workbook", rows: []RawRecord{
		{Site: "Located", User: "DFO", ProvinceCode: "AB", Category: "1"},
	}}

	svc := newTestService(t, st, &fakeRenderer{}, fakeGeocoder{lat: 0.5, lon: 0.5}, src)
	snapshot, err := svc.BuildAndStore(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.Counts.Accepted != 1 || snapshot.Counts.ByProvince["Alberta"] != 1 {
		t.Fatalf("expected the geocoded record accepted, got %+v", snapshot.Counts)
	}

	// A failing geocoder leaves the record for the normalizer to exclude.
	svc = newTestService(t, &fakeStore{}, &fakeRenderer{}, fakeGeocoder{err: fmt.Errorf("quota")}, src)
	snapshot, err = svc.BuildAndStore(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.Counts.Accepted != 0 || snapshot.Counts.Excluded != 1 {
		t.Fatalf("expected the record excluded, got %+v", snapshot.Counts)
	}
}

func TestHeatFor(t *testing.T) {
	st := &fakeStore{}
	src := fakeSource{name: "workbook", rows: []RawRecord{
		{Site: "Depot A", User: "DFO", ProvinceCode: "AB", Category: "1", Lat: 0.5, Lon: 0.5, HasCoords: true},
	}}
	svc := newTestService(t, st, &fakeRenderer{}, nil, src)

	if _, err := svc.HeatFor("Alberta"); !errors.Is(err, errFakeNotFound) {
		t.Fatalf("expected store error before any build, got %v", err)
	}

	if _, err := svc.BuildAndStore(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	heat, err := svc.HeatFor("Alberta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(heat) != 1 || heat[0].Weight != 1.0 {
		t.Fatalf("unexpected heat %+v", heat)
	}

	heat, err = svc.HeatFor("Nova Scotia")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(heat) != 0 {
		t.Fatalf("expected no heat for a province without sites, got %d", len(heat))
	}
}

func TestCountsFor(t *testing.T) {
	st := &fakeStore{}
	src := fakeSource{name: "workbook", rows: []RawRecord{
		{Site: "Depot A", User: "DFO", ProvinceCode: "AB", Category: "1", Lat: 0.5, Lon: 0.5, HasCoords: true},
		{Site: "Depot B", User: "DFO", ProvinceCode: "SK", Category: "2", Lat: 0.5, Lon: 1.5, HasCoords: true},
		{Site: "Depot C", User: "DFO", ProvinceCode: "NS", Category: "1", Lat: 0.5, Lon: 6.5, HasCoords: true},
	}}
	svc := newTestService(t, st, &fakeRenderer{}, nil, src)
	if _, err := svc.BuildAndStore(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snapshot, err := svc.CountsFor("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot.Counts.ByRegion) != 3 {
		t.Fatalf("expected all regions without a filter, got %v", snapshot.Counts.ByRegion)
	}

	snapshot, err = svc.CountsFor("Green Region")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot.Counts.ByRegion) != 1 || snapshot.Counts.ByRegion["Green Region"] != 2 {
		t.Fatalf("expected only Green Region counts, got %v", snapshot.Counts.ByRegion)
	}
	if snapshot.Counts.ByProvince["Alberta"] != 1 || snapshot.Counts.ByProvince["Saskatchewan"] != 1 {
		t.Fatalf("unexpected member counts %v", snapshot.Counts.ByProvince)
	}
	if _, ok := snapshot.Counts.ByProvince["Nova Scotia"]; ok {
		t.Fatalf("expected provinces outside the region excluded from the filter")
	}

	if _, err := svc.CountsFor("Teal Region"); !errors.Is(err, ErrUnknownRegion) {
		t.Fatalf("expected ErrUnknownRegion, got %v", err)
	}
}

func TestBoundaries(t *testing.T) {
	svc := newTestService(t, &fakeStore{}, &fakeRenderer{}, nil)

	fc, err := svc.Boundaries("province")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fc.Features) != 4 {
		t.Fatalf("expected 4 province features, got %d", len(fc.Features))
	}

	fc, err = svc.Boundaries("region")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fc.Features) != 3 {
		t.Fatalf("expected 3 region features, got %d", len(fc.Features))
	}

	if _, err := svc.Boundaries("continent"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
