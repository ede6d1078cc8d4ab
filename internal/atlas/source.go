package atlas

import (
	"context"
	"time"
)

// Source abstracts a site list origin (e.g. a local workbook, a CSV export,
// a remote download).
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]RawRecord, error)
}

// Geocoder resolves a site without usable coordinates to a location.
type Geocoder interface {
	Locate(ctx context.Context, site, province string) (lat, lon float64, err error)
}

// Renderer turns a finished map view into a self-contained HTML document.
type Renderer interface {
	Render(view MapView) ([]byte, error)
}

// Store is the contract the in-memory store (and any future persistent
// store) must satisfy.
type Store interface {
	SaveSnapshot(snapshot Snapshot)
	Latest() (Snapshot, error)
	Range(from, to time.Time) ([]Snapshot, error)
}
