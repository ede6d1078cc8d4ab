package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	geojson "github.com/paulmach/go.geojson"
	"github.com/sony/gobreaker"
)

// LoadBoundaryFile reads a GeoJSON feature collection from disk.
func LoadBoundaryFile(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundary file %s: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse boundary file %s: %w", path, err)
	}
	return fc, nil
}

// BoundaryFetcher downloads a GeoJSON feature collection over HTTP with the
// shared resilience wrapper.
type BoundaryFetcher struct {
	url     string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewBoundaryFetcher(client *http.Client, url string) *BoundaryFetcher {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "boundaries",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &BoundaryFetcher{
		url: url,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

func (b *BoundaryFetcher) Fetch(ctx context.Context) (*geojson.FeatureCollection, error) {
	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, b.url, nil)
	}

	resp, err := doRequestWithResilience(ctx, b.httpCfg, b.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read boundary body: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse boundaries from %s: %w", b.url, err)
	}
	return fc, nil
}
