package atlas

import (
	"context"
	"fmt"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"
)

// GoogleGeocoder resolves sites without usable coordinates through the
// Google geocoding API. Calls go through a circuit breaker so a dead or
// rate-limited API cannot stall a whole build.
type GoogleGeocoder struct {
	circuit *gobreaker.CircuitBreaker
}

// NewGoogleGeocoder sets the shared geocoder API key and returns a guarded
// client.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "geocoder",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &GoogleGeocoder{circuit: cb}
}

// Locate resolves "<site>, <province>, Canada" to coordinates.
func (g *GoogleGeocoder) Locate(ctx context.Context, site, province string) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	result, err := g.circuit.Execute(func() (interface{}, error) {
		return geocoder.Geocoding(geocoder.Address{
			City:    site,
			State:   province,
			Country: "Canada",
		})
	})
	if err != nil {
		return 0, 0, fmt.Errorf("geocode %q: %w", site, err)
	}
	loc, ok := result.(geocoder.Location)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return loc.Latitude, loc.Longitude, nil
}
