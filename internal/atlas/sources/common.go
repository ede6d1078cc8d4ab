package sources

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/boreal-gis/site-atlas/internal/atlas"
	"github.com/boreal-gis/site-atlas/internal/common"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// doRequestWithResilience executes the HTTP request with retries, exponential
// backoff, and a circuit breaker.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}

		// Ensure the request obeys context cancellation.
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			// Handle rate limiting and server errors explicitly.
			if resp.StatusCode == http.StatusTooManyRequests {
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				return nil, errServerError
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}

			return resp, nil
		})

		if err == nil {
			// Success.
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= cfg.Backoff.MaxRetries {
			return nil, lastErr
		}

		// Backoff with exponential delay.
		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
			// continue to next attempt
		}

		attempt++
	}
}

// ColumnMap names the site list columns a source reads. Matching is done on
// canonicalized headers and ignores case, so a header broken across two lines
// in the workbook still resolves. A configured name may also be a fragment of
// the real header, which lets "Site User" find a date-stamped export column.
type ColumnMap struct {
	Site      string
	User      string
	Province  string
	Latitude  string
	Longitude string
	Category  string
}

// DefaultColumns returns the column names the site exports use.
func DefaultColumns() ColumnMap {
	return ColumnMap{
		Site:      "Site Name",
		User:      "Site User 10-20-2025",
		Province:  "Province",
		Latitude:  "Latitude",
		Longitude: "Longitude",
		Category:  "Category",
	}
}

// rowsToRecords converts a header row plus data rows into raw records. Rows
// shorter than the header are padded, fully empty rows are skipped, and
// coordinate cells that do not parse leave HasCoords unset.
func rowsToRecords(rows [][]string, cols ColumnMap, sourceName string) ([]atlas.RawRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows in %s", sourceName)
	}

	find := func(want string) int {
		if want == "" {
			return -1
		}
		for i, h := range rows[0] {
			if strings.EqualFold(common.CanonicalHeader(h), want) {
				return i
			}
		}
		// Exports date-stamp some headers ("Site User 10-20-2025"), so the
		// configured name may only be a fragment of the real one.
		for i, h := range rows[0] {
			if common.HasAny(strings.ToLower(common.CanonicalHeader(h)), strings.ToLower(want)) {
				return i
			}
		}
		return -1
	}
	idx := map[string]int{
		"site":      find(cols.Site),
		"user":      find(cols.User),
		"province":  find(cols.Province),
		"latitude":  find(cols.Latitude),
		"longitude": find(cols.Longitude),
		"category":  find(cols.Category),
	}
	for name, i := range idx {
		if i < 0 {
			return nil, fmt.Errorf("%s: missing %s column", sourceName, name)
		}
	}

	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	records := make([]atlas.RawRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		empty := true
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}

		rec := atlas.RawRecord{
			Site:         cell(row, idx["site"]),
			User:         cell(row, idx["user"]),
			ProvinceCode: cell(row, idx["province"]),
			Category:     cell(row, idx["category"]),
			Source:       sourceName,
			Row:          i + 2, // 1-based, after the header row
		}
		lat, latErr := strconv.ParseFloat(cell(row, idx["latitude"]), 64)
		lon, lonErr := strconv.ParseFloat(cell(row, idx["longitude"]), 64)
		if latErr == nil && lonErr == nil {
			rec.Lat, rec.Lon, rec.HasCoords = lat, lon, true
		}
		records = append(records, rec)
	}
	return records, nil
}
