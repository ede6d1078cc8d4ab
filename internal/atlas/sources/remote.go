package sources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"github.com/xuri/excelize/v2"

	"github.com/boreal-gis/site-atlas/internal/atlas"
)

// RemoteWorkbookSource downloads a site list workbook over HTTP, with the
// same retry and circuit breaker protection every outbound call gets, and
// parses it like a local workbook.
type RemoteWorkbookSource struct {
	name    string
	url     string
	sheet   string
	columns ColumnMap
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewRemoteWorkbookSource(client *http.Client, url, sheet string, columns ColumnMap) *RemoteWorkbookSource {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "remote-workbook",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &RemoteWorkbookSource{
		name:    "remote-workbook",
		url:     url,
		sheet:   sheet,
		columns: columns,
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

func (s *RemoteWorkbookSource) Name() string {
	return s.name
}

func (s *RemoteWorkbookSource) Fetch(ctx context.Context) ([]atlas.RawRecord, error) {
	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, s.url, nil)
	}

	resp, err := doRequestWithResilience(ctx, s.httpCfg, s.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read workbook body: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse workbook from %s: %w", s.url, err)
	}
	defer f.Close()

	sheet := s.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rowsToRecords(rows, s.columns, s.name)
}
