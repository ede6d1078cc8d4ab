package sources

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/boreal-gis/site-atlas/internal/atlas"
)

// CSVSource reads a site list from a CSV export.
type CSVSource struct {
	name    string
	path    string
	columns ColumnMap
}

// NewCSVSource creates a source for the given CSV file.
func NewCSVSource(path string, columns ColumnMap) *CSVSource {
	return &CSVSource{
		name:    filepath.Base(path),
		path:    path,
		columns: columns,
	}
}

func (s *CSVSource) Name() string {
	return s.name
}

func (s *CSVSource) Fetch(ctx context.Context) ([]atlas.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Exports often carry ragged trailing columns; tolerate them.
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", s.path, err)
	}
	return rowsToRecords(rows, s.columns, s.name)
}
