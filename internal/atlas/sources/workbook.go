package sources

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/boreal-gis/site-atlas/internal/atlas"
)

// WorkbookSource reads a site list from a local XLSX workbook.
type WorkbookSource struct {
	name    string
	path    string
	sheet   string
	columns ColumnMap
}

// NewWorkbookSource creates a source for the given workbook. An empty sheet
// name means the first sheet.
func NewWorkbookSource(path, sheet string, columns ColumnMap) *WorkbookSource {
	return &WorkbookSource{
		name:    filepath.Base(path),
		path:    path,
		sheet:   sheet,
		columns: columns,
	}
}

func (s *WorkbookSource) Name() string {
	return s.name
}

func (s *WorkbookSource) Fetch(ctx context.Context) ([]atlas.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("close workbook %s: %v", s.path, err)
		}
	}()

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
