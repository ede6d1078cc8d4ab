package sources

import (
	"strings"
	"testing"
)

func TestRowsToRecords(t *testing.T) {
	rows := [][]string{
		{"Site\nName", "SITE USER 10-20-2025", "Province", "Latitude", "Longitude", "Category", "Notes"},
		{" Depot A ", "DFO", "ON", "45.5", "-75.5", "1", "x"},
		{"Depot B", "SCH", "BC", "", "-120", "2"},
		{"", "", "", "", "", ""},
		{"Depot C", "DFO", "OC", "49.1", "-123.0", ""},
	}

	records, err := rowsToRecords(rows, DefaultColumns(), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	a := records[0]
	if a.Site != "Depot A" || a.User != "DFO" || a.ProvinceCode != "ON" || a.Category != "1" {
		t.Fatalf("unexpected record %+v", a)
	}
	if !a.HasCoords || a.Lat != 45.5 || a.Lon != -75.5 {
		t.Fatalf("expected parsed coordinates, got %+v", a)
	}
	if a.Source != "test" || a.Row != 2 {
		t.Fatalf("expected source test row 2, got %+v", a)
	}

	// A blank latitude cell leaves the record without coordinates.
	if records[1].HasCoords {
		t.Fatalf("expected Depot B to have no coordinates")
	}

	// The empty row is skipped but row numbers still match the sheet.
	if records[2].Site != "Depot C" || records[2].Row != 5 {
		t.Fatalf("unexpected record %+v", records[2])
	}
}

func TestRowsToRecordsHeaderFragment(t *testing.T) {
	rows := [][]string{
		{"Site Name", "Site User 11-03-2025", "Province", "Latitude", "Longitude", "Category"},
		{"Depot A", "DFO", "ON", "45.5", "-75.5", "1"},
	}

	// A configured name that is only a fragment of the date-stamped header
	// still resolves, so the column map survives re-dated exports.
	cols := DefaultColumns()
	cols.User = "Site User"
	records, err := rowsToRecords(rows, cols, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].User != "DFO" {
		t.Fatalf("expected the dated user column resolved, got %+v", records)
	}

	// A name matching no header at all still fails.
	cols.User = "Owner"
	if _, err := rowsToRecords(rows, cols, "test"); err == nil {
		t.Fatalf("expected missing user column error")
	}
}

func TestRowsToRecordsMissingColumn(t *testing.T) {
	rows := [][]string{
		{"Site Name", "Site User 10-20-2025", "Province", "Latitude", "Longitude"},
		{"Depot A", "DFO", "ON", "45.5", "-75.5"},
	}
	_, err := rowsToRecords(rows, DefaultColumns(), "test")
	if err == nil || !strings.Contains(err.Error(), "category") {
		t.Fatalf("expected missing category error, got %v", err)
	}
}

func TestRowsToRecordsEmptyInput(t *testing.T) {
	if _, err := rowsToRecords(nil, DefaultColumns(), "test"); err == nil {
		t.Fatalf("expected error for empty input")
	}
}
