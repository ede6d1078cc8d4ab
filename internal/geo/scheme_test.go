package geo

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSchemeLookups(t *testing.T) {
	s := DefaultScheme()

	name, ok := s.NameForCode(" bc ")
	if !ok || name != "British Columbia" {
		t.Fatalf("expected British Columbia, got %q ok=%v", name, ok)
	}
	name, ok = s.NameForCode("OC")
	if !ok || name != "British Columbia" {
		t.Fatalf("expected OC alias to resolve to British Columbia, got %q ok=%v", name, ok)
	}
	if _, ok := s.NameForCode("XX"); ok {
		t.Fatalf("expected unknown code to fail")
	}

	region, ok := s.RegionForName("Ontario")
	if !ok || region != "Green Region" {
		t.Fatalf("expected Green Region for Ontario, got %q ok=%v", region, ok)
	}
	if _, ok := s.RegionForName("Atlantis"); ok {
		t.Fatalf("expected unknown province to fail")
	}

	if got := s.ColorOf("Purple Region"); got != "purple" {
		t.Fatalf("expected purple, got %q", got)
	}
	if got := s.ColorOf("Mystery Region"); got != "gray" {
		t.Fatalf("expected gray fallback, got %q", got)
	}
	if got := s.CodeForName("Yukon"); got != "YK" {
		t.Fatalf("expected YK, got %q", got)
	}
}

func TestSchemeRegionNamesStable(t *testing.T) {
	s := DefaultScheme()
	want := []string{"Green Region", "Orange Region", "Purple Region"}
	got := s.RegionNames()
	if len(got) != len(want) {
		t.Fatalf("expected %d regions, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %q at %d, got %q", want[i], i, got[i])
		}
	}
}

func TestFinalizeRejectsBadSchemes(t *testing.T) {
	twoRegions := &RegionScheme{
		CodeToName: map[string]string{"AA": "Alpha", "BB": "Beta"},
		Regions:    map[string][]string{"One": {"Alpha"}, "Two": {"Beta"}},
		Colors:     map[string]string{"One": "red", "Two": "blue"},
	}
	if err := twoRegions.Finalize(); err == nil {
		t.Fatalf("expected error for two regions")
	}

	noColor := &RegionScheme{
		CodeToName: map[string]string{"AA": "Alpha", "BB": "Beta", "CC": "Gamma"},
		Regions:    map[string][]string{"One": {"Alpha"}, "Two": {"Beta"}, "Three": {"Gamma"}},
		Colors:     map[string]string{"One": "red", "Two": "blue", "Four": "green"},
	}
	if err := noColor.Finalize(); err == nil {
		t.Fatalf("expected error for region without color")
	}

	duplicated := &RegionScheme{
		CodeToName: map[string]string{"AA": "Alpha", "BB": "Beta", "CC": "Gamma"},
		Regions:    map[string][]string{"One": {"Alpha", "Beta"}, "Two": {"Beta"}, "Three": {"Gamma"}},
		Colors:     map[string]string{"One": "red", "Two": "blue", "Three": "green"},
	}
	if err := duplicated.Finalize(); err == nil {
		t.Fatalf("expected error for province in two regions")
	}
}

func TestLoadScheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheme.json")
	doc := `{
		"codeToName": {"AA": "Alpha", "BB": "Beta", "CC": "Gamma"},
		"codeAliases": {"ZZ": "AA"},
		"regions": {"One": ["Alpha"], "Two": ["Beta"], "Three": ["Gamma"]},
		"colors": {"One": "red", "Two": "blue", "Three": "green"}
	}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s, err := LoadScheme(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	name, ok := s.NameForCode("zz")
	if !ok || name != "Alpha" {
		t.Fatalf("expected alias lookup to return Alpha, got %q ok=%v", name, ok)
	}
	region, ok := s.RegionForName("Beta")
	if !ok || region != "Two" {
		t.Fatalf("expected Two, got %q ok=%v", region, ok)
	}

	if _, err := LoadScheme(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
