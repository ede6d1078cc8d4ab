package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RegionScheme holds the static administrative tables the map is built
// around: the province code→name table, the assignment of province names to
// exactly three regions, and the display color per region. A default scheme
// for the Canadian site data is compiled in; deployments can override it with
// a JSON file.
type RegionScheme struct {
	// CodeToName maps short province codes (upper case) to full names.
	// Full names are the join key to boundary polygons.
	CodeToName map[string]string `json:"codeToName" validate:"required,min=1"`

	// CodeAliases maps legacy or mistyped codes to canonical ones and is
	// applied before CodeToName (e.g. "OC" arriving for "BC").
	CodeAliases map[string]string `json:"codeAliases"`

	// Regions maps a region name to the full province names it contains.
	Regions map[string][]string `json:"regions" validate:"required,len=3,dive,required,min=1"`

	// Colors maps a region name to its display color.
	Colors map[string]string `json:"colors" validate:"required,len=3"`

	nameToRegion map[string]string
	nameToCode   map[string]string
}

// DefaultScheme returns the compiled-in scheme for the Canadian site data:
// thirteen provinces and territories split into the Purple, Green and Orange
// regions. "YK" is kept for Yukon because that is what the site exports use.
func DefaultScheme() *RegionScheme {
	s := &RegionScheme{
		CodeToName: map[string]string{
			"AB": "Alberta",
			"BC": "British Columbia",
			"MB": "Manitoba",
			"NB": "New Brunswick",
			"NL": "Newfoundland and Labrador",
			"NS": "Nova Scotia",
			"NT": "Northwest Territories",
			"NU": "Nunavut",
			"ON": "Ontario",
			"PE": "Prince Edward Island",
			"QC": "Quebec",
			"SK": "Saskatchewan",
			"YK": "Yukon",
		},
		CodeAliases: map[string]string{
			// Temporary rule carried over from the source data: OC is BC.
			"OC": "BC",
		},
		Regions: map[string][]string{
			"Purple Region": {"Nunavut", "Northwest Territories", "Yukon", "British Columbia"},
			"Green Region":  {"Ontario", "Manitoba", "Saskatchewan", "Alberta", "Quebec"},
			"Orange Region": {"Newfoundland and Labrador", "Prince Edward Island", "Nova Scotia", "New Brunswick"},
		},
		Colors: map[string]string{
			"Purple Region": "purple",
			"Green Region":  "green",
			"Orange Region": "orange",
		},
	}
	if err := s.Finalize(); err != nil {
		// The compiled-in tables must always be valid.
		panic(fmt.Sprintf("geo: default scheme invalid: %v", err))
	}
	return s
}

// LoadScheme reads a scheme override from a JSON file and validates it.
func LoadScheme(path string) (*RegionScheme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scheme file: %w", err)
	}
	var s RegionScheme
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scheme file: %w", err)
	}
	if err := s.Finalize(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Finalize validates the scheme and builds the reverse lookups.
// It must be called once before any lookup method.
func (s *RegionScheme) Finalize() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid region scheme: %w", err)
	}
	s.nameToRegion = make(map[string]string)
	for region, names := range s.Regions {
		if _, ok := s.Colors[region]; !ok {
			return fmt.Errorf("invalid region scheme: region %q has no color", region)
		}
		for _, name := range names {
			if prev, dup := s.nameToRegion[name]; dup && prev != region {
				return fmt.Errorf("invalid region scheme: province %q assigned to both %q and %q", name, prev, region)
			}
			s.nameToRegion[name] = region
		}
	}
	s.nameToCode = make(map[string]string, len(s.CodeToName))
	for code, name := range s.CodeToName {
		s.nameToCode[name] = code
	}
	return nil
}

// NameForCode resolves a raw province code to a full province name.
// Codes are trimmed, upper-cased and run through the alias table first.
func (s *RegionScheme) NameForCode(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if canonical, ok := s.CodeAliases[code]; ok {
		code = canonical
	}
	name, ok := s.CodeToName[code]
	return name, ok
}

// RegionForName resolves a full province name to its region.
func (s *RegionScheme) RegionForName(name string) (string, bool) {
	region, ok := s.nameToRegion[strings.TrimSpace(name)]
	return region, ok
}

// CodeForName returns the short code for a full province name, or "" when the
// name is not in the table.
func (s *RegionScheme) CodeForName(name string) string {
	return s.nameToCode[strings.TrimSpace(name)]
}

// ColorOf returns the display color for a region, defaulting to gray for
// anything outside the scheme so styling never fails.
func (s *RegionScheme) ColorOf(region string) string {
	if c, ok := s.Colors[region]; ok {
		return c
	}
	return "gray"
}

// RegionNames returns the region names in stable (sorted) order.
func (s *RegionScheme) RegionNames() []string {
	names := make([]string, 0, len(s.Regions))
	for name := range s.Regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
