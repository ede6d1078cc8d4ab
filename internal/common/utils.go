package common

import (
	"strconv"
	"strings"
)

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// CanonicalHeader normalizes a spreadsheet column header: newlines become
// spaces, whitespace runs collapse to one space, and the result is trimmed.
// Source exports wrap long headers across cell lines, so "Site\nName" and
// "Site Name" must resolve to the same column.
func CanonicalHeader(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.Join(strings.Fields(s), " ")
}

// ParseNumeric converts a free-form cell value to a float64.
// Non-numeric and empty values normalize to 0, matching how blank or
// garbage category cells are treated in the source spreadsheets.
func ParseNumeric(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
