package models

import (
	"regexp"
	"strconv"
	"strings"
)

// District parsing is heuristic: addresses that match none of these patterns yield ""
// and callers fall back to matching the raw address.
var (
	numberedDistrict = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:district|quận|quan|q\.?)\s*(\d{1,2})(?:\D|$)`)
	namedDistrict    = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:quận|huyện|district)\s+(\p{L}[\p{L} ]*\p{L})`)
	suffixDistrict   = regexp.MustCompile(`(?i)(?:^|,)\s*(\p{L}[\p{L} ]*?)\s+district(?:[^\p{L}]|$)`)
	spaces           = regexp.MustCompile(`\s+`)
)

// ParseDistrict extracts a canonical district name from an address. Numbered districts
// become "District N"; named ones keep their spelling with whitespace collapsed.
func ParseDistrict(address string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return ""
	}
	if m := numberedDistrict.FindStringSubmatch(address); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			return "District " + strconv.Itoa(n)
		}
	}
	if m := namedDistrict.FindStringSubmatch(address); m != nil {
		return spaces.ReplaceAllString(strings.TrimSpace(m[1]), " ")
	}
	if m := suffixDistrict.FindStringSubmatch(address); m != nil {
		return spaces.ReplaceAllString(strings.TrimSpace(m[1]), " ")
	}
	return ""
}
