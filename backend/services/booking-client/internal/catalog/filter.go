package catalog

import (
	"regexp"
	"strings"

	"chargebook/backend/services/booking-client/internal/models"
)

// All disables the type or region criterion.
const All = "all"

// Filter narrows the station catalog. Empty fields and All impose no constraint.
type Filter struct {
	Query  string
	Type   string
	Region string
}

// Match reports whether the station passes every criterion.
func (f Filter) Match(st models.Station) bool {
	if !st.Offerable() {
		return false
	}
	if !matchesQuery(st, f.Query) {
		return false
	}
	if !matchesType(st, f.Type) {
		return false
	}
	return matchesRegion(st, f.Region)
}

func isUnset(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, All)
}

func matchesQuery(st models.Station, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(st.Name), query) ||
		strings.Contains(strings.ToLower(st.Address), query)
}

func matchesType(st models.Station, raw string) bool {
	if isUnset(raw) {
		return true
	}
	want, ok := models.ParseStationType(raw)
	if !ok {
		return false
	}
	return st.Type() == want
}

func matchesRegion(st models.Station, region string) bool {
	if isUnset(region) {
		return true
	}
	region = strings.TrimSpace(region)
	if canonical := models.ParseDistrict(region); canonical != "" {
		region = canonical
	}
	if district := st.District(); district != "" {
		return strings.EqualFold(district, region)
	}
	return containsWord(st.Address, region)
}

// containsWord matches needle in haystack only at letter/digit boundaries, so
// "District 1" does not match inside "District 10".
func containsWord(haystack, needle string) bool {
	pattern := `(?i)(?:^|[^\p{L}\p{N}])` + regexp.QuoteMeta(needle) + `(?:$|[^\p{L}\p{N}])`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(haystack)
}
