package catalog

import (
	"sort"

	"chargebook/backend/services/booking-client/internal/models"
)

// Candidate is a station offered to the driver along with its distance when known.
type Candidate struct {
	Station       models.Station
	DistanceKM    float64
	DistanceKnown bool
}

// Rank attaches distances from user and sorts ascending by distance, unknown distances
// last. With a nil user the catalog order is kept and every distance stays unknown.
func Rank(stations []models.Station, user *Coordinate) []Candidate {
	out := make([]Candidate, 0, len(stations))
	for _, st := range stations {
		c := Candidate{Station: st}
		if user != nil && st.HasCoordinate() {
			c.DistanceKM = Haversine(*user, Coordinate{Lat: *st.Latitude, Lon: *st.Longitude})
			c.DistanceKnown = true
		}
		out = append(out, c)
	}
	if user == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DistanceKnown != b.DistanceKnown {
			return a.DistanceKnown
		}
		return a.DistanceKnown && a.DistanceKM < b.DistanceKM
	})
	return out
}

// Apply filters the catalog and ranks what remains.
func Apply(stations []models.Station, f Filter, user *Coordinate) []Candidate {
	kept := make([]models.Station, 0, len(stations))
	for _, st := range stations {
		if f.Match(st) {
			kept = append(kept, st)
		}
	}
	return Rank(kept, user)
}
