package models

import "strings"

// StationStatus is the operational state of a station.
type StationStatus string

const (
	StationActive      StationStatus = "active"
	StationMaintenance StationStatus = "maintenance"
	StationInactive    StationStatus = "inactive"
)

// StationType is the aggregate charging type derived from a station's ports.
type StationType string

const (
	StationTypeAC      StationType = "AC"
	StationTypeDC      StationType = "DC"
	StationTypeDCUltra StationType = "DC_ULTRA"
)

// UltraPowerKW is the rated power from which a DC station counts as DC_ULTRA.
const UltraPowerKW = 150.0

// Station mirrors the booking server's station payload with its ports embedded.
type Station struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Address   string        `json:"address"`
	Latitude  *float64      `json:"latitude,omitempty"`
	Longitude *float64      `json:"longitude,omitempty"`
	Status    StationStatus `json:"status"`
	Ports     []Port        `json:"ports"`
}

// HasCoordinate reports whether both latitude and longitude are known.
func (s Station) HasCoordinate() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// Offerable reports whether the station may be shown to a driver at all.
func (s Station) Offerable() bool {
	return s.Status == StationActive || s.Status == StationMaintenance
}

// Type derives the aggregate type: AC without DC ports, DC_ULTRA when a DC port exists
// and the strongest port reaches UltraPowerKW, DC otherwise.
func (s Station) Type() StationType {
	hasDC := false
	maxPower := 0.0
	for _, p := range s.Ports {
		if p.Type == PortDC {
			hasDC = true
		}
		if p.PowerKW > maxPower {
			maxPower = p.PowerKW
		}
	}
	switch {
	case !hasDC:
		return StationTypeAC
	case maxPower >= UltraPowerKW:
		return StationTypeDCUltra
	default:
		return StationTypeDC
	}
}

// District returns the district parsed from the address, or "" when none was recognized.
func (s Station) District() string {
	return ParseDistrict(s.Address)
}

// Port returns the port with the given id.
func (s Station) Port(id int64) (Port, bool) {
	for _, p := range s.Ports {
		if p.ID == id {
			return p, true
		}
	}
	return Port{}, false
}

// ParseStationType maps free-form input ("dc", "DC_ULTRA") to a StationType.
func ParseStationType(raw string) (StationType, bool) {
	switch StationType(strings.ToUpper(strings.TrimSpace(raw))) {
	case StationTypeAC:
		return StationTypeAC, true
	case StationTypeDC:
		return StationTypeDC, true
	case StationTypeDCUltra:
		return StationTypeDCUltra, true
	}
	return "", false
}
