package models

// PortType is the electrical type of a charging port.
type PortType string

const (
	PortAC PortType = "AC"
	PortDC PortType = "DC"
)

// SpeedClass groups ports by charging speed.
type SpeedClass string

const (
	SpeedSlow      SpeedClass = "slow"
	SpeedFast      SpeedClass = "fast"
	SpeedSuperFast SpeedClass = "super_fast"
)

// PortStatus is the operational state of a port.
type PortStatus string

const (
	PortAvailable   PortStatus = "available"
	PortInUse       PortStatus = "in_use"
	PortMaintenance PortStatus = "maintenance"
	PortInactive    PortStatus = "inactive"
)

// Port is a charging point belonging to exactly one station.
type Port struct {
	ID          int64      `json:"id"`
	Type        PortType   `json:"type"`
	PowerKW     float64    `json:"power_kw"`
	PricePerKWh float64    `json:"price_per_kwh"`
	Speed       SpeedClass `json:"speed"`
	Status      PortStatus `json:"status"`
}

// Available reports whether the port can be chosen for a reservation.
func (p Port) Available() bool {
	return p.Status == PortAvailable
}

// PriceLabel formats the per-kWh price for display.
func (p Port) PriceLabel() string {
	return FormatPrice(p.PricePerKWh)
}
