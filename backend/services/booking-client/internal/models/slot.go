package models

import "time"

// SlotStatus is the server-reported state of a slot.
type SlotStatus string

const (
	SlotAvailable   SlotStatus = "available"
	SlotBooked      SlotStatus = "booked"
	SlotReserved    SlotStatus = "reserved"
	SlotOccupied    SlotStatus = "occupied"
	SlotMaintenance SlotStatus = "maintenance"
	SlotDisabled    SlotStatus = "disabled"
	SlotUnavailable SlotStatus = "unavailable"
)

// Slot is a bookable unit of one port.
type Slot struct {
	ID              int64      `json:"id"`
	Number          int        `json:"number"`
	Status          SlotStatus `json:"status"`
	NextAvailableAt *time.Time `json:"next_available_at,omitempty"`
}

// Selectable is true only for available slots.
func (s Slot) Selectable() bool {
	return s.Status == SlotAvailable
}

// BlockedReason explains why a slot cannot be chosen. Empty for selectable slots.
func (s Slot) BlockedReason() string {
	var reason string
	switch s.Status {
	case SlotAvailable:
		return ""
	case SlotBooked:
		reason = "already booked"
	case SlotReserved:
		reason = "reserved by another driver"
	case SlotOccupied:
		reason = "vehicle charging"
	case SlotMaintenance:
		reason = "under maintenance"
	case SlotDisabled:
		reason = "disabled"
	default:
		reason = "unavailable"
	}
	if s.NextAvailableAt != nil {
		reason += ", free again at " + s.NextAvailableAt.Format("15:04")
	}
	return reason
}

// FindSlot locates a slot by id.
func FindSlot(slots []Slot, id int64) (Slot, bool) {
	for _, s := range slots {
		if s.ID == id {
			return s, true
		}
	}
	return Slot{}, false
}
