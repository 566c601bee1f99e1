package models

import "time"

// ReservationStatus tracks the lifecycle owned by the booking server.
type ReservationStatus string

const (
	ReservationPending        ReservationStatus = "pending"
	ReservationConfirmed      ReservationStatus = "confirmed"
	ReservationPaymentSuccess ReservationStatus = "payment_success"
	ReservationCancelled      ReservationStatus = "cancelled"
)

// ReservationItem binds one slot to an absolute window.
type ReservationItem struct {
	SlotID    int64     `json:"slot_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// ReservationRequest is the create-reservation payload.
type ReservationRequest struct {
	VehicleID int64             `json:"vehicle_id"`
	Items     []ReservationItem `json:"items"`
}

// Reservation is the server's answer to a successful create.
type Reservation struct {
	ID        int64             `json:"id"`
	VehicleID int64             `json:"vehicle_id"`
	Status    ReservationStatus `json:"status"`
	Items     []ReservationItem `json:"items,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Vehicle belongs to the calling user.
type Vehicle struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	LicensePlate string `json:"license_plate"`
}
