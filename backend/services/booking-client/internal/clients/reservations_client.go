package clients

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"chargebook/backend/services/booking-client/internal/models"
)

// IdempotencyHeader carries a per-submission key so a retried POST is not booked twice.
const IdempotencyHeader = "Idempotency-Key"

// ReservationsClient submits reservations.
type ReservationsClient struct {
	base  *BaseClient
	newID func() string
}

// NewReservationsClient returns client.
func NewReservationsClient(base *BaseClient) *ReservationsClient {
	return &ReservationsClient{base: base, newID: uuid.NewString}
}

// CreateReservation posts req. A 409 answer surfaces as an *APIError for which
// Conflict() is true; 400/422 as one for which Malformed() is true.
func (c *ReservationsClient) CreateReservation(ctx context.Context, req models.ReservationRequest) (*models.Reservation, error) {
	headers := map[string]string{IdempotencyHeader: c.newID()}
	var reservation models.Reservation
	if err := c.base.sendJSON(ctx, http.MethodPost, "/reservations", req, headers, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}
