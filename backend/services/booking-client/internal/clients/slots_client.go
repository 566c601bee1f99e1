package clients

import (
	"context"
	"fmt"

	"chargebook/backend/services/booking-client/internal/models"
)

// SlotsClient reads slot availability for a port.
type SlotsClient struct {
	base *BaseClient
}

// NewSlotsClient returns client.
func NewSlotsClient(base *BaseClient) *SlotsClient {
	return &SlotsClient{base: base}
}

// ListSlots fetches the current slots of a port.
func (c *SlotsClient) ListSlots(ctx context.Context, portID int64) ([]models.Slot, error) {
	var slots []models.Slot
	if err := c.base.getJSON(ctx, fmt.Sprintf("/ports/%d/slots", portID), &slots); err != nil {
		return nil, err
	}
	return slots, nil
}
