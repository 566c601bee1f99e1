package clients

import (
	"context"

	"chargebook/backend/services/booking-client/internal/models"
)

// VehiclesClient lists the caller's vehicles.
type VehiclesClient struct {
	base *BaseClient
}

// NewVehiclesClient returns client.
func NewVehiclesClient(base *BaseClient) *VehiclesClient {
	return &VehiclesClient{base: base}
}

// ListVehicles returns the vehicles owned by the token's user.
func (c *VehiclesClient) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := c.base.getJSON(ctx, "/vehicles", &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}
