package clients

import (
	"context"

	"chargebook/backend/services/booking-client/internal/models"
)

// StationsClient reads the station catalog.
type StationsClient struct {
	base *BaseClient
}

// NewStationsClient returns client.
func NewStationsClient(base *BaseClient) *StationsClient {
	return &StationsClient{base: base}
}

// ListStations returns every station with its ports embedded, in catalog order.
func (c *StationsClient) ListStations(ctx context.Context) ([]models.Station, error) {
	var stations []models.Station
	if err := c.base.getJSON(ctx, "/stations", &stations); err != nil {
		return nil, err
	}
	return stations, nil
}
