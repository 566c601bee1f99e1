package booking

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"chargebook/backend/services/booking-client/internal/models"
)

// SlotLister is the list-slots contract of the booking server.
type SlotLister interface {
	ListSlots(ctx context.Context, portID int64) ([]models.Slot, error)
}

// Fetcher retrieves the current slot states of a port on demand.
type Fetcher struct {
	lister SlotLister
	logger *zap.Logger
}

// NewFetcher returns a fetcher backed by lister.
func NewFetcher(lister SlotLister, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{lister: lister, logger: logger}
}

// Fetch returns the port's slots as the server currently reports them.
func (f *Fetcher) Fetch(ctx context.Context, portID int64) ([]models.Slot, error) {
	slots, err := f.lister.ListSlots(ctx, portID)
	if err != nil {
		return nil, fmt.Errorf("fetch slots for port %d: %w", portID, err)
	}

	available := 0
	for _, s := range slots {
		if s.Selectable() {
			available++
		}
	}
	f.logger.Debug("slots fetched",
		zap.Int64("port_id", portID),
		zap.Int("total", len(slots)),
		zap.Int("available", available),
	)
	return slots, nil
}
