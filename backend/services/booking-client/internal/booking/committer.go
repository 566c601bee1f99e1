package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chargebook/backend/services/booking-client/internal/clients"
	"chargebook/backend/services/booking-client/internal/models"
	"chargebook/backend/services/booking-client/internal/window"
)

// ReservationCreator is the create-reservation contract of the booking server.
type ReservationCreator interface {
	CreateReservation(ctx context.Context, req models.ReservationRequest) (*models.Reservation, error)
}

// Request is everything the committer needs from the current selection. Zero ids and
// a zero Start mean "not selected".
type Request struct {
	StationID int64
	PortID    int64
	SlotID    int64
	VehicleID int64
	Start     time.Time
}

// Result carries what the commit observed. Slots holds the freshest slot list seen
// (nil when no fetch succeeded).
type Result struct {
	Reservation *models.Reservation
	Slots       []models.Slot
}

// Committer runs the revalidate-then-commit protocol. It holds no selection state.
type Committer struct {
	fetcher *Fetcher
	creator ReservationCreator
	calc    *window.Calculator
	logger  *zap.Logger
}

// NewCommitter wires the protocol's collaborators.
func NewCommitter(fetcher *Fetcher, creator ReservationCreator, calc *window.Calculator, logger *zap.Logger) *Committer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calc == nil {
		calc = window.NewCalculator(nil, nil)
	}
	return &Committer{fetcher: fetcher, creator: creator, calc: calc, logger: logger}
}

// Validate checks the local preconditions. It never touches the network.
func (c *Committer) Validate(req Request) error {
	switch {
	case req.StationID == 0:
		return invalid("station", "Please choose a station")
	case req.PortID == 0:
		return invalid("port", "Please choose a charging port")
	case req.SlotID == 0:
		return invalid("slot", "Please choose a slot")
	case req.VehicleID == 0:
		return invalid("vehicle", "Please choose a vehicle")
	case req.Start.IsZero():
		return invalid("start", "Please choose a start time")
	}
	if err := c.calc.Validate(window.FromStart(req.Start)); err != nil {
		return &ValidationError{Field: "start", Message: "The start time is in the past", Err: err}
	}
	return nil
}

// Commit validates req, re-fetches the port's slots, and submits the reservation only
// when the chosen slot is still available. The server's conflict answer is final.
func (c *Committer) Commit(ctx context.Context, req Request) (Result, error) {
	if err := c.Validate(req); err != nil {
		return Result{}, err
	}

	fields := []zap.Field{
		zap.Int64("station_id", req.StationID),
		zap.Int64("port_id", req.PortID),
		zap.Int64("slot_id", req.SlotID),
		zap.Int64("vehicle_id", req.VehicleID),
	}
	c.logger.Debug("commit started", fields...)

	slots, err := c.fetcher.Fetch(ctx, req.PortID)
	if err != nil {
		return Result{}, fmt.Errorf("revalidate slot: %w", err)
	}
	res := Result{Slots: slots}

	slot, ok := models.FindSlot(slots, req.SlotID)
	if !ok || !slot.Selectable() {
		c.logger.Info("slot changed before commit", append(fields, zap.String("status", string(slot.Status)))...)
		return res, ErrSlotUnavailable
	}

	w := window.FromStart(req.Start)
	reservation, err := c.creator.CreateReservation(ctx, models.ReservationRequest{
		VehicleID: req.VehicleID,
		Items:     []models.ReservationItem{{SlotID: req.SlotID, StartTime: w.Start, EndTime: w.End}},
	})
	switch {
	case err == nil:
		res.Reservation = reservation
		c.logger.Info("reservation created", append(fields,
			zap.Int64("reservation_id", reservation.ID),
			zap.String("status", string(reservation.Status)),
			zap.Time("start_time", w.Start),
		)...)
		return res, nil
	case clients.IsConflict(err):
		c.logger.Warn("slot taken by another client", fields...)
		fresh, ferr := c.fetcher.Fetch(ctx, req.PortID)
		if ferr != nil {
			c.logger.Warn("refresh after conflict failed", append(fields, zap.Error(ferr))...)
			fresh = nil
		}
		res.Slots = fresh
		return res, ErrSlotTaken
	case clients.IsMalformed(err):
		c.logger.Warn("reservation rejected as malformed", append(fields, zap.Error(err))...)
		return res, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	case errors.Is(err, context.Canceled):
		return res, err
	default:
		c.logger.Error("reservation submit failed", append(fields, zap.Error(err))...)
		return res, fmt.Errorf("create reservation: %w", err)
	}
}
