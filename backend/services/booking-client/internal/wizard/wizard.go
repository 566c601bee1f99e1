package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"chargebook/backend/libs/logging"
	"chargebook/backend/services/booking-client/internal/booking"
	"chargebook/backend/services/booking-client/internal/models"
	"chargebook/backend/services/booking-client/internal/window"
)

var (
	ErrWrongStage          = errors.New("wizard: operation not allowed at this stage")
	ErrCommitted           = errors.New("wizard: reservation already committed")
	ErrClosed              = errors.New("wizard: closed")
	ErrStationNotOfferable = errors.New("wizard: station is not offered for booking")
	ErrUnknownPort         = errors.New("wizard: port does not belong to the selected station")
	ErrIncomplete          = errors.New("wizard: current stage has no selection yet")
)

// SlotSource loads the current slots of a port.
type SlotSource interface {
	Fetch(ctx context.Context, portID int64) ([]models.Slot, error)
}

// Submitter validates and commits a reservation request.
type Submitter interface {
	Validate(req booking.Request) error
	Commit(ctx context.Context, req booking.Request) (booking.Result, error)
}

// Selection is a point-in-time copy of the wizard state.
type Selection struct {
	Stage       Stage
	Station     *models.Station
	Port        *models.Port
	Slot        *models.Slot
	Start       time.Time
	Slots       []models.Slot
	Reservation *models.Reservation
	Committing  bool
}

// Window returns the reservation window of the chosen start, if any.
func (s Selection) Window() (window.Window, bool) {
	if s.Start.IsZero() {
		return window.Window{}, false
	}
	return window.FromStart(s.Start), true
}

// Wizard drives one booking attempt: station, then port, then slot and confirmation.
// Every selection is narrowed by the one before it. All methods are safe for
// concurrent use.
type Wizard struct {
	slots     SlotSource
	submitter Submitter
	calc      *window.Calculator
	logger    *zap.Logger

	mu          sync.Mutex
	stage       Stage
	station     *models.Station
	port        *models.Port
	slot        *models.Slot
	start       time.Time
	available   []models.Slot
	reservation *models.Reservation
	// generation changes whenever the displayed port or stage changes; responses
	// started under an older generation are dropped.
	generation uint64
	committing bool
	closed     bool
}

// New returns a wizard at ChoosingStation.
func New(slots SlotSource, submitter Submitter, calc *window.Calculator, logger *zap.Logger) *Wizard {
	logger = logging.OrNop(logger)
	if calc == nil {
		calc = window.NewCalculator(nil, nil)
	}
	return &Wizard{
		slots:     slots,
		submitter: submitter,
		calc:      calc,
		logger:    logger,
		stage:     ChoosingStation,
	}
}

// Stage returns the current stage.
func (w *Wizard) Stage() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

// Snapshot copies the current state.
func (w *Wizard) Snapshot() Selection {
	w.mu.Lock()
	defer w.mu.Unlock()

	sel := Selection{
		Stage:      w.stage,
		Start:      w.start,
		Committing: w.committing,
	}
	if w.station != nil {
		st := *w.station
		st.Ports = append([]models.Port(nil), w.station.Ports...)
		sel.Station = &st
	}
	if w.port != nil {
		p := *w.port
		sel.Port = &p
	}
	if w.slot != nil {
		s := *w.slot
		sel.Slot = &s
	}
	if w.available != nil {
		sel.Slots = append([]models.Slot(nil), w.available...)
	}
	if w.reservation != nil {
		r := *w.reservation
		sel.Reservation = &r
	}
	return sel
}

func (w *Wizard) checkOpen() error {
	switch {
	case w.closed:
		return ErrClosed
	case w.stage == Committed:
		return ErrCommitted
	}
	return nil
}

// SelectStation picks the station and moves on to port selection. Any previous port
// and slot choice is cleared.
func (w *Wizard) SelectStation(st models.Station) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkOpen(); err != nil {
		return err
	}
	if w.stage != ChoosingStation {
		return ErrWrongStage
	}
	if !st.Offerable() {
		return ErrStationNotOfferable
	}

	st.Ports = append([]models.Port(nil), st.Ports...)
	w.station = &st
	w.port = nil
	w.slot = nil
	w.available = nil
	w.stage = ChoosingPort
	w.generation++
	w.logger.Debug("station selected", zap.Int64("station_id", st.ID))
	return nil
}

// SelectPort picks a port of the selected station and loads its slots. A port that
// is not available leaves the wizard untouched and reports false.
func (w *Wizard) SelectPort(ctx context.Context, portID int64) (bool, error) {
	w.mu.Lock()
	if err := w.checkOpen(); err != nil {
		w.mu.Unlock()
		return false, err
	}
	if w.stage != ChoosingPort || w.station == nil {
		w.mu.Unlock()
		return false, ErrWrongStage
	}
	p, ok := w.station.Port(portID)
	if !ok {
		w.mu.Unlock()
		return false, ErrUnknownPort
	}
	if !p.Available() {
		w.mu.Unlock()
		w.logger.Debug("port not selectable", zap.Int64("port_id", portID), zap.String("status", string(p.Status)))
		return false, nil
	}

	w.port = &p
	w.slot = nil
	w.available = nil
	gen := w.enterConfirm()
	w.mu.Unlock()

	return true, w.load(ctx, gen, portID)
}

// enterConfirm must be called with mu held.
func (w *Wizard) enterConfirm() uint64 {
	w.stage = ChoosingSlotAndConfirming
	w.generation++
	return w.generation
}

// load fetches slots and applies them unless the wizard moved on meanwhile.
func (w *Wizard) load(ctx context.Context, gen uint64, portID int64) error {
	slots, err := w.slots.Fetch(ctx, portID)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.generation != gen {
		w.logger.Debug("discarding stale slot response", zap.Int64("port_id", portID))
		return nil
	}
	if err != nil {
		return err
	}
	w.available = slots
	return nil
}

// RefreshSlots reloads the slots of the selected port. A response that arrives after
// the wizard left the confirmation stage is dropped.
func (w *Wizard) RefreshSlots(ctx context.Context) error {
	w.mu.Lock()
	if err := w.checkOpen(); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.stage != ChoosingSlotAndConfirming || w.port == nil {
		w.mu.Unlock()
		return ErrWrongStage
	}
	gen, portID := w.generation, w.port.ID
	w.mu.Unlock()

	return w.load(ctx, gen, portID)
}

// ApplySlots installs a slot list pushed for portID. Updates for another port or
// another stage are ignored. The chosen slot is kept; Commit revalidates it.
func (w *Wizard) ApplySlots(portID int64, slots []models.Slot) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.stage != ChoosingSlotAndConfirming || w.port == nil || w.port.ID != portID {
		return false
	}
	w.available = append([]models.Slot(nil), slots...)
	return true
}

// SelectSlot picks a slot from the loaded list. Slots that are not available leave
// the selection unchanged and report false.
func (w *Wizard) SelectSlot(slotID int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.checkOpen() != nil || w.stage != ChoosingSlotAndConfirming {
		return false
	}
	s, ok := models.FindSlot(w.available, slotID)
	if !ok || !s.Selectable() {
		return false
	}
	w.slot = &s
	return true
}

// SetStart parses the driver's date and clock input and records the start instant.
// Bad input and past starts fail with a *booking.ValidationError for field "start".
func (w *Wizard) SetStart(date, clock string) (window.Window, error) {
	start, err := w.calc.Start(date, clock)
	if err != nil {
		return window.Window{}, &booking.ValidationError{
			Field:   "start",
			Message: "Please enter the date as YYYY-MM-DD and the time as HH:MM",
			Err:     err,
		}
	}
	if err := w.SetStartTime(start); err != nil {
		return window.Window{}, err
	}
	return window.FromStart(start), nil
}

// SetStartTime records an absolute start instant. Starts too far in the past are
// rejected and leave the previous value in place.
func (w *Wizard) SetStartTime(start time.Time) error {
	if err := w.calc.Validate(window.FromStart(start)); err != nil {
		return &booking.ValidationError{Field: "start", Message: "The start time is in the past", Err: err}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkOpen(); err != nil {
		return err
	}
	w.start = start
	return nil
}

// Back returns to an earlier stage. Later selections are kept until a new choice is
// made at that stage.
func (w *Wizard) Back(to Stage) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkOpen(); err != nil {
		return err
	}
	if to > w.stage || to == Committed {
		return ErrWrongStage
	}
	if to == w.stage {
		return nil
	}
	w.stage = to
	w.generation++
	return nil
}

// Forward re-enters the next stage using the selection already made at the current one.
func (w *Wizard) Forward(ctx context.Context) error {
	w.mu.Lock()
	if err := w.checkOpen(); err != nil {
		w.mu.Unlock()
		return err
	}

	switch w.stage {
	case ChoosingStation:
		defer w.mu.Unlock()
		if w.station == nil {
			return ErrIncomplete
		}
		w.stage = ChoosingPort
		w.generation++
		return nil
	case ChoosingPort:
		if w.port == nil {
			w.mu.Unlock()
			return ErrIncomplete
		}
		gen, portID := w.enterConfirm(), w.port.ID
		w.mu.Unlock()
		return w.load(ctx, gen, portID)
	default:
		w.mu.Unlock()
		return ErrWrongStage
	}
}

// Commit submits the current selection for vehicleID. Only one commit may run at a
// time; a second call while one is in flight fails with booking.ErrCommitInFlight and
// sends nothing. On a slot conflict the slot choice is cleared and the fresh slot
// list installed.
func (w *Wizard) Commit(ctx context.Context, vehicleID int64) (*models.Reservation, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, ErrClosed
	}
	if w.committing {
		w.mu.Unlock()
		return nil, booking.ErrCommitInFlight
	}
	if w.stage == Committed {
		w.mu.Unlock()
		return nil, ErrCommitted
	}

	req := w.requestLocked(vehicleID)
	if err := w.submitter.Validate(req); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	if w.stage != ChoosingSlotAndConfirming {
		w.mu.Unlock()
		return nil, ErrWrongStage
	}
	w.committing = true
	gen := w.generation
	w.mu.Unlock()

	res, err := w.submitter.Commit(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.committing = false

	if err == nil {
		if !w.closed {
			w.stage = Committed
			w.reservation = res.Reservation
			w.station, w.port, w.slot, w.available = nil, nil, nil, nil
			w.start = time.Time{}
			w.generation++
		}
		return res.Reservation, nil
	}

	if w.closed || w.generation != gen {
		return nil, err
	}
	if booking.IsConflict(err) {
		if w.slot != nil && w.slot.ID == req.SlotID {
			w.slot = nil
		}
		if res.Slots != nil {
			w.available = res.Slots
		} else {
			w.markTaken(req.SlotID)
		}
	}
	return nil, err
}

// markTaken flags slotID as booked in the current list when no fresh list could be
// loaded after a conflict. mu must be held.
func (w *Wizard) markTaken(slotID int64) {
	updated := append([]models.Slot(nil), w.available...)
	for i := range updated {
		if updated[i].ID == slotID && updated[i].Selectable() {
			updated[i].Status = models.SlotBooked
		}
	}
	w.available = updated
}

func (w *Wizard) requestLocked(vehicleID int64) booking.Request {
	req := booking.Request{VehicleID: vehicleID, Start: w.start}
	if w.station != nil {
		req.StationID = w.station.ID
	}
	if w.port != nil {
		req.PortID = w.port.ID
	}
	if w.slot != nil {
		req.SlotID = w.slot.ID
	}
	return req
}

// Close abandons the wizard. Responses still in flight are discarded.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.generation++
}
