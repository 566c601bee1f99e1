package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chargebook/backend/libs/logging"
	libredis "chargebook/backend/libs/redis"
	"chargebook/backend/services/booking-client/internal/booking"
	"chargebook/backend/services/booking-client/internal/catalog"
	"chargebook/backend/services/booking-client/internal/clients"
	"chargebook/backend/services/booking-client/internal/config"
	"chargebook/backend/services/booking-client/internal/models"
	"chargebook/backend/services/booking-client/internal/preferences"
	"chargebook/backend/services/booking-client/internal/window"
	"chargebook/backend/services/booking-client/internal/wizard"
	"chargebook/backend/services/booking-client/internal/ws"
)

var (
	ErrStationNotFound = errors.New("station not found")
	ErrPortUnavailable = errors.New("port is not available")
	ErrSlotNotOffered  = errors.New("slot is not available")
	ErrNoVehicle       = errors.New("no vehicle registered for this account")
	ErrVehicleNotOwned = errors.New("vehicle does not belong to this account")

	ErrPreferencesDisabled = errors.New("vehicle preferences are not configured")
)

// App wires booking client dependencies.
type App struct {
	token       *clients.Token
	stations    *clients.StationsClient
	vehicles    *clients.VehiclesClient
	fetcher     *booking.Fetcher
	committer   *booking.Committer
	calc        *window.Calculator
	watcher     *ws.SlotWatcher
	prefs       *preferences.Store
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph. Preferences are skipped when no redis address
// is configured; an unreachable redis is logged and skipped as well.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	logger = logging.OrNop(logger)
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	token := clients.NewToken(cfg.Auth.Token)
	breaker := clients.NewBreakerDoer(clients.NewDefaultHTTPClient(cfg.HTTPTimeout()), cfg.BreakerSettings(), logger)
	base := clients.NewBaseClient(cfg.Server.BaseURL, breaker,
		clients.WithToken(token),
		clients.WithLogger(logger.Named("http")),
	)

	calc := window.NewCalculator(loc, nil)
	fetcher := booking.NewFetcher(clients.NewSlotsClient(base), logger)

	a := &App{
		token:     token,
		stations:  clients.NewStationsClient(base),
		vehicles:  clients.NewVehiclesClient(base),
		fetcher:   fetcher,
		committer: booking.NewCommitter(fetcher, clients.NewReservationsClient(base), calc, logger.Named("commit")),
		calc:      calc,
		watcher:   ws.NewSlotWatcher(cfg.WebsocketURL(), token, logger.Named("ws")),
		logger:    logger,
	}

	if cfg.PreferencesEnabled() {
		client, err := libredis.NewRedisClient(ctx, cfg.RedisOptions())
		if err != nil {
			logger.Warn("preferences disabled, redis unreachable", zap.Error(err))
		} else {
			a.redisClient = client
			a.prefs = preferences.NewStore(client, cfg.PreferenceTTL())
		}
	}

	return a, nil
}

// Calculator returns the window calculator in the driver's timezone.
func (a *App) Calculator() *window.Calculator {
	return a.calc
}

// NewWizard starts a fresh booking attempt.
func (a *App) NewWizard() *wizard.Wizard {
	return wizard.New(a.fetcher, a.committer, a.calc, a.logger.Named("wizard"))
}

// Stations lists, filters and ranks the catalog around user (nil keeps server order).
func (a *App) Stations(ctx context.Context, f catalog.Filter, user *catalog.Coordinate) ([]catalog.Candidate, error) {
	stations, err := a.stations.ListStations(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Apply(stations, f, user), nil
}

// Station finds a station by id.
func (a *App) Station(ctx context.Context, id int64) (models.Station, error) {
	stations, err := a.stations.ListStations(ctx)
	if err != nil {
		return models.Station{}, err
	}
	for _, st := range stations {
		if st.ID == id {
			return st, nil
		}
	}
	return models.Station{}, fmt.Errorf("%w: %d", ErrStationNotFound, id)
}

// Slots returns the current slots of a port.
func (a *App) Slots(ctx context.Context, portID int64) ([]models.Slot, error) {
	return a.fetcher.Fetch(ctx, portID)
}

// Watch streams live slot updates for a port until ctx ends.
func (a *App) Watch(ctx context.Context, portID int64, fn ws.SlotHandler) error {
	return a.watcher.Watch(ctx, portID, fn)
}

// WatchWizard keeps w's slot list live for its current port: it reloads the list once,
// then applies every pushed update until ctx ends. onUpdate, when set, sees the wizard
// state after each applied update.
func (a *App) WatchWizard(ctx context.Context, w *wizard.Wizard, onUpdate func(wizard.Selection)) error {
	sel := w.Snapshot()
	if sel.Stage != wizard.ChoosingSlotAndConfirming || sel.Port == nil {
		return wizard.ErrWrongStage
	}
	portID := sel.Port.ID

	if err := w.RefreshSlots(ctx); err != nil {
		return err
	}
	if onUpdate != nil {
		onUpdate(w.Snapshot())
	}

	return a.watcher.Watch(ctx, portID, func(slots []models.Slot) {
		if !w.ApplySlots(portID, slots) {
			a.logger.Debug("slot update ignored, wizard moved on", zap.Int64("port_id", portID))
			return
		}
		if onUpdate != nil {
			onUpdate(w.Snapshot())
		}
	})
}

// Vehicles lists the caller's vehicles together with the one a reservation would use
// by default.
func (a *App) Vehicles(ctx context.Context) ([]models.Vehicle, models.Vehicle, error) {
	vehicles, err := a.vehicles.ListVehicles(ctx)
	if err != nil {
		return nil, models.Vehicle{}, err
	}
	v, _ := preferences.ResolveVehicle(vehicles, a.rememberedVehicle(ctx))
	return vehicles, v, nil
}

// ForgetVehicle drops the caller's remembered default vehicle.
func (a *App) ForgetVehicle(ctx context.Context) error {
	if a.prefs == nil {
		return ErrPreferencesDisabled
	}
	return a.prefs.ForgetDefaultVehicle(ctx, a.token.UserID())
}

func (a *App) rememberedVehicle(ctx context.Context) int64 {
	if a.prefs == nil {
		return 0
	}
	pref, err := a.prefs.DefaultVehicle(ctx, a.token.UserID())
	if err != nil {
		a.logger.Warn("failed to load default vehicle", zap.Error(err))
		return 0
	}
	if pref == nil {
		return 0
	}
	return pref.VehicleID
}

// ResolveVehicle returns the vehicle to book with. An explicit id must be owned by the
// caller; otherwise the remembered default or the first vehicle is used.
func (a *App) ResolveVehicle(ctx context.Context, explicit int64) (models.Vehicle, error) {
	vehicles, err := a.vehicles.ListVehicles(ctx)
	if err != nil {
		return models.Vehicle{}, err
	}
	if len(vehicles) == 0 {
		return models.Vehicle{}, ErrNoVehicle
	}
	if explicit != 0 {
		for _, v := range vehicles {
			if v.ID == explicit {
				return v, nil
			}
		}
		return models.Vehicle{}, fmt.Errorf("%w: %d", ErrVehicleNotOwned, explicit)
	}

	v, _ := preferences.ResolveVehicle(vehicles, a.rememberedVehicle(ctx))
	return v, nil
}

// RememberVehicle stores vehicleID as the caller's default. Failures are logged only.
func (a *App) RememberVehicle(ctx context.Context, vehicleID int64) {
	if a.prefs == nil || a.token.UserID() == "" {
		return
	}
	if err := a.prefs.SaveDefaultVehicle(ctx, a.token.UserID(), vehicleID); err != nil {
		a.logger.Warn("failed to remember vehicle", zap.Int64("vehicle_id", vehicleID), zap.Error(err))
	}
}

// ReserveRequest is a one-shot booking: every choice the wizard asks for, up front.
type ReserveRequest struct {
	StationID int64
	PortID    int64
	SlotID    int64
	VehicleID int64
	Date      string
	Clock     string
}

// Reserve drives a wizard through every stage and commits. On a slot conflict the
// returned error wraps booking.ErrSlotUnavailable or booking.ErrSlotTaken.
func (a *App) Reserve(ctx context.Context, req ReserveRequest) (*models.Reservation, error) {
	st, err := a.Station(ctx, req.StationID)
	if err != nil {
		return nil, err
	}

	w := a.NewWizard()
	defer w.Close()

	if err := w.SelectStation(st); err != nil {
		return nil, err
	}
	ok, err := w.SelectPort(ctx, req.PortID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrPortUnavailable, req.PortID)
	}
	if !w.SelectSlot(req.SlotID) {
		slot, found := models.FindSlot(w.Snapshot().Slots, req.SlotID)
		if !found {
			return nil, fmt.Errorf("%w: %d", ErrSlotNotOffered, req.SlotID)
		}
		return nil, fmt.Errorf("%w: %d (%s)", ErrSlotNotOffered, req.SlotID, slot.BlockedReason())
	}
	if _, err := w.SetStart(req.Date, req.Clock); err != nil {
		return nil, err
	}

	vehicle, err := a.ResolveVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}

	reservation, err := w.Commit(ctx, vehicle.ID)
	if err != nil {
		return nil, err
	}
	a.RememberVehicle(ctx, vehicle.ID)
	return reservation, nil
}

// Close releases resources.
func (a *App) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
