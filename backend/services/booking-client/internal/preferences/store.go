package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"chargebook/backend/services/booking-client/internal/models"
)

// ErrNoUser is returned when a preference is written without a user to key it by.
var ErrNoUser = errors.New("preferences: user id is empty")

// VehiclePreference is the remembered default vehicle of one driver.
type VehiclePreference struct {
	VehicleID int64     `json:"vehicle_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store keeps per-driver booking preferences in redis.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewStore returns a redis-backed store. A zero ttl keeps entries forever.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl, now: time.Now}
}

func (s *Store) key(userID string) string {
	return fmt.Sprintf("booking:prefs:vehicle:%s", userID)
}

// SaveDefaultVehicle remembers vehicleID for userID.
func (s *Store) SaveDefaultVehicle(ctx context.Context, userID string, vehicleID int64) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrNoUser
	}
	data, err := json.Marshal(VehiclePreference{VehicleID: vehicleID, UpdatedAt: s.now().UTC()})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(userID), data, s.ttl).Err()
}

// DefaultVehicle returns the remembered vehicle, or nil when none is stored.
func (s *Store) DefaultVehicle(ctx context.Context, userID string) (*VehiclePreference, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	result, err := s.client.Get(ctx, s.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var pref VehiclePreference
	if err := json.Unmarshal([]byte(result), &pref); err != nil {
		return nil, fmt.Errorf("preferences: decode: %w", err)
	}
	return &pref, nil
}

// ForgetDefaultVehicle drops the remembered vehicle.
func (s *Store) ForgetDefaultVehicle(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(strings.TrimSpace(userID))).Err()
}

// ResolveVehicle picks the remembered vehicle when the driver still owns it, otherwise
// the first one listed. It reports false when there are no vehicles.
func ResolveVehicle(vehicles []models.Vehicle, remembered int64) (models.Vehicle, bool) {
	if len(vehicles) == 0 {
		return models.Vehicle{}, false
	}
	if remembered != 0 {
		for _, v := range vehicles {
			if v.ID == remembered {
				return v, true
			}
		}
	}
	return vehicles[0], true
}
