package preferences

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chargebook/backend/services/booking-client/internal/models"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewStore(client, ttl)
	store.now = func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) }
	return store, mr
}

func TestStore_SaveAndLoad(t *testing.T) {
	store, mr := newTestStore(t, 0)
	ctx := context.Background()

	pref, err := store.DefaultVehicle(ctx, "42")
	require.NoError(t, err)
	assert.Nil(t, pref)

	require.NoError(t, store.SaveDefaultVehicle(ctx, "42", 3))
	assert.True(t, mr.Exists("booking:prefs:vehicle:42"))

	pref, err = store.DefaultVehicle(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, pref)
	assert.Equal(t, int64(3), pref.VehicleID)
	assert.Equal(t, 2024, pref.UpdatedAt.Year())

	require.NoError(t, store.ForgetDefaultVehicle(ctx, "42"))
	pref, err = store.DefaultVehicle(ctx, "42")
	require.NoError(t, err)
	assert.Nil(t, pref)
}

func TestStore_TTL(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	require.NoError(t, store.SaveDefaultVehicle(context.Background(), "u-1", 9))
	assert.Equal(t, time.Hour, mr.TTL("booking:prefs:vehicle:u-1"))

	mr.FastForward(2 * time.Hour)
	pref, err := store.DefaultVehicle(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Nil(t, pref)
}

func TestStore_RequiresUser(t *testing.T) {
	store, _ := newTestStore(t, 0)
	assert.ErrorIs(t, store.SaveDefaultVehicle(context.Background(), " ", 1), ErrNoUser)

	pref, err := store.DefaultVehicle(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, pref)
}

func TestStore_CorruptEntry(t *testing.T) {
	store, mr := newTestStore(t, 0)
	require.NoError(t, mr.Set("booking:prefs:vehicle:7", "{not json"))

	_, err := store.DefaultVehicle(context.Background(), "7")
	assert.Error(t, err)
}

func TestResolveVehicle(t *testing.T) {
	vehicles := []models.Vehicle{{ID: 1, Name: "Car A"}, {ID: 2, Name: "Car B"}}

	v, ok := ResolveVehicle(vehicles, 2)
	require.True(t, ok)
	assert.Equal(t, int64(2), v.ID)

	v, ok = ResolveVehicle(vehicles, 99)
	require.True(t, ok)
	assert.Equal(t, int64(1), v.ID, "sold vehicle falls back to first")

	v, ok = ResolveVehicle(vehicles, 0)
	require.True(t, ok)
	assert.Equal(t, int64(1), v.ID)

	_, ok = ResolveVehicle(nil, 1)
	assert.False(t, ok)
}
