package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chargebook/backend/services/booking-client/internal/models"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestStationsClient_ListStations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stations", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`[{"id":1,"name":"A","address":"District 1","latitude":10.1,"longitude":106.2,"status":"active",
			"ports":[{"id":7,"type":"DC","power_kw":60,"price_per_kwh":3500,"speed":"fast","status":"available"}]}]`))
	}))
	defer srv.Close()

	stations, err := NewStationsClient(NewBaseClient(srv.URL, srv.Client())).ListStations(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, "A", stations[0].Name)
	assert.True(t, stations[0].HasCoordinate())
	require.Len(t, stations[0].Ports, 1)
	assert.Equal(t, models.PortDC, stations[0].Ports[0].Type)
	assert.Equal(t, models.PortAvailable, stations[0].Ports[0].Status)
}

func TestSlotsClient_ListSlots_Envelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ports/7/slots", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"id":1,"number":1,"status":"available"},{"id":2,"number":2,"status":"booked","next_available_at":"2024-01-01T10:15:00Z"}]}`))
	}))
	defer srv.Close()

	slots, err := NewSlotsClient(NewBaseClient(srv.URL+"/", srv.Client())).ListSlots(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.True(t, slots[0].Selectable())
	assert.False(t, slots[1].Selectable())
	require.NotNil(t, slots[1].NextAvailableAt)
}

func TestReservationsClient_Create(t *testing.T) {
	start := time.Date(2024, 1, 1, 23, 50, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/reservations", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(IdempotencyHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.ReservationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(3), req.VehicleID)
		require.Len(t, req.Items, 1)
		assert.Equal(t, int64(1), req.Items[0].SlotID)
		assert.True(t, req.Items[0].StartTime.Equal(start))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":99,"vehicle_id":3,"status":"pending"}`))
	}))
	defer srv.Close()

	client := NewReservationsClient(NewBaseClient(srv.URL, srv.Client()))
	res, err := client.CreateReservation(context.Background(), models.ReservationRequest{
		VehicleID: 3,
		Items:     []models.ReservationItem{{SlotID: 1, StartTime: start, EndTime: start.Add(15 * time.Minute)}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(99), res.ID)
	assert.Equal(t, models.ReservationPending, res.Status)
}

func TestReservationsClient_ConflictAndMalformed(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusConflict)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`{"error":"slot already booked"}`))
	}))
	defer srv.Close()

	client := NewReservationsClient(NewBaseClient(srv.URL, srv.Client()))

	_, err := client.CreateReservation(context.Background(), models.ReservationRequest{VehicleID: 1})
	require.Error(t, err)
	assert.True(t, IsConflict(err))
	assert.False(t, IsMalformed(err))

	status.Store(http.StatusUnprocessableEntity)
	_, err = client.CreateReservation(context.Background(), models.ReservationRequest{VehicleID: 1})
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "slot already booked", apiErr.Message)
}

func TestBaseClient_AttachesBearerToken(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"user_id": 42, "exp": time.Now().Add(time.Hour).Unix()})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+raw, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	token := NewToken(raw)
	assert.Equal(t, "42", token.UserID())

	vehicles, err := NewVehiclesClient(NewBaseClient(srv.URL, srv.Client(), WithToken(token))).ListVehicles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, vehicles)
}

func TestBaseClient_ExpiredTokenFailsLocally(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	raw := signedToken(t, jwt.MapClaims{"sub": "u-1", "exp": time.Now().Add(-time.Minute).Unix()})
	base := NewBaseClient(srv.URL, srv.Client(), WithToken(NewToken(raw)))

	_, err := NewStationsClient(base).ListStations(context.Background())
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestNewToken_Opaque(t *testing.T) {
	token := NewToken("not-a-jwt")
	assert.False(t, token.Empty())
	assert.False(t, token.Expired(time.Now()))
	assert.Empty(t, token.UserID())
	assert.True(t, NewToken("  ").Empty())
}

func TestBreakerDoer_OpensOnServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	doer := NewBreakerDoer(srv.Client(), BreakerSettings{FailureThreshold: 2, OpenTimeout: time.Minute}, nil)
	client := NewSlotsClient(NewBaseClient(srv.URL, doer))

	for i := 0; i < 2; i++ {
		_, err := client.ListSlots(context.Background(), 1)
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	}
	assert.Equal(t, gobreaker.StateOpen, doer.cb.State())

	_, err := client.ListSlots(context.Background(), 1)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestBreakerDoer_ConflictDoesNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	doer := NewBreakerDoer(srv.Client(), BreakerSettings{FailureThreshold: 1}, nil)
	client := NewReservationsClient(NewBaseClient(srv.URL, doer))
	for i := 0; i < 3; i++ {
		_, err := client.CreateReservation(context.Background(), models.ReservationRequest{})
		assert.True(t, IsConflict(err))
	}
	assert.Equal(t, gobreaker.StateClosed, doer.cb.State())
}
