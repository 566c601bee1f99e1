package booking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chargebook/backend/services/booking-client/internal/clients"
	"chargebook/backend/services/booking-client/internal/models"
	"chargebook/backend/services/booking-client/internal/window"
)

var testNow = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

type fakeLister struct {
	mu        sync.Mutex
	responses [][]models.Slot
	err       error
	calls     int
}

func (f *fakeLister) ListSlots(_ context.Context, _ int64) ([]models.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	idx := f.calls - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return f.responses[idx], nil
}

type fakeCreator struct {
	mu    sync.Mutex
	err   error
	calls []models.ReservationRequest
}

func (f *fakeCreator) CreateReservation(_ context.Context, req models.ReservationRequest) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Reservation{ID: 501, VehicleID: req.VehicleID, Status: models.ReservationPending, Items: req.Items}, nil
}

func newTestCommitter(lister *fakeLister, creator *fakeCreator) *Committer {
	calc := window.NewCalculator(time.UTC, func() time.Time { return testNow })
	return NewCommitter(NewFetcher(lister, nil), creator, calc, nil)
}

func validRequest() Request {
	return Request{StationID: 10, PortID: 7, SlotID: 1, VehicleID: 3, Start: testNow.Add(time.Hour)}
}

func TestCommit_Success(t *testing.T) {
	lister := &fakeLister{responses: [][]models.Slot{{
		{ID: 1, Number: 1, Status: models.SlotAvailable},
		{ID: 2, Number: 2, Status: models.SlotBooked},
	}}}
	creator := &fakeCreator{}

	res, err := newTestCommitter(lister, creator).Commit(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, res.Reservation)
	assert.Equal(t, int64(501), res.Reservation.ID)
	assert.Equal(t, 1, lister.calls)

	require.Len(t, creator.calls, 1)
	sent := creator.calls[0]
	assert.Equal(t, int64(3), sent.VehicleID)
	require.Len(t, sent.Items, 1)
	assert.Equal(t, int64(1), sent.Items[0].SlotID)
	assert.True(t, sent.Items[0].StartTime.Equal(testNow.Add(time.Hour)))
	assert.Equal(t, window.Length, sent.Items[0].EndTime.Sub(sent.Items[0].StartTime))
	assert.Equal(t, time.UTC, sent.Items[0].StartTime.Location())
}

func TestCommit_StaleSlotNeverSubmits(t *testing.T) {
	fresh := []models.Slot{
		{ID: 1, Number: 1, Status: models.SlotOccupied},
		{ID: 2, Number: 2, Status: models.SlotAvailable},
	}
	lister := &fakeLister{responses: [][]models.Slot{fresh}}
	creator := &fakeCreator{}

	res, err := newTestCommitter(lister, creator).Commit(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.True(t, IsConflict(err))
	assert.Empty(t, creator.calls)
	assert.Equal(t, fresh, res.Slots)
	assert.Contains(t, UserMessage(err), "no longer available")
}

func TestCommit_SlotMissingFromFreshList(t *testing.T) {
	lister := &fakeLister{responses: [][]models.Slot{{{ID: 2, Number: 2, Status: models.SlotAvailable}}}}
	creator := &fakeCreator{}

	_, err := newTestCommitter(lister, creator).Commit(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Empty(t, creator.calls)
}

func TestCommit_LateConflictRefetches(t *testing.T) {
	after := []models.Slot{{ID: 1, Number: 1, Status: models.SlotBooked}}
	lister := &fakeLister{responses: [][]models.Slot{
		{{ID: 1, Number: 1, Status: models.SlotAvailable}},
		after,
	}}
	creator := &fakeCreator{err: &clients.APIError{StatusCode: http.StatusConflict, Message: "slot already booked"}}

	res, err := newTestCommitter(lister, creator).Commit(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.True(t, IsConflict(err))
	assert.Len(t, creator.calls, 1)
	assert.Equal(t, 2, lister.calls)
	assert.Equal(t, after, res.Slots)
	assert.Nil(t, res.Reservation)
	assert.Contains(t, UserMessage(err), "was just taken")
}

func TestCommit_MalformedKeepsServerMessage(t *testing.T) {
	lister := &fakeLister{responses: [][]models.Slot{{{ID: 1, Status: models.SlotAvailable}}}}
	creator := &fakeCreator{err: &clients.APIError{StatusCode: http.StatusUnprocessableEntity, Message: "start time must be in the future"}}

	_, err := newTestCommitter(lister, creator).Commit(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrMalformedRequest)
	assert.False(t, IsConflict(err))
	assert.Equal(t, "start time must be in the future", UserMessage(err))
}

func TestCommit_TransportFailure(t *testing.T) {
	lister := &fakeLister{responses: [][]models.Slot{{{ID: 1, Status: models.SlotAvailable}}}}
	creator := &fakeCreator{err: fmt.Errorf("dial tcp: %w", clients.ErrServiceUnavailable)}

	_, err := newTestCommitter(lister, creator).Commit(context.Background(), validRequest())
	assert.ErrorIs(t, err, clients.ErrServiceUnavailable)
	assert.Contains(t, UserMessage(err), "temporarily unavailable")
}

func TestCommit_CanceledPassesThrough(t *testing.T) {
	lister := &fakeLister{responses: [][]models.Slot{{{ID: 1, Status: models.SlotAvailable}}}}
	creator := &fakeCreator{err: context.Canceled}

	_, err := newTestCommitter(lister, creator).Commit(context.Background(), validRequest())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCommit_FetchFailureDoesNotSubmit(t *testing.T) {
	lister := &fakeLister{err: errors.New("connection refused")}
	creator := &fakeCreator{}

	_, err := newTestCommitter(lister, creator).Commit(context.Background(), validRequest())
	require.Error(t, err)
	assert.False(t, IsConflict(err))
	assert.Empty(t, creator.calls)
}

func TestValidate_RejectsBeforeNetwork(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Request)
		field  string
	}{
		"no station": {func(r *Request) { r.StationID = 0 }, "station"},
		"no port":    {func(r *Request) { r.PortID = 0 }, "port"},
		"no slot":    {func(r *Request) { r.SlotID = 0 }, "slot"},
		"no vehicle": {func(r *Request) { r.VehicleID = 0 }, "vehicle"},
		"no start":   {func(r *Request) { r.Start = time.Time{} }, "start"},
		"yesterday":  {func(r *Request) { r.Start = testNow.Add(-24 * time.Hour) }, "start"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			lister := &fakeLister{responses: [][]models.Slot{{{ID: 1, Status: models.SlotAvailable}}}}
			creator := &fakeCreator{}
			req := validRequest()
			tc.mutate(&req)

			_, err := newTestCommitter(lister, creator).Commit(context.Background(), req)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
			assert.Zero(t, lister.calls)
			assert.Empty(t, creator.calls)
		})
	}
}

func TestValidate_PastStartWrapsWindowError(t *testing.T) {
	req := validRequest()
	req.Start = testNow.Add(-24 * time.Hour)

	err := newTestCommitter(&fakeLister{}, &fakeCreator{}).Validate(req)
	assert.ErrorIs(t, err, window.ErrStartInPast)
	assert.Equal(t, "The start time is in the past", UserMessage(err))
}

func TestValidate_WithinTolerance(t *testing.T) {
	req := validRequest()
	req.Start = testNow.Add(-4 * time.Minute)
	assert.NoError(t, newTestCommitter(&fakeLister{}, &fakeCreator{}).Validate(req))
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "Your reservation is already being submitted", UserMessage(ErrCommitInFlight))
	assert.Contains(t, UserMessage(fmt.Errorf("list: %w", clients.ErrTokenExpired)), "session has expired")
	assert.Equal(t, "Booking failed: boom", UserMessage(&clients.APIError{StatusCode: 500, Message: "boom"}))
	assert.Equal(t, "Booking failed, please try again", UserMessage(errors.New("eof")))
}
