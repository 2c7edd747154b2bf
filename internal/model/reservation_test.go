package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(1, "carlos gómez", "carlos@gmail.com", "3001234567")
	require.NoError(t, err)
	return c
}

func newTestRoom(t *testing.T, price float64, state string) *Room {
	t.Helper()
	r, err := NewRoom(1, "Suite", price, state)
	require.NoError(t, err)
	return r
}

func TestReservation_Lifecycle(t *testing.T) {
	client := newTestClient(t)
	room := newTestRoom(t, 100000, "")

	res, err := NewReservation(1, client, room, mustDate(t, "2025-10-20"), mustDate(t, "2025-10-25"), room.Price())
	require.NoError(t, err)

	assert.Equal(t, RoomReserved, room.State())
	assert.Equal(t, ReservationActive, res.State())
	assert.Equal(t, 5, res.Nights())
	assert.Equal(t, 500000.0, res.TotalPrice())

	assert.Equal(t, CancelOutcomeCancelled, res.Cancel())
	assert.Equal(t, ReservationCancelled, res.State())
	assert.Equal(t, RoomAvailable, room.State())

	// 二回目の取消は何も変更しない
	room.Occupy()
	assert.Equal(t, CancelOutcomeAlreadyCancelled, res.Cancel())
	assert.Equal(t, ReservationCancelled, res.State())
	assert.Equal(t, RoomOccupied, room.State())
}

func TestReservation_InvalidDates(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  string
		checkOut string
	}{
		{"チェックアウトが前", "2025-10-10", "2025-10-05"},
		{"同日", "2025-10-10", "2025-10-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := newTestRoom(t, 100000, "")
			res, err := NewReservation(1, newTestClient(t), room, mustDate(t, tt.checkIn), mustDate(t, tt.checkOut), room.Price())
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, IsValidationError(err))
			assert.True(t, errors.Is(err, ErrInvalidDate))
			assert.Equal(t, RoomAvailable, room.State())
		})
	}
}

func TestReservation_PriceIsFrozen(t *testing.T) {
	room := newTestRoom(t, 100000, "")
	res, err := NewReservation(1, newTestClient(t), room, mustDate(t, "2025-12-01"), mustDate(t, "2025-12-04"), room.Price())
	require.NoError(t, err)

	require.NoError(t, room.SetPrice(250000))

	assert.Equal(t, 100000.0, res.NightlyPrice())
	assert.Equal(t, 300000.0, res.TotalPrice())
	assert.Equal(t, 300000.0, res.Summary().TotalPrice)
}

func TestReservation_TotalPriceOverLongStay(t *testing.T) {
	room := newTestRoom(t, 100, "")
	res, err := NewReservation(1, newTestClient(t), room, mustDate(t, "2000-01-01"), mustDate(t, "2400-01-01"), room.Price())
	require.NoError(t, err)

	assert.Equal(t, 146097, res.Nights())
	assert.Equal(t, 14609700.0, res.TotalPrice())
}

func TestReservation_RoomNotAvailable(t *testing.T) {
	room := newTestRoom(t, 100000, "ocupada")
	res, err := NewReservation(1, newTestClient(t), room, mustDate(t, "2025-10-20"), mustDate(t, "2025-10-22"), room.Price())
	require.NoError(t, err)

	assert.Equal(t, ReservationActive, res.State())
	assert.Equal(t, RoomOccupied, room.State())

	// 取消は客室の状態に関わらず disponible に戻す
	res.Cancel()
	assert.Equal(t, RoomAvailable, room.State())
}

func TestReservation_Summary(t *testing.T) {
	client := newTestClient(t)
	room := newTestRoom(t, 90000, "")
	res, err := NewReservation(3, client, room, mustDate(t, "2024-02-28"), mustDate(t, "2024-03-01"), room.Price())
	require.NoError(t, err)

	assert.Equal(t, ReservationSummary{
		ID:           3,
		ClientName:   "Carlos Gómez",
		RoomID:       1,
		CheckIn:      "2024-02-28",
		CheckOut:     "2024-03-01",
		NightlyPrice: 90000,
		TotalPrice:   180000,
		State:        ReservationActive,
	}, res.Summary())
}

func TestReservation_ClientHistoryIndependentOfLiveReservation(t *testing.T) {
	client := newTestClient(t)
	room1 := newTestRoom(t, 100000, "")
	room2, err := NewRoom(2, "Doble", 60000, "")
	require.NoError(t, err)

	r1, err := NewReservation(1, client, room1, mustDate(t, "2025-10-20"), mustDate(t, "2025-10-25"), room1.Price())
	require.NoError(t, err)
	client.RecordReservation(r1.Summary())
	s1 := r1.Summary()

	r2, err := NewReservation(2, client, room2, mustDate(t, "2025-11-01"), mustDate(t, "2025-11-02"), room2.Price())
	require.NoError(t, err)
	client.RecordReservation(r2.Summary())
	s2 := r2.Summary()

	r1.Cancel()

	history := client.History()
	require.Len(t, history, 2)
	assert.Equal(t, s1, history[0])
	assert.Equal(t, s2, history[1])
	assert.Equal(t, ReservationActive, history[0].State)
}

func TestReservation_RequiresClientAndRoom(t *testing.T) {
	room := newTestRoom(t, 100000, "")
	_, err := NewReservation(1, nil, room, mustDate(t, "2025-10-20"), mustDate(t, "2025-10-21"), 1)
	assert.True(t, IsValidationError(err))

	_, err = NewReservation(1, newTestClient(t), nil, mustDate(t, "2025-10-20"), mustDate(t, "2025-10-21"), 1)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, RoomAvailable, room.State())
}

func TestRestoreReservation(t *testing.T) {
	room := newTestRoom(t, 100000, "")
	res, err := RestoreReservation(9, newTestClient(t), room, mustDate(t, "2025-10-20"), mustDate(t, "2025-10-21"), 100000, ReservationCancelled)
	require.NoError(t, err)
	assert.Equal(t, ReservationCancelled, res.State())
	assert.Equal(t, RoomAvailable, room.State())
}
