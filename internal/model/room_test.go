package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoom_State(t *testing.T) {
	tests := []struct {
		in   string
		want RoomState
	}{
		{"", RoomAvailable},
		{"disponible", RoomAvailable},
		{"OCUPADA", RoomOccupied},
		{" reservada ", RoomReserved},
		{"mantenimiento", RoomAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, err := NewRoom(1, "Suite", 100000, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.State())
		})
	}
}

func TestNewRoom_InvalidPrice(t *testing.T) {
	for _, p := range []float64{-1, math.NaN(), math.Inf(1)} {
		r, err := NewRoom(1, "Doble", p, "")
		require.Error(t, err)
		assert.Nil(t, r)
		assert.True(t, errors.Is(err, ErrInvalidPrice))
	}
}

func TestRoom_Transitions(t *testing.T) {
	r, err := NewRoom(1, "Sencilla", 80000, "")
	require.NoError(t, err)

	assert.True(t, r.IsAvailable())
	assert.True(t, r.Reserve())
	assert.Equal(t, RoomReserved, r.State())

	// 二回目の予約は拒否され、状態は変わらない
	assert.False(t, r.Reserve())
	assert.False(t, r.Occupy())
	assert.Equal(t, RoomReserved, r.State())

	r.Release()
	assert.Equal(t, RoomAvailable, r.State())
	r.Release()
	assert.Equal(t, RoomAvailable, r.State())

	assert.True(t, r.Occupy())
	assert.Equal(t, RoomOccupied, r.State())
	assert.False(t, r.Reserve())
	r.Release()
	assert.True(t, r.IsAvailable())
}

func TestRoom_ConcurrentReserve(t *testing.T) {
	r, err := NewRoom(1, "Suite", 100000, "")
	require.NoError(t, err)

	const workers = 50
	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		go func() { results <- r.Reserve() }()
	}

	won := 0
	for i := 0; i < workers; i++ {
		if <-results {
			won++
		}
	}
	assert.Equal(t, 1, won)
}

func TestRoom_SetPrice(t *testing.T) {
	r, err := NewRoom(1, "Suite", 100000, "")
	require.NoError(t, err)

	require.NoError(t, r.SetPrice(120000))
	assert.Equal(t, 120000.0, r.Price())

	err = r.SetPrice(-5)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, 120000.0, r.Price())

	require.NoError(t, r.SetPrice(0))
	assert.Equal(t, 0.0, r.Price())
}

func TestParsePrice(t *testing.T) {
	p, err := ParsePrice(" 95000.5 ")
	require.NoError(t, err)
	assert.Equal(t, 95000.5, p)

	for _, in := range []string{"abc", "", "-10", "NaN"} {
		_, err := ParsePrice(in)
		assert.ErrorIs(t, err, ErrInvalidPrice, in)
	}
}

func TestRoom_Info(t *testing.T) {
	r, err := NewRoom(7, " Doble ", 150000, "ocupada")
	require.NoError(t, err)
	assert.Equal(t, RoomInfo{ID: 7, Type: "Doble", Price: 150000, State: RoomOccupied}, r.Info())
}
