package model

import (
	"math"
	"strconv"
	"strings"
	"sync"
)

// RoomState は客室の利用状態を表します
type RoomState string

const (
	RoomAvailable RoomState = "disponible"
	RoomOccupied  RoomState = "ocupada"
	RoomReserved  RoomState = "reservada"
)

var validRoomStates = map[RoomState]struct{}{
	RoomAvailable: {},
	RoomOccupied:  {},
	RoomReserved:  {},
}

// NormalizeRoomState は状態文字列を RoomState に変換します
// 未知の値はエラーにせず disponible として扱います
func NormalizeRoomState(s string) RoomState {
	state := RoomState(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := validRoomStates[state]; !ok {
		return RoomAvailable
	}
	return state
}

func (s RoomState) String() string {
	return string(s)
}

// Room はホテルの客室を表します
// 状態遷移は occupy / reserve / release のみで行われます
type Room struct {
	ID    int64
	Type  string
	mu    sync.Mutex
	price float64
	state RoomState
}

// RoomInfo は客室情報の参照用スナップショットです
type RoomInfo struct {
	ID    int64     `json:"id_habitacion"`
	Type  string    `json:"tipo"`
	Price float64   `json:"precio"`
	State RoomState `json:"estado"`
}

// NewRoom は客室を作成します
// state が空または不正な場合は disponible になります。価格が不正な場合はエラーを返します
func NewRoom(id int64, roomType string, price float64, state string) (*Room, error) {
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	return &Room{
		ID:    id,
		Type:  strings.TrimSpace(roomType),
		price: price,
		state: NormalizeRoomState(state),
	}, nil
}

// ParsePrice は文字列の価格を数値に変換します
func ParsePrice(s string) (float64, error) {
	p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &ValidationError{Field: "price", Reason: "must be a number: " + s, Err: ErrInvalidPrice}
	}
	if err := validatePrice(p); err != nil {
		return 0, err
	}
	return p, nil
}

func validatePrice(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return &ValidationError{Field: "price", Reason: "must be a non-negative number", Err: ErrInvalidPrice}
	}
	return nil
}

func (r *Room) Price() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.price
}

func (r *Room) State() RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// IsAvailable は客室が disponible の場合に true を返します
func (r *Room) IsAvailable() bool {
	return r.State() == RoomAvailable
}

// Occupy は disponible の客室を ocupada にします。遷移した場合に true を返します
func (r *Room) Occupy() bool {
	return r.transitionFromAvailable(RoomOccupied)
}

// Reserve は disponible の客室を reservada にします。遷移した場合に true を返します
func (r *Room) Reserve() bool {
	return r.transitionFromAvailable(RoomReserved)
}

// check and set under one lock so two callers cannot both see disponible.
func (r *Room) transitionFromAvailable(to RoomState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != RoomAvailable {
		return false
	}
	r.state = to
	return true
}

// Release は現在の状態に関わらず客室を disponible に戻します
func (r *Room) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = RoomAvailable
}

// SetPrice は価格を更新します。不正な値の場合は価格を変更せずエラーを返します
func (r *Room) SetPrice(price float64) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.price = price
	return nil
}

// Info は客室情報のスナップショットを返します
func (r *Room) Info() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomInfo{
		ID:    r.ID,
		Type:  r.Type,
		Price: r.price,
		State: r.state,
	}
}
