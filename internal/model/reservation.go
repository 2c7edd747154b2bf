package model

import "time"

// ReservationState は予約のライフサイクル状態を表します
type ReservationState string

const (
	ReservationActive    ReservationState = "activa"
	ReservationCancelled ReservationState = "cancelada"
)

// CancelOutcome は Cancel の結果です
type CancelOutcome string

const (
	// CancelOutcomeCancelled は activa から cancelada に遷移したことを表します
	CancelOutcomeCancelled CancelOutcome = "cancelada"
	// CancelOutcomeAlreadyCancelled は既に cancelada だったため何もしなかったことを表します
	CancelOutcomeAlreadyCancelled CancelOutcome = "ya_cancelada"
)

// Reservation は顧客と客室を宿泊期間で結びつける予約です
// 顧客と客室は参照として保持し、1泊あたりの価格は作成時点の値を固定で保持します
type Reservation struct {
	ID           int64
	client       *Client
	room         *Room
	checkIn      time.Time
	checkOut     time.Time
	nightlyPrice float64
	state        ReservationState
}

// ReservationSummary は予約のスナップショットです
// 顧客の予約履歴と予約ログにはこの値が保存されます
type ReservationSummary struct {
	ID           int64            `json:"id"`
	ClientName   string           `json:"cliente"`
	RoomID       int64            `json:"habitacion"`
	CheckIn      string           `json:"ingreso"`
	CheckOut     string           `json:"salida"`
	NightlyPrice float64          `json:"precio_por_dia"`
	TotalPrice   float64          `json:"precio_total"`
	State        ReservationState `json:"estado"`
}

// NewReservation は予約を作成します
// チェックアウトがチェックイン以前の場合はエラーを返し、客室の状態も変更しません
// 客室が disponible の場合は reservada に遷移させます。それ以外の状態では予約のみ作成され、客室は変更されません
func NewReservation(id int64, client *Client, room *Room, checkIn, checkOut time.Time, nightlyPrice float64) (*Reservation, error) {
	r, err := newReservation(id, client, room, checkIn, checkOut, nightlyPrice, ReservationActive)
	if err != nil {
		return nil, err
	}
	room.Reserve()
	return r, nil
}

// RestoreReservation は永続化された予約を復元します
// 客室の状態は客室側のレコードから復元されるため、ここでは変更しません
func RestoreReservation(id int64, client *Client, room *Room, checkIn, checkOut time.Time, nightlyPrice float64, state ReservationState) (*Reservation, error) {
	if state != ReservationCancelled {
		state = ReservationActive
	}
	return newReservation(id, client, room, checkIn, checkOut, nightlyPrice, state)
}

func newReservation(id int64, client *Client, room *Room, checkIn, checkOut time.Time, nightlyPrice float64, state ReservationState) (*Reservation, error) {
	if client == nil {
		return nil, newValidationError("client", "is required")
	}
	if room == nil {
		return nil, newValidationError("room", "is required")
	}
	in := truncateToDate(checkIn)
	out := truncateToDate(checkOut)
	if !out.After(in) {
		return nil, &ValidationError{
			Field:  "check_out",
			Reason: "must be later than check-in",
			Err:    ErrInvalidDate,
		}
	}
	if err := validatePrice(nightlyPrice); err != nil {
		return nil, err
	}

	return &Reservation{
		ID:           id,
		client:       client,
		room:         room,
		checkIn:      in,
		checkOut:     out,
		nightlyPrice: nightlyPrice,
		state:        state,
	}, nil
}

func (r *Reservation) Client() *Client         { return r.client }
func (r *Reservation) Room() *Room             { return r.room }
func (r *Reservation) CheckIn() time.Time      { return r.checkIn }
func (r *Reservation) CheckOut() time.Time     { return r.checkOut }
func (r *Reservation) NightlyPrice() float64   { return r.nightlyPrice }
func (r *Reservation) State() ReservationState { return r.state }
func (r *Reservation) IsActive() bool          { return r.state == ReservationActive }

// Nights は宿泊数を返します
func (r *Reservation) Nights() int {
	return NightsBetween(r.checkIn, r.checkOut)
}

// TotalPrice は宿泊数 × 1泊あたりの価格を都度計算して返します
func (r *Reservation) TotalPrice() float64 {
	return float64(r.Nights()) * r.nightlyPrice
}

// Cancel は予約を取り消し、客室を disponible に戻します
// 既に cancelada の場合は何も変更せず CancelOutcomeAlreadyCancelled を返します
func (r *Reservation) Cancel() CancelOutcome {
	if r.state != ReservationActive {
		return CancelOutcomeAlreadyCancelled
	}
	r.state = ReservationCancelled
	r.room.Release()
	return CancelOutcomeCancelled
}

// Summary は予約のスナップショットを返します
func (r *Reservation) Summary() ReservationSummary {
	return ReservationSummary{
		ID:           r.ID,
		ClientName:   r.client.Name(),
		RoomID:       r.room.ID,
		CheckIn:      FormatDate(r.checkIn),
		CheckOut:     FormatDate(r.checkOut),
		NightlyPrice: r.nightlyPrice,
		TotalPrice:   r.TotalPrice(),
		State:        r.state,
	}
}
