// Package catalog は顧客・客室・予約の台帳を管理します
// 台帳はアプリケーションのセッションごとに作成し、必要な処理に参照で渡します
package catalog

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/uma-arai/sbcntr-hotel/internal/model"
	"github.com/uma-arai/sbcntr-hotel/internal/service/payment"
)

// RecordSink は予約・支払いのスナップショットの追記先です
type RecordSink interface {
	Append(ctx context.Context, record interface{}) error
}

// PaymentProcessor は支払いを処理します
type PaymentProcessor interface {
	Process(ctx context.Context, p *model.Payment) (model.PaymentRecord, error)
}

// Catalog は顧客・客室・予約の台帳です
type Catalog struct {
	mu           sync.Mutex
	clients      []*model.Client
	rooms        []*model.Room
	reservations []*model.Reservation

	lastClientID      int64
	lastRoomID        int64
	lastReservationID int64

	strictAvailability bool
	reservationLog     RecordSink
	paymentLog         RecordSink
	payments           PaymentProcessor
	paymentID          func() int
}

// Option は Catalog の設定を変更します
type Option func(*Catalog)

// WithStrictAvailability は disponible でない客室への予約を拒否するかどうかを設定します
func WithStrictAvailability(strict bool) Option {
	return func(c *Catalog) {
		c.strictAvailability = strict
	}
}

// WithReservationLog は予約スナップショットの追記先を設定します
func WithReservationLog(sink RecordSink) Option {
	return func(c *Catalog) {
		c.reservationLog = sink
	}
}

// WithPaymentLog は支払いレコードの追記先を設定します
func WithPaymentLog(sink RecordSink) Option {
	return func(c *Catalog) {
		c.paymentLog = sink
	}
}

// WithPaymentProcessor は支払い処理を設定します
func WithPaymentProcessor(p PaymentProcessor) Option {
	return func(c *Catalog) {
		c.payments = p
	}
}

// WithPaymentIDGenerator は支払いIDの生成関数を設定します
func WithPaymentIDGenerator(gen func() int) Option {
	return func(c *Catalog) {
		c.paymentID = gen
	}
}

// New は空の台帳を作成します
func New(opts ...Option) *Catalog {
	c := &Catalog{
		strictAvailability: true,
		payments:           payment.NewProcessor(),
		paymentID:          payment.NewPaymentID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterClient は顧客を登録します
func (c *Catalog) RegisterClient(name, email, phone string) (*model.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	client, err := model.NewClient(c.lastClientID+1, name, email, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to register client: %w", err)
	}
	c.lastClientID = client.ID
	c.clients = append(c.clients, client)
	return client, nil
}

// UpdateClient は顧客情報をフィールドごとに更新します
func (c *Catalog) UpdateClient(id int64, u model.ClientUpdate) (model.UpdateReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	client, ok := c.findClient(id)
	if !ok {
		return nil, &model.NotFoundError{Entity: "client", ID: id}
	}
	return client.Update(u), nil
}

// RegisterRoom は客室を登録します
// 種別は先頭のみ大文字に揃えます
func (c *Catalog) RegisterRoom(roomType string, price float64, state string) (*model.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, err := model.NewRoom(c.lastRoomID+1, capitalize(roomType), price, state)
	if err != nil {
		return nil, fmt.Errorf("failed to register room: %w", err)
	}
	c.lastRoomID = room.ID
	c.rooms = append(c.rooms, room)
	return room, nil
}

// SetRoomPrice は客室の価格を更新します。既存の予約の価格には影響しません
func (c *Catalog) SetRoomPrice(id int64, price float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	room, ok := c.findRoom(id)
	if !ok {
		return &model.NotFoundError{Entity: "room", ID: id}
	}
	return room.SetPrice(price)
}

// OccupyRoom は客室を ocupada にします。遷移しなかった場合は false を返します
func (c *Catalog) OccupyRoom(id int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	room, ok := c.findRoom(id)
	if !ok {
		return false, &model.NotFoundError{Entity: "room", ID: id}
	}
	return room.Occupy(), nil
}

// ReleaseRoom は客室を disponible に戻します
func (c *Catalog) ReleaseRoom(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	room, ok := c.findRoom(id)
	if !ok {
		return &model.NotFoundError{Entity: "room", ID: id}
	}
	room.Release()
	return nil
}

// Client は顧客を検索します
func (c *Catalog) Client(id int64) (*model.Client, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findClient(id)
}

// Room は客室を検索します
func (c *Catalog) Room(id int64) (*model.Room, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findRoom(id)
}

// Reservation は予約を検索します
func (c *Catalog) Reservation(id int64) (*model.Reservation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findReservation(id)
}

func (c *Catalog) findClient(id int64) (*model.Client, bool) {
	for _, cl := range c.clients {
		if cl.ID == id {
			return cl, true
		}
	}
	return nil, false
}

func (c *Catalog) findRoom(id int64) (*model.Room, bool) {
	for _, r := range c.rooms {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

func (c *Catalog) findReservation(id int64) (*model.Reservation, bool) {
	for _, r := range c.reservations {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// Clients は登録順の顧客一覧を返します
func (c *Catalog) Clients() []*model.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*model.Client(nil), c.clients...)
}

// Rooms は登録順の客室一覧を返します
func (c *Catalog) Rooms() []*model.Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*model.Room(nil), c.rooms...)
}

// AvailableRooms は disponible の客室一覧を返します
func (c *Catalog) AvailableRooms() []*model.Room {
	c.mu.Lock()
	defer c.mu.Unlock()

	var rooms []*model.Room
	for _, r := range c.rooms {
		if r.IsAvailable() {
			rooms = append(rooms, r)
		}
	}
	return rooms
}

// Reservations は作成順の予約一覧を返します
func (c *Catalog) Reservations() []*model.Reservation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*model.Reservation(nil), c.reservations...)
}

// ActiveReservations は activa の予約一覧を返します
func (c *Catalog) ActiveReservations() []*model.Reservation {
	c.mu.Lock()
	defer c.mu.Unlock()

	var res []*model.Reservation
	for _, r := range c.reservations {
		if r.IsActive() {
			res = append(res, r)
		}
	}
	return res
}

// CreateReservation は顧客と客室を指定して予約を作成します
// 作成した予約のスナップショットは顧客の履歴と予約ログに追加されます
func (c *Catalog) CreateReservation(ctx context.Context, clientID, roomID int64, checkIn, checkOut string) (*model.Reservation, error) {
	in, err := model.ParseDate(checkIn)
	if err != nil {
		return nil, fmt.Errorf("invalid check-in: %w", err)
	}
	out, err := model.ParseDate(checkOut)
	if err != nil {
		return nil, fmt.Errorf("invalid check-out: %w", err)
	}

	c.mu.Lock()
	client, ok := c.findClient(clientID)
	if !ok {
		c.mu.Unlock()
		return nil, &model.NotFoundError{Entity: "client", ID: clientID}
	}
	room, ok := c.findRoom(roomID)
	if !ok {
		c.mu.Unlock()
		return nil, &model.NotFoundError{Entity: "room", ID: roomID}
	}
	// 厳格モードでは disponible からの遷移に成功した場合のみ予約できる
	reserved := false
	if c.strictAvailability {
		if !room.Reserve() {
			c.mu.Unlock()
			return nil, &model.ConflictError{
				Entity: "room",
				ID:     roomID,
				Reason: fmt.Sprintf("is %s, not %s", room.State(), model.RoomAvailable),
			}
		}
		reserved = true
	}

	reservation, err := model.NewReservation(c.lastReservationID+1, client, room, in, out, room.Price())
	if err != nil {
		if reserved {
			room.Release()
		}
		c.mu.Unlock()
		return nil, err
	}
	c.lastReservationID = reservation.ID
	c.reservations = append(c.reservations, reservation)
	summary := reservation.Summary()
	client.RecordReservation(summary)
	c.mu.Unlock()

	c.appendLog(ctx, c.reservationLog, summary)
	return reservation, nil
}

// CancelReservation は予約を取り消します
// 既に取り消し済みの場合はエラーではなく CancelOutcomeAlreadyCancelled を返します
func (c *Catalog) CancelReservation(ctx context.Context, id int64) (model.CancelOutcome, error) {
	c.mu.Lock()
	reservation, ok := c.findReservation(id)
	if !ok {
		c.mu.Unlock()
		return "", &model.NotFoundError{Entity: "reservation", ID: id}
	}
	outcome := reservation.Cancel()
	summary := reservation.Summary()
	c.mu.Unlock()

	if outcome == model.CancelOutcomeCancelled {
		c.appendLog(ctx, c.reservationLog, summary)
	}
	return outcome, nil
}

// ProcessPayment は activa の予約の合計金額を支払います
// 支払い結果は予約・客室の状態を変更しません
func (c *Catalog) ProcessPayment(ctx context.Context, reservationID int64, method string) (model.PaymentRecord, error) {
	reservation, ok := c.Reservation(reservationID)
	if !ok {
		return model.PaymentRecord{}, &model.NotFoundError{Entity: "reservation", ID: reservationID}
	}
	if !reservation.IsActive() {
		return model.PaymentRecord{}, &model.ConflictError{
			Entity: "reservation",
			ID:     reservationID,
			Reason: "is not active",
		}
	}

	p, err := model.NewPayment(c.paymentID(), reservationID, reservation.TotalPrice(), method)
	if err != nil {
		return model.PaymentRecord{}, err
	}
	record, err := c.payments.Process(ctx, p)
	if err != nil {
		return record, fmt.Errorf("failed to process payment %d: %w", p.ID, err)
	}

	c.appendLog(ctx, c.paymentLog, record)
	return record, nil
}

func (c *Catalog) appendLog(ctx context.Context, sink RecordSink, record interface{}) {
	if sink == nil {
		return
	}
	if err := sink.Append(ctx, record); err != nil {
		log.Printf("Failed to append record to log: %v", err)
	}
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
