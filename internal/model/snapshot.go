package model

// ClientRecord は永続化用の顧客レコードです
type ClientRecord struct {
	ID      int64                `json:"id"`
	Name    string               `json:"nombre"`
	Email   string               `json:"correo"`
	Phone   string               `json:"telefono"`
	History []ReservationSummary `json:"reservas"`
}

// RoomRecord は永続化用の客室レコードです
type RoomRecord struct {
	ID    int64     `json:"id"`
	Type  string    `json:"tipo"`
	Price float64   `json:"precio"`
	State RoomState `json:"estado"`
}

// ReservationRecord は永続化用の予約レコードです
// 顧客と客室はIDで参照します
type ReservationRecord struct {
	ID           int64            `json:"id"`
	ClientID     int64            `json:"id_cliente"`
	RoomID       int64            `json:"id_habitacion"`
	CheckIn      string           `json:"ingreso"`
	CheckOut     string           `json:"salida"`
	NightlyPrice float64          `json:"precio_por_dia"`
	State        ReservationState `json:"estado"`
}

// CatalogSnapshot はカタログ全体の永続化単位です
type CatalogSnapshot struct {
	Clients      []ClientRecord      `json:"clientes"`
	Rooms        []RoomRecord        `json:"habitaciones"`
	Reservations []ReservationRecord `json:"reservas"`
}

// IsEmpty はスナップショットにエンティティが1件も含まれない場合に true を返します
func (s *CatalogSnapshot) IsEmpty() bool {
	return s == nil || (len(s.Clients) == 0 && len(s.Rooms) == 0 && len(s.Reservations) == 0)
}

// Record は顧客の永続化用レコードを返します
func (c *Client) Record() ClientRecord {
	return ClientRecord{
		ID:      c.ID,
		Name:    c.name,
		Email:   c.email,
		Phone:   c.phone,
		History: c.History(),
	}
}

// RestoreClient は永続化されたレコードから顧客を復元します
func RestoreClient(rec ClientRecord) (*Client, error) {
	c, err := NewClient(rec.ID, rec.Name, rec.Email, rec.Phone)
	if err != nil {
		return nil, err
	}
	c.history = append(c.history, rec.History...)
	return c, nil
}

// Record は客室の永続化用レコードを返します
func (r *Room) Record() RoomRecord {
	info := r.Info()
	return RoomRecord{ID: info.ID, Type: info.Type, Price: info.Price, State: info.State}
}

// Record は予約の永続化用レコードを返します
func (r *Reservation) Record() ReservationRecord {
	return ReservationRecord{
		ID:           r.ID,
		ClientID:     r.client.ID,
		RoomID:       r.room.ID,
		CheckIn:      FormatDate(r.checkIn),
		CheckOut:     FormatDate(r.checkOut),
		NightlyPrice: r.nightlyPrice,
		State:        r.state,
	}
}
