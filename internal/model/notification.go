package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// NotificationType は通知の種類を表します
type NotificationType string

const (
	// NotificationTypeReservation は予約作成の通知を表します
	NotificationTypeReservation NotificationType = "reservation"
	// NotificationTypeCancellation は予約取消の通知を表します
	NotificationTypeCancellation NotificationType = "cancellation"
	// NotificationTypePayment は支払い結果の通知を表します
	NotificationTypePayment NotificationType = "payment"
	// NotificationTypeCommon は共通の通知を表します
	NotificationTypeCommon NotificationType = "common"
)

// ClientContact は通知の宛先となる顧客の連絡先です
type ClientContact struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"nombre" db:"name"`
	Email string `json:"correo" db:"email"`
}

// ReservationEvent は予約バッチで発生したイベントです
// 予約バッチの出力として Step Functions に渡されます
type ReservationEvent struct {
	Type          NotificationType `json:"type"`
	ClientID      int64            `json:"client_id"`
	ReservationID int64            `json:"reservation_id"`
	RoomID        int64            `json:"room_id"`
	CheckIn       string           `json:"check_in"`
	CheckOut      string           `json:"check_out"`
	TotalPrice    float64          `json:"total_price"`
	PaymentStatus PaymentStatus    `json:"payment_status,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Notification はイベントIFを受け取るための定義です
// アプリケーションサービス層で利用されます
type Notification struct {
	Type      NotificationType       `json:"type"`
	CreatedAt time.Time              `json:"created_at"`
	Data      map[string]interface{} `json:"data"`
}

// NotificationRecord は通知のドメインモデルです
// データベースに永続化される通知レコードと一致しています
type NotificationRecord struct {
	ID        int              `db:"id"`
	ClientID  int64            `db:"client_id"`
	Email     string           `db:"email"`
	Title     string           `db:"title"`
	Message   string           `db:"message"`
	IsRead    bool             `db:"is_read"`
	Type      NotificationType `db:"type"`
	CreatedAt time.Time        `db:"created_at"`
	UpdatedAt time.Time        `db:"updated_at"`
}

// NewNotification は予約イベントから通知を作成します
func NewNotification(event ReservationEvent) Notification {
	data := map[string]interface{}{
		"client_id":      event.ClientID,
		"reservation_id": event.ReservationID,
		"room_id":        event.RoomID,
		"check_in":       event.CheckIn,
		"check_out":      event.CheckOut,
		"total_price":    event.TotalPrice,
	}
	if event.PaymentStatus != "" {
		data["payment_status"] = string(event.PaymentStatus)
	}
	return Notification{
		Type:      event.Type,
		CreatedAt: event.CreatedAt,
		Data:      data,
	}
}

// ClientID は通知データに含まれる顧客IDを返します
// JSONを経由した場合は数値が float64 になるため、それも受け付けます
func (n Notification) ClientID() (int64, error) {
	return asInt64(n.Data["client_id"])
}

// ToNotificationRecord は通知を通知レコードに変換します
func (n Notification) ToNotificationRecord(contacts map[int64]ClientContact) (*NotificationRecord, error) {
	if n.Data == nil {
		return nil, fmt.Errorf("invalid notification data format")
	}

	clientID, err := n.ClientID()
	if err != nil {
		return nil, fmt.Errorf("invalid client_id: %w", err)
	}
	contact, ok := contacts[clientID]
	if !ok {
		return nil, fmt.Errorf("client_id %d not found in contacts", clientID)
	}

	reservationID, _ := asInt64(n.Data["reservation_id"])
	roomID, _ := asInt64(n.Data["room_id"])
	total, _ := asFloat64(n.Data["total_price"])
	checkIn, _ := n.Data["check_in"].(string)
	checkOut, _ := n.Data["check_out"].(string)

	record := &NotificationRecord{
		ClientID:  clientID,
		Email:     contact.Email,
		IsRead:    false,
		Type:      n.Type,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.CreatedAt,
	}

	switch n.Type {
	case NotificationTypeReservation:
		record.Title = fmt.Sprintf("Reservación #%d confirmada", reservationID)
		record.Message = fmt.Sprintf(`Hola %s, tu reservación fue registrada.
Habitación: %d
Ingreso: %s
Salida: %s
Total: %s`, contact.Name, roomID, checkIn, checkOut, FormatMoney(total))
	case NotificationTypeCancellation:
		record.Title = fmt.Sprintf("Reservación #%d cancelada", reservationID)
		record.Message = fmt.Sprintf("Hola %s, tu reservación #%d (habitación %d) fue cancelada.",
			contact.Name, reservationID, roomID)
	case NotificationTypePayment:
		status, _ := n.Data["payment_status"].(string)
		record.Title = fmt.Sprintf("Pago de la reservación #%d: %s", reservationID, status)
		record.Message = fmt.Sprintf("Hola %s, el pago por %s de la reservación #%d quedó en estado %s.",
			contact.Name, FormatMoney(total), reservationID, status)
	default:
		record.Type = NotificationTypeCommon
		record.Title = "Nueva notificación"
		record.Message = fmt.Sprintf("Hola %s, tienes una nueva notificación.", contact.Name)
	}

	return record, nil
}

func asInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case json.Number:
		return n.Int64()
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func asFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
