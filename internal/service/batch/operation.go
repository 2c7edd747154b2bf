package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/uma-arai/sbcntr-hotel/internal/model"
	"github.com/uma-arai/sbcntr-hotel/internal/service/catalog"
)

// OperationKind は予約バッチが受け付ける操作の種類です
type OperationKind string

const (
	OpRegisterClient OperationKind = "register_client"
	OpUpdateClient   OperationKind = "update_client"
	OpRegisterRoom   OperationKind = "register_room"
	OpSetPrice       OperationKind = "set_price"
	OpOccupy         OperationKind = "occupy"
	OpRelease        OperationKind = "release"
	OpReserve        OperationKind = "reserve"
	OpCancel         OperationKind = "cancel"
	OpPay            OperationKind = "pay"
)

// Operation は操作ファイルの1要素です
// 操作の種類によって利用するフィールドが異なります
type Operation struct {
	Op            OperationKind `json:"op"`
	ClientID      int64         `json:"client_id,omitempty"`
	RoomID        int64         `json:"room_id,omitempty"`
	ReservationID int64         `json:"reservation_id,omitempty"`
	Name          *string       `json:"name,omitempty"`
	Email         *string       `json:"email,omitempty"`
	Phone         *string       `json:"phone,omitempty"`
	Type          string        `json:"type,omitempty"`
	// Price は数値と文字列の両方を受け付けます
	Price    interface{} `json:"price,omitempty"`
	State    string      `json:"state,omitempty"`
	CheckIn  string      `json:"check_in,omitempty"`
	CheckOut string      `json:"check_out,omitempty"`
	Method   string      `json:"method,omitempty"`
}

// OperationResult は1操作の実行結果です
type OperationResult struct {
	Index  int           `json:"index"`
	Op     OperationKind `json:"op"`
	OK     bool          `json:"ok"`
	Detail string        `json:"detail,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// ParseOperations は JSON 配列の操作ファイルを読み込みます
func ParseOperations(b []byte) ([]Operation, error) {
	var ops []Operation
	if err := json.Unmarshal(b, &ops); err != nil {
		return nil, fmt.Errorf("failed to parse operations: %w", err)
	}
	return ops, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parsePrice(v interface{}) (float64, error) {
	switch p := v.(type) {
	case float64:
		return p, nil
	case string:
		return model.ParsePrice(p)
	case nil:
		return 0, &model.ValidationError{Field: "price", Reason: "is required", Err: model.ErrInvalidPrice}
	default:
		return 0, &model.ValidationError{Field: "price", Reason: fmt.Sprintf("unsupported type %T", v), Err: model.ErrInvalidPrice}
	}
}

// applyOperation は1操作を台帳に適用します
// 通知対象となる操作の場合はイベントも返します
func applyOperation(ctx context.Context, c *catalog.Catalog, op Operation, now time.Time) (OperationResult, *model.ReservationEvent, error) {
	res := OperationResult{Op: op.Op}

	switch op.Op {
	case OpRegisterClient:
		client, err := c.RegisterClient(deref(op.Name), deref(op.Email), deref(op.Phone))
		if err != nil {
			return res, nil, err
		}
		res.Detail = fmt.Sprintf("client %d registered", client.ID)

	case OpUpdateClient:
		report, err := c.UpdateClient(op.ClientID, model.ClientUpdate{Name: op.Name, Email: op.Email, Phone: op.Phone})
		if err != nil {
			return res, nil, err
		}
		var applied []string
		for _, r := range report {
			if r.Applied {
				applied = append(applied, r.Field)
			}
		}
		res.Detail = fmt.Sprintf("client %d updated fields: [%s]", op.ClientID, strings.Join(applied, ", "))
		if !report.OK() {
			return res, nil, report.Err()
		}

	case OpRegisterRoom:
		price, err := parsePrice(op.Price)
		if err != nil {
			return res, nil, err
		}
		room, err := c.RegisterRoom(op.Type, price, op.State)
		if err != nil {
			return res, nil, err
		}
		res.Detail = fmt.Sprintf("room %d registered as %s", room.ID, room.State())

	case OpSetPrice:
		price, err := parsePrice(op.Price)
		if err != nil {
			return res, nil, err
		}
		if err := c.SetRoomPrice(op.RoomID, price); err != nil {
			return res, nil, err
		}
		res.Detail = fmt.Sprintf("room %d price set to %s", op.RoomID, model.FormatMoney(price))

	case OpOccupy:
		ok, err := c.OccupyRoom(op.RoomID)
		if err != nil {
			return res, nil, err
		}
		if !ok {
			return res, nil, &model.ConflictError{Entity: "room", ID: op.RoomID, Reason: "is not available"}
		}
		res.Detail = fmt.Sprintf("room %d occupied", op.RoomID)

	case OpRelease:
		if err := c.ReleaseRoom(op.RoomID); err != nil {
			return res, nil, err
		}
		res.Detail = fmt.Sprintf("room %d released", op.RoomID)

	case OpReserve:
		r, err := c.CreateReservation(ctx, op.ClientID, op.RoomID, op.CheckIn, op.CheckOut)
		if err != nil {
			return res, nil, err
		}
		res.Detail = fmt.Sprintf("reservation %d created: %d nights, total %s",
			r.ID, r.Nights(), model.FormatMoney(r.TotalPrice()))
		return res, reservationEvent(model.NotificationTypeReservation, r, "", now), nil

	case OpCancel:
		outcome, err := c.CancelReservation(ctx, op.ReservationID)
		if err != nil {
			return res, nil, err
		}
		res.Detail = fmt.Sprintf("reservation %d: %s", op.ReservationID, outcome)
		if outcome == model.CancelOutcomeCancelled {
			r, _ := c.Reservation(op.ReservationID)
			return res, reservationEvent(model.NotificationTypeCancellation, r, "", now), nil
		}

	case OpPay:
		record, err := c.ProcessPayment(ctx, op.ReservationID, op.Method)
		if err != nil {
			return res, nil, err
		}
		res.Detail = fmt.Sprintf("payment %d for reservation %d: %s", record.ID, op.ReservationID, record.Status)
		r, _ := c.Reservation(op.ReservationID)
		return res, reservationEvent(model.NotificationTypePayment, r, record.Status, now), nil

	default:
		return res, nil, fmt.Errorf("unknown operation %q", op.Op)
	}

	return res, nil, nil
}

func reservationEvent(t model.NotificationType, r *model.Reservation, status model.PaymentStatus, now time.Time) *model.ReservationEvent {
	return &model.ReservationEvent{
		Type:          t,
		ClientID:      r.Client().ID,
		ReservationID: r.ID,
		RoomID:        r.Room().ID,
		CheckIn:       model.FormatDate(r.CheckIn()),
		CheckOut:      model.FormatDate(r.CheckOut()),
		TotalPrice:    r.TotalPrice(),
		PaymentStatus: status,
		CreatedAt:     now,
	}
}
