package model

import (
	"math"
	"strings"
)

// PaymentMethod は支払い方法を表します
type PaymentMethod string

const (
	PaymentMethodTarjeta   PaymentMethod = "tarjeta"
	PaymentMethodNequi     PaymentMethod = "nequi"
	PaymentMethodDaviplata PaymentMethod = "daviplata"
	PaymentMethodPaypal    PaymentMethod = "paypal"
)

// ValidPaymentMethods は受け付ける支払い方法の一覧です
var ValidPaymentMethods = []PaymentMethod{
	PaymentMethodTarjeta,
	PaymentMethodNequi,
	PaymentMethodDaviplata,
	PaymentMethodPaypal,
}

// PaymentStatus は支払いの状態を表します
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pendiente"
	PaymentApproved PaymentStatus = "aprobado"
	PaymentFailed   PaymentStatus = "fallido"
	PaymentRejected PaymentStatus = "rechazado"
)

// IsValid は支払い方法が受け付け可能かどうかを返します
func (m PaymentMethod) IsValid() bool {
	for _, v := range ValidPaymentMethods {
		if m == v {
			return true
		}
	}
	return false
}

// Payment は予約に対する支払いです
// 支払い結果は予約や客室の状態には影響しません
type Payment struct {
	ID            int
	ReservationID int64
	Amount        float64
	Method        PaymentMethod
	Status        PaymentStatus
	Reference     string
}

// PaymentRecord は支払いログに保存される支払いのスナップショットです
type PaymentRecord struct {
	ID            int           `json:"id_pago"`
	ReservationID int64         `json:"id_reserva"`
	Amount        float64       `json:"monto"`
	Method        PaymentMethod `json:"metodo"`
	Status        PaymentStatus `json:"estado"`
	Reference     string        `json:"referencia,omitempty"`
}

// NewPayment は pendiente 状態の支払いを作成します
// 支払い方法はこの時点では検証しません。不正な方法は処理時に rechazado になります
func NewPayment(id int, reservationID int64, amount float64, method string) (*Payment, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must be a non-negative number", Err: ErrInvalidPrice}
	}
	return &Payment{
		ID:            id,
		ReservationID: reservationID,
		Amount:        amount,
		Method:        PaymentMethod(strings.ToLower(strings.TrimSpace(method))),
		Status:        PaymentPending,
	}, nil
}

// Reject は支払いを rechazado にします
func (p *Payment) Reject() {
	if p.Status == PaymentPending {
		p.Status = PaymentRejected
	}
}

// Complete は処理結果に応じて支払いを aprobado または fallido にします
func (p *Payment) Complete(approved bool) {
	if p.Status != PaymentPending {
		return
	}
	if approved {
		p.Status = PaymentApproved
	} else {
		p.Status = PaymentFailed
	}
}

// Record は支払いのスナップショットを返します
func (p *Payment) Record() PaymentRecord {
	return PaymentRecord{
		ID:            p.ID,
		ReservationID: p.ReservationID,
		Amount:        p.Amount,
		Method:        p.Method,
		Status:        p.Status,
		Reference:     p.Reference,
	}
}
