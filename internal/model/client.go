package model

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EmailDomain は受け付けるメールアドレスのドメインです
const EmailDomain = "gmail.com"

// PhoneLength は電話番号の桁数です
const PhoneLength = 10

// Client はホテルに登録された顧客を表します
// 予約履歴は作成時点のスナップショットを追記のみで保持します
type Client struct {
	ID      int64
	name    string
	email   string
	phone   string
	history []ReservationSummary
}

// ClientInfo は顧客情報の参照用スナップショットです
type ClientInfo struct {
	ID           int64  `json:"id"`
	Name         string `json:"nombre"`
	Email        string `json:"correo"`
	Phone        string `json:"telefono"`
	Reservations int    `json:"reservas"`
}

// ClientUpdate は顧客情報の部分更新です。nil のフィールドは変更しません
type ClientUpdate struct {
	Name  *string `json:"nombre,omitempty"`
	Email *string `json:"correo,omitempty"`
	Phone *string `json:"telefono,omitempty"`
}

// FieldResult は部分更新における1フィールドの結果です
type FieldResult struct {
	Field   string
	Applied bool
	Err     error
}

// UpdateReport は部分更新の結果をフィールドごとに保持します
type UpdateReport []FieldResult

// OK は指定されたすべてのフィールドが反映された場合に true を返します
func (r UpdateReport) OK() bool {
	for _, f := range r {
		if !f.Applied {
			return false
		}
	}
	return true
}

// Applied は field が反映されたかどうかを返します
func (r UpdateReport) Applied(field string) bool {
	for _, f := range r {
		if f.Field == field {
			return f.Applied
		}
	}
	return false
}

// Failed は反映されなかったフィールドの結果を返します
func (r UpdateReport) Failed() []FieldResult {
	var failed []FieldResult
	for _, f := range r {
		if !f.Applied {
			failed = append(failed, f)
		}
	}
	return failed
}

// Err は失敗したフィールドのエラーをまとめて返します
func (r UpdateReport) Err() error {
	var errs []error
	for _, f := range r.Failed() {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}

// NewClient は入力値を正規化・検証して顧客を作成します
// いずれかの検証に失敗した場合は顧客を作成せず、失敗したすべての項目をエラーとして返します
func NewClient(id int64, name, email, phone string) (*Client, error) {
	n, nameErr := normalizeName(name)
	e, emailErr := normalizeEmail(email)
	p, phoneErr := normalizePhone(phone)

	if err := errors.Join(nameErr, emailErr, phoneErr); err != nil {
		return nil, err
	}

	return &Client{
		ID:    id,
		name:  n,
		email: e,
		phone: p,
	}, nil
}

func (c *Client) Name() string  { return c.name }
func (c *Client) Email() string { return c.email }
func (c *Client) Phone() string { return c.phone }

// Update は指定されたフィールドを個別に検証して反映します
// 不正なフィールドは反映されず、他のフィールドの更新は継続されます
func (c *Client) Update(u ClientUpdate) UpdateReport {
	var report UpdateReport

	if u.Name != nil {
		n, err := normalizeName(*u.Name)
		if err == nil {
			c.name = n
		}
		report = append(report, FieldResult{Field: "name", Applied: err == nil, Err: err})
	}
	if u.Email != nil {
		e, err := normalizeEmail(*u.Email)
		if err == nil {
			c.email = e
		}
		report = append(report, FieldResult{Field: "email", Applied: err == nil, Err: err})
	}
	if u.Phone != nil {
		p, err := normalizePhone(*u.Phone)
		if err == nil {
			c.phone = p
		}
		report = append(report, FieldResult{Field: "phone", Applied: err == nil, Err: err})
	}

	return report
}

// RecordReservation は予約のスナップショットを履歴に追加します
func (c *Client) RecordReservation(summary ReservationSummary) {
	c.history = append(c.history, summary)
}

// History は予約履歴のコピーを返します
func (c *Client) History() []ReservationSummary {
	out := make([]ReservationSummary, len(c.history))
	copy(out, c.history)
	return out
}

// Describe は顧客情報のスナップショットを返します
func (c *Client) Describe() ClientInfo {
	return ClientInfo{
		ID:           c.ID,
		Name:         c.name,
		Email:        c.email,
		Phone:        c.phone,
		Reservations: len(c.history),
	}
}

// Contact は通知送信用の連絡先を返します
func (c *Client) Contact() ClientContact {
	return ClientContact{ID: c.ID, Name: c.name, Email: c.email}
}

func (c *Client) String() string {
	return c.name + " (" + c.email + ")"
}

func normalizeName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", newValidationError("name", "must not be empty or whitespace only")
	}
	// Caser は状態を持つため呼び出しごとに作成する
	return cases.Title(language.Spanish).String(n), nil
}

func normalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(e, "@") || !strings.Contains(e, EmailDomain) {
		return "", newValidationError("email", "must contain '@' and '"+EmailDomain+"'")
	}
	return e, nil
}

// normalizePhone keeps the phone as a digit string so leading zeros survive.
func normalizePhone(phone string) (string, error) {
	p := strings.TrimSpace(phone)
	if len(p) != PhoneLength {
		return "", newValidationError("phone", "must have exactly 10 digits")
	}
	for i := 0; i < len(p); i++ {
		if p[i] < '0' || p[i] > '9' {
			return "", newValidationError("phone", "must have exactly 10 digits")
		}
	}
	return p, nil
}
