package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDate は日付が YYYY-MM-DD 形式でない、または存在しない日付の場合に返されます
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidPrice は価格が数値でない、または負の値の場合に返されます
	ErrInvalidPrice = errors.New("invalid price")
)

// ValidationError は入力値の検証エラーを表します
// このエラーが返された場合、対象のオブジェクトは生成・変更されていません
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError は現在の状態では操作を受け付けられない場合に返されます
type ConflictError struct {
	Entity string
	ID     int64
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Entity, e.ID, e.Reason)
}

// NotFoundError は指定されたIDのエンティティが存在しない場合に返されます
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// IsValidationError は err が ValidationError を含むかどうかを返します
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound は err が NotFoundError を含むかどうかを返します
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict は err が ConflictError を含むかどうかを返します
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}
