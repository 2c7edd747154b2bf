package model

import (
	"strings"
	"time"
)

// DateLayout は日付の入出力フォーマットです
const DateLayout = "2006-01-02"

// ParseDate は YYYY-MM-DD 形式の文字列を日付に変換します
// 時刻成分は持たず、UTCの0時として扱います
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &ValidationError{
			Field:  "date",
			Reason: "must be a valid calendar date in YYYY-MM-DD format: " + s,
			Err:    ErrInvalidDate,
		}
	}
	return t, nil
}

// FormatDate は日付を YYYY-MM-DD 形式で返します
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// truncateToDate drops any time-of-day component, keeping the calendar date.
func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// NightsBetween はチェックインからチェックアウトまでの泊数を返します
// time.Duration は約292年で飽和するため、Unix秒の差から日数を求めます
func NightsBetween(checkIn, checkOut time.Time) int {
	in := truncateToDate(checkIn)
	out := truncateToDate(checkOut)
	return int((out.Unix() - in.Unix()) / secondsPerDay)
}
