package model

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	moneyPrinter = message.NewPrinter(language.LatinAmericanSpanish)
	cop          = currency.MustParseISO("COP")
)

// FormatMoney は金額をコロンビアペソ表記の文字列にします
func FormatMoney(amount float64) string {
	return moneyPrinter.Sprint(currency.Symbol(cop.Amount(amount)))
}
