package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// 補助単位を持たない通貨
var zeroDecimalCurrencies = map[string]bool{
	"JPY": true,
	"KRW": true,
	"VND": true,
}

// MinorExponent は通貨の小数桁数を返す。
func MinorExponent(currency string) int32 {
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		return 0
	}
	return 2
}

// FormatMinor は最小単位の整数金額を表示用の文字列にする（2500, USD => "25.00"）。
func FormatMinor(amount int64, currency string) string {
	exp := MinorExponent(currency)
	return decimal.New(amount, -exp).StringFixed(exp)
}

// NormalizeCurrency は通貨コードを大文字3桁にそろえる。空ならUSD。
func NormalizeCurrency(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" {
		return DefaultCurrency
	}
	return c
}
