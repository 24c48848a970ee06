// Package money 負責十進位金額字串與最小貨幣單位 (int64) 之間的轉換
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrMalformed 不是合法的十進位數字
	ErrMalformed = errors.New("malformed amount")
	// ErrPrecision 小數位數超過幣別精度
	ErrPrecision = errors.New("amount has too many decimal places")
	// ErrOutOfRange 超出 int64 可表示範圍
	ErrOutOfRange = errors.New("amount out of range")
)

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// Parse 把 "12.50" 轉成最小貨幣單位
//
// 參數:
//
//	s: 十進位字串，可帶負號
//	places: 幣別小數位數 (例如 2 代表分)
//
// 回傳:
//
//	int64: 最小貨幣單位的金額 (places=2 時 "12.50" -> 1250)
//	error: ErrMalformed / ErrPrecision / ErrOutOfRange
func Parse(s string, places int32) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrMalformed
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	minor := d.Shift(places)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: %q allows %d places", ErrPrecision, s, places)
	}
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return 0, fmt.Errorf("%w: %q", ErrOutOfRange, s)
	}
	return minor.IntPart(), nil
}

// Format 把最小貨幣單位轉回固定小數位數的字串 (1250 -> "12.50")
func Format(minor int64, places int32) string {
	return decimal.New(minor, -places).StringFixed(places)
}
