package format

import (
	"math"
	"strconv"
	"strings"
)

// Units is a magnitude unit table indexed by power of ten-thousand.
// Index 0 is the unit for values below 10^4 and is usually empty.
type Units []string

// ChineseUnits is the ten-thousand based table used by the dashboard
// statistics ("万" = 10^4, "亿" = 10^8, "万亿" = 10^12).
var ChineseUnits = Units{"", "万", "亿", "万亿"}

// preserveLimit is the bound below which preserveRange leaves values as-is.
const preserveLimit = 100000

// AmountResult is the split form of a formatted amount.
type AmountResult struct {
	Value string `json:"value"`
	Type  string `json:"type"` // unit name, empty when no scaling applied
}

// String joins the value and unit, e.g. "10.00万".
func (r AmountResult) String() string {
	return r.Value + r.Type
}

// unit returns the name at index i, or "" when the table is too short.
func (u Units) unit(i int) string {
	if i < 0 || i >= len(u) {
		return ""
	}
	return u[i]
}

// Amount abbreviates num with a unit from units.
//
// With preserveRange set, values below 100000 are returned unchanged.
// Otherwise the magnitude is taken from the digit count of the integer part
// of num: every four digits past the first step one unit up the table. The
// scaled value keeps two decimals and gets thousands separators.
//
//	Amount(100000, ChineseUnits, false) // {Value: "10.00", Type: "万"}
//	Amount(99999, ChineseUnits, true)   // {Value: "99999", Type: ""}
func Amount(num float64, units Units, preserveRange bool) AmountResult {
	raw := jsNumber(num)
	if preserveRange && num < preserveLimit {
		return AmountResult{Value: raw}
	}

	intPart := raw
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		n, err := strconv.ParseFloat(raw[:i], 64)
		if err == nil {
			intPart = jsNumber(n)
		}
	}

	unitIndex := (len(intPart) - 1) / 4
	if unitIndex <= 0 {
		return AmountResult{Value: raw}
	}

	divisor := math.Pow(10, float64(unitIndex*4))
	return AmountResult{
		Value: groupThousands(toFixed(num/divisor, 2)),
		Type:  units.unit(unitIndex),
	}
}

// FormatAmount is the string form of [Amount].
func FormatAmount(num float64, units Units, preserveRange bool) string {
	return Amount(num, units, preserveRange).String()
}
