package format

import (
	"math"
)

// DefaultFileSizeDecimals is the precision the UI uses for file sizes.
const DefaultFileSizeDecimals = 2

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FileSize scales bytes into the largest binary unit that keeps the value
// at or above 1 and prints it with decimals fractional digits, keeping
// trailing zeros: FileSize(1024, 2) is "1.00 KB".
//
// Zero and non-finite input return "0 Bytes". Negative sizes keep their
// sign and scale by magnitude. Fractions of a byte stay in Bytes, and
// anything past YB is expressed in YB. A negative decimals uses
// [DefaultFileSizeDecimals].
func FileSize(bytes float64, decimals int) string {
	if bytes == 0 || math.IsNaN(bytes) || math.IsInf(bytes, 0) {
		return "0 Bytes"
	}
	if decimals < 0 {
		decimals = DefaultFileSizeDecimals
	}

	const k = 1024
	i := int(math.Floor(math.Log(math.Abs(bytes)) / math.Log(k)))
	i = min(max(i, 0), len(sizeUnits)-1)

	return toFixed(bytes/math.Pow(k, float64(i)), decimals) + " " + sizeUnits[i]
}
