package format

import (
	"fmt"
	"regexp"
	"time"
)

// DefaultLayout is used by [Timestamp] when the layout is empty.
const DefaultLayout = "YYYY-MM-DD HH:mm:ss"

var tokenRe = regexp.MustCompile(`YYYY|MM|DD|HH|mm|ss`)

// Timestamp formats ms (milliseconds since the Unix epoch) in the local
// time zone. See [TimestampIn].
func Timestamp(ms int64, layout string) string {
	return TimestampIn(ms, layout, time.Local)
}

// TimestampIn formats ms in loc, replacing YYYY, MM, DD, HH, mm and ss in
// layout with zero-padded calendar fields. The scan is a single
// left-to-right pass, so substituted digits are never matched again.
func TimestampIn(ms int64, layout string, loc *time.Location) string {
	if layout == "" {
		layout = DefaultLayout
	}
	if loc == nil {
		loc = time.Local
	}
	t := time.UnixMilli(ms).In(loc)

	return tokenRe.ReplaceAllStringFunc(layout, func(tok string) string {
		switch tok {
		case "YYYY":
			return fmt.Sprintf("%04d", t.Year())
		case "MM":
			return fmt.Sprintf("%02d", int(t.Month()))
		case "DD":
			return fmt.Sprintf("%02d", t.Day())
		case "HH":
			return fmt.Sprintf("%02d", t.Hour())
		case "mm":
			return fmt.Sprintf("%02d", t.Minute())
		case "ss":
			return fmt.Sprintf("%02d", t.Second())
		}
		return tok
	})
}
