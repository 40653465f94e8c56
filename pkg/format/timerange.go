package format

import "time"

// ChinaStandardTime is the fixed UTC+8 zone the statistics pages report in.
var ChinaStandardTime = time.FixedZone("CST", 8*60*60)

// MonthToDate returns the default statistics range for now: midnight on the
// first day of now's month and now itself, both in [DefaultLayout] and
// both in loc. A nil loc means [ChinaStandardTime].
func MonthToDate(now time.Time, loc *time.Location) (start, end string) {
	if loc == nil {
		loc = ChinaStandardTime
	}
	now = now.In(loc)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	return TimestampIn(first.UnixMilli(), DefaultLayout, loc), TimestampIn(now.UnixMilli(), DefaultLayout, loc)
}
