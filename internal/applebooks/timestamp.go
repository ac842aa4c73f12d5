package applebooks

import (
	"math"
	"time"
)

// Apple Books uses Core Data timestamp format: seconds since 2001-01-01 00:00:00 UTC
var coreDataEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// TimestampLayout is the layout used for every rendered timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// UnknownTime is rendered in place of a missing timestamp.
const UnknownTime = "Unknown time"

// CoreDataTime converts a Core Data offset to a UTC time. Whole seconds and
// the fraction are applied separately since time.Duration overflows past
// roughly 292 years.
func CoreDataTime(offset float64) time.Time {
	sec, frac := math.Modf(offset)
	return time.Unix(coreDataEpoch.Unix()+int64(sec), int64(frac*float64(time.Second))).UTC()
}

// FormatTimestamp renders a Core Data offset as a calendar date-time in UTC.
func FormatTimestamp(offset *float64) string {
	if offset == nil {
		return UnknownTime
	}
	return CoreDataTime(*offset).Format(TimestampLayout)
}
