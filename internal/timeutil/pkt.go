package timeutil

import (
	"time"
)

// PKT is the Pakistan Standard Time location (UTC+5)
var PKT *time.Location

func init() {
	var err error
	PKT, err = time.LoadLocation("Asia/Karachi")
	if err != nil {
		// Fallback: create fixed zone if Asia/Karachi not available
		PKT = time.FixedZone("PKT", 5*60*60) // UTC+5
	}
}

// Now returns the current time in PKT
func Now() time.Time {
	return time.Now().In(PKT)
}

// ToPKT converts any time to PKT
func ToPKT(t time.Time) time.Time {
	return t.In(PKT)
}

// ParseDate parses a YYYY-MM-DD string as a PKT calendar date
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, PKT)
}

// FormatDate formats a time as its PKT calendar date
func FormatDate(t time.Time) string {
	return t.In(PKT).Format(DateLayout)
}

// StartOfDay returns the start of day (00:00:00) in PKT for the given time
func StartOfDay(t time.Time) time.Time {
	pkt := t.In(PKT)
	return time.Date(pkt.Year(), pkt.Month(), pkt.Day(), 0, 0, 0, 0, PKT)
}

// EndOfDay returns the end of day (23:59:59.999999999) in PKT for the given time
func EndOfDay(t time.Time) time.Time {
	pkt := t.In(PKT)
	return time.Date(pkt.Year(), pkt.Month(), pkt.Day(), 23, 59, 59, 999999999, PKT)
}

// SameDay reports whether a and b fall on the same PKT calendar date
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// Common layouts for PKT formatting
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
)
