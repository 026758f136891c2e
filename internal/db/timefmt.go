package db

import "time"

// TimeLayout is how timestamps are stored: UTC, fixed width, so string
// order is chronological order.
const TimeLayout = "2006-01-02 15:04:05.000"

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, time.UTC)
}
