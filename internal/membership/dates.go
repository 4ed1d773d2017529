package membership

import (
	"time"

	"github.com/jinzhu/now"
)

// DateLayout is the accepted form of membership start dates.
const DateLayout = "2006-01-02"

// Clock supplies the current time.
type Clock func() time.Time

// Today returns t's calendar date, read in t's own location, as midnight UTC.
func Today(t time.Time) time.Time {
	day := now.With(t).BeginningOfDay()
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

// AddMonths moves t forward by months calendar months. When the target month
// is shorter than t's day, the result is the last day of that month.
func AddMonths(t time.Time, months int) time.Time {
	target := now.With(t).BeginningOfMonth().AddDate(0, months, 0)
	last := now.With(target).EndOfMonth().Day()
	day := min(t.Day(), last)
	return time.Date(target.Year(), target.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// ParseDate parses a yyyy-MM-dd calendar date as midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, raw, time.UTC)
}
