package split

import (
	"fmt"
	"time"
)

// Unit is the calendar period a split run covers.
type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

// Window returns the inclusive boundaries of the period containing now.
// Weeks start on Monday. The end boundary is the last representable instant
// of the period, so [from, to] covers the whole period.
func Window(now time.Time, unit Unit) (from, to time.Time, err error) {
	year, month, day := now.Date()
	loc := now.Location()

	switch unit {
	case UnitDay:
		from = time.Date(year, month, day, 0, 0, 0, 0, loc)
		to = from.AddDate(0, 0, 1).Add(-time.Nanosecond)
	case UnitWeek:
		offset := (int(now.Weekday()) + 6) % 7 // days since Monday
		monday := now.AddDate(0, 0, -offset)
		from = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, loc)
		to = from.AddDate(0, 0, 7).Add(-time.Nanosecond)
	case UnitMonth:
		from = time.Date(year, month, 1, 0, 0, 0, 0, loc)
		to = from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	case UnitYear:
		from = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		to = from.AddDate(1, 0, 0).Add(-time.Nanosecond)
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown interval %q (want day, week, month or year)", unit)
	}
	return from, to, nil
}
