package types

import (
	"math"
	"time"
)

// AddClampedDate adds years, months and days to t, clamping the day to the last
// valid day of the resulting month (Jan 31 + 1 month = Feb 28/29).
func AddClampedDate(t time.Time, years, months, days int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	// Calculate the proposed year and month
	newY := y + years
	newM := time.Month(int(m) + months)

	for newM > 12 {
		newM -= 12
		newY++
	}
	for newM < 1 {
		newM += 12
		newY--
	}

	// Find the last valid day of the new month
	lastDay := lastDayOfMonth(newY, newM, t.Location())

	newD := d
	if newD > lastDay {
		newD = lastDay
	}

	return time.Date(newY, newM, newD, h, min, sec, t.Nanosecond(), t.Location()).AddDate(0, 0, days)
}

// NextMonthlyCycleEnd returns the end of a one month billing cycle starting at start
func NextMonthlyCycleEnd(start time.Time) time.Time {
	return AddClampedDate(start, 0, 1, 0)
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NextFriday returns the first Friday strictly after ref, at midnight.
// A Friday ref yields the Friday one week later.
func NextFriday(ref time.Time) time.Time {
	day := StartOfDay(ref)
	daysUntil := (int(time.Friday) - int(day.Weekday()) + 7) % 7
	if daysUntil == 0 {
		daysUntil = 7
	}
	return day.AddDate(0, 0, daysUntil)
}

// LastFridayOfMonth returns the last Friday of the given month at midnight
func LastFridayOfMonth(year int, month time.Month, loc *time.Location) time.Time {
	day := time.Date(year, month, lastDayOfMonth(year, month, loc), 0, 0, 0, 0, loc)
	for day.Weekday() != time.Friday {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// NextFridayEOM returns the last Friday of ref's month when it is on or after
// ref's day, otherwise the last Friday of the following month.
func NextFridayEOM(ref time.Time) time.Time {
	day := StartOfDay(ref)
	eom := LastFridayOfMonth(day.Year(), day.Month(), day.Location())
	if eom.Before(day) {
		next := time.Date(day.Year(), day.Month()+1, 1, 0, 0, 0, 0, day.Location())
		eom = LastFridayOfMonth(next.Year(), next.Month(), next.Location())
	}
	return eom
}

// DaysBetween returns the whole days elapsed from start to end, floored and
// never negative.
func DaysBetween(start, end time.Time) int {
	days := int(math.Floor(end.Sub(start).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func lastDayOfMonth(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
