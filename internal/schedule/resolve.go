package schedule

import (
	"time"

	"festcal/internal/model"
)

// RolloverHour is the hour at which one festival day hands over to the
// next. Clock times before it belong to the previous day's night.
const RolloverHour = 6

// Close is the universal end of every festival night.
var Close = model.TimeOfDay{Hour: RolloverHour}

// ResolveDay returns the canonical festival day for a set listed under the
// given calendar date at clock time t.
func ResolveDay(date time.Time, t model.TimeOfDay) time.Time {
	day := dateOf(date)
	if t.Hour < RolloverHour {
		return day.AddDate(0, 0, -1)
	}
	return day
}

// Instant rebuilds the absolute time of a clock time within the festival
// day anchored at anchor. Times before 06:00 fall on the following
// calendar date.
func Instant(anchor time.Time, t model.TimeOfDay) time.Time {
	day := dateOf(anchor)
	if t.Hour < RolloverHour {
		day = day.AddDate(0, 0, 1)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, day.Location())
}

// CloseAt is the 06:00 close of the night that follows anchor.
func CloseAt(anchor time.Time) time.Time {
	day := dateOf(anchor).AddDate(0, 0, 1)
	return time.Date(day.Year(), day.Month(), day.Day(), Close.Hour, Close.Minute, 0, 0, day.Location())
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
