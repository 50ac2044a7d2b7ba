package schedule

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"festcal/internal/model"
)

// ActiveDay picks the festival day that is live at now. Before 06:00 the
// previous calendar date is still live. The second result is false when no
// day matches (before, between or after the festival days).
func ActiveDay(now time.Time, days []model.FestivalDay) (model.FestivalDay, bool) {
	target := Today(now)
	for _, d := range days {
		if sameDate(d.Date, target) {
			return d, true
		}
	}
	return model.FestivalDay{}, false
}

// Today resolves now to the festival day it belongs to.
func Today(now time.Time) time.Time {
	return ResolveDay(now, model.TimeOfDay{Hour: now.Hour(), Minute: now.Minute()})
}

type Phase string

const (
	PhaseNone    Phase = "none" // no festival days loaded
	PhaseBefore  Phase = "before"
	PhaseLive    Phase = "live"
	PhaseBetween Phase = "between"
	PhaseAfter   Phase = "after"
)

// Status is the festival state seen at a given instant.
type Status struct {
	Now   time.Time
	Today time.Time
	Phase Phase

	// Day is the live day; only meaningful when Active is true.
	Day    model.FestivalDay
	Active bool

	// DaysUntil counts days from Today to the first festival day when
	// Phase is PhaseBefore, and to the next festival day for PhaseBetween.
	DaysUntil int
}

// StatusAt evaluates the festival status at now. now is first moved into
// the zone of the festival days so both sides compare calendar dates in
// the same zone.
func StatusAt(now time.Time, days []model.FestivalDay) Status {
	if len(days) > 0 {
		now = now.In(days[0].Date.Location())
	}
	st := Status{Now: now, Today: Today(now), Phase: PhaseNone}
	if len(days) == 0 {
		return st
	}

	if d, ok := ActiveDay(now, days); ok {
		st.Phase = PhaseLive
		st.Day = d
		st.Active = true
		return st
	}

	first, last := bounds(days)
	switch {
	case st.Today.Before(first):
		st.Phase = PhaseBefore
		st.DaysUntil = daysBetween(st.Today, first)
	case st.Today.After(last):
		st.Phase = PhaseAfter
	default:
		st.Phase = PhaseBetween
		next := last
		for _, d := range days {
			if d.Date.After(st.Today) && d.Date.Before(next) {
				next = d.Date
			}
		}
		st.DaysUntil = daysBetween(st.Today, next)
	}
	return st
}

// SpanDate is one calendar date inside the festival's span.
type SpanDate struct {
	Date      time.Time
	Scheduled bool
}

// Span lists every calendar date from the first to the last festival day,
// marking the ones that carry a lineup.
func Span(days []model.FestivalDay) ([]SpanDate, error) {
	if len(days) == 0 {
		return nil, nil
	}
	first, last := bounds(days)

	dates, err := daily(first, last)
	if err != nil {
		return nil, err
	}

	out := make([]SpanDate, 0, len(dates))
	for _, dt := range dates {
		sd := SpanDate{Date: dt}
		for _, d := range days {
			if sameDate(d.Date, dt) {
				sd.Scheduled = true
				break
			}
		}
		out = append(out, sd)
	}
	return out, nil
}

func bounds(days []model.FestivalDay) (first, last time.Time) {
	first, last = dateOf(days[0].Date), dateOf(days[0].Date)
	for _, d := range days[1:] {
		dt := dateOf(d.Date)
		if dt.Before(first) {
			first = dt
		}
		if dt.After(last) {
			last = dt
		}
	}
	return first, last
}

// daysBetween counts calendar days from from to to. Both dates are pinned
// to noon UTC so DST shifts drop out, and the difference is taken in Unix
// seconds because time.Duration saturates after about 292 years.
func daysBetween(from, to time.Time) int {
	noon := func(t time.Time) int64 {
		y, m, d := t.Date()
		return time.Date(y, m, d, 12, 0, 0, 0, time.UTC).Unix()
	}
	return int((noon(to) - noon(from)) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// daily expands a DAILY recurrence from start to until, both inclusive.
func daily(start, until time.Time) ([]time.Time, error) {
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: start,
		Until:   until,
	})
	if err != nil {
		return nil, fmt.Errorf("daily recurrence %s..%s: %w", start.Format(dateLayout), until.Format(dateLayout), err)
	}
	return r.All(), nil
}
