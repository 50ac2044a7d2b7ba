package model

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time without a date. Hour is in [0, 24).
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String formats the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// SetTime is a single artist slot on a stage.
type SetTime struct {
	Artist string
	Start  TimeOfDay
}

// Stage is a named stage with its sets in chronological order (under the
// overnight rollover convention). A Stage always has at least one set.
type Stage struct {
	Name     string
	SetTimes []SetTime
}

// FestivalDay groups the stages playing on one canonical festival day.
//
// Date is the anchor date at midnight in the schedule location. Sets that
// start after midnight (before 06:00) still belong to the previous Date.
// Stages keep the order in which they were first seen in the input.
//
// The tree (FestivalDay -> Stage -> SetTime) is built once per load and
// must be treated as read-only afterwards.
type FestivalDay struct {
	Date   time.Time
	Stages []Stage
}

// Key returns the anchor date formatted as YYYY-MM-DD.
func (d FestivalDay) Key() string {
	return d.Date.Format(time.DateOnly)
}

// Stage looks up a stage by name.
func (d FestivalDay) Stage(name string) (Stage, bool) {
	for _, s := range d.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}

// StageNames returns the stage names in display order.
func (d FestivalDay) StageNames() []string {
	names := make([]string, 0, len(d.Stages))
	for _, s := range d.Stages {
		names = append(names, s.Name)
	}
	return names
}
