package ics

import (
	"bytes"
	"errors"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "festcal/internal/log"
	"festcal/internal/model"
	"festcal/internal/schedule"
)

// ParseLineup reads an iCalendar lineup (as produced by Export) back into
// set records, one per VEVENT in document order. SUMMARY is the artist and
// LOCATION the stage; DTSTART is converted to loc before it is split into a
// calendar date and a clock time, so sets after midnight carry the next
// calendar date exactly like a CSV line would.
//
// Like the CSV parser, any unusable event aborts the whole import.
func ParseLineup(body []byte, loc *time.Location) ([]schedule.SetRecord, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err)
		return nil, err
	}

	events := cal.Events()
	records := make([]schedule.SetRecord, 0, len(events))

	for i, ve := range events {
		rec, perr := parseVEvent(i+1, ve, loc)
		if perr != nil {
			return nil, perr
		}
		records = append(records, rec)
	}

	appLog.Info("ics lineup parsed", "event_count", len(records))
	return records, nil
}

func parseVEvent(n int, ve *ical.VEvent, loc *time.Location) (schedule.SetRecord, error) {
	uid := ""
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		uid = p.Value
	}

	var artist, stage string
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		artist = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		stage = p.Value
	}
	if artist == "" || stage == "" {
		return schedule.SetRecord{}, &schedule.RecordError{Line: n, Text: uid, Reason: "event needs SUMMARY and LOCATION"}
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return schedule.SetRecord{}, &schedule.RecordError{Line: n, Text: uid, Reason: "bad DTSTART", Err: err}
	}
	start = start.In(loc)

	return schedule.SetRecord{
		Line:   n,
		Day:    time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc),
		Stage:  stage,
		Artist: artist,
		Time:   model.TimeOfDay{Hour: start.Hour(), Minute: start.Minute()},
	}, nil
}
