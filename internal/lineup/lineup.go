// Package lineup loads the festival schedule tree from the configured
// source: a CSV or iCalendar file, or the lineup bundled into the binary.
package lineup

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"festcal/internal/ics"
	appLog "festcal/internal/log"
	"festcal/internal/model"
	"festcal/internal/schedule"
)

//go:embed edc2024.csv
var bundledCSV string

type Format string

const (
	FormatCSV Format = "csv"
	FormatICS Format = "ics"
)

// ParseFormat validates a configured format. Empty means "infer from the
// file extension".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatCSV, FormatICS:
		return f, nil
	default:
		return "", fmt.Errorf("lineup: unknown format %q", s)
	}
}

// Source describes where the schedule comes from.
type Source struct {
	// Path of the schedule file. Empty selects the bundled lineup.
	Path string
	// Format of the file; inferred from the extension when empty.
	Format Format
	// Location the schedule's dates and times are read in. Nil means
	// time.Local.
	Location *time.Location
}

var bundled = sync.OnceValues(func() ([]model.FestivalDay, error) {
	return schedule.Parse(bundledCSV, time.Local)
})

// Bundled returns the lineup compiled into the binary, read in the local
// zone. It is parsed once per process.
func Bundled() ([]model.FestivalDay, error) {
	return bundled()
}

// BundledText returns the raw bundled schedule.
func BundledText() string {
	return bundledCSV
}

// Load reads and groups the schedule described by src.
func Load(src Source) ([]model.FestivalDay, error) {
	loc := src.Location
	if loc == nil {
		loc = time.Local
	}

	if src.Path == "" {
		var (
			days []model.FestivalDay
			err  error
		)
		if loc == time.Local {
			days, err = Bundled()
		} else {
			days, err = schedule.Parse(bundledCSV, loc)
		}
		if err != nil {
			return nil, fmt.Errorf("lineup: bundled schedule: %w", err)
		}
		appLog.Info("lineup loaded", "source", "bundled", "days", len(days))
		return days, nil
	}

	body, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("lineup: %w", err)
	}

	format := src.Format
	if format == "" {
		format = inferFormat(src.Path)
	}

	var records []schedule.SetRecord
	switch format {
	case FormatICS:
		records, err = ics.ParseLineup(body, loc)
	default:
		records, err = schedule.ParseRecords(string(body), loc)
	}
	if err != nil {
		return nil, fmt.Errorf("lineup: %s: %w", src.Path, err)
	}

	days, err := schedule.Group(records)
	if err != nil {
		return nil, fmt.Errorf("lineup: %s: %w", src.Path, err)
	}

	appLog.Info("lineup loaded",
		"source", src.Path,
		"format", string(format),
		"records", len(records),
		"days", len(days),
	)
	return days, nil
}

func inferFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ics", ".ical", ".ifb":
		return FormatICS
	default:
		return FormatCSV
	}
}

// CountSets returns the total number of sets in the tree.
func CountSets(days []model.FestivalDay) int {
	n := 0
	for _, d := range days {
		for _, s := range d.Stages {
			n += len(s.SetTimes)
		}
	}
	return n
}
