package ics

import (
	"fmt"
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	appLog "festcal/internal/log"
	"festcal/internal/model"
	"festcal/internal/palette"
	"festcal/internal/schedule"
)

const defaultProductID = "-//festcal//lineup//EN"

// colorProperty carries the stage color as #rrggbb. The standard COLOR
// property only takes CSS3 color names.
const colorProperty = ical.ComponentProperty("X-FESTCAL-COLOR")

// uidNamespace scopes the name-based UUIDs of exported sets.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://festcal.local/sets"))

// ExportOptions controls how a lineup is rendered as iCalendar.
type ExportOptions struct {
	// Name is written as X-WR-CALNAME when non-empty.
	Name string

	// ProductID overrides the PRODID. Defaults to defaultProductID.
	ProductID string

	// Stamp is used as DTSTAMP for every event. Zero means time.Now().
	// Set it explicitly for byte-stable output.
	Stamp time.Time

	// StageColors overrides generated stage colors by stage name.
	StageColors map[string]palette.Color
}

// Export renders every set of every festival day as a VEVENT. Each event
// spans the set's display window; SUMMARY is the artist, LOCATION the
// stage and X-FESTCAL-COLOR the stage color.
func Export(days []model.FestivalDay, opts ExportOptions) (string, error) {
	if opts.ProductID == "" {
		opts.ProductID = defaultProductID
	}
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(opts.ProductID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	count := 0
	for _, day := range days {
		colors := palette.ForStages(day.StageNames(), opts.StageColors)
		for si, stage := range day.Stages {
			if len(stage.SetTimes) == 0 {
				return "", fmt.Errorf("ics export %s/%s: %w", day.Key(), stage.Name, schedule.ErrEmptyStage)
			}
			for _, w := range schedule.Windows(stage, day.Date) {
				ev := cal.AddEvent(SetUID(day, stage.Name, w.Index, w.Artist))
				ev.SetDtStampTime(opts.Stamp)
				ev.SetStartAt(w.Start)
				ev.SetEndAt(w.End)
				ev.SetSummary(w.Artist)
				ev.SetLocation(stage.Name)
				ev.SetProperty(colorProperty, colors[si].Hex())
				count++
			}
		}
	}

	appLog.Debug("ics export completed", "days", len(days), "event_count", count)
	return cal.Serialize(), nil
}

// SetUID derives a stable UID for a set from its day, stage, position and
// artist. The same lineup always exports the same UIDs.
func SetUID(day model.FestivalDay, stage string, index int, artist string) string {
	key := day.Key() + "\x00" + stage + "\x00" + strconv.Itoa(index) + "\x00" + artist
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@festcal"
}
