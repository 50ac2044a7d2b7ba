package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festcal/internal/palette"
	"festcal/internal/schedule"
)

const lineupText = `2024-05-17,Bionic Jungle,Baggi B2B Matt Denuzzo,17:00
2024-05-17,Cosmic Meadow,Noizu B2B Westend B2B Mele,17:30
2024-05-18,Bionic Jungle,Dennis Ferrer,1:30
2024-05-18,Bionic Jungle,DJ Heartstring,22:30`

var stamp = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestExport(t *testing.T) {
	days, err := schedule.Parse(lineupText, time.UTC)
	require.NoError(t, err)

	cal, err := Export(days, ExportOptions{Name: "EDC 2024", Stamp: stamp})
	require.NoError(t, err)

	assert.Equal(t, 4, strings.Count(cal, "BEGIN:VEVENT"))
	assert.Contains(t, cal, "X-WR-CALNAME:EDC 2024")
	assert.Contains(t, cal, "PRODID:"+defaultProductID)
	assert.Contains(t, cal, "SUMMARY:Baggi B2B Matt Denuzzo")
	assert.Contains(t, cal, "LOCATION:Bionic Jungle")
	assert.Contains(t, cal, "DTSTART:20240517T170000Z")
	// Dennis Ferrer closes the first night
	assert.Contains(t, cal, "DTSTART:20240518T013000Z")
	assert.Contains(t, cal, "DTEND:20240518T060000Z")
	// first stage of a day is hue 0
	assert.Contains(t, cal, "X-FESTCAL-COLOR:#ff0000")
	assert.NotContains(t, cal, "\nCOLOR:")
}

func TestExport_StageColorOverride(t *testing.T) {
	days, err := schedule.Parse(lineupText, time.UTC)
	require.NoError(t, err)

	pink, err := palette.ParseHex("#ff69b4")
	require.NoError(t, err)

	cal, err := Export(days, ExportOptions{Stamp: stamp, StageColors: map[string]palette.Color{"Bionic Jungle": pink}})
	require.NoError(t, err)
	assert.Contains(t, cal, "X-FESTCAL-COLOR:#ff69b4")
}

func TestExport_Stable(t *testing.T) {
	days, err := schedule.Parse(lineupText, time.UTC)
	require.NoError(t, err)

	a, err := Export(days, ExportOptions{Stamp: stamp})
	require.NoError(t, err)
	b, err := Export(days, ExportOptions{Stamp: stamp})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestExportParseRoundTrip(t *testing.T) {
	days, err := schedule.Parse(lineupText, time.UTC)
	require.NoError(t, err)

	cal, err := Export(days, ExportOptions{Stamp: stamp})
	require.NoError(t, err)

	records, err := ParseLineup([]byte(cal), time.UTC)
	require.NoError(t, err)
	require.Len(t, records, 4)

	again, err := schedule.Group(records)
	require.NoError(t, err)
	assert.Equal(t, days, again)
}

func TestSetUID(t *testing.T) {
	days, err := schedule.Parse(lineupText, time.UTC)
	require.NoError(t, err)
	day := days[0]

	a := SetUID(day, "Bionic Jungle", 0, "Baggi B2B Matt Denuzzo")
	assert.Equal(t, a, SetUID(day, "Bionic Jungle", 0, "Baggi B2B Matt Denuzzo"))
	assert.NotEqual(t, a, SetUID(day, "Bionic Jungle", 1, "Baggi B2B Matt Denuzzo"))
	assert.True(t, strings.HasSuffix(a, "@festcal"))
}

func TestParseLineup_Errors(t *testing.T) {
	_, err := ParseLineup(nil, time.UTC)
	assert.Error(t, err)

	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:missing-location",
		"DTSTAMP:20240501T120000Z",
		"DTSTART:20240517T170000Z",
		"SUMMARY:Somebody",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	_, err = ParseLineup([]byte(body), time.UTC)
	require.Error(t, err)
	assert.ErrorIs(t, err, schedule.ErrMalformedRecord)
}
