package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festcal/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveDay(t *testing.T) {
	day := date(2024, 5, 19)
	for h := 0; h < 24; h++ {
		got := ResolveDay(day, model.TimeOfDay{Hour: h, Minute: 59})
		if h < RolloverHour {
			assert.Equal(t, date(2024, 5, 18), got, "hour %d", h)
		} else {
			assert.Equal(t, day, got, "hour %d", h)
		}
	}
}

func TestResolveDay_AcrossMonth(t *testing.T) {
	got := ResolveDay(date(2024, 6, 1), model.TimeOfDay{Hour: 5, Minute: 59})
	assert.Equal(t, date(2024, 5, 31), got)
}

func TestParse_RolloverRecord(t *testing.T) {
	days, err := Parse("2024-05-19,Stage,Artist,0:30", time.UTC)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2024-05-18", days[0].Key())
}

func TestParse_EndToEnd(t *testing.T) {
	text := "2024-05-17,Bionic Jungle,Baggi B2B Matt Denuzzo,17:00\n" +
		"2024-05-18,Bionic Jungle,DJ Heartstring,22:30"

	days, err := Parse(text, time.UTC)
	require.NoError(t, err)
	require.Len(t, days, 2)

	assert.Equal(t, "2024-05-17", days[0].Key())
	assert.Equal(t, "2024-05-18", days[1].Key())
	for _, d := range days {
		require.Len(t, d.Stages, 1)
		assert.Equal(t, "Bionic Jungle", d.Stages[0].Name)
		assert.Len(t, d.Stages[0].SetTimes, 1)
	}

	_, end, err := Window(days[0].Stages[0], days[0].Date, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 18, 6, 0, 0, 0, time.UTC), end)
}

func TestGroup_Ordering(t *testing.T) {
	text := `2024-05-17,Neon Garden,A,20:00
2024-05-17,Circuit Grounds,B,20:00
2024-05-17,Neon Garden,C,23:00
2024-05-18,Neon Garden,D,1:00
2024-05-18,Basspod,E,20:00
2024-05-18,Circuit Grounds,F,0:30`

	days, err := Parse(text, time.UTC)
	require.NoError(t, err)
	require.Len(t, days, 2)

	first := days[0]
	assert.Equal(t, "2024-05-17", first.Key())
	// first-seen order, not alphabetical
	assert.Equal(t, []string{"Neon Garden", "Circuit Grounds"}, first.StageNames())

	neon, ok := first.Stage("Neon Garden")
	require.True(t, ok)
	assert.Equal(t, []model.SetTime{
		{Artist: "A", Start: model.TimeOfDay{Hour: 20}},
		{Artist: "C", Start: model.TimeOfDay{Hour: 23}},
		{Artist: "D", Start: model.TimeOfDay{Hour: 1}},
	}, neon.SetTimes)

	circuit, ok := first.Stage("Circuit Grounds")
	require.True(t, ok)
	assert.Equal(t, []string{"B", "F"}, artists(circuit))

	second := days[1]
	assert.Equal(t, "2024-05-18", second.Key())
	assert.Equal(t, []string{"Basspod"}, second.StageNames())
}

func TestGroup_Deterministic(t *testing.T) {
	text := `2024-05-17,Kinetic Field,A,19:00
2024-05-17,Cosmic Meadow,B,21:00
2024-05-18,Kinetic Field,C,0:00
2024-05-18,Kinetic Field,D,20:00`

	recs, err := ParseRecords(text, time.UTC)
	require.NoError(t, err)

	a, err := Group(recs)
	require.NoError(t, err)
	b, err := Group(recs)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGroup_Empty(t *testing.T) {
	days, err := Group(nil)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestFreeze_EmptyStage(t *testing.T) {
	days := newOrdered[string, dayBucket]()
	days.upsert("2024-05-17",
		func() dayBucket {
			return dayBucket{date: date(2024, 5, 17), stages: newOrdered[string, []model.SetTime]()}
		},
		func(d dayBucket) dayBucket {
			d.stages.upsert("Ghost Stage", func() []model.SetTime { return nil }, func(s []model.SetTime) []model.SetTime { return s })
			return d
		},
	)

	_, err := freeze(days)
	assert.ErrorIs(t, err, ErrEmptyStage)
}

func TestFindDay(t *testing.T) {
	days, err := Parse("2024-05-17,Stage,A,20:00", time.UTC)
	require.NoError(t, err)

	d, ok := FindDay(days, "2024-05-17")
	assert.True(t, ok)
	assert.Equal(t, "2024-05-17", d.Key())

	_, ok = FindDay(days, "2024-05-18")
	assert.False(t, ok)
}

func artists(s model.Stage) []string {
	out := make([]string, 0, len(s.SetTimes))
	for _, st := range s.SetTimes {
		out = append(out, st.Artist)
	}
	return out
}
