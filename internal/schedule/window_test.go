package schedule

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festcal/internal/model"
)

func kineticField() model.Stage {
	return model.Stage{
		Name: "Kinetic Field",
		SetTimes: []model.SetTime{
			{Artist: "Dombresky", Start: model.TimeOfDay{Hour: 19}},
			{Artist: "Tiësto", Start: model.TimeOfDay{Hour: 22, Minute: 10}},
			{Artist: "Zedd", Start: model.TimeOfDay{Hour: 0}},
			{Artist: "Armin van Buuren", Start: model.TimeOfDay{Hour: 3, Minute: 20}},
		},
	}
}

func TestWindow(t *testing.T) {
	anchor := date(2024, 5, 17)
	stage := kineticField()

	tests := []struct {
		index      int
		start, end time.Time
	}{
		{0, time.Date(2024, 5, 17, 19, 0, 0, 0, time.UTC), time.Date(2024, 5, 17, 22, 10, 0, 0, time.UTC)},
		{1, time.Date(2024, 5, 17, 22, 10, 0, 0, time.UTC), time.Date(2024, 5, 18, 0, 0, 0, 0, time.UTC)},
		{2, time.Date(2024, 5, 18, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 18, 3, 20, 0, 0, time.UTC)},
		{3, time.Date(2024, 5, 18, 3, 20, 0, 0, time.UTC), time.Date(2024, 5, 18, 6, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		start, end, err := Window(stage, anchor, tt.index)
		require.NoError(t, err)
		assert.Equal(t, tt.start, start, "start of %d", tt.index)
		assert.Equal(t, tt.end, end, "end of %d", tt.index)
	}
}

func TestWindow_IndexOutOfRange(t *testing.T) {
	stage := kineticField()
	for _, idx := range []int{-1, len(stage.SetTimes)} {
		_, _, err := Window(stage, date(2024, 5, 17), idx)
		assert.ErrorIs(t, err, ErrSetIndex)
	}
}

func TestWindows_Contiguous(t *testing.T) {
	anchor := date(2024, 5, 17)
	wins := Windows(kineticField(), anchor)
	require.Len(t, wins, 4)

	for i := 0; i < len(wins)-1; i++ {
		assert.Equal(t, wins[i].End, wins[i+1].Start, "window %d", i)
		assert.True(t, wins[i].Start.Before(wins[i].End), "window %d", i)
	}
	assert.Equal(t, CloseAt(anchor), wins[len(wins)-1].End)
	assert.Equal(t, time.Date(2024, 5, 18, 6, 0, 0, 0, time.UTC), CloseAt(anchor))
}

func TestInstant_KeepsLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	anchor := time.Date(2024, 5, 17, 0, 0, 0, 0, loc)
	got := Instant(anchor, model.TimeOfDay{Hour: 1, Minute: 30})
	assert.Equal(t, time.Date(2024, 5, 18, 1, 30, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}

func TestNowPlaying(t *testing.T) {
	anchor := date(2024, 5, 17)
	stage := kineticField()

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before first set", time.Date(2024, 5, 17, 18, 0, 0, 0, time.UTC), -1},
		{"exactly at first set", time.Date(2024, 5, 17, 19, 0, 0, 0, time.UTC), 0},
		{"late evening", time.Date(2024, 5, 17, 23, 0, 0, 0, time.UTC), 1},
		{"after midnight", time.Date(2024, 5, 18, 1, 0, 0, 0, time.UTC), 2},
		{"closing set", time.Date(2024, 5, 18, 5, 59, 0, 0, time.UTC), 3},
		{"after close", time.Date(2024, 5, 18, 6, 0, 0, 0, time.UTC), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NowPlaying(stage, anchor, tt.now))
		})
	}
}
