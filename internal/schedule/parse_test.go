package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festcal/internal/model"
)

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord("2024-05-17,Cosmic Meadow,Noizu B2B Westend B2B Mele,17:30", time.UTC)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC), rec.Day)
	assert.Equal(t, "Cosmic Meadow", rec.Stage)
	assert.Equal(t, "Noizu B2B Westend B2B Mele", rec.Artist)
	assert.Equal(t, model.TimeOfDay{Hour: 17, Minute: 30}, rec.Time)
}

func TestParseRecord_HourForms(t *testing.T) {
	for _, raw := range []string{"9:00", "09:00"} {
		rec, err := ParseRecord("2024-05-17,Stage,Artist,"+raw, time.UTC)
		require.NoError(t, err, raw)
		assert.Equal(t, model.TimeOfDay{Hour: 9}, rec.Time, raw)
	}

	rec, err := ParseRecord("2024-05-19,Stage,Artist,0:30", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, model.TimeOfDay{Hour: 0, Minute: 30}, rec.Time)
}

func TestParseRecord_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"blank line", ""},
		{"too few fields", "2024-05-17,Stage,17:00"},
		{"too many fields", "2024-05-17,Stage,Artist,Extra,17:00"},
		{"bad date", "17/05/2024,Stage,Artist,17:00"},
		{"single digit month", "2024-5-17,Stage,Artist,17:00"},
		{"bad time", "2024-05-17,Stage,Artist,five pm"},
		{"single digit minute", "2024-05-17,Stage,Artist,17:5"},
		{"hour out of range", "2024-05-17,Stage,Artist,24:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecord(tt.line, time.UTC)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedRecord)

			var recErr *RecordError
			require.True(t, errors.As(err, &recErr))
			assert.Equal(t, tt.line, recErr.Text)
		})
	}
}

func TestParseRecords(t *testing.T) {
	text := "2024-05-17,Bionic Jungle,Baggi B2B Matt Denuzzo,17:00\r\n" +
		"2024-05-18,Bionic Jungle,DJ Heartstring,22:30\n"

	recs, err := ParseRecords(text, time.UTC)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 1, recs[0].Line)
	assert.Equal(t, 2, recs[1].Line)
	assert.Equal(t, "Baggi B2B Matt Denuzzo", recs[0].Artist)
	assert.Equal(t, model.TimeOfDay{Hour: 22, Minute: 30}, recs[1].Time)
}

func TestParseRecords_BlankLineAborts(t *testing.T) {
	text := "2024-05-17,Stage,A,17:00\n\n2024-05-17,Stage,B,18:00\n"

	recs, err := ParseRecords(text, time.UTC)
	assert.Nil(t, recs)
	require.ErrorIs(t, err, ErrMalformedRecord)

	var recErr *RecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, 2, recErr.Line)
}

func TestParseRecords_Empty(t *testing.T) {
	recs, err := ParseRecords("", time.UTC)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
