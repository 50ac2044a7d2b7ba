package schedule

import (
	"bufio"
	"strings"
	"time"

	"festcal/internal/model"
)

const (
	dateLayout = time.DateOnly
	// "15" accepts one or two hour digits, "04" requires two minute digits.
	clockLayout = "15:04"

	fieldCount = 4
)

// SetRecord is one parsed schedule line. It only lives until grouping.
type SetRecord struct {
	Line   int
	Day    time.Time // calendar date at midnight in the parse location
	Stage  string
	Artist string
	Time   model.TimeOfDay
}

// ParseRecord parses a single "date,stage,artist,time" line. Dates are
// interpreted in loc (time.Local when nil).
func ParseRecord(line string, loc *time.Location) (SetRecord, error) {
	return parseLine(0, line, loc)
}

// ParseRecords parses a whole schedule text, one record per line. The first
// malformed line aborts the parse; blank lines are malformed too. A final
// line terminator does not count as an extra blank line.
func ParseRecords(text string, loc *time.Location) ([]SetRecord, error) {
	records := make([]SetRecord, 0)

	sc := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		rec, err := parseLine(lineNo, sc.Text(), loc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, &RecordError{Line: lineNo + 1, Reason: "read failed", Err: err}
	}

	return records, nil
}

func parseLine(lineNo int, line string, loc *time.Location) (SetRecord, error) {
	if loc == nil {
		loc = time.Local
	}
	line = strings.TrimSuffix(line, "\r")

	fields := strings.Split(line, ",")
	if len(fields) != fieldCount {
		return SetRecord{}, &RecordError{
			Line:   lineNo,
			Text:   line,
			Reason: "expected 4 comma-separated fields",
		}
	}

	day, err := time.ParseInLocation(dateLayout, fields[0], loc)
	if err != nil {
		return SetRecord{}, &RecordError{Line: lineNo, Text: line, Reason: "bad date", Err: err}
	}

	clock, err := ParseTimeOfDay(fields[3])
	if err != nil {
		return SetRecord{}, &RecordError{Line: lineNo, Text: line, Reason: "bad time", Err: err}
	}

	return SetRecord{
		Line:   lineNo,
		Day:    day,
		Stage:  fields[1],
		Artist: fields[2],
		Time:   clock,
	}, nil
}

// ParseTimeOfDay parses "H:mm" or "HH:mm".
func ParseTimeOfDay(s string) (model.TimeOfDay, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return model.TimeOfDay{}, err
	}
	return model.TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}
