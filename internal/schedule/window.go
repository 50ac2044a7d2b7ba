package schedule

import (
	"fmt"
	"time"

	"festcal/internal/model"
)

// SetWindow is the display interval of one set: from its own start to the
// start of the next set on the same stage, or to the 06:00 close.
type SetWindow struct {
	Index  int
	Artist string
	Start  time.Time
	End    time.Time
}

// Window computes the display start and end of stage.SetTimes[index] for
// the festival day anchored at anchor.
func Window(stage model.Stage, anchor time.Time, index int) (start, end time.Time, err error) {
	if index < 0 || index >= len(stage.SetTimes) {
		return time.Time{}, time.Time{}, fmt.Errorf("stage %q index %d of %d: %w", stage.Name, index, len(stage.SetTimes), ErrSetIndex)
	}

	start = Instant(anchor, stage.SetTimes[index].Start)
	if next := index + 1; next < len(stage.SetTimes) {
		end = Instant(anchor, stage.SetTimes[next].Start)
	} else {
		end = CloseAt(anchor)
	}
	return start, end, nil
}

// Windows returns the windows of every set on the stage, in order.
func Windows(stage model.Stage, anchor time.Time) []SetWindow {
	out := make([]SetWindow, 0, len(stage.SetTimes))
	for i, set := range stage.SetTimes {
		start, end, _ := Window(stage, anchor, i)
		out = append(out, SetWindow{
			Index:  i,
			Artist: set.Artist,
			Start:  start,
			End:    end,
		})
	}
	return out
}

// NowPlaying returns the index of the set on stage that is playing at now:
// the last set whose start is not after now. It returns -1 before the
// first set starts and once the night has closed.
func NowPlaying(stage model.Stage, anchor, now time.Time) int {
	if !now.Before(CloseAt(anchor)) {
		return -1
	}
	idx := -1
	for i, set := range stage.SetTimes {
		if Instant(anchor, set.Start).After(now) {
			break
		}
		idx = i
	}
	return idx
}
