package schedule

import (
	"fmt"
	"time"

	"festcal/internal/model"
)

// ordered is an insertion-ordered map. upsert is the only mutation: it
// inserts init() for a new key, then applies update to the stored value.
type ordered[K comparable, V any] struct {
	keys  []K
	index map[K]int
	vals  []V
}

func newOrdered[K comparable, V any]() *ordered[K, V] {
	return &ordered[K, V]{index: make(map[K]int)}
}

func (o *ordered[K, V]) upsert(key K, init func() V, update func(V) V) {
	i, ok := o.index[key]
	if !ok {
		i = len(o.keys)
		o.index[key] = i
		o.keys = append(o.keys, key)
		o.vals = append(o.vals, init())
	}
	o.vals[i] = update(o.vals[i])
}

type dayBucket struct {
	date   time.Time
	stages *ordered[string, []model.SetTime]
}

// Group folds parsed records into festival days. Days and stages keep
// first-seen order; sets are appended in input order without sorting.
func Group(records []SetRecord) ([]model.FestivalDay, error) {
	days := newOrdered[string, dayBucket]()

	for _, rec := range records {
		anchor := ResolveDay(rec.Day, rec.Time)
		set := model.SetTime{Artist: rec.Artist, Start: rec.Time}

		days.upsert(anchor.Format(dateLayout),
			func() dayBucket {
				return dayBucket{date: anchor, stages: newOrdered[string, []model.SetTime]()}
			},
			func(d dayBucket) dayBucket {
				d.stages.upsert(rec.Stage,
					func() []model.SetTime { return nil },
					func(sets []model.SetTime) []model.SetTime { return append(sets, set) },
				)
				return d
			},
		)
	}

	return freeze(days)
}

func freeze(days *ordered[string, dayBucket]) ([]model.FestivalDay, error) {
	out := make([]model.FestivalDay, 0, len(days.keys))
	for _, d := range days.vals {
		day := model.FestivalDay{
			Date:   d.date,
			Stages: make([]model.Stage, 0, len(d.stages.keys)),
		}
		for i, name := range d.stages.keys {
			sets := d.stages.vals[i]
			if len(sets) == 0 {
				return nil, fmt.Errorf("group %s/%s: %w", day.Key(), name, ErrEmptyStage)
			}
			day.Stages = append(day.Stages, model.Stage{Name: name, SetTimes: sets})
		}
		out = append(out, day)
	}
	return out, nil
}

// Parse is ParseRecords followed by Group.
func Parse(text string, loc *time.Location) ([]model.FestivalDay, error) {
	records, err := ParseRecords(text, loc)
	if err != nil {
		return nil, err
	}
	return Group(records)
}

// FindDay looks up a festival day by its YYYY-MM-DD key.
func FindDay(days []model.FestivalDay, key string) (model.FestivalDay, bool) {
	for _, d := range days {
		if d.Key() == key {
			return d, true
		}
	}
	return model.FestivalDay{}, false
}
