package starschema

import (
	"sort"
	"time"
)

// StartTime converts an epoch millisecond timestamp to the UTC instant used as
// the key of the time dimension.
func StartTime(ts int64) time.Time {
	return time.UnixMilli(ts).UTC()
}

// NewTime decomposes t into the calendar fields of the time dimension.
func NewTime(t time.Time) Time {
	t = t.UTC()
	_, week := t.ISOWeek()
	return Time{
		StartTime: t,
		Hour:      t.Hour(),
		Day:       t.Day(),
		Week:      week,
		Month:     int(t.Month()),
		Year:      t.Year(),
		Weekday:   int(t.Weekday()),
	}
}

// BuildTime returns one time row for every distinct timestamp among listens,
// ordered by start time. Events without a timestamp are counted as null keys.
func BuildTime(listens []ActivityRecord) ([]Time, TableStats) {
	stats := TableStats{Table: TableTime, Input: len(listens)}
	seen := make(map[int64]struct{}, len(listens))
	tss := make([]int64, 0, len(listens))
	for _, rec := range listens {
		if !rec.HasTS {
			stats.NullKey++
			continue
		}
		if _, ok := seen[rec.TS]; ok {
			stats.Duplicates++
			continue
		}
		seen[rec.TS] = struct{}{}
		tss = append(tss, rec.TS)
	}
	sort.Slice(tss, func(i, j int) bool { return tss[i] < tss[j] })

	rows := make([]Time, len(tss))
	for i, ts := range tss {
		rows[i] = NewTime(StartTime(ts))
	}
	stats.Output = len(rows)
	return rows, stats
}
