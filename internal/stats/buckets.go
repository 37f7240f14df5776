package stats

import (
	"slices"
	"time"
)

// Bucket is the aggregate of one calendar period.
type Bucket struct {
	Key   string    `json:"key"`
	Start time.Time `json:"start"`
	Sum   float64   `json:"sum"`
	Rows  int       `json:"rows"`
}

// WeekEnding returns the Sunday that closes the week containing t.
func WeekEnding(t time.Time) time.Time {
	offset := (7 - int(t.Weekday())) % 7
	return time.Date(t.Year(), t.Month(), t.Day()+offset, 0, 0, 0, 0, t.Location())
}

// MonthStart returns the first day of the month containing t.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// SumByWeek sums values into weeks ending Sunday. Only weeks that contain at
// least one row are returned, in chronological order.
func SumByWeek(dates []time.Time, values []float64) []Bucket {
	return sumBy(dates, values, WeekEnding, "2006-01-02")
}

// SumByMonth sums values by calendar month, keyed "YYYY-MM". Only months that
// contain at least one row are returned, in chronological order.
func SumByMonth(dates []time.Time, values []float64) []Bucket {
	return sumBy(dates, values, MonthStart, "2006-01")
}

// SumByWeekday sums values by English weekday name. Only weekdays present in
// the data appear.
func SumByWeekday(dates []time.Time, values []float64) map[string]float64 {
	out := make(map[string]float64)
	for i, d := range dates {
		out[d.Weekday().String()] += values[i]
	}
	return out
}

func sumBy(dates []time.Time, values []float64, normalize func(time.Time) time.Time, layout string) []Bucket {
	index := make(map[time.Time]int)
	var buckets []Bucket

	for i, d := range dates {
		start := normalize(d)
		idx, ok := index[start]
		if !ok {
			idx = len(buckets)
			index[start] = idx
			buckets = append(buckets, Bucket{Key: start.Format(layout), Start: start})
		}
		buckets[idx].Sum += values[i]
		buckets[idx].Rows++
	}

	slices.SortFunc(buckets, func(a, b Bucket) int {
		return a.Start.Compare(b.Start)
	})
	return buckets
}
