// Package kpi computes the temporal sales indicators: cumulative
// count/revenue by calendar day, the weekday-by-hour occurrence grid and
// day-level rates. Every event is bucketed in a single reference
// location; an input batch mixing zoned and naive timestamps is
// rejected outright, never coerced.
package kpi

import (
	"errors"
	"sort"
	"time"

	"salespipe/internal/model"
)

// ErrMixedZones reports a batch containing both zoned and naive timestamps.
var ErrMixedZones = errors.New("kpi: mixed zoned and naive timestamps")

// Event is one sale occurrence. Zero-time events are skipped by every
// calculator.
type Event struct {
	At    model.Timestamp
	Cents int64
}

// DayPoint is one calendar day of the cumulative series.
type DayPoint struct {
	Day      time.Time `json:"day"`
	Count    int       `json:"count"`
	CumCount int       `json:"cumCount"`
	Cents    int64     `json:"cents"`
	CumCents int64     `json:"cumCents"`
}

// Grid counts events per weekday and hour. Row 0 is Monday, row 6
// Sunday; columns are hours 0..23.
type Grid [7][24]int

// Total sums every cell.
func (g Grid) Total() int {
	n := 0
	for _, row := range g {
		for _, c := range row {
			n += c
		}
	}
	return n
}

// Rates summarizes a daily series.
type Rates struct {
	Days         int       `json:"days"`
	MeanCount    float64   `json:"meanCountPerDay"`
	MeanCents    float64   `json:"meanCentsPerDay"`
	PeakDay      time.Time `json:"peakDay"`
	PeakDayCount int       `json:"peakDayCount"`
}

// CumulativeByDay buckets events by calendar day in loc and returns the
// running count and revenue. The series is non-decreasing by
// construction and its final point equals the batch totals.
func CumulativeByDay(events []Event, loc *time.Location) ([]DayPoint, error) {
	loc = orUTC(loc)
	if err := checkZones(events); err != nil {
		return nil, err
	}

	type bucket struct {
		count int
		cents int64
	}
	buckets := make(map[int64]bucket)
	for _, ev := range events {
		if ev.At.IsZero() {
			continue
		}
		t := anchor(ev.At, loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		b := buckets[day.Unix()]
		b.count++
		b.cents += ev.Cents
		buckets[day.Unix()] = b
	}

	keys := make([]int64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	points := make([]DayPoint, 0, len(keys))
	var cumCount int
	var cumCents int64
	for _, k := range keys {
		b := buckets[k]
		cumCount += b.count
		cumCents += b.cents
		points = append(points, DayPoint{
			Day:      time.Unix(k, 0).In(loc),
			Count:    b.count,
			CumCount: cumCount,
			Cents:    b.cents,
			CumCents: cumCents,
		})
	}
	return points, nil
}

// WeekdayHourGrid counts events per weekday x hour-of-day in loc.
func WeekdayHourGrid(events []Event, loc *time.Location) (Grid, error) {
	loc = orUTC(loc)
	var g Grid
	if err := checkZones(events); err != nil {
		return g, err
	}
	for _, ev := range events {
		if ev.At.IsZero() {
			continue
		}
		t := anchor(ev.At, loc)
		row := (int(t.Weekday()) + 6) % 7 // Monday first
		g[row][t.Hour()]++
	}
	return g, nil
}

// DailyRates derives day-level rates from a cumulative series.
func DailyRates(points []DayPoint) Rates {
	var r Rates
	r.Days = len(points)
	if r.Days == 0 {
		return r
	}
	for _, p := range points {
		if p.Count > r.PeakDayCount {
			r.PeakDayCount = p.Count
			r.PeakDay = p.Day
		}
	}
	last := points[len(points)-1]
	r.MeanCount = float64(last.CumCount) / float64(r.Days)
	r.MeanCents = float64(last.CumCents) / float64(r.Days)
	return r
}

// checkZones rejects batches mixing zoned and naive non-zero timestamps.
func checkZones(events []Event) error {
	var sawZoned, sawNaive bool
	for _, ev := range events {
		if ev.At.IsZero() {
			continue
		}
		if ev.At.Zoned {
			sawZoned = true
		} else {
			sawNaive = true
		}
		if sawZoned && sawNaive {
			return ErrMixedZones
		}
	}
	return nil
}

// anchor places a timestamp in loc. Zoned values convert; naive values
// are re-anchored as a wall clock already read in loc.
func anchor(ts model.Timestamp, loc *time.Location) time.Time {
	if ts.Zoned {
		return ts.Time.In(loc)
	}
	t := ts.Time
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
